package database_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kozaktomas/staff-clock/internal/database"
	"github.com/kozaktomas/staff-clock/internal/database/mock"
)

func embedding(dim int, head ...float32) []float32 {
	v := make([]float32, dim)
	copy(v, head)
	return v
}

func TestEnrollmentCache_SnapshotSortedAndCached(t *testing.T) {
	store := mock.NewMockEnrollmentStore()
	store.AddEnrollment("c", embedding(4, 1))
	store.AddEnrollment("a", embedding(4, 0, 1))
	store.AddEnrollment("b", embedding(4, 0, 0, 1))

	cache := database.NewEnrollmentCache(store, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		list, err := cache.Snapshot(ctx)
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		if len(list) != 3 || list[0].StaffID != "a" || list[1].StaffID != "b" || list[2].StaffID != "c" {
			t.Fatalf("expected sorted a,b,c, got %+v", list)
		}
	}
	if store.ListCalls() != 1 {
		t.Errorf("expected one store read, got %d", store.ListCalls())
	}

	cache.Invalidate()
	if _, err := cache.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if store.ListCalls() != 2 {
		t.Errorf("expected reload after Invalidate, got %d reads", store.ListCalls())
	}
}

func TestEnrollmentCache_LoadError(t *testing.T) {
	store := mock.NewMockEnrollmentStore()
	store.ListError = database.ErrStoreUnavailable

	cache := database.NewEnrollmentCache(store, 0)
	_, err := cache.Snapshot(context.Background())
	if !errors.Is(err, database.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}

	// A failed load is not cached.
	store.ListError = nil
	if _, err := cache.Snapshot(context.Background()); err != nil {
		t.Errorf("expected recovery after the store is back, got %v", err)
	}
}

func TestEnrollmentCache_LookAlikes(t *testing.T) {
	tests := []struct {
		name     string
		minIndex int
		active   bool
	}{
		{"exact scan", 0, false},
		{"hnsw index", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mock.NewMockEnrollmentStore()
			store.AddEnrollment("a", embedding(4, 1))
			store.AddEnrollment("b", embedding(4, 1, 0.3))
			store.AddEnrollment("c", embedding(4, 0, 0, 5))
			store.AddEnrollment("d", embedding(4, 1, 0, 0.2))

			cache := database.NewEnrollmentCache(store, tt.minIndex)
			near, err := cache.LookAlikes(context.Background(), embedding(4, 1), "a", 0.6)
			if err != nil {
				t.Fatalf("LookAlikes failed: %v", err)
			}
			if cache.IndexActive() != tt.active {
				t.Errorf("IndexActive = %v, want %v", cache.IndexActive(), tt.active)
			}

			want := []string{"d", "b"}
			if len(near) != len(want) {
				t.Fatalf("expected look-alikes %v, got %+v", want, near)
			}
			for i, id := range want {
				if near[i].StaffID != id {
					t.Errorf("look-alike %d = %s, want %s", i, near[i].StaffID, id)
				}
			}
			if math.Abs(near[0].Distance-0.2) > 1e-6 {
				t.Errorf("expected distance 0.2 to d, got %f", near[0].Distance)
			}
		})
	}
}

func TestEnrollmentCache_SnapshotIgnoresIndex(t *testing.T) {
	store := mock.NewMockEnrollmentStore()
	for i := 0; i < 20; i++ {
		store.AddEnrollment(string(rune('a'+i)), embedding(4, float32(i)))
	}

	cache := database.NewEnrollmentCache(store, 5)
	if _, err := cache.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if !cache.IndexActive() {
		t.Fatal("expected the index to be built above the threshold")
	}
	list, err := cache.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(list) != 20 {
		t.Errorf("snapshot must hold every enrollment, got %d", len(list))
	}
}

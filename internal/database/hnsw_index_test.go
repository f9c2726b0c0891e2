package database

import (
	"math"
	"testing"
)

func TestHNSWIndex_SearchEuclidean(t *testing.T) {
	idx := NewHNSWIndex()
	if _, _, err := idx.Search([]float32{0, 0}, 1); err == nil {
		t.Error("expected error searching an empty index")
	}

	idx.Build([]StoredEnrollment{
		{StaffID: "a", Embedding: []float32{0, 0}},
		{StaffID: "b", Embedding: []float32{3, 4}},
		{StaffID: "c", Embedding: []float32{10, 10}},
		{StaffID: "empty"},
	})
	all, _, err := idx.Search([]float32{0, 0}, 4)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, id := range all {
		if id == "empty" {
			t.Error("enrollments without an embedding must not be indexed")
		}
	}

	ids, dists, err := idx.Search([]float32{3, 4}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	foundB := false
	for i, id := range ids {
		switch id {
		case "b":
			foundB = true
			if dists[i] != 0 {
				t.Errorf("expected distance 0 to b, got %f", dists[i])
			}
		case "a":
			if math.Abs(dists[i]-5) > 1e-9 {
				t.Errorf("expected euclidean distance 5 to a, got %f", dists[i])
			}
		}
	}
	if !foundB {
		t.Fatalf("expected b among results, got %v", ids)
	}
}

package attendance

import (
	"errors"
	"testing"
	"time"
)

func lagosPolicy(t *testing.T) Policy {
	t.Helper()
	p, err := NewPolicy("08:00", 15, "Africa/Lagos")
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}
	return p
}

func TestPolicy_IsLate(t *testing.T) {
	p := lagosPolicy(t)
	lagos := p.Location

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"early", time.Date(2026, 3, 2, 7, 30, 0, 0, lagos), false},
		{"at work start", time.Date(2026, 3, 2, 8, 0, 0, 0, lagos), false},
		{"exactly at grace boundary", time.Date(2026, 3, 2, 8, 15, 0, 0, lagos), false},
		{"one second after boundary", time.Date(2026, 3, 2, 8, 15, 1, 0, lagos), true},
		{"one nanosecond after boundary", time.Date(2026, 3, 2, 8, 15, 0, 1, lagos), true},
		{"afternoon", time.Date(2026, 3, 2, 13, 0, 0, 0, lagos), true},
		// 07:10 UTC is 08:10 in Lagos
		{"utc input converted", time.Date(2026, 3, 2, 7, 10, 0, 0, time.UTC), false},
		// 07:16 UTC is 08:16 in Lagos
		{"utc input late", time.Date(2026, 3, 2, 7, 16, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsLate(tt.at); got != tt.want {
				t.Errorf("IsLate(%s) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestPolicy_ZeroGrace(t *testing.T) {
	p, err := NewPolicy("07:30", 0, "UTC")
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}
	if p.IsLate(time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)) {
		t.Error("07:30:00 must not be late with zero grace")
	}
	if !p.IsLate(time.Date(2026, 3, 2, 7, 31, 0, 0, time.UTC)) {
		t.Error("07:31 must be late with zero grace")
	}
}

func TestPolicy_Date(t *testing.T) {
	p := lagosPolicy(t)

	// 23:30 UTC on March 1st is 00:30 on March 2nd in Lagos.
	got := p.Date(time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC))
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Date() = %s, want %s", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("Date() must be expressed in UTC, got %s", got.Location())
	}
}

func TestNewPolicy_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		grace    int
		timezone string
	}{
		{"bad start", "8am", 15, "UTC"},
		{"hour out of range", "25:00", 15, "UTC"},
		{"negative grace", "08:00", -1, "UTC"},
		{"unknown zone", "08:00", 15, "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolicy(tt.start, tt.grace, tt.timezone)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPolicy_Settings(t *testing.T) {
	p, err := NewPolicy("07:45", 10, "Africa/Lagos")
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}
	s := p.Settings()
	if s.WorkStartTime != "07:45" || s.LateThresholdMinutes != 10 || s.Timezone != "Africa/Lagos" {
		t.Errorf("unexpected settings %+v", s)
	}
}

package facematch

import (
	"errors"
	"math"
	"testing"
)

func unitVector(dim, axis int) []float32 {
	v := make([]float32, dim)
	v[axis] = 1
	return v
}

func vec(dim int, head ...float32) []float32 {
	v := make([]float32, dim)
	copy(v, head)
	return v
}

func TestMatch_EndToEnd(t *testing.T) {
	m := NewMatcher(0.6, 0.6, 1e-6)
	candidates := []Candidate{
		{ID: "A", Embedding: unitVector(128, 0)},
		{ID: "B", Embedding: unitVector(128, 1)},
	}

	t.Run("close to A", func(t *testing.T) {
		res, err := m.Match(vec(128, 0.95, 0.05), candidates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Accepted || res.StaffID != "A" || res.Decision != DecisionAccepted {
			t.Fatalf("expected A accepted, got %+v", res)
		}
		if math.Abs(res.Distance-0.0707) > 0.001 {
			t.Errorf("expected distance ~0.0707, got %f", res.Distance)
		}
		if res.Score <= 0.8 || res.Score > 1 {
			t.Errorf("unexpected score %f", res.Score)
		}
		if res.Err() != nil {
			t.Errorf("expected nil Err(), got %v", res.Err())
		}
	})

	t.Run("halfway between A and B", func(t *testing.T) {
		res, err := m.Match(vec(128, 0.5, 0.5), candidates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Accepted || res.StaffID != "" {
			t.Fatalf("expected rejection, got %+v", res)
		}
		if res.Decision != DecisionNoMatch {
			t.Errorf("expected no_match (0.707 > 0.6), got %s", res.Decision)
		}
		if !errors.Is(res.Err(), ErrNoMatch) {
			t.Errorf("expected ErrNoMatch, got %v", res.Err())
		}
	})
}

func TestMatch_EmptyCandidates(t *testing.T) {
	m := NewMatcher(0, 0, 0)
	for _, probe := range [][]float32{vec(128, 1), vec(3, 0.2, 0.1)} {
		_, err := m.Match(probe, nil)
		if !errors.Is(err, ErrNoEnrollments) {
			t.Errorf("expected ErrNoEnrollments, got %v", err)
		}
	}
}

func TestMatch_InvalidInput(t *testing.T) {
	m := NewMatcher(0, 0, 0)
	good := []Candidate{{ID: "A", Embedding: vec(4, 1)}}

	tests := []struct {
		name       string
		probe      []float32
		candidates []Candidate
	}{
		{"empty probe", []float32{}, good},
		{"nil probe", nil, good},
		{"length mismatch", vec(3, 1), good},
		{"second candidate mismatched", vec(4, 1), []Candidate{
			{ID: "A", Embedding: vec(4, 1)},
			{ID: "B", Embedding: vec(5, 1)},
		}},
		{"NaN in probe", []float32{float32(math.NaN()), 0, 0, 0}, good},
		{"Inf in probe", []float32{float32(math.Inf(1)), 0, 0, 0}, good},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Match(tt.probe, tt.candidates)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestMatch_IdenticalVector(t *testing.T) {
	m := NewMatcher(0, 0, 0)
	e := vec(128, 0.1, -0.2, 0.3, 0.05)
	res, err := m.Match(e, []Candidate{
		{ID: "other", Embedding: vec(128, 0.4, 0.4)},
		{ID: "self", Embedding: e},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Distance != 0 {
		t.Errorf("expected distance 0, got %g", res.Distance)
	}
	if res.StaffID != "self" || !res.Accepted {
		t.Errorf("expected self accepted, got %+v", res)
	}
	if res.Score != 1 {
		t.Errorf("expected score 1, got %f", res.Score)
	}
}

func TestMatch_ThresholdBoundary(t *testing.T) {
	// 0.375 and 0.5 are exact in float32 and float64, so the distance to the
	// zero vector is exactly 0.625.
	probe := []float32{0.375, 0.5}
	candidates := []Candidate{{ID: "zero", Embedding: []float32{0, 0}}}

	t.Run("distance equal to threshold is accepted", func(t *testing.T) {
		res, err := NewMatcher(0.625, 0.6, 1e-6).Match(probe, candidates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Distance != 0.625 {
			t.Fatalf("expected exact distance 0.625, got %.17g", res.Distance)
		}
		if !res.Accepted {
			t.Errorf("expected acceptance at the threshold, got %+v", res)
		}
	})

	t.Run("distance just above threshold is rejected", func(t *testing.T) {
		threshold := math.Nextafter(0.625, 0)
		res, err := NewMatcher(threshold, 0.6, 1e-6).Match(probe, candidates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Accepted || res.Decision != DecisionNoMatch {
			t.Errorf("expected no_match just above threshold, got %+v", res)
		}
	})
}

func TestMatch_AmbiguousTie(t *testing.T) {
	m := NewMatcher(0.6, 0.6, 1e-6)
	// Probe is equidistant (0.5) from both enrollments.
	probe := []float32{0.5, 0}
	candidates := []Candidate{
		{ID: "A", Embedding: []float32{0, 0}},
		{ID: "B", Embedding: []float32{1, 0}},
	}

	res, err := m.Match(probe, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Decision != DecisionAmbiguous || res.Accepted || res.StaffID != "" {
		t.Errorf("expected ambiguous without a pick, got %+v", res)
	}
	if !errors.Is(res.Err(), ErrAmbiguousMatch) {
		t.Errorf("expected ErrAmbiguousMatch, got %v", res.Err())
	}

	// A clear gap is not a tie.
	res, err = m.Match([]float32{0.4, 0}, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StaffID != "A" || !res.Accepted {
		t.Errorf("expected A accepted, got %+v", res)
	}
}

func TestMatch_Deterministic(t *testing.T) {
	m := NewMatcher(0.6, 0.6, 1e-6)
	probe := vec(8, 0.3, 0.1, 0.2)
	forward := []Candidate{
		{ID: "c", Embedding: vec(8, 0.3, 0.1, 0.25)},
		{ID: "a", Embedding: vec(8, 0.9)},
		{ID: "b", Embedding: vec(8, 0.3, 0.2, 0.2)},
	}
	reversed := []Candidate{forward[2], forward[1], forward[0]}

	first, err := m.Match(probe, forward)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := m.Match(probe, forward)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
	other, err := m.Match(probe, reversed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other != first {
		t.Errorf("candidate order changed the result: %+v vs %+v", other, first)
	}
	if forward[0].ID != "c" {
		t.Error("Match must not reorder the caller's slice")
	}
}

func TestNewMatcher_Defaults(t *testing.T) {
	m := NewMatcher(-1, 0, 0)
	if m.Threshold != DefaultThreshold || m.ScoreScale != DefaultScoreScale || m.TieEpsilon != DefaultTieEpsilon {
		t.Errorf("expected defaults, got %+v", m)
	}
}

func TestEuclideanDistance(t *testing.T) {
	d, err := EuclideanDistance([]float32{0, 0}, []float32{3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 5 {
		t.Errorf("expected 5, got %f", d)
	}

	if _, err := EuclideanDistance([]float32{1}, []float32{1, 2}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		distance float64
		want     float64
	}{
		{0, 1},
		{0.3, 0.5},
		{0.6, 0},
		{1.2, 0},
	}
	for _, tt := range tests {
		if got := Score(tt.distance, 0.6); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Score(%f) = %f, want %f", tt.distance, got, tt.want)
		}
	}
}

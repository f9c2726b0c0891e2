package facematch

import (
	"fmt"
	"sort"
)

// Default matching policy for 128-dim face descriptors.
const (
	DefaultThreshold  = 0.6
	DefaultScoreScale = 0.6
	DefaultTieEpsilon = 1e-6
)

// Matcher compares a probe embedding against enrolled candidates.
// A Matcher holds only configuration and is safe for concurrent use.
type Matcher struct {
	Threshold  float64 // maximum accepted distance, inclusive
	ScoreScale float64 // display score normalisation
	TieEpsilon float64 // runner-up within this of the best makes the match ambiguous
}

// NewMatcher creates a Matcher. Non-positive values fall back to the defaults.
func NewMatcher(threshold, scoreScale, tieEpsilon float64) *Matcher {
	m := &Matcher{
		Threshold:  threshold,
		ScoreScale: scoreScale,
		TieEpsilon: tieEpsilon,
	}
	if m.Threshold <= 0 {
		m.Threshold = DefaultThreshold
	}
	if m.ScoreScale <= 0 {
		m.ScoreScale = DefaultScoreScale
	}
	if m.TieEpsilon <= 0 {
		m.TieEpsilon = DefaultTieEpsilon
	}
	return m
}

// Match returns the nearest candidate to probe and whether it is accepted.
//
// Candidates are scored in staff id order, so the result does not depend on the
// order the caller passes them in. A best distance above the threshold is a
// no_match result, not an error. When the runner-up is within TieEpsilon of the
// best and the best is within the threshold, nobody is picked.
func (m *Matcher) Match(probe []float32, candidates []Candidate) (MatchResult, error) {
	if len(probe) == 0 {
		return MatchResult{}, fmt.Errorf("%w: empty probe", ErrInvalidInput)
	}
	if !validVector(probe) {
		return MatchResult{}, fmt.Errorf("%w: probe contains NaN or Inf", ErrInvalidInput)
	}
	if len(candidates) == 0 {
		return MatchResult{}, ErrNoEnrollments
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	best, runnerUp := -1, -1
	var bestDist, runnerUpDist float64
	for i, c := range sorted {
		if len(c.Embedding) != len(probe) {
			return MatchResult{}, fmt.Errorf("%w: candidate %s has length %d, probe has %d",
				ErrInvalidInput, c.ID, len(c.Embedding), len(probe))
		}
		d, err := EuclideanDistance(probe, c.Embedding)
		if err != nil {
			return MatchResult{}, err
		}
		switch {
		case best < 0 || d < bestDist:
			runnerUp, runnerUpDist = best, bestDist
			best, bestDist = i, d
		case runnerUp < 0 || d < runnerUpDist:
			runnerUp, runnerUpDist = i, d
		}
	}

	result := MatchResult{
		Distance:   bestDist,
		Score:      Score(bestDist, m.ScoreScale),
		Candidates: len(sorted),
	}
	if runnerUp >= 0 {
		result.RunnerUpDistance = runnerUpDist
	}

	if bestDist > m.Threshold {
		result.Decision = DecisionNoMatch
		return result, nil
	}
	if runnerUp >= 0 && runnerUpDist-bestDist <= m.TieEpsilon {
		result.Decision = DecisionAmbiguous
		return result, nil
	}

	result.StaffID = sorted[best].ID
	result.Accepted = true
	result.Decision = DecisionAccepted
	return result, nil
}

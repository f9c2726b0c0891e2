// Package facematch decides which enrolled staff member, if any, a probe face embedding belongs to.
package facematch

// Decision is the outcome of matching one probe embedding.
type Decision string

const (
	DecisionAccepted  Decision = "accepted"  // Best candidate is within the threshold and unique
	DecisionNoMatch   Decision = "no_match"  // Best candidate is farther than the threshold
	DecisionAmbiguous Decision = "ambiguous" // Two candidates are tied within the threshold
)

// Candidate is one enrolled embedding to compare the probe against.
type Candidate struct {
	ID        string
	Embedding []float32
}

// MatchResult is the transient result of one match attempt.
// StaffID is only set when the match is accepted.
type MatchResult struct {
	StaffID          string   `json:"staff_id,omitempty"`
	Distance         float64  `json:"distance"`
	Score            float64  `json:"score"`
	Accepted         bool     `json:"accepted"`
	Decision         Decision `json:"decision"`
	RunnerUpDistance float64  `json:"runner_up_distance,omitempty"`
	Candidates       int      `json:"candidates"`
}

// Err returns the sentinel error for a rejected result, nil when accepted.
func (r MatchResult) Err() error {
	switch r.Decision {
	case DecisionAccepted:
		return nil
	case DecisionAmbiguous:
		return ErrAmbiguousMatch
	default:
		return ErrNoMatch
	}
}

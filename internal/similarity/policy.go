package similarity

// Class buckets a similarity score against policy thresholds.
type Class int

const (
	// Rejected scores are below the candidate threshold.
	Rejected Class = iota
	// Candidate scores clear the minimum threshold but are not exact.
	Candidate
	// Exact scores meet the exact-match threshold.
	Exact
)

// Policy holds the score thresholds used to classify candidates. Thresholds
// come from configuration; the scorer itself knows nothing about them.
type Policy struct {
	ExactThreshold     float64
	CandidateThreshold float64
}

// DefaultPolicy returns the standard thresholds: 1.0 exact, 0.6 candidate.
func DefaultPolicy() Policy {
	return Policy{ExactThreshold: 1.0, CandidateThreshold: 0.6}
}

// Classify buckets a score.
func (p Policy) Classify(score float64) Class {
	switch {
	case score >= p.ExactThreshold:
		return Exact
	case score >= p.CandidateThreshold:
		return Candidate
	default:
		return Rejected
	}
}

package scoring

import "fmt"

type Status string

const (
	StatusShortlisted  Status = "shortlisted"
	StatusUnderReview  Status = "under_review"
	StatusNotQualified Status = "not_qualified"
)

func (s Status) Valid() bool {
	switch s {
	case StatusShortlisted, StatusUnderReview, StatusNotQualified:
		return true
	}
	return false
}

// Thresholds split final scores into statuses.
type Thresholds struct {
	Shortlist float64 `json:"shortlist"`
	Reject    float64 `json:"reject"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Shortlist: 85, Reject: 50}
}

func (t Thresholds) Validate() error {
	if t.Reject > t.Shortlist {
		return fmt.Errorf("reject threshold %.2f above shortlist threshold %.2f", t.Reject, t.Shortlist)
	}
	return nil
}

// Classify: shortlisted at or above Shortlist, not qualified below Reject.
func (t Thresholds) Classify(score float64) Status {
	switch {
	case score >= t.Shortlist:
		return StatusShortlisted
	case score < t.Reject:
		return StatusNotQualified
	default:
		return StatusUnderReview
	}
}

// Cost converts consumed tokens into money at ratePer1K per thousand tokens.
func Cost(tokens int, ratePer1K float64) float64 {
	if tokens <= 0 {
		return 0
	}
	return float64(tokens) / 1000 * ratePer1K
}

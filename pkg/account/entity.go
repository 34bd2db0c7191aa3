package account

import (
	"time"

	"github.com/google/uuid"
)

// DefaultFreeTrial is the number of documents a new account may process for free.
const DefaultFreeTrial = 50

// Account holds the credit ledger of a user. Both counters are never negative.
type Account struct {
	UserID             uuid.UUID `json:"userId"`
	FreeTrialRemaining int       `json:"freeTrialRemaining"`
	PaidCredits        int       `json:"paidCredits"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Available is the number of documents the account can still pay for.
func (a Account) Available() int {
	return a.FreeTrialRemaining + a.PaidCredits
}

// Debit draws n credits from the free trial first, then from paid credits.
// Counters are clamped at zero; the returned value is what was actually charged.
func (a *Account) Debit(n int) (charged int) {
	if n <= 0 {
		return 0
	}
	fromFree := min(n, max(a.FreeTrialRemaining, 0))
	a.FreeTrialRemaining = max(a.FreeTrialRemaining-fromFree, 0)
	fromPaid := min(n-fromFree, max(a.PaidCredits, 0))
	a.PaidCredits = max(a.PaidCredits-fromPaid, 0)
	return fromFree + fromPaid
}

// UsageStats are per-user running totals, updated once per completed job.
type UsageStats struct {
	UserID          uuid.UUID `json:"userId"`
	TotalJobs       int       `json:"totalJobs"`
	TotalCandidates int       `json:"totalCandidates"`
	TotalTokens     int       `json:"totalTokens"`
	TotalCost       float64   `json:"totalCost"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Usage is the contribution of one completed job.
type Usage struct {
	Candidates int
	Tokens     int
	Cost       float64
}

// Add applies one completed job to the totals.
func (s *UsageStats) Add(u Usage, at time.Time) {
	s.TotalJobs++
	s.TotalCandidates += u.Candidates
	s.TotalTokens += u.Tokens
	s.TotalCost += u.Cost
	s.UpdatedAt = at
}

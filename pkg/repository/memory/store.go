// Package memory keeps jobs, accounts and usage in process memory. It backs the
// one-shot rank command and tests; state is lost on exit.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/shortlist/pkg/account"
	"github.com/artem13815/shortlist/pkg/job"
)

type Store struct {
	mu         sync.Mutex
	jobs       map[uuid.UUID]job.Job
	candidates map[uuid.UUID][]job.CandidateSummary
	accounts   map[uuid.UUID]account.Account
	usage      map[uuid.UUID]account.UsageStats
	freeTrial  int
	now        func() time.Time
}

var _ job.Store = (*Store)(nil)

// New returns an empty store. Accounts created by Ensure start with freeTrial credits.
func New(freeTrial int) *Store {
	if freeTrial < 0 {
		freeTrial = 0
	}
	return &Store{
		jobs:       make(map[uuid.UUID]job.Job),
		candidates: make(map[uuid.UUID][]job.CandidateSummary),
		accounts:   make(map[uuid.UUID]account.Account),
		usage:      make(map[uuid.UUID]account.UsageStats),
		freeTrial:  freeTrial,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetCredits overwrites the ledger of a user, creating the account if needed.
func (s *Store) SetCredits(userID uuid.UUID, freeTrial, paid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID]
	if !ok {
		a = account.Account{UserID: userID, CreatedAt: s.now()}
	}
	a.FreeTrialRemaining = max(freeTrial, 0)
	a.PaidCredits = max(paid, 0)
	s.accounts[userID] = a
}

func (s *Store) Create(_ context.Context, j job.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.ID]; ok {
		return fmt.Errorf("%w: job %s already exists", job.ErrPersistence, j.ID)
	}
	if j.Status == "" {
		j.Status = job.StatusQueued
	}
	s.jobs[j.ID] = j
	return nil
}

func (s *Store) Get(_ context.Context, userID, id uuid.UUID) (job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok || j.UserID != userID {
		return job.Job{}, job.ErrNotFound
	}
	return j, nil
}

func (s *Store) List(_ context.Context, userID uuid.UUID, limit, offset int) ([]job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]job.Job, 0)
	for _, j := range s.jobs {
		if j.UserID == userID {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].ID.String() < out[k].ID.String()
		}
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	if offset >= len(out) {
		return []job.Job{}, nil
	}
	out = out[max(offset, 0):]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkProcessing(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return job.ErrNotFound
	}
	if j.Status != job.StatusQueued {
		return fmt.Errorf("%w: %s -> %s", job.ErrInvalidTransition, j.Status, job.StatusProcessing)
	}
	j.Status = job.StatusProcessing
	j.UpdatedAt = s.now()
	s.jobs[id] = j
	return nil
}

func (s *Store) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return job.ErrNotFound
	}
	if j.Status.Terminal() {
		return fmt.Errorf("%w: %s -> %s", job.ErrInvalidTransition, j.Status, job.StatusFailed)
	}
	j.Status = job.StatusFailed
	j.Error = reason
	j.UpdatedAt = s.now()
	s.jobs[id] = j
	return nil
}

// Complete applies the whole completion under one lock, so readers never see a
// completed job without its summaries or usage.
func (s *Store) Complete(_ context.Context, c job.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[c.JobID]
	if !ok {
		return job.ErrNotFound
	}
	if j.Status != job.StatusProcessing {
		return fmt.Errorf("%w: %s -> %s", job.ErrInvalidTransition, j.Status, job.StatusCompleted)
	}
	at := c.CompletedAt
	if at.IsZero() {
		at = s.now()
	}

	a, ok := s.accounts[c.UserID]
	if !ok {
		a = account.Account{UserID: c.UserID, FreeTrialRemaining: s.freeTrial, CreatedAt: at}
	}
	a.Debit(c.Documents)
	s.accounts[c.UserID] = a

	stats := s.usage[c.UserID]
	stats.UserID = c.UserID
	stats.Add(account.Usage{Candidates: c.Documents, Tokens: c.TokensUsed, Cost: c.Cost}, at)
	s.usage[c.UserID] = stats

	s.candidates[c.JobID] = slices.Clone(c.Candidates)
	j.Status = job.StatusCompleted
	j.TokensUsed = c.TokensUsed
	j.Cost = c.Cost
	j.Error = ""
	j.UpdatedAt = at
	s.jobs[c.JobID] = j
	return nil
}

func (s *Store) Candidates(_ context.Context, userID, jobID uuid.UUID) ([]job.CandidateSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok || j.UserID != userID {
		return nil, job.ErrNotFound
	}
	out := slices.Clone(s.candidates[jobID])
	if out == nil {
		out = []job.CandidateSummary{}
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].Rank < out[k].Rank })
	return out, nil
}

// Accounts returns the credit ledger view of the store. It shares state with
// Complete, so debits are visible immediately.
func (s *Store) Accounts() *Accounts {
	return &Accounts{s: s}
}

type Accounts struct {
	s *Store
}

var _ account.Repository = (*Accounts)(nil)

func (a *Accounts) Get(_ context.Context, userID uuid.UUID) (account.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	acct, ok := a.s.accounts[userID]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return acct, nil
}

func (a *Accounts) Ensure(_ context.Context, userID uuid.UUID) (account.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	acct, ok := a.s.accounts[userID]
	if !ok {
		acct = account.Account{UserID: userID, FreeTrialRemaining: a.s.freeTrial, CreatedAt: a.s.now()}
		a.s.accounts[userID] = acct
	}
	return acct, nil
}

func (a *Accounts) Usage(_ context.Context, userID uuid.UUID) (account.UsageStats, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	stats, ok := a.s.usage[userID]
	if !ok {
		return account.UsageStats{UserID: userID}, nil
	}
	return stats, nil
}

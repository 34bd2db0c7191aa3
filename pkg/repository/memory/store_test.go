package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/shortlist/pkg/account"
	"github.com/artem13815/shortlist/pkg/job"
)

func newQueuedJob(t *testing.T, s *Store, userID uuid.UUID, created time.Time) job.Job {
	t.Helper()
	j := job.Job{ID: uuid.New(), UserID: userID, Title: "Go developer", Description: "go", Status: job.StatusQueued, CreatedAt: created}
	require.NoError(t, s.Create(context.Background(), j))
	return j
}

func TestStore_Transitions(t *testing.T) {
	ctx := context.Background()
	s := New(account.DefaultFreeTrial)
	user := uuid.New()
	j := newQueuedJob(t, s, user, time.Now())

	err := s.Complete(ctx, job.Completion{JobID: j.ID, UserID: user})
	assert.ErrorIs(t, err, job.ErrInvalidTransition)

	require.NoError(t, s.MarkProcessing(ctx, j.ID))
	assert.ErrorIs(t, s.MarkProcessing(ctx, j.ID), job.ErrInvalidTransition)

	require.NoError(t, s.MarkFailed(ctx, j.ID, "boom"))
	assert.ErrorIs(t, s.MarkFailed(ctx, j.ID, "again"), job.ErrInvalidTransition)

	got, err := s.Get(ctx, user, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)
}

func TestStore_GetIsScopedToOwner(t *testing.T) {
	s := New(0)
	j := newQueuedJob(t, s, uuid.New(), time.Now())

	_, err := s.Get(context.Background(), uuid.New(), j.ID)
	assert.ErrorIs(t, err, job.ErrNotFound)
	_, err = s.Candidates(context.Background(), uuid.New(), j.ID)
	assert.ErrorIs(t, err, job.ErrNotFound)
}

func TestStore_CompleteDebitsAndAddsUsage(t *testing.T) {
	ctx := context.Background()
	s := New(account.DefaultFreeTrial)
	user := uuid.New()
	s.SetCredits(user, 2, 5)
	j := newQueuedJob(t, s, user, time.Now())
	require.NoError(t, s.MarkProcessing(ctx, j.ID))

	summaries := []job.CandidateSummary{
		{ID: uuid.New(), JobID: j.ID, Rank: 2, MatchScore: 60},
		{ID: uuid.New(), JobID: j.ID, Rank: 1, MatchScore: 90},
	}
	require.NoError(t, s.Complete(ctx, job.Completion{
		JobID: j.ID, UserID: user, Candidates: summaries, Documents: 3, TokensUsed: 1500, Cost: 0.003,
	}))

	acct, err := s.Accounts().Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 0, acct.FreeTrialRemaining)
	assert.Equal(t, 4, acct.PaidCredits)

	stats, err := s.Accounts().Usage(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalJobs)
	assert.Equal(t, 3, stats.TotalCandidates)
	assert.Equal(t, 1500, stats.TotalTokens)
	assert.InDelta(t, 0.003, stats.TotalCost, 1e-9)

	got, err := s.Candidates(ctx, user, j.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Rank)

	done, err := s.Get(ctx, user, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, done.Status)
	assert.Equal(t, 1500, done.TokensUsed)
}

func TestStore_ListNewestFirstWithPaging(t *testing.T) {
	s := New(0)
	user := uuid.New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	first := newQueuedJob(t, s, user, base)
	second := newQueuedJob(t, s, user, base.Add(time.Hour))
	newQueuedJob(t, s, uuid.New(), base.Add(2*time.Hour))

	all, err := s.List(context.Background(), user, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	page, err := s.List(context.Background(), user, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	empty, err := s.List(context.Background(), user, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAccounts_EnsureAndMissing(t *testing.T) {
	ctx := context.Background()
	accts := New(account.DefaultFreeTrial).Accounts()
	user := uuid.New()

	_, err := accts.Get(ctx, user)
	assert.ErrorIs(t, err, account.ErrNotFound)

	a, err := accts.Ensure(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, account.DefaultFreeTrial, a.FreeTrialRemaining)

	stats, err := accts.Usage(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalJobs)
}

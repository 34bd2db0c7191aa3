package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/artem13815/shortlist/pkg/account"
	"github.com/artem13815/shortlist/pkg/job"
	repo "github.com/artem13815/shortlist/pkg/repository/postgres"
	"github.com/artem13815/shortlist/pkg/scoring"
	storage "github.com/artem13815/shortlist/pkg/storage/postgres"
)

// testPool connects to TEST_DATABASE_URL; the tests are skipped without it.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := storage.ConnectAndMigrate(ctx, dsn, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func queuedJob(userID uuid.UUID) job.Job {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return job.Job{
		ID: uuid.New(), UserID: userID, Title: "Go developer", Description: "go, postgresql",
		Status: job.StatusQueued, Documents: 2, CreatedAt: now, UpdatedAt: now,
	}
}

func TestJobRepository_Lifecycle(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	accounts := repo.NewAccountRepository(pool, 3)
	jobs := repo.NewJobRepository(pool)

	user := uuid.New()
	_, err := accounts.Ensure(ctx, user)
	require.NoError(t, err)

	j := queuedJob(user)
	require.NoError(t, jobs.Create(ctx, j))
	require.NoError(t, jobs.MarkProcessing(ctx, j.ID))
	assert.ErrorIs(t, jobs.MarkProcessing(ctx, j.ID), job.ErrInvalidTransition)

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, jobs.Complete(ctx, job.Completion{
		JobID:  j.ID,
		UserID: user,
		Candidates: []job.CandidateSummary{
			{ID: uuid.New(), JobID: j.ID, Rank: 1, FileName: "a.pdf", Name: "Jane Doe", Skills: []string{"go"},
				Education: "Master", MatchScore: 91.5, Status: scoring.StatusShortlisted, Reasoning: "ok", CreatedAt: now},
			{ID: uuid.New(), JobID: j.ID, Rank: 2, FileName: "b.pdf", Name: "John Roe",
				Education: "Not specified", MissingSkills: []string{"postgresql"}, MatchScore: 42,
				Status: scoring.StatusNotQualified, Reasoning: "weak", CreatedAt: now},
		},
		Documents:   5,
		TokensUsed:  1200,
		Cost:        0.0024,
		CompletedAt: now,
	}))

	got, err := jobs.Get(ctx, user, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, got.Status)
	assert.Equal(t, 1200, got.TokensUsed)
	assert.InDelta(t, 0.0024, got.Cost, 1e-9)

	cands, err := jobs.Candidates(ctx, user, j.ID)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, "Jane Doe", cands[0].Name)
	assert.Equal(t, []string{"postgresql"}, cands[1].MissingSkills)

	acct, err := accounts.Get(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, acct.FreeTrialRemaining)
	assert.Zero(t, acct.PaidCredits)

	stats, err := accounts.Usage(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalJobs)
	assert.Equal(t, 5, stats.TotalCandidates)

	err = jobs.Complete(ctx, job.Completion{JobID: j.ID, UserID: user})
	assert.ErrorIs(t, err, job.ErrInvalidTransition)
}

func TestJobRepository_ScopedToOwner(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	accounts := repo.NewAccountRepository(pool, account.DefaultFreeTrial)
	jobs := repo.NewJobRepository(pool)

	owner := uuid.New()
	_, err := accounts.Ensure(ctx, owner)
	require.NoError(t, err)
	j := queuedJob(owner)
	require.NoError(t, jobs.Create(ctx, j))

	_, err = jobs.Get(ctx, uuid.New(), j.ID)
	assert.ErrorIs(t, err, job.ErrNotFound)
	_, err = jobs.Candidates(ctx, uuid.New(), j.ID)
	assert.ErrorIs(t, err, job.ErrNotFound)

	list, err := jobs.List(ctx, owner, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, j.ID, list[0].ID)
}

func TestJobRepository_CreateForUnknownUser(t *testing.T) {
	pool := testPool(t)
	err := repo.NewJobRepository(pool).Create(context.Background(), queuedJob(uuid.New()))
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestAccountRepository_EnsureIsIdempotent(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	accounts := repo.NewAccountRepository(pool, account.DefaultFreeTrial)
	user := uuid.New()

	first, err := accounts.Ensure(ctx, user)
	require.NoError(t, err)
	second, err := accounts.Ensure(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, account.DefaultFreeTrial, first.FreeTrialRemaining)

	stats, err := accounts.Usage(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalJobs)
}

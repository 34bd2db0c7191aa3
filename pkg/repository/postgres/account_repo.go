package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/shortlist/pkg/account"
)

// AccountRepository implements account.Repository over the users and usage_stats tables.
type AccountRepository struct {
	pool      *pgxpool.Pool
	freeTrial int
}

var _ account.Repository = (*AccountRepository)(nil)

func NewAccountRepository(pool *pgxpool.Pool, freeTrial int) *AccountRepository {
	return &AccountRepository{pool: pool, freeTrial: max(freeTrial, 0)}
}

func (r *AccountRepository) Get(ctx context.Context, userID uuid.UUID) (account.Account, error) {
	a := account.Account{UserID: userID}
	err := r.pool.QueryRow(ctx, `
		SELECT free_trial_remaining, paid_credits, created_at FROM users WHERE id = $1
	`, userID).Scan(&a.FreeTrialRemaining, &a.PaidCredits, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, mapError("select account", err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

func (r *AccountRepository) Ensure(ctx context.Context, userID uuid.UUID) (account.Account, error) {
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, free_trial_remaining, paid_credits, created_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (id) DO NOTHING
	`, userID, r.freeTrial); err != nil {
		return account.Account{}, mapError("insert account", err)
	}
	return r.Get(ctx, userID)
}

func (r *AccountRepository) Usage(ctx context.Context, userID uuid.UUID) (account.UsageStats, error) {
	s := account.UsageStats{UserID: userID}
	err := r.pool.QueryRow(ctx, `
		SELECT total_jobs, total_candidates, total_tokens, total_cost, updated_at
		FROM usage_stats WHERE user_id = $1
	`, userID).Scan(&s.TotalJobs, &s.TotalCandidates, &s.TotalTokens, &s.TotalCost, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.UsageStats{UserID: userID}, nil
		}
		return account.UsageStats{}, mapError("select usage", err)
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

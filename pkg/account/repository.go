package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("account not found")

// Repository reads credit ledgers and usage totals. Mutations happen only
// inside job completion, see job.Store.
type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (Account, error)
	// Ensure creates the account with the default free trial when it does not exist.
	Ensure(ctx context.Context, userID uuid.UUID) (Account, error)
	// Usage returns zero totals for users without completed jobs.
	Usage(ctx context.Context, userID uuid.UUID) (UsageStats, error)
}

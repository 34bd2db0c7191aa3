package checkers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pingTimeout = time.Second

var errSchemaMissing = errors.New("schema is not migrated")

// PostgresChecker pings the pool and makes sure the jobs table exists, so a
// database that was never migrated is reported as not ready.
type PostgresChecker struct {
	pool *pgxpool.Pool
}

func NewPostgresChecker(pool *pgxpool.Pool) *PostgresChecker {
	return &PostgresChecker{pool: pool}
}

func (c *PostgresChecker) Name() string { return "postgres" }

func (c *PostgresChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.pool.Ping(ctx); err != nil {
		return err
	}
	var migrated bool
	if err := c.pool.QueryRow(ctx, `SELECT to_regclass('public.jobs') IS NOT NULL`).Scan(&migrated); err != nil {
		return fmt.Errorf("check schema: %w", err)
	}
	if !migrated {
		return errSchemaMissing
	}
	return nil
}

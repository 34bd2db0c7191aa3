package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/artem13815/shortlist/pkg/account"
	"github.com/artem13815/shortlist/pkg/job"
)

// mapError translates driver errors into domain errors; op names the failed step.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, account.ErrNotFound)
		case pgerrcode.UniqueViolation, pgerrcode.CheckViolation, pgerrcode.NotNullViolation,
			pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return fmt.Errorf("%w: %s: %s (%s)", job.ErrPersistence, op, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("%w: %s: %w", job.ErrPersistence, op, err)
}

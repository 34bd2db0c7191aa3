package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/artem13815/shortlist/pkg/account"
	"github.com/artem13815/shortlist/pkg/job"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("noop", nil))

	err := mapError("insert job", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
	assert.ErrorIs(t, err, account.ErrNotFound)

	err = mapError("insert job", &pgconn.PgError{Code: pgerrcode.UniqueViolation, Message: "duplicate key"})
	assert.ErrorIs(t, err, job.ErrPersistence)
	assert.Contains(t, err.Error(), "duplicate key")

	cause := errors.New("connection reset")
	err = mapError("select job", cause)
	assert.ErrorIs(t, err, job.ErrPersistence)
	assert.ErrorIs(t, err, cause)
}

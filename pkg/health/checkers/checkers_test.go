package checkers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artem13815/shortlist/pkg/embedding"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestPingChecker_AppliesTimeout(t *testing.T) {
	c := NewPingChecker("amqp", pingFunc(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	}))
	assert.Equal(t, "amqp", c.Name())
	assert.NoError(t, c.Check(context.Background()))
}

func TestModelChecker(t *testing.T) {
	broken := embedding.NewLazy(func() (embedding.Embedder, error) { return nil, errors.New("no weights") })
	err := NewModelChecker(broken).Check(context.Background())
	assert.ErrorIs(t, err, embedding.ErrModelUnavailable)

	ok := embedding.NewLazy(func() (embedding.Embedder, error) { return embedding.NewHashingModel(32) })
	assert.NoError(t, NewModelChecker(ok).Check(context.Background()))
}

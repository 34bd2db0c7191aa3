package checkers

import (
	"context"
)

// Pinger is anything with a cheap liveness probe, e.g. the AMQP client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingChecker struct {
	name string
	p    Pinger
}

func NewPingChecker(name string, p Pinger) *PingChecker {
	return &PingChecker{name: name, p: p}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.p.Ping(ctx)
}

// Loader is a lazily constructed model, see embedding.Lazy.
type Loader interface {
	Load() error
}

// ModelChecker fails while the embedding model cannot be constructed.
type ModelChecker struct {
	l Loader
}

func NewModelChecker(l Loader) *ModelChecker {
	return &ModelChecker{l: l}
}

func (c *ModelChecker) Name() string { return "embedding_model" }

func (c *ModelChecker) Check(context.Context) error {
	return c.l.Load()
}

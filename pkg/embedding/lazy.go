package embedding

import (
	"context"
	"fmt"
	"sync"
)

// Lazy defers model construction to first use and shares the result.
// A failed construction is remembered: every later call reports ErrModelUnavailable.
type Lazy struct {
	load func() (Embedder, error)
}

func NewLazy(init func() (Embedder, error)) *Lazy {
	return &Lazy{load: sync.OnceValues(func() (Embedder, error) {
		e, err := init()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
		if e == nil {
			return nil, fmt.Errorf("%w: constructor returned no model", ErrModelUnavailable)
		}
		return e, nil
	})}
}

// Load forces initialization, e.g. at process start.
func (l *Lazy) Load() error {
	_, err := l.load()
	return err
}

func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	e, err := l.load()
	if err != nil {
		return nil, err
	}
	return e.Embed(ctx, text)
}

func (l *Lazy) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	e, err := l.load()
	if err != nil {
		return nil, err
	}
	return e.EmbedMany(ctx, texts)
}

// Dimension is 0 when the model failed to load.
func (l *Lazy) Dimension() int {
	e, err := l.load()
	if err != nil {
		return 0
	}
	return e.Dimension()
}

func (l *Lazy) MaxInputTokens() int {
	e, err := l.load()
	if err != nil {
		return 0
	}
	return e.MaxInputTokens()
}

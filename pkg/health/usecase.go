package health

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotReady = errors.New("service not ready")

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	Ready(ctx context.Context) error
	// Report runs every checker and returns a status per component name.
	Report(ctx context.Context) (map[string]string, error)
}

const statusOK = "ok"

type service struct {
	checkers []Checker
}

// NewService aggregates dependency checkers. Nil checkers are skipped.
func NewService(checkers ...Checker) ReadinessUseCase {
	s := &service{}
	for _, ch := range checkers {
		if ch != nil {
			s.checkers = append(s.checkers, ch)
		}
	}
	return s
}

// Ready stops at the first failing dependency.
func (s *service) Ready(ctx context.Context) error {
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrNotReady, ch.Name(), err)
		}
	}
	return nil
}

// Report returns ErrNotReady when any component is down; the map holds the
// error text of each failing component and "ok" for the rest.
func (s *service) Report(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(s.checkers))
	var failed []string
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			out[ch.Name()] = err.Error()
			failed = append(failed, ch.Name())
			continue
		}
		out[ch.Name()] = statusOK
	}
	if len(failed) > 0 {
		return out, fmt.Errorf("%w: %s", ErrNotReady, strings.Join(failed, ", "))
	}
	return out, nil
}

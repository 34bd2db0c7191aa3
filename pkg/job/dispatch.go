package job

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/artem13815/shortlist/pkg/logger"
)

var ErrDispatcherClosed = errors.New("dispatcher is shut down")

// Runner executes dispatched tasks. Abort is used for tasks that will never run.
type Runner interface {
	Run(ctx context.Context, t Task) error
	Abort(ctx context.Context, t Task, reason error)
}

// LocalDispatcher runs jobs as background goroutines of this process, at most
// `concurrency` at a time. Jobs that started are not canceled by shutdown.
type LocalDispatcher struct {
	base   context.Context
	runner Runner
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	log    *zap.Logger
}

// NewLocalDispatcher binds the dispatcher to base: once base is done, waiting
// tasks are aborted instead of started.
func NewLocalDispatcher(base context.Context, runner Runner, concurrency int, log *zap.Logger) *LocalDispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &LocalDispatcher{
		base:   base,
		runner: runner,
		sem:    semaphore.NewWeighted(int64(concurrency)),
		log:    logger.WithFields(log),
	}
}

func (d *LocalDispatcher) Dispatch(_ context.Context, t Task) error {
	if err := d.base.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDispatcherClosed, err)
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.sem.Acquire(d.base, 1); err != nil {
			d.runner.Abort(context.WithoutCancel(d.base), t, fmt.Errorf("%w: %v", ErrDispatcherClosed, err))
			return
		}
		defer d.sem.Release(1)
		if err := d.runner.Run(context.WithoutCancel(d.base), t); err != nil {
			d.log.Debug("job run returned error", zap.String(logger.FieldJobID, t.JobID.String()), zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until every dispatched task has finished or been aborted.
func (d *LocalDispatcher) Wait() {
	d.wg.Wait()
}

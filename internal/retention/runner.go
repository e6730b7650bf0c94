package retention

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/registra-app/registra-backend/pkg/logger"
)

// ErrRunInProgress is returned when a retention cycle is requested while
// another one holds the run lock.
var ErrRunInProgress = errors.New("a retention run is already in progress")

// RunnerParams configure the retention runner.
type RunnerParams struct {
	Logger   *logger.Logger
	Lock     Lock
	Enforcer *Enforcer
	Purger   *Purger
}

// Runner executes one retention cycle, expiry enforcement then purge,
// behind the shared run lock. Both the nightly scheduler and the manual
// admin trigger go through here.
type Runner struct {
	logg     *logger.Logger
	lock     Lock
	enforcer *Enforcer
	purger   *Purger
	now      func() time.Time
}

// NewRunner builds a retention runner.
func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	if params.Enforcer == nil {
		return nil, fmt.Errorf("enforcer required")
	}
	if params.Purger == nil {
		return nil, fmt.Errorf("purger required")
	}
	return &Runner{
		logg:     params.Logger,
		lock:     params.Lock,
		enforcer: params.Enforcer,
		purger:   params.Purger,
		now:      time.Now,
	}, nil
}

// RunCycle runs enforcement then purge sequentially under the lock.
// ErrRunInProgress means another cycle is mid-flight; the caller decides
// whether that is a skip (scheduler) or a conflict (manual trigger).
func (r *Runner) RunCycle(ctx context.Context) (Result, error) {
	locked, err := r.lock.Acquire(ctx)
	if err != nil {
		return Result{Stage: StageError}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return Result{Stage: StageNone}, ErrRunInProgress
	}
	defer func() {
		if relErr := r.lock.Release(ctx); relErr != nil {
			r.logg.Error(ctx, "failed to release retention lock", relErr)
		}
	}()

	now := r.now()
	if err := r.enforcer.Run(ctx, now); err != nil {
		return Result{Stage: StageError}, fmt.Errorf("expiry enforcement: %w", err)
	}
	result, err := r.purger.Run(ctx, now)
	if err != nil {
		return result, fmt.Errorf("purge: %w", err)
	}
	return result, nil
}

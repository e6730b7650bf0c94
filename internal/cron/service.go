// Package cron schedules the nightly retention work. The loop is the only
// writer-side driver in the process; manual admin triggers go through the
// same retention runner and its lock, not through this package.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/registra-app/registra-backend/pkg/logger"
	"github.com/registra-app/registra-backend/pkg/metrics"
)

const (
	defaultRunAtHour    = 2
	defaultInterval     = 24 * time.Hour
	defaultStartupDelay = 10 * time.Second
)

// Job represents a scheduled task run on every cycle.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// ServiceParams configure the scheduler.
type ServiceParams struct {
	Logger       *logger.Logger
	Jobs         []Job
	Metrics      *metrics.CronJobMetrics
	RunAtHour    int           // local hour of the daily run
	Interval     time.Duration // cadence after the first aligned run
	StartupDelay time.Duration // one-shot catch-up after process start
}

// Service runs its jobs once shortly after startup (catch-up for machines
// that slept through the last window), then daily at the configured hour.
// Job failures are logged and never stop the loop.
type Service struct {
	logg         *logger.Logger
	jobs         []Job
	metrics      *metrics.CronJobMetrics
	runAtHour    int
	interval     time.Duration
	startupDelay time.Duration
	now          func() time.Time
}

// NewService builds the scheduler.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(params.Jobs) == 0 {
		return nil, fmt.Errorf("at least one job required")
	}
	runAtHour := params.RunAtHour
	if runAtHour < 0 || runAtHour > 23 {
		runAtHour = defaultRunAtHour
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	startupDelay := params.StartupDelay
	if startupDelay <= 0 {
		startupDelay = defaultStartupDelay
	}
	return &Service{
		logg:         params.Logger,
		jobs:         params.Jobs,
		metrics:      params.Metrics,
		runAtHour:    runAtHour,
		interval:     interval,
		startupDelay: startupDelay,
		now:          time.Now,
	}, nil
}

// Run drives the schedule until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	catchup := time.NewTimer(s.startupDelay)
	defer catchup.Stop()
	aligned := time.NewTimer(untilNextHour(s.now(), s.runAtHour))
	defer aligned.Stop()

	var ticker *time.Ticker
	var tick <-chan time.Time
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service context canceled")
			return ctx.Err()
		case <-catchup.C:
			s.runCycle(s.logg.WithField(ctx, "trigger", "startup-catchup"))
		case <-aligned.C:
			s.runCycle(s.logg.WithField(ctx, "trigger", "scheduled"))
			ticker = time.NewTicker(s.interval)
			tick = ticker.C
		case <-tick:
			s.runCycle(s.logg.WithField(ctx, "trigger", "scheduled"))
		}
	}
}

func (s *Service) runCycle(ctx context.Context) {
	s.logg.Info(ctx, "scheduled run starting")
	for _, job := range s.jobs {
		s.runJob(ctx, job)
	}
	s.logg.Info(ctx, "scheduled run complete")
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithJob(ctx, job.Name())
	s.logg.Info(jobCtx, "job start")
	start := s.now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.observeDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.recordFailure(job.Name())
		return
	}
	s.logg.Info(jobCtx, "job completed")
	s.recordSuccess(job.Name())
}

// untilNextHour computes the wait until the next local occurrence of hour.
func untilNextHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func (s *Service) observeDuration(job string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(job, duration)
}

func (s *Service) recordSuccess(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncSuccess(job)
}

func (s *Service) recordFailure(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncFailure(job)
}

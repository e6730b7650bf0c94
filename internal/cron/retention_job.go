package cron

import (
	"context"
	"errors"
	"fmt"

	"github.com/registra-app/registra-backend/internal/retention"
	"github.com/registra-app/registra-backend/pkg/logger"
)

// cycleRunner is the slice of the retention runner the job needs.
type cycleRunner interface {
	RunCycle(ctx context.Context) (retention.Result, error)
}

// RetentionJobParams configure the retention cron job.
type RetentionJobParams struct {
	Logger *logger.Logger
	Runner cycleRunner
}

// NewRetentionJob wraps the retention runner as a scheduled job. A cycle
// already in flight (a manual purge, typically) is a skip, not a failure.
func NewRetentionJob(params RetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Runner == nil {
		return nil, fmt.Errorf("retention runner required")
	}
	return &retentionJob{logg: params.Logger, runner: params.Runner}, nil
}

type retentionJob struct {
	logg   *logger.Logger
	runner cycleRunner
}

func (j *retentionJob) Name() string { return "license-retention" }

func (j *retentionJob) Run(ctx context.Context) error {
	result, err := j.runner.RunCycle(ctx)
	if errors.Is(err, retention.ErrRunInProgress) {
		j.logg.Info(ctx, "retention run already in progress; skipping this cycle")
		return nil
	}
	if err != nil {
		return err
	}
	ctx = j.logg.WithFields(ctx, map[string]any{
		"stage":   string(result.Stage),
		"deleted": result.Deleted,
	})
	j.logg.Info(ctx, "retention cycle finished")
	return nil
}

package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/registra-app/registra-backend/internal/retention"
)

type fakeCycleRunner struct {
	result retention.Result
	err    error
	calls  int
}

func (f *fakeCycleRunner) RunCycle(ctx context.Context) (retention.Result, error) {
	f.calls++
	return f.result, f.err
}

func TestRetentionJob_reportsRunnerResult(t *testing.T) {
	runner := &fakeCycleRunner{result: retention.Result{Deleted: 4, Stage: retention.StageRolling}}
	job, err := NewRetentionJob(RetentionJobParams{Logger: testLogger(), Runner: runner})
	if err != nil {
		t.Fatalf("NewRetentionJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if runner.calls != 1 {
		t.Fatalf("calls = %d, want 1", runner.calls)
	}
}

func TestRetentionJob_inFlightCycleIsASkip(t *testing.T) {
	runner := &fakeCycleRunner{err: retention.ErrRunInProgress}
	job, err := NewRetentionJob(RetentionJobParams{Logger: testLogger(), Runner: runner})
	if err != nil {
		t.Fatalf("NewRetentionJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("an in-flight cycle must not be a job failure: %v", err)
	}
}

func TestRetentionJob_propagatesFailures(t *testing.T) {
	wantErr := errors.New("storage failure")
	runner := &fakeCycleRunner{result: retention.Result{Stage: retention.StageError}, err: wantErr}
	job, err := NewRetentionJob(RetentionJobParams{Logger: testLogger(), Runner: runner})
	if err != nil {
		t.Fatalf("NewRetentionJob: %v", err)
	}
	if err := job.Run(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want the runner failure", err)
	}
}

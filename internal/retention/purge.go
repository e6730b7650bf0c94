package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/registra-app/registra-backend/pkg/db/models"
	"github.com/registra-app/registra-backend/pkg/logger"
	"github.com/registra-app/registra-backend/pkg/metrics"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const (
	// The first purge runs three calendar months after activation; the
	// month add follows Go's date normalization for short months.
	initialPurgeMonths = 3
	// After the first purge, inactive students are kept for 14 days.
	rollingDwell = 14 * 24 * time.Hour
)

// Stage labels what a purge invocation did.
type Stage string

const (
	StageNone      Stage = "none"
	StagePreWindow Stage = "pre-window"
	StageInitial   Stage = "initial"
	StageRolling   Stage = "rolling"
	StageError     Stage = "error"
)

// Result reports one purge invocation.
type Result struct {
	Deleted int64
	Stage   Stage
}

type studentPurgeStore interface {
	ListInactiveWithTx(tx *gorm.DB) ([]models.Student, error)
	ListInactiveBeforeWithTx(tx *gorm.DB, cutoff time.Time) ([]models.Student, error)
	DeleteInactiveByIDsWithTx(tx *gorm.DB, ids []int64, cutoff *time.Time) (int64, error)
	ExistingIDsWithTx(tx *gorm.DB, ids []int64) ([]int64, error)
}

type fileRemover interface {
	Remove(storedPath string) error
}

// PurgerParams configure the purge engine.
type PurgerParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Licenses licenseStore
	Students studentPurgeStore
	Files    fileRemover
	Metrics  *metrics.CronJobMetrics
}

// Purger deletes inactive students in two stages keyed off the activation
// instant: a one-time amnesty purge of everything inactive at the three-month
// mark, then a rolling purge of students inactive for at least the dwell
// time. Attachments are unlinked after the rows commit; unlink failures are
// logged and never undo a deletion.
type Purger struct {
	logg     *logger.Logger
	db       txRunner
	licenses licenseStore
	students studentPurgeStore
	files    fileRemover
	metrics  *metrics.CronJobMetrics
}

// NewPurger builds a purge engine.
func NewPurger(params PurgerParams) (*Purger, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Licenses == nil {
		return nil, fmt.Errorf("license store required")
	}
	if params.Students == nil {
		return nil, fmt.Errorf("student repository required")
	}
	if params.Files == nil {
		return nil, fmt.Errorf("file store required")
	}
	return &Purger{
		logg:     params.Logger,
		db:       params.DB,
		licenses: params.Licenses,
		students: params.Students,
		files:    params.Files,
		metrics:  params.Metrics,
	}, nil
}

// Run executes one purge invocation against now. Errors are returned together
// with a StageError result so the scheduler can log and keep ticking.
func (p *Purger) Run(ctx context.Context, now time.Time) (Result, error) {
	record, err := p.licenses.Get(ctx)
	if err != nil {
		return Result{Stage: StageError}, fmt.Errorf("load license: %w", err)
	}
	if record == nil || record.ActivatedAt == nil {
		return Result{Stage: StageNone}, nil
	}

	initialDue := record.ActivatedAt.AddDate(0, initialPurgeMonths, 0)
	if now.Before(initialDue) {
		return Result{Stage: StagePreWindow}, nil
	}

	stage := StageRolling
	var cutoff *time.Time
	if record.InitialPurgeAt == nil {
		// First purge of this activation window: amnesty cutoff, every
		// inactive student goes regardless of dwell time.
		stage = StageInitial
	} else {
		c := now.Add(-rollingDwell)
		cutoff = &c
	}

	var victims []models.Student
	var deleted int64
	survivors := map[int64]struct{}{}
	err = p.db.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		if stage == StageInitial {
			victims, txErr = p.students.ListInactiveWithTx(tx)
		} else {
			victims, txErr = p.students.ListInactiveBeforeWithTx(tx, *cutoff)
		}
		if txErr != nil {
			return fmt.Errorf("list purge candidates: %w", txErr)
		}

		ids := make([]int64, 0, len(victims))
		for _, victim := range victims {
			ids = append(ids, victim.ID)
		}

		// The DELETE re-checks the retention criteria so a student the
		// CRUD layer reactivates mid-run is skipped, not purged.
		n, txErr := p.students.DeleteInactiveByIDsWithTx(tx, ids, cutoff)
		if txErr != nil {
			return fmt.Errorf("delete students: %w", txErr)
		}
		deleted = n
		if n != int64(len(ids)) {
			remaining, txErr := p.students.ExistingIDsWithTx(tx, ids)
			if txErr != nil {
				return fmt.Errorf("reconcile purge survivors: %w", txErr)
			}
			for _, id := range remaining {
				survivors[id] = struct{}{}
			}
		}
		if stage == StageInitial {
			if txErr := p.licenses.MarkInitialPurgeDoneWithTx(tx, now); txErr != nil {
				return fmt.Errorf("mark initial purge done: %w", txErr)
			}
		}
		return nil
	})
	if err != nil {
		return Result{Stage: StageError}, err
	}

	p.releaseAttachments(ctx, victims, survivors)

	if p.metrics != nil && deleted > 0 {
		p.metrics.AddPurged(string(stage), deleted)
	}
	ctx = p.logg.WithFields(ctx, map[string]any{"stage": string(stage), "deleted": deleted})
	p.logg.Info(ctx, "purge completed")
	return Result{Deleted: deleted, Stage: stage}, nil
}

// releaseAttachments unlinks the deleted students' photos, skipping any
// candidate the DELETE re-check spared. The rows are already gone; a failed
// unlink leaves an orphan file, never a half-deleted record.
func (p *Purger) releaseAttachments(ctx context.Context, victims []models.Student, survivors map[int64]struct{}) {
	var errs error
	for _, victim := range victims {
		if _, kept := survivors[victim.ID]; kept {
			continue
		}
		if victim.PhotoPath == nil || *victim.PhotoPath == "" {
			continue
		}
		if err := p.files.Remove(*victim.PhotoPath); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("student %d: %w", victim.ID, err))
		}
	}
	if errs != nil {
		p.logg.Warn(ctx, fmt.Sprintf("failed to unlink %d attachment(s): %v", len(multierr.Errors(errs)), errs))
	}
}

// Package retention applies the time-driven consequences of the license
// lifecycle: the one-shot expiry side effect and the two-stage purge of
// inactive students.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/registra-app/registra-backend/pkg/db/models"
	"github.com/registra-app/registra-backend/pkg/logger"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type licenseStore interface {
	Get(ctx context.Context) (*models.License, error)
	MarkExpiredWithTx(tx *gorm.DB, now time.Time) error
	MarkInitialPurgeDoneWithTx(tx *gorm.DB, now time.Time) error
}

type studentDeactivator interface {
	DeactivateAllActiveWithTx(tx *gorm.DB, now time.Time) (int64, error)
}

// EnforcerParams configure the expiry enforcer.
type EnforcerParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Licenses licenseStore
	Students studentDeactivator
}

// Enforcer applies the expiry side effect at most once per activation
// window: when the stored license has crossed its expiry instant, every
// active student is deactivated and the license is stamped expired, all in
// one transaction.
type Enforcer struct {
	logg     *logger.Logger
	db       txRunner
	licenses licenseStore
	students studentDeactivator
}

// NewEnforcer builds an expiry enforcer.
func NewEnforcer(params EnforcerParams) (*Enforcer, error) {
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
	return &Enforcer{
		logg:     params.Logger,
		db:       params.DB,
		licenses: params.Licenses,
		students: params.Students,
	}, nil
}

// Run checks the stored license against now and applies the expiry side
// effect if it is due and not yet applied. Any storage error aborts the run;
// the next tick retries safely because the applied marker only commits with
// the deactivations.
func (e *Enforcer) Run(ctx context.Context, now time.Time) error {
	record, err := e.licenses.Get(ctx)
	if err != nil {
		return fmt.Errorf("load license: %w", err)
	}
	if record == nil || record.ExpiresAt == nil {
		return nil
	}
	if now.Before(*record.ExpiresAt) {
		return nil
	}
	if record.ExpiredAppliedAt != nil {
		// Already applied this activation window. Students manually
		// reactivated since then stay active.
		return nil
	}

	var deactivated int64
	err = e.db.WithTx(ctx, func(tx *gorm.DB) error {
		n, txErr := e.students.DeactivateAllActiveWithTx(tx, now)
		if txErr != nil {
			return fmt.Errorf("deactivate students: %w", txErr)
		}
		deactivated = n
		if txErr := e.licenses.MarkExpiredWithTx(tx, now); txErr != nil {
			return fmt.Errorf("mark license expired: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	ctx = e.logg.WithFields(ctx, map[string]any{
		"deactivated": deactivated,
		"expires_at":  record.ExpiresAt,
	})
	e.logg.Info(ctx, "license expiry applied")
	return nil
}

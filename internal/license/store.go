package license

import (
	"context"
	"errors"
	"time"

	"github.com/registra-app/registra-backend/pkg/db/models"
	"github.com/registra-app/registra-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store owns the singleton license row. No other component writes its fields.
type Store struct {
	db *gorm.DB
}

// NewStore binds a GORM DB to license persistence.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get loads the license record, returning (nil, nil) when none is stored.
func (s *Store) Get(ctx context.Context) (*models.License, error) {
	var record models.License
	err := s.db.WithContext(ctx).Where("id = ?", models.LicenseID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Activate upserts the singleton row from an accepted grant. The purge and
// expiry markers are cleared unconditionally so bookkeeping from a prior
// activation window can never leak into the new one.
func (s *Store) Activate(ctx context.Context, licenseKey string, grant *Grant, now time.Time) (*models.License, error) {
	expiresAt := grant.ExpiresAt
	record := models.License{
		ID:               models.LicenseID,
		LicenseKey:       licenseKey,
		Status:           enums.LicenseStatusActive,
		IssuedTo:         grant.IssuedTo,
		SchoolCode:       grant.SchoolCode,
		ExpiresAt:        &expiresAt,
		ActivatedAt:      &now,
		InitialPurgeAt:   nil,
		ExpiredAppliedAt: nil,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"license_key":        record.LicenseKey,
				"status":             record.Status,
				"issued_to":          record.IssuedTo,
				"school_code":        record.SchoolCode,
				"expires_at":         record.ExpiresAt,
				"activated_at":       record.ActivatedAt,
				"initial_purge_at":   nil,
				"expired_applied_at": nil,
				"updated_at":         now,
			}),
		}).
		Create(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Deactivate removes the singleton row; a subsequent Get returns missing.
func (s *Store) Deactivate(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Where("id = ?", models.LicenseID).
		Delete(&models.License{}).Error
}

// MarkExpiredWithTx flips the license to expired and stamps the one-shot
// marker, inside the caller's transaction so the flip commits together with
// the student deactivations it gates.
func (s *Store) MarkExpiredWithTx(tx *gorm.DB, now time.Time) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Model(&models.License{}).
		Where("id = ?", models.LicenseID).
		Updates(map[string]any{
			"status":             enums.LicenseStatusExpired,
			"expired_applied_at": now,
		}).Error
}

// MarkInitialPurgeDoneWithTx stamps the first-purge marker inside the purge
// transaction so it commits together with the deletions it accounts for.
func (s *Store) MarkInitialPurgeDoneWithTx(tx *gorm.DB, now time.Time) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Model(&models.License{}).
		Where("id = ?", models.LicenseID).
		Update("initial_purge_at", now).Error
}

package students

import (
	"time"

	"github.com/registra-app/registra-backend/pkg/db/models"
	"github.com/registra-app/registra-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository covers the slice of the student table the retention core is
// allowed to touch: status/inactive_at flips and permanent deletion. The
// registration CRUD layer owns everything else. Every operation runs inside
// a caller-owned transaction so listing and deletion see the same rows.
type Repository struct{}

// NewRepository builds the student retention repository.
func NewRepository() *Repository {
	return &Repository{}
}

// DeactivateAllActiveWithTx flips every active student to inactive. An
// already-set inactive_at is preserved so a retried run never rewrites the
// timestamps the first pass established.
func (r *Repository) DeactivateAllActiveWithTx(tx *gorm.DB, now time.Time) (int64, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	result := tx.Model(&models.Student{}).
		Where("status = ?", enums.StudentStatusActive).
		Updates(map[string]any{
			"status":      enums.StudentStatusInactive,
			"inactive_at": gorm.Expr("COALESCE(inactive_at, ?)", now),
		})
	return result.RowsAffected, result.Error
}

// ListInactiveWithTx returns every inactive student, oldest deactivation
// first. It runs inside the purge transaction so the candidate set and the
// deletion see the same rows.
func (r *Repository) ListInactiveWithTx(tx *gorm.DB) ([]models.Student, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var rows []models.Student
	err := tx.
		Where("status = ?", enums.StudentStatusInactive).
		Order("inactive_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListInactiveBeforeWithTx returns inactive students whose inactive_at is at
// or before the cutoff. The boundary is inclusive.
func (r *Repository) ListInactiveBeforeWithTx(tx *gorm.DB, cutoff time.Time) ([]models.Student, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var rows []models.Student
	err := tx.
		Where("status = ?", enums.StudentStatusInactive).
		Where("inactive_at IS NOT NULL AND inactive_at <= ?", cutoff).
		Order("inactive_at ASC").
		Find(&rows).Error
	return rows, err
}

// DeleteInactiveByIDsWithTx permanently removes the given students, skipping
// any row that is no longer inactive or, when a cutoff is given, no longer
// inside the retention window. Re-checking the criteria in the DELETE keeps a
// student reactivated between candidate listing and deletion alive.
func (r *Repository) DeleteInactiveByIDsWithTx(tx *gorm.DB, ids []int64, cutoff *time.Time) (int64, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	if len(ids) == 0 {
		return 0, nil
	}
	query := tx.
		Where("id IN ?", ids).
		Where("status = ?", enums.StudentStatusInactive)
	if cutoff != nil {
		query = query.Where("inactive_at IS NOT NULL AND inactive_at <= ?", *cutoff)
	}
	result := query.Delete(&models.Student{})
	return result.RowsAffected, result.Error
}

// ExistingIDsWithTx reports which of the given ids still have a row.
func (r *Repository) ExistingIDsWithTx(tx *gorm.DB, ids []int64) ([]int64, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	if len(ids) == 0 {
		return nil, nil
	}
	var remaining []int64
	err := tx.Model(&models.Student{}).
		Where("id IN ?", ids).
		Pluck("id", &remaining).Error
	return remaining, err
}

package school

import (
	"context"
	"errors"

	"github.com/registra-app/registra-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads the singleton school profile. The registration CRUD layer
// owns writes; the license core only needs the code for envelope binding.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to school profile reads.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Code returns the configured school code, or nil when no profile exists or
// no code has been set.
func (r *Repository) Code(ctx context.Context) (*string, error) {
	var profile models.School
	err := r.db.WithContext(ctx).
		Select("code").
		Where("id = ?", models.SchoolID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile.Code, nil
}

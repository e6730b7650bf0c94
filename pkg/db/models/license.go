package models

import (
	"time"

	"github.com/registra-app/registra-backend/pkg/enums"
)

// LicenseID is the fixed primary key of the singleton license row.
const LicenseID int64 = 1

// License is the single persisted license record for this installation.
// ActivatedAt anchors the purge windows; InitialPurgeAt and ExpiredAppliedAt
// are one-shot markers cleared together on every (re)activation.
type License struct {
	ID               int64               `gorm:"column:id;primaryKey"`
	LicenseKey       string              `gorm:"column:license_key;not null"`
	Status           enums.LicenseStatus `gorm:"column:status;not null;default:'active'"`
	IssuedTo         *string             `gorm:"column:issued_to"`
	SchoolCode       *string             `gorm:"column:school_code"`
	ExpiresAt        *time.Time          `gorm:"column:expires_at"`
	ActivatedAt      *time.Time          `gorm:"column:activated_at"`
	InitialPurgeAt   *time.Time          `gorm:"column:initial_purge_at"`
	ExpiredAppliedAt *time.Time          `gorm:"column:expired_applied_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy singular table name.
func (License) TableName() string { return "license" }

package models

import (
	"time"

	"github.com/registra-app/registra-backend/pkg/enums"
)

// Student is owned by the registration CRUD layer; the retention core only
// flips status/inactive_at and deletes rows past their retention window.
// InactiveAt is set exactly when status becomes inactive and cleared on
// reactivation.
type Student struct {
	ID         int64               `gorm:"column:id;primaryKey;autoIncrement"`
	Matricule  string              `gorm:"column:matricule"`
	FirstName  string              `gorm:"column:first_name;not null"`
	LastName   string              `gorm:"column:last_name;not null"`
	DOB        *time.Time          `gorm:"column:dob"`
	Gender     string              `gorm:"column:gender"`
	ClassLevel string              `gorm:"column:class_level"`
	Department string              `gorm:"column:department"`
	Series     string              `gorm:"column:series"`
	Phone      string              `gorm:"column:phone"`
	PhotoPath  *string             `gorm:"column:photo_path"`
	Status     enums.StudentStatus `gorm:"column:status;not null;default:'active';index"`
	InactiveAt *time.Time          `gorm:"column:inactive_at;index"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy table name.
func (Student) TableName() string { return "students" }

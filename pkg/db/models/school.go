package models

import "time"

// SchoolID is the fixed primary key of the singleton school profile row.
const SchoolID int64 = 1

// School is the singleton school profile. The license core reads only Code,
// for school-code binding during activation.
type School struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Code         *string   `gorm:"column:code"`
	AcademicYear *string   `gorm:"column:academic_year"`
	LogoPath     *string   `gorm:"column:logo_path"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy singular table name.
func (School) TableName() string { return "school" }

package models

import (
	"time"

	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// DayFormat is the layout for calendar-day ledger keys. Ledger entries are
// keyed by the business day they apply to, not the instant they were written.
const DayFormat = "2006-01-02"

// Day formats a time as a calendar-day ledger key.
func Day(t time.Time) string {
	return t.Format(DayFormat)
}

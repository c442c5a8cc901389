package models

import "time"

// CycleRunStatus represents the outcome of a daily cycle run.
type CycleRunStatus string

const (
	CycleRunCompleted CycleRunStatus = "completed"
	CycleRunFailed    CycleRunStatus = "failed"
	CycleRunSkipped   CycleRunStatus = "skipped"
)

// CycleRun records one execution of the daily accrual and commission cycle.
// Retried dates produce multiple rows; the scheduler's misfire check looks
// for a completed or skipped row for the intended business date.
type CycleRun struct {
	Base
	Date                 string         `gorm:"size:10;not null;index" json:"date"`
	Status               CycleRunStatus `gorm:"size:10;not null" json:"status"`
	InvestmentsProcessed int            `gorm:"not null;default:0" json:"investments_processed"`
	InvestmentsExpired   int            `gorm:"not null;default:0" json:"investments_expired"`
	TotalROI             int64          `gorm:"type:bigint;not null;default:0" json:"total_roi"`
	CommissionsPaid      int            `gorm:"not null;default:0" json:"commissions_paid"`
	CommissionsSkipped   int            `gorm:"not null;default:0" json:"commissions_skipped"`
	Errors               int            `gorm:"not null;default:0" json:"errors"`
	StartedAt            time.Time      `gorm:"not null" json:"started_at"`
	FinishedAt           time.Time      `json:"finished_at"`
}

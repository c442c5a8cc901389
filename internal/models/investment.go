package models

import "time"

// InvestmentStatus represents the lifecycle state of an investment.
type InvestmentStatus string

const (
	InvestmentStatusActive  InvestmentStatus = "active"
	InvestmentStatusExpired InvestmentStatus = "expired"
	InvestmentStatusClosed  InvestmentStatus = "closed"
)

// Investment represents a fixed-return forex position. Amount and DailyROI are
// immutable after creation; Profit is a running total mutated only by the
// accrual engine and only while the status is active.
type Investment struct {
	Base
	UserID           uint             `gorm:"not null;index" json:"user_id"`
	ForexPair        string           `gorm:"size:7;not null" json:"forex_pair"`
	Amount           int64            `gorm:"type:bigint;not null" json:"amount"`
	DailyROI         float64          `gorm:"not null" json:"daily_roi"`
	EntryPrice       float64          `gorm:"not null;default:1.0" json:"entry_price"`
	CurrentPrice     float64          `gorm:"not null;default:1.0" json:"current_price"`
	Status           InvestmentStatus `gorm:"size:10;not null;default:'active';index" json:"status"`
	Profit           int64            `gorm:"type:bigint;not null;default:0" json:"profit"`
	LastProfitUpdate *time.Time       `json:"last_profit_update,omitempty"`

	User   User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Events []InvestmentEvent `gorm:"foreignKey:InvestmentID" json:"events,omitempty"`
}

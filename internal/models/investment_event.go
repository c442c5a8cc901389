package models

// InvestmentEventType represents the type of an investment ledger entry.
type InvestmentEventType string

const (
	InvestmentEventROIEarning InvestmentEventType = "roi_earning"
	InvestmentEventExpired    InvestmentEventType = "investment_expired"
)

// InvestmentEvent is an append-only ledger entry for an investment. Entries
// are never updated or deleted. The composite unique index over
// (investment_id, type, date) enforces at most one ROI entry per investment
// per business day; commission idempotency relies on it transitively.
type InvestmentEvent struct {
	Base
	InvestmentID uint                `gorm:"not null;uniqueIndex:idx_investment_event_key" json:"investment_id"`
	UserID       uint                `gorm:"not null;index" json:"user_id"`
	Type         InvestmentEventType `gorm:"size:20;not null;uniqueIndex:idx_investment_event_key" json:"type"`
	Amount       int64               `gorm:"type:bigint;not null" json:"amount"`
	Date         string              `gorm:"size:10;not null;index;uniqueIndex:idx_investment_event_key" json:"date"`
	// Balance is the investment's profit after this entry was applied.
	Balance int64 `gorm:"type:bigint;not null" json:"balance"`
}

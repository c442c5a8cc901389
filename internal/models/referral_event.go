package models

// ReferralEventType represents the type of a referral ledger entry.
type ReferralEventType string

const (
	ReferralEventDailyCommission ReferralEventType = "daily_commission"
	ReferralEventOneTimeReward   ReferralEventType = "one_time_reward"
)

// ReferralEvent is an append-only ledger entry for referral earnings.
//
// The composite unique index is the idempotency key for both entry types:
//   - daily_commission: (referrer, referred, level, date), ForexPair empty.
//   - one_time_reward: (referrer, referred, forex_pair), Date empty, Level 1.
//
// Writers must treat a unique-constraint rejection on this index as
// "already paid", never as a failure.
type ReferralEvent struct {
	Base
	ReferrerID uint              `gorm:"not null;index;uniqueIndex:idx_referral_event_key" json:"referrer_id"`
	ReferredID uint              `gorm:"not null;index;uniqueIndex:idx_referral_event_key" json:"referred_id"`
	Level      int               `gorm:"not null;uniqueIndex:idx_referral_event_key" json:"level"`
	Type       ReferralEventType `gorm:"size:20;not null;uniqueIndex:idx_referral_event_key" json:"type"`
	Amount     int64             `gorm:"type:bigint;not null" json:"amount"`
	// Rate and BaseAmount record how a daily commission was derived.
	Rate       float64 `json:"rate"`
	BaseAmount int64   `gorm:"type:bigint" json:"base_amount"`
	ForexPair  string  `gorm:"size:7;uniqueIndex:idx_referral_event_key" json:"forex_pair,omitempty"`
	Date       string  `gorm:"size:10;index;uniqueIndex:idx_referral_event_key" json:"date,omitempty"`
}

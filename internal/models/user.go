package models

import "time"

// User represents a platform user. ReferredByID is a weak back-reference to
// the user who referred this one; it is set at registration and never mutated
// afterwards, so the referral graph is a forest and the ancestor walk in the
// commission engine terminates structurally.
type User struct {
	Base
	Username         string     `gorm:"not null" json:"username"`
	Phone            string     `gorm:"uniqueIndex;not null" json:"phone"`
	Password         string     `gorm:"not null" json:"-"`
	Balance          int64      `gorm:"type:bigint;not null;default:0" json:"balance"`
	ReferralEarnings int64      `gorm:"type:bigint;not null;default:0" json:"referral_earnings"`
	SignupBonus      int64      `gorm:"type:bigint;not null;default:0" json:"signup_bonus"`
	ReferralCode     string     `gorm:"uniqueIndex;size:6;not null" json:"referral_code"`
	ReferredByID     *uint      `gorm:"index" json:"referred_by_id,omitempty"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	Investments  []Investment  `gorm:"foreignKey:UserID" json:"investments,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}

package models

import "time"

// TransactionType represents the type of a wallet transaction.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// TransactionStatus represents the approval state of a wallet transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusApproved  TransactionStatus = "approved"
	TransactionStatusRejected  TransactionStatus = "rejected"
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Transaction represents a deposit into or withdrawal from a user's wallet.
// Withdrawals in pending or approved state count against the user's
// withdrawable amount; rejected ones do not.
type Transaction struct {
	Base
	UserID     uint              `gorm:"not null;index" json:"user_id"`
	Type       TransactionType   `gorm:"size:10;not null" json:"type"`
	Amount     int64             `gorm:"type:bigint;not null" json:"amount"`
	Status     TransactionStatus `gorm:"size:10;not null;default:'pending';index" json:"status"`
	ApprovedAt *time.Time        `json:"approved_at,omitempty"`
	RejectedAt *time.Time        `json:"rejected_at,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

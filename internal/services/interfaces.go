package services

import (
	"time"

	"fxvest/internal/models"
	"fxvest/internal/pagination"
)

// RateServicer defines the contract for commission rate configuration.
type RateServicer interface {
	EnsureDefaultRates() (*models.CommissionRate, error)
	CurrentRates() (*models.CommissionRate, error)
}

// UserServicer defines the contract for user lookups. Registration and
// authentication live in the web layer and are not part of this module.
type UserServicer interface {
	GetUserByID(id uint) (*models.User, error)
	GetUserByReferralCode(code string) (*models.User, error)
}

// InvestmentServicer defines the contract for investment-related business logic.
type InvestmentServicer interface {
	CreateInvestment(userID uint, forexPair string, amount int64, dailyROI float64) (*models.Investment, error)
	GetUserInvestments(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error)
	GetInvestmentByID(userID, investmentID uint) (*models.Investment, error)
	CloseInvestment(userID, investmentID uint) (*models.Investment, error)
	GetInvestmentHistory(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.InvestmentEvent], error)
}

// AccrualReport summarizes one run of the daily ROI accrual stage.
type AccrualReport struct {
	Date           string `json:"date"`
	Skipped        bool   `json:"skipped"`
	Processed      int    `json:"processed"`
	Expired        int    `json:"expired"`
	AlreadyAccrued int    `json:"already_accrued"`
	Errors         int    `json:"errors"`
	TotalROI       int64  `json:"total_roi"`
}

// AccrualServicer defines the contract for the daily ROI accrual engine.
type AccrualServicer interface {
	AccrueDaily(asOf time.Time) (*AccrualReport, error)
}

// Ancestor is one resolved referral ancestor: the user to pay and the
// referral level (1 = direct referrer) the commission rate is keyed by.
type Ancestor struct {
	UserID uint
	Level  int
}

// CommissionReport summarizes one run of the commission distribution stage.
type CommissionReport struct {
	Date            string `json:"date"`
	Paid            int    `json:"paid"`
	AlreadyPaid     int    `json:"already_paid"`
	Errors          int    `json:"errors"`
	TotalCommission int64  `json:"total_commission"`
}

// ReferralStats aggregates a user's referral network and earnings.
type ReferralStats struct {
	Level1Count   int   `json:"level1_count"`
	Level2Count   int   `json:"level2_count"`
	Level3Count   int   `json:"level3_count"`
	TotalCount    int   `json:"total_count"`
	TotalEarnings int64 `json:"total_earnings"`
}

// ReferralEntry is one referred user with the earnings they generated for the
// referrer, across one-time rewards and daily commissions.
type ReferralEntry struct {
	UserID           uint      `json:"user_id"`
	Username         string    `json:"username"`
	Level            int       `json:"level"`
	JoinedAt         time.Time `json:"joined_at"`
	IsActive         bool      `json:"is_active"`
	OneTimeRewards   int64     `json:"one_time_rewards"`
	DailyCommissions int64     `json:"daily_commissions"`
	Total            int64     `json:"total"`
}

// ReferralServicer defines the contract for the referral tree walker and
// commission distributor.
type ReferralServicer interface {
	ResolveAncestors(userID uint) ([]Ancestor, error)
	DistributeForEarning(event *models.InvestmentEvent) (*CommissionReport, error)
	DistributeForDate(date string) (*CommissionReport, error)
	AwardOneTimeReward(referrerID, refereeID uint, forexPair string) (bool, error)
	GetReferralStats(userID uint) (*ReferralStats, error)
	GetReferralHistory(userID uint) ([]ReferralEntry, error)
}

// TransactionServicer defines the contract for wallet transactions and the
// withdrawable-amount calculation.
type TransactionServicer interface {
	CreateDeposit(userID uint, amount int64) (*models.Transaction, error)
	CreateWithdrawal(userID uint, amount int64) (*models.Transaction, error)
	Withdrawable(userID uint, excludeTransactionID *uint) (int64, error)
	GetUserTransactions(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// CycleReport summarizes one full daily cycle: accrual then distribution.
type CycleReport struct {
	Date       string            `json:"date"`
	Accrual    *AccrualReport    `json:"accrual,omitempty"`
	Commission *CommissionReport `json:"commission,omitempty"`
}

// CycleServicer composes accrual and distribution into the scheduler's daily
// cycle and records each run.
type CycleServicer interface {
	RunDailyCycle(asOf time.Time) (*CycleReport, error)
	HasCompletedRun(date string) (bool, error)
	GetCycleRuns(page pagination.PageRequest) (*pagination.PageResponse[models.CycleRun], error)
}

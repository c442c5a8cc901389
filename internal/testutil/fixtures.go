package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fxvest/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password, unique phone number,
// and unique referral code.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserReferredBy(t, db, nil)
}

// CreateTestUserReferredBy creates a user referred by the given user ID.
// Pass nil for a user with no referrer.
func CreateTestUserReferredBy(t *testing.T, db *gorm.DB, referredByID *uint) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	user := &models.User{
		Username:     fmt.Sprintf("user%d", n),
		Phone:        fmt.Sprintf("+1555%07d", n),
		Password:     string(hash),
		ReferralCode: fmt.Sprintf("%06d", n),
		ReferredByID: referredByID,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestInvestment creates an active investment for the user.
func CreateTestInvestment(t *testing.T, db *gorm.DB, userID uint, amount int64, dailyROI float64) *models.Investment {
	t.Helper()

	investment := &models.Investment{
		UserID:       userID,
		ForexPair:    "EUR/USD",
		Amount:       amount,
		DailyROI:     dailyROI,
		EntryPrice:   1.0,
		CurrentPrice: 1.0,
		Status:       models.InvestmentStatusActive,
	}
	if err := db.Create(investment).Error; err != nil {
		t.Fatalf("failed to create test investment: %v", err)
	}
	return investment
}

// CreateTestInvestmentCreatedAt creates an active investment backdated to the
// given creation time, for exercising maturity boundaries.
func CreateTestInvestmentCreatedAt(t *testing.T, db *gorm.DB, userID uint, amount int64, dailyROI float64, createdAt time.Time) *models.Investment {
	t.Helper()

	investment := CreateTestInvestment(t, db, userID, amount, dailyROI)
	if err := db.Model(investment).Update("created_at", createdAt).Error; err != nil {
		t.Fatalf("failed to backdate test investment: %v", err)
	}
	investment.CreatedAt = createdAt
	return investment
}

// CreateTestRates inserts a commission rate configuration with the standard
// 10%/5%/2% daily levels and a small one-time reward table.
func CreateTestRates(t *testing.T, db *gorm.DB) *models.CommissionRate {
	t.Helper()

	rates := &models.CommissionRate{
		ForexRewards: map[string]int64{
			"EUR/USD": 10000,
			"GBP/USD": 20000,
		},
		DailyLevel1: 0.10,
		DailyLevel2: 0.05,
		DailyLevel3: 0.02,
	}
	if err := db.Create(rates).Error; err != nil {
		t.Fatalf("failed to create test rates: %v", err)
	}
	return rates
}

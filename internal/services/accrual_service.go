package services

import (
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "fxvest/internal/errors"
	"fxvest/internal/logger"
	"fxvest/internal/models"
)

// accrualService credits active investments with their daily return and
// expires positions past the maturity window.
type accrualService struct {
	db           *gorm.DB
	maturityDays int
}

// NewAccrualService creates a new AccrualServicer with the given maturity
// window in days.
func NewAccrualService(db *gorm.DB, maturityDays int) AccrualServicer {
	return &accrualService{db: db, maturityDays: maturityDays}
}

// AccrueDaily processes all active investments for one business date.
// Weekends are non-trading days: the engine does no work and reports skipped.
// Per-investment failures are logged and counted; they never abort the batch.
// Re-running the same date is safe: the (investment, type, date) ledger key
// makes every write insert-if-absent.
func (s *accrualService) AccrueDaily(asOf time.Time) (*AccrualReport, error) {
	report := &AccrualReport{Date: models.Day(asOf)}

	switch asOf.Weekday() {
	case time.Saturday, time.Sunday:
		logger.Named("accrual").Infow("skipping non-trading day", "date", report.Date)
		report.Skipped = true
		return report, nil
	}

	var investments []models.Investment
	if err := s.db.Where("status = ?", models.InvestmentStatusActive).Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	log := logger.Named("accrual")
	log.Infow("starting daily accrual", "date", report.Date, "active_investments", len(investments))

	for i := range investments {
		inv := &investments[i]

		ageDays := ageInDays(inv.CreatedAt, asOf)
		if ageDays >= s.maturityDays {
			if err := s.expire(inv, report.Date); err != nil {
				log.Errorw("failed to expire investment", "investment_id", inv.ID, "error", err)
				report.Errors++
				continue
			}
			report.Expired++
			continue
		}

		earnings, err := dailyEarnings(inv)
		if err != nil {
			log.Errorw("skipping malformed investment", "investment_id", inv.ID, "error", err)
			report.Errors++
			continue
		}

		credited, err := s.credit(inv, report.Date, earnings)
		if err != nil {
			log.Errorw("failed to credit investment", "investment_id", inv.ID, "error", err)
			report.Errors++
			continue
		}
		if !credited {
			report.AlreadyAccrued++
			continue
		}
		report.Processed++
		report.TotalROI += earnings
	}

	log.Infow("daily accrual completed",
		"date", report.Date,
		"processed", report.Processed,
		"expired", report.Expired,
		"already_accrued", report.AlreadyAccrued,
		"errors", report.Errors,
		"total_roi", report.TotalROI,
	)
	return report, nil
}

// ageInDays counts whole calendar days between the creation date and the
// business date. Time of day is ignored on both sides, so a position's
// maturity does not depend on when during the day the cycle fires.
func ageInDays(createdAt, asOf time.Time) int {
	created := time.Date(createdAt.Year(), createdAt.Month(), createdAt.Day(), 0, 0, 0, 0, time.UTC)
	business := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return int(business.Sub(created).Hours() / 24)
}

// dailyEarnings computes one day's return in cents. A rate outside (0, 100]
// is a malformed record, recovered by skipping the investment.
func dailyEarnings(inv *models.Investment) (int64, error) {
	if inv.Amount <= 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "non-positive principal")
	}
	if math.IsNaN(inv.DailyROI) || inv.DailyROI <= 0 || inv.DailyROI > 100 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "daily ROI out of range")
	}
	return int64(math.Round(float64(inv.Amount) * inv.DailyROI / 100)), nil
}

// expire transitions an investment to expired and appends the terminal ledger
// entry carrying the principal and the profit accrued to date. No ROI is
// credited for the expiry date.
func (s *accrualService) expire(inv *models.Investment, date string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Investment{}).
			Where("id = ? AND status = ?", inv.ID, models.InvestmentStatusActive).
			Update("status", models.InvestmentStatusExpired)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			// Another run expired it first; the ledger entry already exists.
			return nil
		}

		event := &models.InvestmentEvent{
			InvestmentID: inv.ID,
			UserID:       inv.UserID,
			Type:         models.InvestmentEventExpired,
			Amount:       inv.Amount,
			Date:         date,
			Balance:      inv.Profit,
		}
		if _, err := createIfAbsent(tx, event); err != nil {
			return err
		}
		return nil
	})
}

// credit appends the day's ROI ledger entry and, only when the entry is new,
// rolls the earnings into the investment's profit and the owner's wallet.
// Returns false when the (investment, date) entry already existed.
func (s *accrualService) credit(inv *models.Investment, date string, earnings int64) (bool, error) {
	newProfit := inv.Profit + earnings
	credited := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		event := &models.InvestmentEvent{
			InvestmentID: inv.ID,
			UserID:       inv.UserID,
			Type:         models.InvestmentEventROIEarning,
			Amount:       earnings,
			Date:         date,
			Balance:      newProfit,
		}
		inserted, err := createIfAbsent(tx, event)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}

		now := time.Now()
		if err := tx.Model(&models.Investment{}).Where("id = ?", inv.ID).Updates(map[string]interface{}{
			"profit":             gorm.Expr("profit + ?", earnings),
			"last_profit_update": now,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(&models.User{}).Where("id = ?", inv.UserID).
			Update("balance", gorm.Expr("balance + ?", earnings)).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		credited = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return credited, nil
}

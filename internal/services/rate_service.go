package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fxvest/internal/errors"
	"fxvest/internal/logger"
	"fxvest/internal/models"
)

// defaultForexRewards is the bootstrap one-time reward table, in cents per pair.
var defaultForexRewards = map[string]int64{
	"EUR/USD": 10000,
	"GBP/USD": 30000,
	"USD/JPY": 50000,
	"USD/CHF": 60000,
	"AUD/USD": 70000,
	"EUR/GBP": 100000,
	"EUR/AUD": 150000,
	"USD/CAD": 250000,
	"NZD/USD": 500000,
}

// rateService handles commission rate configuration.
type rateService struct {
	db *gorm.DB
}

// NewRateService creates a new RateServicer.
func NewRateService(db *gorm.DB) RateServicer {
	return &rateService{db: db}
}

// EnsureDefaultRates inserts the default rate table at bootstrap if no
// configuration exists yet. Updates never mutate an existing row; they insert
// a new version, so this only ever runs once per deployment.
func (s *rateService) EnsureDefaultRates() (*models.CommissionRate, error) {
	var count int64
	if err := s.db.Model(&models.CommissionRate{}).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return s.CurrentRates()
	}

	rates := &models.CommissionRate{
		ForexRewards: defaultForexRewards,
		DailyLevel1:  0.10,
		DailyLevel2:  0.05,
		DailyLevel3:  0.02,
	}
	if err := s.db.Create(rates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("commission rates initialized",
		"level1", rates.DailyLevel1,
		"level2", rates.DailyLevel2,
		"level3", rates.DailyLevel3,
	)
	return rates, nil
}

// CurrentRates returns the most recently created rate configuration.
func (s *rateService) CurrentRates() (*models.CommissionRate, error) {
	var rates models.CommissionRate
	if err := s.db.Order("created_at DESC").First(&rates).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRatesNotConfigured
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rates, nil
}

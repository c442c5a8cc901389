package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fxvest/internal/errors"
	"fxvest/internal/logger"
	"fxvest/internal/models"
	"fxvest/internal/pagination"
)

// Instrument pricing is a fixed placeholder; positions earn through the daily
// ROI rate, not price movement.
const placeholderPrice = 1.0

// investmentService handles investment-related business logic.
type investmentService struct {
	db        *gorm.DB
	users     UserServicer
	referrals ReferralServicer
}

// NewInvestmentService creates a new InvestmentServicer.
func NewInvestmentService(db *gorm.DB, users UserServicer, referrals ReferralServicer) InvestmentServicer {
	return &investmentService{db: db, users: users, referrals: referrals}
}

// CreateInvestment opens a new position funded from the user's wallet. If the
// user was referred and this is their first position in the pair, the direct
// referrer receives the pair's one-time reward.
func (s *investmentService) CreateInvestment(userID uint, forexPair string, amount int64, dailyROI float64) (*models.Investment, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be positive")
	}
	if dailyROI <= 0 || dailyROI > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Daily ROI must be between 0 and 100")
	}

	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if amount > user.Balance {
		return nil, apperrors.ErrInsufficientFunds
	}

	investment := &models.Investment{
		UserID:       userID,
		ForexPair:    forexPair,
		Amount:       amount,
		DailyROI:     dailyROI,
		EntryPrice:   placeholderPrice,
		CurrentPrice: placeholderPrice,
		Status:       models.InvestmentStatusActive,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Create(investment).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("balance", gorm.Expr("balance - ?", amount)).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if user.ReferredByID != nil {
		// The reward ledger key makes this a no-op for repeat positions in
		// the same pair; a reward failure never rolls back the investment.
		awarded, rewardErr := s.referrals.AwardOneTimeReward(*user.ReferredByID, userID, forexPair)
		if rewardErr != nil {
			logger.Get().Errorw("failed to award one-time referral reward",
				"referrer_id", *user.ReferredByID,
				"user_id", userID,
				"forex_pair", forexPair,
				"error", rewardErr,
			)
		} else if awarded {
			logger.Get().Infow("one-time referral reward paid",
				"referrer_id", *user.ReferredByID,
				"user_id", userID,
				"forex_pair", forexPair,
			)
		}
	}

	return investment, nil
}

// GetUserInvestments returns a paginated list of the user's investments,
// newest first.
func (s *investmentService) GetUserInvestments(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error) {
	if _, err := s.users.GetUserByID(userID); err != nil {
		return nil, err
	}

	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Investment{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var investments []models.Investment
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(investments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetInvestmentByID returns an investment if it belongs to the user.
func (s *investmentService) GetInvestmentByID(userID, investmentID uint) (*models.Investment, error) {
	var investment models.Investment
	if err := s.db.First(&investment, investmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvestmentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if investment.UserID != userID {
		return nil, apperrors.ErrInvestmentNotFound
	}
	return &investment, nil
}

// CloseInvestment closes an active position and returns the principal plus
// accrued profit to the wallet. Closed positions accrue nothing further.
func (s *investmentService) CloseInvestment(userID, investmentID uint) (*models.Investment, error) {
	investment, err := s.GetInvestmentByID(userID, investmentID)
	if err != nil {
		return nil, err
	}
	if investment.Status != models.InvestmentStatusActive {
		return nil, apperrors.ErrInvestmentInactive
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Investment{}).
			Where("id = ? AND status = ?", investmentID, models.InvestmentStatusActive).
			Update("status", models.InvestmentStatusClosed)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrInvestmentInactive
		}

		if txErr := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("balance", gorm.Expr("balance + ?", investment.Amount+investment.Profit)).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	investment.Status = models.InvestmentStatusClosed
	return investment, nil
}

// GetInvestmentHistory returns the user's ROI and expiry ledger entries,
// newest first.
func (s *investmentService) GetInvestmentHistory(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.InvestmentEvent], error) {
	if _, err := s.users.GetUserByID(userID); err != nil {
		return nil, err
	}

	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.InvestmentEvent{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var events []models.InvestmentEvent
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&events).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(events, page.Page, page.PageSize, totalItems)
	return &result, nil
}

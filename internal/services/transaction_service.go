package services

import (
	"gorm.io/gorm"

	apperrors "fxvest/internal/errors"
	"fxvest/internal/models"
	"fxvest/internal/pagination"
)

// transactionService handles wallet deposits, withdrawals, and the
// withdrawable-amount aggregation.
type transactionService struct {
	db    *gorm.DB
	users UserServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, users UserServicer) TransactionServicer {
	return &transactionService{db: db, users: users}
}

// CreateDeposit records a pending deposit. Approval happens in the back
// office; the wallet is only credited once an operator approves.
func (s *transactionService) CreateDeposit(userID uint, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be positive")
	}
	if _, err := s.users.GetUserByID(userID); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		UserID: userID,
		Type:   models.TransactionTypeDeposit,
		Amount: amount,
		Status: models.TransactionStatusPending,
	}
	if err := s.db.Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// CreateWithdrawal records a pending withdrawal after checking it against the
// user's current withdrawable amount. The pending entry itself then counts
// against future withdrawable calculations until approved or rejected.
func (s *transactionService) CreateWithdrawal(userID uint, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be positive")
	}
	available, err := s.Withdrawable(userID, nil)
	if err != nil {
		return nil, err
	}
	if amount > available {
		return nil, apperrors.ErrExceedsWithdrawable
	}

	tx := &models.Transaction{
		UserID: userID,
		Type:   models.TransactionTypeWithdrawal,
		Amount: amount,
		Status: models.TransactionStatusPending,
	}
	if err := s.db.Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// Withdrawable computes the portion of a user's earnings eligible for
// cash-out: ROI profit on active investments, plus all referral credits, plus
// the signup bonus, minus approved and pending withdrawals, floored at zero.
//
// This is a pure read-time aggregation over the ledgers. Missing sub-ledgers
// contribute zero rather than failing. It is safe to call concurrently with
// accrual and distribution, but the individual sums are not taken under one
// snapshot, so a cycle running mid-call can shift the result by one day's
// accrual.
func (s *transactionService) Withdrawable(userID uint, excludeTransactionID *uint) (int64, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return 0, err
	}

	var roiProfit int64
	if err := s.db.Model(&models.Investment{}).
		Where("user_id = ? AND status = ?", userID, models.InvestmentStatusActive).
		Select("COALESCE(SUM(profit), 0)").
		Scan(&roiProfit).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var referralCredits int64
	if err := s.db.Model(&models.ReferralEvent{}).
		Where("referrer_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&referralCredits).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	withdrawalQuery := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND status IN ?",
			userID,
			models.TransactionTypeWithdrawal,
			[]models.TransactionStatus{models.TransactionStatusApproved, models.TransactionStatusPending},
		)
	if excludeTransactionID != nil {
		withdrawalQuery = withdrawalQuery.Where("id <> ?", *excludeTransactionID)
	}
	var withdrawals int64
	if err := withdrawalQuery.Select("COALESCE(SUM(amount), 0)").Scan(&withdrawals).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	available := roiProfit + referralCredits + user.SignupBonus - withdrawals
	if available < 0 {
		available = 0
	}
	return available, nil
}

// GetUserTransactions returns a paginated list of the user's transactions,
// newest first.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if _, err := s.users.GetUserByID(userID); err != nil {
		return nil, err
	}

	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

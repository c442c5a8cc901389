package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fxvest/internal/errors"
	"fxvest/internal/models"
)

// userService handles user lookups for the engine. User registration (and
// referral code assignment) happens in the web layer; by the time records
// reach this module, ReferredByID is immutable.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByReferralCode retrieves a user by their referral code.
func (s *userService) GetUserByReferralCode(code string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("referral_code = ?", code).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

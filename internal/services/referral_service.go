package services

import (
	"errors"
	"math"

	"gorm.io/gorm"

	apperrors "fxvest/internal/errors"
	"fxvest/internal/logger"
	"fxvest/internal/models"
)

// maxReferralDepth caps the ancestor walk. The referral graph is a forest by
// construction (referred_by is set once at registration), so termination is
// structural, but the walk still enforces the cap rather than trusting it.
const maxReferralDepth = 3

// referralService resolves referral ancestry and distributes commissions.
type referralService struct {
	db    *gorm.DB
	rates RateServicer
}

// NewReferralService creates a new ReferralServicer.
func NewReferralService(db *gorm.DB, rates RateServicer) ReferralServicer {
	return &referralService{db: db, rates: rates}
}

// ResolveAncestors walks the referred_by chain upward from the given user,
// returning up to three (ancestor, level) pairs in level order. The walk is a
// bounded linked traversal keyed by user id, never a recursive graph search.
// A dangling referrer reference ends the walk at the last resolvable level.
func (s *referralService) ResolveAncestors(userID uint) ([]Ancestor, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ancestors := make([]Ancestor, 0, maxReferralDepth)
	next := user.ReferredByID
	for level := 1; level <= maxReferralDepth && next != nil; level++ {
		var ancestor models.User
		if err := s.db.First(&ancestor, *next).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Named("referral").Warnw("dangling referrer reference",
					"user_id", userID, "referrer_id", *next, "level", level)
				break
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		ancestors = append(ancestors, Ancestor{UserID: ancestor.ID, Level: level})
		next = ancestor.ReferredByID
	}
	return ancestors, nil
}

// DistributeForEarning pays daily commissions to up to three ancestors of the
// user who earned the given ROI ledger entry. A referee with no referrer owes
// nothing and returns an empty report.
func (s *referralService) DistributeForEarning(event *models.InvestmentEvent) (*CommissionReport, error) {
	rates, err := s.rates.CurrentRates()
	if err != nil {
		return nil, err
	}
	report := &CommissionReport{Date: event.Date}
	s.distribute(event, rates, report)
	return report, nil
}

// DistributeForDate pays commissions for every ROI ledger entry recorded for
// the given business date. The rate lookup is the only fatal failure; every
// per-referee and per-level problem is contained and counted.
func (s *referralService) DistributeForDate(date string) (*CommissionReport, error) {
	rates, err := s.rates.CurrentRates()
	if err != nil {
		return nil, err
	}

	var events []models.InvestmentEvent
	if err := s.db.Where("type = ? AND date = ?", models.InvestmentEventROIEarning, date).
		Find(&events).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	log := logger.Named("referral")
	log.Infow("starting commission distribution", "date", date, "roi_entries", len(events))

	report := &CommissionReport{Date: date}
	for i := range events {
		s.distribute(&events[i], rates, report)
	}

	log.Infow("commission distribution completed",
		"date", date,
		"paid", report.Paid,
		"already_paid", report.AlreadyPaid,
		"errors", report.Errors,
		"total_commission", report.TotalCommission,
	)
	return report, nil
}

// distribute walks one earning's ancestry and credits each level. Levels are
// independent: an already-paid level 1 never blocks a fresh level 2 payment,
// and one level's failure never stops the rest of the chain.
func (s *referralService) distribute(event *models.InvestmentEvent, rates *models.CommissionRate, report *CommissionReport) {
	log := logger.Named("referral")

	ancestors, err := s.ResolveAncestors(event.UserID)
	if err != nil {
		log.Errorw("failed to resolve ancestors", "user_id", event.UserID, "error", err)
		report.Errors++
		return
	}

	for _, ancestor := range ancestors {
		rate := rates.LevelRate(ancestor.Level)
		if rate <= 0 {
			continue
		}
		amount := int64(math.Round(float64(event.Amount) * rate))

		paid, err := s.payCommission(ancestor, event, rate, amount)
		if err != nil {
			log.Errorw("failed to pay commission",
				"referrer_id", ancestor.UserID,
				"referred_id", event.UserID,
				"level", ancestor.Level,
				"error", err,
			)
			report.Errors++
			continue
		}
		if !paid {
			report.AlreadyPaid++
			continue
		}
		report.Paid++
		report.TotalCommission += amount
	}
}

// payCommission appends the commission ledger entry and, only when the entry
// is new, increments the ancestor's cached earnings and wallet balance. The
// counter update is gated by the same (referrer, referee, level, date) key as
// the ledger insert, so it is applied exactly once per key no matter how many
// runs or writers race on it.
func (s *referralService) payCommission(ancestor Ancestor, event *models.InvestmentEvent, rate float64, amount int64) (bool, error) {
	paid := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		entry := &models.ReferralEvent{
			ReferrerID: ancestor.UserID,
			ReferredID: event.UserID,
			Level:      ancestor.Level,
			Type:       models.ReferralEventDailyCommission,
			Amount:     amount,
			Rate:       rate,
			BaseAmount: event.Amount,
			Date:       event.Date,
		}
		inserted, err := createIfAbsent(tx, entry)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}

		if err := tx.Model(&models.User{}).Where("id = ?", ancestor.UserID).Updates(map[string]interface{}{
			"referral_earnings": gorm.Expr("referral_earnings + ?", amount),
			"balance":           gorm.Expr("balance + ?", amount),
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		paid = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return paid, nil
}

// AwardOneTimeReward pays the rate table's per-pair reward to a direct
// referrer the first time the referee opens a position in that pair. The
// (referrer, referee, pair) ledger key makes repeat calls no-ops. Returns
// whether a reward was paid.
func (s *referralService) AwardOneTimeReward(referrerID, refereeID uint, forexPair string) (bool, error) {
	rates, err := s.rates.CurrentRates()
	if err != nil {
		return false, err
	}
	reward := rates.ForexRewards[forexPair]
	if reward <= 0 {
		return false, nil
	}

	awarded := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		entry := &models.ReferralEvent{
			ReferrerID: referrerID,
			ReferredID: refereeID,
			Level:      1,
			Type:       models.ReferralEventOneTimeReward,
			Amount:     reward,
			ForexPair:  forexPair,
		}
		inserted, err := createIfAbsent(tx, entry)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}

		if err := tx.Model(&models.User{}).Where("id = ?", referrerID).Updates(map[string]interface{}{
			"referral_earnings": gorm.Expr("referral_earnings + ?", reward),
			"balance":           gorm.Expr("balance + ?", reward),
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		awarded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return awarded, nil
}

// GetReferralStats counts a user's referral network per level and totals the
// commissions ever credited to them.
func (s *referralService) GetReferralStats(userID uint) (*ReferralStats, error) {
	stats := &ReferralStats{}

	level1, err := s.referredUserIDs([]uint{userID})
	if err != nil {
		return nil, err
	}
	level2, err := s.referredUserIDs(level1)
	if err != nil {
		return nil, err
	}
	level3, err := s.referredUserIDs(level2)
	if err != nil {
		return nil, err
	}

	stats.Level1Count = len(level1)
	stats.Level2Count = len(level2)
	stats.Level3Count = len(level3)
	stats.TotalCount = stats.Level1Count + stats.Level2Count + stats.Level3Count

	if err := s.db.Model(&models.ReferralEvent{}).
		Where("referrer_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalEarnings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return stats, nil
}

// GetReferralHistory returns every referred user across three levels with the
// earnings they generated for the referrer, one-time and daily separately.
func (s *referralService) GetReferralHistory(userID uint) ([]ReferralEntry, error) {
	entries := []ReferralEntry{}

	frontier := []uint{userID}
	for level := 1; level <= maxReferralDepth; level++ {
		var referred []models.User
		if err := s.db.Where("referred_by_id IN ?", frontier).Find(&referred).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(referred) == 0 {
			break
		}

		frontier = frontier[:0]
		for i := range referred {
			ref := &referred[i]
			frontier = append(frontier, ref.ID)

			oneTime, daily, err := s.earningsFrom(userID, ref.ID)
			if err != nil {
				return nil, err
			}
			entries = append(entries, ReferralEntry{
				UserID:           ref.ID,
				Username:         ref.Username,
				Level:            level,
				JoinedAt:         ref.CreatedAt,
				IsActive:         ref.IsActive,
				OneTimeRewards:   oneTime,
				DailyCommissions: daily,
				Total:            oneTime + daily,
			})
		}
	}

	return entries, nil
}

// referredUserIDs returns the ids of users directly referred by any of the
// given users. An empty input short-circuits to avoid an IN () query.
func (s *referralService) referredUserIDs(referrerIDs []uint) ([]uint, error) {
	if len(referrerIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	if err := s.db.Model(&models.User{}).
		Where("referred_by_id IN ?", referrerIDs).
		Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}

// earningsFrom sums what one referred user has generated for the referrer,
// split by entry type.
func (s *referralService) earningsFrom(referrerID, referredID uint) (oneTime, daily int64, err error) {
	type row struct {
		Type  models.ReferralEventType
		Total int64
	}
	var rows []row
	if err := s.db.Model(&models.ReferralEvent{}).
		Where("referrer_id = ? AND referred_id = ?", referrerID, referredID).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Scan(&rows).Error; err != nil {
		return 0, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, r := range rows {
		switch r.Type {
		case models.ReferralEventOneTimeReward:
			oneTime = r.Total
		case models.ReferralEventDailyCommission:
			daily = r.Total
		}
	}
	return oneTime, daily, nil
}

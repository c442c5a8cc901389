package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "fxvest/internal/errors"
	"fxvest/internal/logger"
	"fxvest/internal/models"
	"fxvest/internal/pagination"
)

// cycleService composes the two batch stages into the daily cycle the
// scheduler triggers: accrual runs to completion first, then distribution
// reads the ROI entries accrual just wrote. The stages are sequential by
// contract, never pipelined.
type cycleService struct {
	db        *gorm.DB
	rates     RateServicer
	accrual   AccrualServicer
	referrals ReferralServicer
}

// NewCycleService creates a new CycleServicer.
func NewCycleService(db *gorm.DB, rates RateServicer, accrual AccrualServicer, referrals ReferralServicer) CycleServicer {
	return &cycleService{db: db, rates: rates, accrual: accrual, referrals: referrals}
}

// RunDailyCycle executes accrual then commission distribution for one
// business date and records the outcome. A missing rate configuration aborts
// the whole cycle (operator attention required); anything already written by
// an interrupted earlier run for the same date stands, and re-running simply
// fills in what is missing.
func (s *cycleService) RunDailyCycle(asOf time.Time) (*CycleReport, error) {
	date := models.Day(asOf)
	started := time.Now()
	log := logger.Named("cycle")
	log.Infow("starting daily cycle", "date", date)

	if _, err := s.rates.CurrentRates(); err != nil {
		s.record(date, models.CycleRunFailed, nil, nil, started)
		return nil, err
	}

	report := &CycleReport{Date: date}

	accrual, err := s.accrual.AccrueDaily(asOf)
	if err != nil {
		s.record(date, models.CycleRunFailed, nil, nil, started)
		return nil, err
	}
	report.Accrual = accrual

	if accrual.Skipped {
		s.record(date, models.CycleRunSkipped, accrual, nil, started)
		log.Infow("daily cycle skipped", "date", date)
		return report, nil
	}

	commission, err := s.referrals.DistributeForDate(date)
	if err != nil {
		s.record(date, models.CycleRunFailed, accrual, nil, started)
		return nil, err
	}
	report.Commission = commission

	s.record(date, models.CycleRunCompleted, accrual, commission, started)
	log.Infow("daily cycle completed", "date", date)
	return report, nil
}

// HasCompletedRun reports whether a completed or skipped run is already
// recorded for the date. Used by the scheduler's misfire check.
func (s *cycleService) HasCompletedRun(date string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.CycleRun{}).
		Where("date = ? AND status IN ?", date, []models.CycleRunStatus{models.CycleRunCompleted, models.CycleRunSkipped}).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// GetCycleRuns returns the run log, newest first.
func (s *cycleService) GetCycleRuns(page pagination.PageRequest) (*pagination.PageResponse[models.CycleRun], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.CycleRun{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var runs []models.CycleRun
	if err := base.Order("started_at DESC").Scopes(pagination.Paginate(page)).Find(&runs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(runs, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// record appends a CycleRun row. Run logging is best effort: a failure to
// write the log line is logged but never fails the cycle itself.
func (s *cycleService) record(date string, status models.CycleRunStatus, accrual *AccrualReport, commission *CommissionReport, started time.Time) {
	run := &models.CycleRun{
		Date:      date,
		Status:    status,
		StartedAt: started,
	}
	run.FinishedAt = time.Now()
	if accrual != nil {
		run.InvestmentsProcessed = accrual.Processed
		run.InvestmentsExpired = accrual.Expired
		run.TotalROI = accrual.TotalROI
		run.Errors = accrual.Errors
	}
	if commission != nil {
		run.CommissionsPaid = commission.Paid
		run.CommissionsSkipped = commission.AlreadyPaid
		run.Errors += commission.Errors
	}
	if err := s.db.Create(run).Error; err != nil {
		logger.Named("cycle").Errorw("failed to record cycle run", "date", date, "error", err)
	}
}

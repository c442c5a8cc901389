// Package scheduler owns the daily cycle trigger. The scheduler is an
// explicitly constructed instance started by the composition root; there is
// no ambient job registry.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"fxvest/internal/config"
	"fxvest/internal/logger"
	"fxvest/internal/models"
	"fxvest/internal/services"
)

// Scheduler fires the daily accrual and commission cycle on a cron schedule
// in the configured business timezone.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	cycles   services.CycleServicer
	location *time.Location
	grace    time.Duration
}

// New builds a scheduler from the configured cron spec, timezone, and misfire
// grace window. It does not start anything.
func New(cfg *config.Config, cycles services.CycleServicer) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.CycleTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid cycle timezone %q: %w", cfg.CycleTimezone, err)
	}

	schedule, err := cron.ParseStandard(cfg.CycleSchedule)
	if err != nil {
		return nil, fmt.Errorf("invalid cycle schedule %q: %w", cfg.CycleSchedule, err)
	}

	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		schedule: schedule,
		cycles:   cycles,
		location: location,
		grace:    cfg.MisfireGrace,
	}

	if _, err := s.cron.AddFunc(cfg.CycleSchedule, s.runCycle); err != nil {
		return nil, fmt.Errorf("failed to register cycle job: %w", err)
	}
	return s, nil
}

// Start runs the misfire check, then begins firing on schedule.
func (s *Scheduler) Start() {
	s.checkMisfire(time.Now().In(s.location))
	s.cron.Start()
	logger.Named("scheduler").Infow("scheduler started", "timezone", s.location.String())
}

// Stop stops the cron loop and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Named("scheduler").Info("scheduler stopped")
}

// runCycle executes the cycle for the current business date.
func (s *Scheduler) runCycle() {
	now := time.Now().In(s.location)
	s.run(now)
}

// checkMisfire runs a late catch-up cycle if today's trigger time already
// passed (for example the process was down at trigger time), the lateness is
// within the grace window, and no completed run exists for today. The
// catch-up executes with today as the business date: the originally intended
// date, not the restart instant.
func (s *Scheduler) checkMisfire(now time.Time) {
	log := logger.Named("scheduler")

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	trigger := s.schedule.Next(midnight.Add(-time.Second))
	if trigger.After(now) || trigger.Before(midnight) {
		return
	}
	late := now.Sub(trigger)
	if late > s.grace {
		log.Warnw("missed trigger outside grace window, waiting for next schedule",
			"intended", trigger, "late", late.String())
		return
	}

	done, err := s.cycles.HasCompletedRun(models.Day(now))
	if err != nil {
		log.Errorw("misfire check failed", "error", err)
		return
	}
	if done {
		return
	}

	log.Infow("running misfire catch-up cycle", "intended", trigger, "late", late.String())
	s.run(now)
}

func (s *Scheduler) run(asOf time.Time) {
	log := logger.Named("scheduler")
	report, err := s.cycles.RunDailyCycle(asOf)
	if err != nil {
		log.Errorw("daily cycle failed", "date", models.Day(asOf), "error", err)
		return
	}
	if report.Accrual != nil && report.Accrual.Skipped {
		return
	}
	log.Infow("daily cycle report",
		"date", report.Date,
		"roi_processed", report.Accrual.Processed,
		"roi_total", report.Accrual.TotalROI,
		"commissions_paid", report.Commission.Paid,
		"commissions_total", report.Commission.TotalCommission,
	)
}

package services

import (
	"testing"
	"time"

	"fxvest/internal/models"
	"fxvest/internal/testutil"
)

func TestRunDailyCycle(t *testing.T) {
	t.Run("accrues_then_distributes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestRates(t, db)
		rates := NewRateService(db)
		referrals := NewReferralService(db, rates)
		accrual := NewAccrualService(db, 90)
		svc := NewCycleService(db, rates, accrual, referrals)

		parent := testutil.CreateTestUser(t, db)
		child := testutil.CreateTestUserReferredBy(t, db, &parent.ID)
		testutil.CreateTestInvestment(t, db, child.ID, 100000, 1.0)

		report, err := svc.RunDailyCycle(monday)
		testutil.AssertNoError(t, err)

		if report.Accrual == nil || report.Accrual.Processed != 1 {
			t.Fatalf("expected 1 accrued investment, got %+v", report.Accrual)
		}
		if report.Commission == nil || report.Commission.Paid != 1 {
			t.Fatalf("expected 1 commission paid, got %+v", report.Commission)
		}

		// The commission must come from the ROI accrual of the same run.
		var p models.User
		db.First(&p, parent.ID)
		if p.ReferralEarnings != 100 {
			t.Errorf("expected level 1 commission 100, got %d", p.ReferralEarnings)
		}

		var run models.CycleRun
		err = db.Where("date = ?", "2024-03-04").First(&run).Error
		testutil.AssertNoError(t, err)
		if run.Status != models.CycleRunCompleted {
			t.Errorf("expected completed run, got %s", run.Status)
		}
		if run.InvestmentsProcessed != 1 || run.CommissionsPaid != 1 {
			t.Errorf("unexpected run counters: %+v", run)
		}
	})

	t.Run("weekend_records_skipped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestRates(t, db)
		rates := NewRateService(db)
		referrals := NewReferralService(db, rates)
		accrual := NewAccrualService(db, 90)
		svc := NewCycleService(db, rates, accrual, referrals)

		saturday := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
		report, err := svc.RunDailyCycle(saturday)
		testutil.AssertNoError(t, err)

		if report.Commission != nil {
			t.Error("expected no distribution on a skipped day")
		}

		var run models.CycleRun
		err = db.Where("date = ?", "2024-03-02").First(&run).Error
		testutil.AssertNoError(t, err)
		if run.Status != models.CycleRunSkipped {
			t.Errorf("expected skipped run, got %s", run.Status)
		}
	})

	t.Run("missing_rates_records_failed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		rates := NewRateService(db)
		referrals := NewReferralService(db, rates)
		accrual := NewAccrualService(db, 90)
		svc := NewCycleService(db, rates, accrual, referrals)

		_, err := svc.RunDailyCycle(monday)
		testutil.AssertAppError(t, err, "RATES_NOT_CONFIGURED")

		var run models.CycleRun
		err = db.Where("date = ?", "2024-03-04").First(&run).Error
		testutil.AssertNoError(t, err)
		if run.Status != models.CycleRunFailed {
			t.Errorf("expected failed run, got %s", run.Status)
		}
	})

	t.Run("rerun_fills_in_missing_work", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestRates(t, db)
		rates := NewRateService(db)
		referrals := NewReferralService(db, rates)
		accrual := NewAccrualService(db, 90)
		svc := NewCycleService(db, rates, accrual, referrals)

		parent := testutil.CreateTestUser(t, db)
		child := testutil.CreateTestUserReferredBy(t, db, &parent.ID)
		testutil.CreateTestInvestment(t, db, child.ID, 100000, 1.0)

		_, err := svc.RunDailyCycle(monday)
		testutil.AssertNoError(t, err)
		report, err := svc.RunDailyCycle(monday)
		testutil.AssertNoError(t, err)

		if report.Accrual.Processed != 0 || report.Accrual.AlreadyAccrued != 1 {
			t.Errorf("expected rerun accrual to be a no-op, got %+v", report.Accrual)
		}
		if report.Commission.Paid != 0 || report.Commission.AlreadyPaid != 1 {
			t.Errorf("expected rerun distribution to be a no-op, got %+v", report.Commission)
		}

		var p models.User
		db.First(&p, parent.ID)
		if p.ReferralEarnings != 100 {
			t.Errorf("expected single commission after rerun, got %d", p.ReferralEarnings)
		}
	})
}

func TestHasCompletedRun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	testutil.CreateTestRates(t, db)
	rates := NewRateService(db)
	referrals := NewReferralService(db, rates)
	accrual := NewAccrualService(db, 90)
	svc := NewCycleService(db, rates, accrual, referrals)

	done, err := svc.HasCompletedRun("2024-03-04")
	testutil.AssertNoError(t, err)
	if done {
		t.Fatal("expected no run recorded yet")
	}

	_, err = svc.RunDailyCycle(monday)
	testutil.AssertNoError(t, err)

	done, err = svc.HasCompletedRun("2024-03-04")
	testutil.AssertNoError(t, err)
	if !done {
		t.Error("expected completed run to be found")
	}

	// A failed run does not count as completed.
	failed := &models.CycleRun{Date: "2024-03-05", Status: models.CycleRunFailed, StartedAt: time.Now()}
	testutil.AssertNoError(t, db.Create(failed).Error)

	done, err = svc.HasCompletedRun("2024-03-05")
	testutil.AssertNoError(t, err)
	if done {
		t.Error("expected failed run to not count as completed")
	}
}

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"fxvest/internal/models"
)

// TestDailyCycleFlow exercises the full path: referred users open positions,
// an operator triggers the cycle, ROI is credited, commissions fan out three
// levels, and the withdrawable amount reflects everything.
func TestDailyCycleFlow(t *testing.T) {
	app := setupApp(t)

	// Referral chain: great -> grand -> parent -> investor.
	great := app.createUser(t, "great", 0, nil)
	grand := app.createUser(t, "grand", 0, &great.ID)
	parent := app.createUser(t, "parent", 0, &grand.ID)
	investor := app.createUser(t, "investor", 500000, &parent.ID)

	// Open a position: 100000 cents at 1% daily.
	rec := app.request("POST", fmt.Sprintf("/internal/v1/users/%d/investments", investor.ID),
		`{"forex_pair":"EUR/USD","amount":100000,"daily_roi":1.0}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 opening investment, got %d: %s", rec.Code, rec.Body.String())
	}

	// Opening the first EUR/USD position pays the direct referrer the
	// pair's one-time reward.
	var p models.User
	app.DB.First(&p, parent.ID)
	if p.ReferralEarnings != 10000 {
		t.Errorf("expected one-time reward 10000 for parent, got %d", p.ReferralEarnings)
	}

	// Trigger the cycle for a trading day.
	rec = app.request("POST", "/internal/v1/cycle/run", `{"date":"2024-03-04"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 running cycle, got %d: %s", rec.Code, rec.Body.String())
	}
	report := parseJSON(t, rec)["report"].(map[string]interface{})
	accrual := report["accrual"].(map[string]interface{})
	if accrual["processed"].(float64) != 1 {
		t.Errorf("expected 1 accrued investment, got %v", accrual["processed"])
	}
	commission := report["commission"].(map[string]interface{})
	if commission["paid"].(float64) != 3 {
		t.Errorf("expected 3 commissions paid, got %v", commission["paid"])
	}

	// 1000 cents of ROI fan out at 10%/5%/2%.
	checks := []struct {
		id   uint
		want int64
	}{
		{parent.ID, 10100}, // 10000 reward + 100 daily
		{grand.ID, 50},
		{great.ID, 20},
	}
	for _, c := range checks {
		var u models.User
		app.DB.First(&u, c.id)
		if u.ReferralEarnings != c.want {
			t.Errorf("user %d: expected referral earnings %d, got %d", c.id, c.want, u.ReferralEarnings)
		}
	}

	// Re-running the same date pays nothing twice.
	rec = app.request("POST", "/internal/v1/cycle/run", `{"date":"2024-03-04"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 re-running cycle, got %d: %s", rec.Code, rec.Body.String())
	}
	report = parseJSON(t, rec)["report"].(map[string]interface{})
	commission = report["commission"].(map[string]interface{})
	if commission["paid"].(float64) != 0 {
		t.Errorf("expected rerun to pay nothing, got %v", commission["paid"])
	}

	// The investor's withdrawable reflects one day of ROI.
	rec = app.request("GET", fmt.Sprintf("/internal/v1/users/%d/withdrawable", investor.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 getting withdrawable, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := parseJSON(t, rec)["withdrawable"].(float64); got != 1000 {
		t.Errorf("expected withdrawable 1000, got %v", got)
	}

	// Referral stats for the top of the chain see the whole network.
	rec = app.request("GET", fmt.Sprintf("/internal/v1/users/%d/referrals/stats", great.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 getting stats, got %d: %s", rec.Code, rec.Body.String())
	}
	stats := parseJSON(t, rec)["stats"].(map[string]interface{})
	if stats["total_count"].(float64) != 3 {
		t.Errorf("expected 3 users in network, got %v", stats["total_count"])
	}

	// The run log records the completed cycle.
	rec = app.request("GET", "/internal/v1/cycle/runs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 getting run log, got %d: %s", rec.Code, rec.Body.String())
	}
	if total := parseJSON(t, rec)["total_items"].(float64); total != 2 {
		t.Errorf("expected 2 recorded runs, got %v", total)
	}
}

// TestWithdrawalFlow exercises deposit and withdrawal requests over HTTP.
func TestWithdrawalFlow(t *testing.T) {
	app := setupApp(t)
	user := app.createUser(t, "saver", 200000, nil)

	// Fund a position and run one trading day to earn something.
	rec := app.request("POST", fmt.Sprintf("/internal/v1/users/%d/investments", user.ID),
		`{"forex_pair":"EUR/USD","amount":100000,"daily_roi":2.0}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 opening investment, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", "/internal/v1/cycle/run", `{"date":"2024-03-04"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 running cycle, got %d: %s", rec.Code, rec.Body.String())
	}

	// 2000 cents earned; a withdrawal inside that succeeds.
	rec = app.request("POST", fmt.Sprintf("/internal/v1/users/%d/transactions", user.ID),
		`{"type":"withdrawal","amount":1500}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating withdrawal, got %d: %s", rec.Code, rec.Body.String())
	}

	// A second request beyond the remaining 500 is rejected.
	rec = app.request("POST", fmt.Sprintf("/internal/v1/users/%d/transactions", user.ID),
		`{"type":"withdrawal","amount":1000}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for excess withdrawal, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "EXCEEDS_WITHDRAWABLE" {
		t.Errorf("expected EXCEEDS_WITHDRAWABLE, got %v", errObj["code"])
	}

	// Deposits are always accepted as pending.
	rec = app.request("POST", fmt.Sprintf("/internal/v1/users/%d/transactions", user.ID),
		`{"type":"deposit","amount":50000}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating deposit, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", fmt.Sprintf("/internal/v1/users/%d/transactions", user.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing transactions, got %d: %s", rec.Code, rec.Body.String())
	}
	if total := parseJSON(t, rec)["total_items"].(float64); total != 2 {
		t.Errorf("expected 2 transactions, got %v", total)
	}
}

// TestReferralCodeLookup verifies a referral code resolves to its owner so a
// signup flow can attach the referrer.
func TestReferralCodeLookup(t *testing.T) {
	app := setupApp(t)
	owner := app.createUser(t, "owner", 0, nil)

	rec := app.request("GET", "/internal/v1/referral-codes/"+owner.ReferralCode, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if uint(user["id"].(float64)) != owner.ID {
		t.Errorf("expected user %d, got %v", owner.ID, user["id"])
	}

	rec = app.request("GET", "/internal/v1/referral-codes/000000", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown code, got %d", rec.Code)
	}
}

// TestUnauthorizedAccess verifies the operator surface rejects requests
// without the API key.
func TestUnauthorizedAccess(t *testing.T) {
	app := setupApp(t)

	req := app.request("GET", "/internal/v1/cycle/runs", "")
	if req.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d", req.Code)
	}

	// Without the key header.
	rec := requestWithoutKey(app, "GET", "/internal/v1/cycle/runs")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}
}

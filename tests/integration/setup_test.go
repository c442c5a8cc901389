package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fxvest/internal/handlers"
	"fxvest/internal/logger"
	"fxvest/internal/middleware"
	"fxvest/internal/models"
	"fxvest/internal/services"
	"fxvest/internal/validator"
)

const testOpsKey = "test-ops-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Investment{},
		&models.InvestmentEvent{},
		&models.ReferralEvent{},
		&models.CommissionRate{},
		&models.Transaction{},
		&models.CycleRun{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	rateService := services.NewRateService(db)
	userService := services.NewUserService(db)
	referralService := services.NewReferralService(db, rateService)
	accrualService := services.NewAccrualService(db, 90)
	investmentService := services.NewInvestmentService(db, userService, referralService)
	transactionService := services.NewTransactionService(db, userService)
	cycleService := services.NewCycleService(db, rateService, accrualService, referralService)

	if _, err := rateService.EnsureDefaultRates(); err != nil {
		t.Fatalf("failed to seed rates: %v", err)
	}

	// Handlers
	investmentHandler := handlers.NewInvestmentHandler(investmentService)
	referralHandler := handlers.NewReferralHandler(referralService, userService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	opsHandler := handlers.NewOpsHandler(cycleService)

	// Router
	router := gin.New()
	router.Use(middleware.ErrorHandler())

	api := router.Group("/internal/v1")
	api.Use(middleware.OpsAuthMiddleware(testOpsKey))

	users := api.Group("/users/:id")
	users.POST("/investments", investmentHandler.CreateInvestment)
	users.GET("/investments", investmentHandler.GetUserInvestments)
	users.GET("/investments/:investment_id", investmentHandler.GetInvestment)
	users.POST("/investments/:investment_id/close", investmentHandler.CloseInvestment)
	users.GET("/investments/history", investmentHandler.GetInvestmentHistory)
	users.GET("/referrals/stats", referralHandler.GetReferralStats)
	users.GET("/referrals/history", referralHandler.GetReferralHistory)
	users.POST("/transactions", transactionHandler.CreateTransaction)
	users.GET("/transactions", transactionHandler.GetUserTransactions)
	users.GET("/withdrawable", transactionHandler.GetWithdrawable)

	api.GET("/referral-codes/:code", referralHandler.ResolveReferralCode)

	cycle := api.Group("/cycle")
	cycle.POST("/run", opsHandler.RunCycle)
	cycle.GET("/runs", opsHandler.GetCycleRuns)

	return &testApp{DB: db, Router: router}
}

// request performs an authenticated HTTP request against the test router.
func (app *testApp) request(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}
	req.Header.Set("X-API-Key", testOpsKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// requestWithoutKey performs a request with no API key header.
func requestWithoutKey(app *testApp, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// createUser inserts a user directly; registration lives outside this module.
func (app *testApp) createUser(t *testing.T, username string, balance int64, referredBy *uint) *models.User {
	t.Helper()

	n := dbCounter.Add(1)
	user := &models.User{
		Username:     username,
		Phone:        fmt.Sprintf("+1555%07d", n),
		Password:     "x",
		Balance:      balance,
		ReferralCode: fmt.Sprintf("%06d", n),
		ReferredByID: referredBy,
		IsActive:     true,
	}
	if err := app.DB.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

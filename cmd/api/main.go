package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"fxvest/internal/config"
	"fxvest/internal/database"
	"fxvest/internal/handlers"
	"fxvest/internal/logger"
	"fxvest/internal/middleware"
	"fxvest/internal/scheduler"
	"fxvest/internal/services"
	"fxvest/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	rateService := services.NewRateService(db)
	userService := services.NewUserService(db)
	referralService := services.NewReferralService(db, rateService)
	accrualService := services.NewAccrualService(db, appConfig.MaturityDays)
	investmentService := services.NewInvestmentService(db, userService, referralService)
	transactionService := services.NewTransactionService(db, userService)
	cycleService := services.NewCycleService(db, rateService, accrualService, referralService)

	// Seed the commission rate configuration on first boot
	if _, err := rateService.EnsureDefaultRates(); err != nil {
		return fmt.Errorf("failed to ensure commission rates: %w", err)
	}

	// Start the daily cycle scheduler
	sched, err := scheduler.New(appConfig, cycleService)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	sched.Start()

	// Initialize handlers
	investmentHandler := handlers.NewInvestmentHandler(investmentService)
	referralHandler := handlers.NewReferralHandler(referralService, userService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	opsHandler := handlers.NewOpsHandler(cycleService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// All routes are machine-to-machine and sit behind the ops API key.
	api := router.Group("/internal/v1")
	api.Use(middleware.OpsAuthMiddleware(appConfig.OpsAPIKey))

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

	// Stop the scheduler cleanly on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("Shutting down")
		sched.Stop()
		os.Exit(0)
	}()

	log.Infof("Starting fxvest server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

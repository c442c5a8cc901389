package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Ops endpoints are machine-to-machine; requests authenticate with this key.
	OpsAPIKey string

	// Accrual engine
	MaturityDays int

	// Daily cycle trigger
	CycleSchedule string
	CycleTimezone string
	MisfireGrace  time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "fxvest"),
		DBPassword: getEnv("DB_PASSWORD", "fxvest"),
		DBName:     getEnv("DB_NAME", "fxvest"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		OpsAPIKey: getEnv("OPS_API_KEY", ""),

		MaturityDays: getEnvInt("MATURITY_DAYS", 90),

		// Cron spec in standard 5-field format; default fires shortly after
		// midnight so ledger dates line up with the new business day.
		CycleSchedule: getEnv("CYCLE_SCHEDULE", "5 0 * * *"),
		CycleTimezone: getEnv("CYCLE_TIMEZONE", "UTC"),
	}

	graceStr := getEnv("CYCLE_MISFIRE_GRACE", "6h")
	grace, err := time.ParseDuration(graceStr)
	if err != nil {
		log.Printf("Warning: invalid CYCLE_MISFIRE_GRACE value '%s', falling back to 6h\n", graceStr)
		grace = 6 * time.Hour
	}
	config.MisfireGrace = grace

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}

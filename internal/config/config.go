package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Port             string
	DBConn           string
	Storage          string
	LogLevel         string
	JWTSecret        string
	CronSecret       string
	SessionTTL       time.Duration
	AdminEmail       string
	AdminPassword    string
	SchedulerEnabled bool
	BillingSchedule  string
	LateFeeSchedule  string
}

// NewConfig loads configuration from environment variables.
// A .env file in the working directory (or the one named by ENV_FILE) is loaded first when present;
// variables already set in the environment win.
func NewConfig() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	schedEnabled, err := strconv.ParseBool(getEnv("SCHEDULER_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_ENABLED: %w", err)
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBConn:           getEnv("DB_CONN", "host=localhost port=5432 user=hall password=hall dbname=hallbridge sslmode=disable"),
		Storage:          strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		CronSecret:       getEnv("CRON_SECRET", ""),
		SessionTTL:       ttl,
		AdminEmail:       getEnv("ADMIN_EMAIL", "admin@hallbridge.local"),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
		SchedulerEnabled: schedEnabled,
		BillingSchedule:  getEnv("BILLING_SCHEDULE", "0 1 1 * *"),
		LateFeeSchedule:  getEnv("LATE_FEE_SCHEDULE", "30 0 * * *"),
	}

	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}
	if cfg.Storage == StoragePostgres && cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

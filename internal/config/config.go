package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings shared by the binaries.
type Config struct {
	Port string

	// BigQueryProject / BigQueryDataset locate the finance dataset.
	BigQueryProject string
	BigQueryDataset string

	// StatementsBucket is the GCS bucket for uploaded statement files.
	StatementsBucket string

	// MonobankBaseURL overrides the bank API endpoint (tests, proxies).
	MonobankBaseURL string

	// SyncCooldown throttles API-triggered bank sync; SyncInterval is the
	// background scheduler tick. The batch worker uses BatchSyncCooldown.
	SyncCooldown      time.Duration
	BatchSyncCooldown time.Duration
	SyncInterval      time.Duration
}

// Load reads configuration from the environment, with an optional .env file
// for local development.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	return &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		BigQueryProject:   os.Getenv("BIGQUERY_PROJECT"),
		BigQueryDataset:   getEnvOrDefault("BIGQUERY_DATASET", "finance"),
		StatementsBucket:  os.Getenv("STATEMENTS_BUCKET"),
		MonobankBaseURL:   getEnvOrDefault("MONOBANK_BASE_URL", "https://api.monobank.ua"),
		SyncCooldown:      getDurationOrDefault("SYNC_COOLDOWN", time.Minute),
		BatchSyncCooldown: getDurationOrDefault("BATCH_SYNC_COOLDOWN", 10*time.Minute),
		SyncInterval:      getDurationOrDefault("SYNC_INTERVAL", 5*time.Minute),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

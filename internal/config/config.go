// Package config reads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the trends service. Postgres and Redis
// are optional layers; an empty URL disables the layer rather than failing
// startup.
type Config struct {
	Port string `validate:"required,numeric"`

	// StatsBaseURL is the upstream NBA stats API root.
	StatsBaseURL string `validate:"required,url"`

	DatabaseURL string
	RedisURL    string

	// SeasonRolloverMonth is the month a new season year begins, 1-12.
	SeasonRolloverMonth int `validate:"min=1,max=12"`

	LogLevel string `validate:"oneof=debug info warn error"`
	Env      string `validate:"oneof=dev staging prod"`
}

// Load reads configuration from the environment. A .env file is honored
// when present; missing files are fine.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		StatsBaseURL: getEnv("STATS_BASE_URL", "https://stats.fortuna.gg"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Env:          getEnv("APP_ENV", "dev"),
	}

	month, err := strconv.Atoi(getEnv("SEASON_ROLLOVER_MONTH", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEASON_ROLLOVER_MONTH: %w", err)
	}
	cfg.SeasonRolloverMonth = month

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// getEnv returns an environment variable value or a default if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

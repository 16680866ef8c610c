package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL      string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string

	// Redis
	RedisURL      string
	RedisPassword string

	// Server
	Port string

	// Authentication
	JWTSecret string

	// Collaborators
	FundsAPIURL      string
	FundsAPIKey      string
	TournamentAPIURL string
	TournamentAPIKey string
	Currency         string

	// Payouts
	PayoutTimeout time.Duration
}

func Load() *Config {
	return &Config{
		// Environment
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		// Database
		DatabaseURL:      getEnvOrDefault("DATABASE_URL", ""),
		PostgresDB:       getEnvOrDefault("POSTGRES_DB", "arena_ledger"),
		PostgresUser:     getEnvOrDefault("POSTGRES_USER", "arena_user"),
		PostgresPassword: getEnvOrDefault("POSTGRES_PASSWORD", "arena_password"),
		PostgresHost:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvOrDefault("POSTGRES_PORT", "5432"),

		// Redis
		RedisURL:      getEnvOrDefault("REDIS_URL", "redis://localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		// Server
		Port: getEnvOrDefault("PORT", "8080"),

		// Authentication
		JWTSecret: getEnvOrDefault("JWT_SECRET", "arena-ledger-secret-key-change-in-production"),

		// Collaborators
		FundsAPIURL:      getEnvOrDefault("FUNDS_API_URL", "http://localhost:3068"),
		FundsAPIKey:      getEnvOrDefault("FUNDS_API_KEY", ""),
		TournamentAPIURL: getEnvOrDefault("TOURNAMENT_API_URL", "http://localhost:3080"),
		TournamentAPIKey: getEnvOrDefault("TOURNAMENT_API_KEY", ""),
		Currency:         getEnvOrDefault("LEDGER_CURRENCY", "MNT"),

		// Payouts
		PayoutTimeout: getEnvDurationOrDefault("PAYOUT_TIMEOUT_SECONDS", 10*time.Second),
	}
}

func (c *Config) GetDatabaseURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Row fetching
	FetchPageSize int           // rows per page against the store (store caps at 1000)
	FetchTimeout  time.Duration // upper bound for a full paginated fetch

	// Response cache (optional, layered above the core)
	RedisURL string        // env: REDIS_URL, empty disables caching
	CacheTTL time.Duration // env: CACHE_TTL_SECONDS, default 900s
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:           getEnv("ENV", "development"),
		ServerAddr:    getEnv("SERVER_ADDR", ":3000"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://localhost:5432/callinsights?sslmode=disable"),
		CORSOrigins:   getEnv("CORS_ORIGINS", ""),
		FetchPageSize: getEnvInt("FETCH_PAGE_SIZE", 1000),
		FetchTimeout:  time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 60)) * time.Second,
		RedisURL:      getEnv("REDIS_URL", ""),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

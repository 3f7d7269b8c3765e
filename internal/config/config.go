package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string

	// Horizon job tuning. BufferDays is how far ahead rules must stay
	// materialized, ExtendDays how much a single run adds.
	HorizonBufferDays int
	HorizonExtendDays int
	HorizonInterval   time.Duration

	MaterializeWorkers int
	DefaultTimezone    string
}

// Load reads configuration from the environment, with .env as a convenience
// for local development.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("config: DATABASE_URL is required")
	}

	cfg := &Config{
		DatabaseURL:        dsn,
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		HorizonBufferDays:  getIntEnv("HORIZON_BUFFER_DAYS", 730),
		HorizonExtendDays:  getIntEnv("HORIZON_EXTEND_DAYS", 365),
		HorizonInterval:    getDurationEnv("HORIZON_INTERVAL", 24*time.Hour),
		MaterializeWorkers: getIntEnv("MATERIALIZE_WORKERS", 8),
		DefaultTimezone:    getEnv("DEFAULT_TIMEZONE", "UTC"),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Printf("config: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("config: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

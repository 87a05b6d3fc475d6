package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries all environment-driven settings.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string
	// DatabaseURL selects the Postgres store when non-empty; the in-memory
	// store is used otherwise.
	DatabaseURL string
	LogLevel    string
	LogFormat   string
	// SweepSpec is the cron expression driving the recurring-rule sweep.
	SweepSpec string
	// DevSeed enables seeding a demo user and accounts at startup.
	DevSeed bool
}

// Load reads configuration from the environment, consulting a local .env
// file first if one exists.
func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Addr:        getenv("ADDR", ":8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		LogFormat:   strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT"))),
		SweepSpec:   getenv("SWEEP_SPEC", "@hourly"),
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEV_SEED"))) {
	case "1", "true", "yes":
		cfg.DevSeed = true
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

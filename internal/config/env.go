package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names. A .env file in the working directory is
// loaded first; explicit process environment wins over it.
const (
	envDatabasePath  = "RC_DATABASE_PATH"
	envWriteDebounce = "RC_WRITE_DEBOUNCE"
	envHashCost      = "RC_HASH_COST"
	envWindowDays    = "RC_WINDOW_DAYS"
)

// parseEnv overlays Config with values from the environment. Unset or
// unparseable variables leave the current value alone.
func parseEnv(cfg *Config) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	if v := os.Getenv(envDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(envWriteDebounce); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WriteDebounce = d
		}
	}
	if v := os.Getenv(envHashCost); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HashCost = n
		}
	}
	if v := os.Getenv(envWindowDays); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WindowDays = n
		}
	}
}

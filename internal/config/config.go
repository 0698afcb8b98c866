// Package config loads runtime settings for the Routine-Calendary CLI.
// Sources are overlaid in order: built-in defaults, a .env file / the
// process environment, an optional JSON file (-c/-config), and finally
// command-line flags. Later sources take precedence.
package config

import "time"

// Config holds runtime settings.
type Config struct {
	// DatabasePath is the SQLite file backing the key-value substrate.
	DatabasePath string

	// WriteDebounce coalesces rapid document writes into one physical
	// write. Zero disables debouncing.
	WriteDebounce time.Duration

	// HashCost is the bcrypt cost factor for stored password hashes.
	HashCost int

	// WindowDays is the KPI comparison window for the stats command.
	WindowDays int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "routine_calendary.db"
	c.WriteDebounce = 300 * time.Millisecond
	c.HashCost = 10
	c.WindowDays = 7
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment (including a .env file when present), JSON, and
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}

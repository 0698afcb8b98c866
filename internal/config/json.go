package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/LautaroLeall/Routine-Calendary/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the debounce either as a string like
// "300ms" or as integer nanoseconds.
type jsonConfig struct {
	DatabasePath  string         `json:"database_path"`
	WriteDebounce timex.Duration `json:"write_debounce"`
	HashCost      int            `json:"hash_cost"`
	WindowDays    int            `json:"window_days"`
}

// parseJSON overlays Config with values loaded from the JSON file named by
// the -c/-config flag. No flag means no JSON source. Absent fields keep
// their current values; read or unmarshal errors panic (LoadConfig runs
// before any state exists worth protecting).
func parseJSON(cfg *Config) {
	path := jsonConfigFile()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.WriteDebounce.Duration != 0 {
		cfg.WriteDebounce = time.Duration(jc.WriteDebounce.Duration)
	}
	if jc.HashCost != 0 {
		cfg.HashCost = jc.HashCost
	}
	if jc.WindowDays != 0 {
		cfg.WindowDays = jc.WindowDays
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"routine-calendary"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestLoadConfig_Defaults(t *testing.T) {
	withArgs(t)

	cfg := LoadConfig()
	require.Equal(t, "routine_calendary.db", cfg.DatabasePath)
	require.Equal(t, 300*time.Millisecond, cfg.WriteDebounce)
	require.Equal(t, 10, cfg.HashCost)
	require.Equal(t, 7, cfg.WindowDays)
}

func TestLoadConfig_EnvOverlay(t *testing.T) {
	withArgs(t)
	t.Setenv(envDatabasePath, "env.db")
	t.Setenv(envWriteDebounce, "1s")
	t.Setenv(envHashCost, "12")
	t.Setenv(envWindowDays, "30")

	cfg := LoadConfig()
	require.Equal(t, "env.db", cfg.DatabasePath)
	require.Equal(t, time.Second, cfg.WriteDebounce)
	require.Equal(t, 12, cfg.HashCost)
	require.Equal(t, 30, cfg.WindowDays)
}

func TestLoadConfig_EnvIgnoresUnparseableValues(t *testing.T) {
	withArgs(t)
	t.Setenv(envWriteDebounce, "soon")
	t.Setenv(envHashCost, "many")

	cfg := LoadConfig()
	require.Equal(t, 300*time.Millisecond, cfg.WriteDebounce)
	require.Equal(t, 10, cfg.HashCost)
}

func TestLoadConfig_JSONOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"database_path": "json.db",
		"write_debounce": "2s",
		"window_days": 14
	}`), 0o600))
	withArgs(t, "-c", path)

	cfg := LoadConfig()
	require.Equal(t, "json.db", cfg.DatabasePath)
	require.Equal(t, 2*time.Second, cfg.WriteDebounce)
	require.Equal(t, 14, cfg.WindowDays)
	require.Equal(t, 10, cfg.HashCost, "absent JSON fields keep defaults")
}

func TestLoadConfig_FlagsWinOverJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"database_path": "json.db"}`), 0o600))
	withArgs(t, "-c", path, "-d", "flag.db", "-w", "0s", "-k", "28")

	cfg := LoadConfig()
	require.Equal(t, "flag.db", cfg.DatabasePath)
	require.Zero(t, cfg.WriteDebounce)
	require.Equal(t, 28, cfg.WindowDays)
}

func TestFilterArgs(t *testing.T) {
	args := []string{"-d", "my.db", "-x", "noise", "--config=conf.json", "-w=1s"}

	require.Equal(t, []string{"-d", "my.db"}, filterArgs(args, []string{"-d"}))
	require.Equal(t, []string{"--config=conf.json"}, filterArgs(args, []string{"--config"}))
	require.Equal(t, []string{"-w=1s"}, filterArgs(args, []string{"-w"}))
	require.Empty(t, filterArgs(args, []string{"-q"}))
}

package config

import (
	"flag"
	"os"
	"strings"
	"time"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   path to the SQLite database file
//	-w string   write debounce as a duration, e.g. "300ms" ("0" disables)
//	-k int      KPI window length in days
//
// The function filters os.Args to only the flags it knows about, so it can
// coexist with flags owned by other components (such as -c/-config).
func parseFlags(cfg *Config) {
	args := filterArgs(os.Args[1:], []string{"-d", "-w", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the database file")
	debounce := fs.String("w", cfg.WriteDebounce.String(), "write debounce duration")
	fs.IntVar(&cfg.WindowDays, "k", cfg.WindowDays, "KPI window length in days")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if d, err := time.ParseDuration(*debounce); err == nil {
		cfg.WriteDebounce = d
	}
}

// jsonConfigFile extracts the config file path provided via -c or -config.
// Only these flags are parsed; other arguments are ignored.
func jsonConfigFile() string {
	var path string

	args := filterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return path
}

// filterArgs returns only the allowed flags (and their values) from args.
// Both "-f value" and "-f=value" shapes are recognized.
func filterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

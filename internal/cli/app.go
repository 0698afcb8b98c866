package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/LautaroLeall/Routine-Calendary/internal/appdata"
	"github.com/LautaroLeall/Routine-Calendary/internal/auth"
	"github.com/LautaroLeall/Routine-Calendary/internal/calendar"
	"github.com/LautaroLeall/Routine-Calendary/internal/common"
	"github.com/LautaroLeall/Routine-Calendary/internal/config"
	"github.com/LautaroLeall/Routine-Calendary/internal/filex"
	"github.com/LautaroLeall/Routine-Calendary/internal/kvstore"
	"github.com/LautaroLeall/Routine-Calendary/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the persistence stack together for the interactive shell. One
// App is one browsing context: it shares the SQLite substrate with any
// other context through the database file and the change bus.
type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB
	auth   *auth.Service
	data   *appdata.Store
	reader *bufio.Reader
}

// NewApp opens the substrate database, runs migrations, and builds the
// credential and document stores on top of it.
func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewText(os.Stderr, slog.LevelInfo)

	if _, err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("error preparing database directory: %w", err)
	}

	substrate, db, err := kvstore.OpenSQLite(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	bus := kvstore.NewBus()
	authService := auth.NewService(substrate, bus, auth.Config{
		Debounce: cfg.WriteDebounce,
		HashCost: cfg.HashCost,
		Logger:   log,
	})
	data := appdata.NewStore(substrate, bus, cfg.WriteDebounce, log)

	return &App{
		config: cfg,
		log:    log,
		db:     db,
		auth:   authService,
		data:   data,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// Run enters the REPL and releases all resources when it returns.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)
	printlnFn("Welcome to Routine Calendary (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, bufio.NewScanner(os.Stdin))
}

// Close flushes pending debounced writes and closes the database.
func (a *App) Close(ctx context.Context) {
	a.auth.Close(ctx)
	a.data.Close(ctx)
	if err := a.db.Close(); err != nil {
		a.log.Warn(ctx, "error closing database", "error", err)
	}
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.auth.CurrentUser(ctx) != nil
}

func (a *App) getStatus(ctx context.Context) string {
	if user := a.auth.CurrentUser(ctx); user != nil {
		return fmt.Sprintf("(%s)", user.Username)
	}
	return ""
}

// manager binds a calendar manager to the authenticated user.
func (a *App) manager(ctx context.Context) (*calendar.Manager, error) {
	user := a.auth.CurrentUser(ctx)
	if user == nil {
		return nil, fmt.Errorf("no authenticated user: %w", common.ErrNotFound)
	}
	return calendar.NewManager(a.data, user.ID), nil
}

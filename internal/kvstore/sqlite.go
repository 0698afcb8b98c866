package kvstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/LautaroLeall/Routine-Calendary/internal/common"
	"github.com/LautaroLeall/Routine-Calendary/internal/dbx"
	"github.com/LautaroLeall/Routine-Calendary/internal/kvstore/migrations"
)

// SQLiteSubstrate persists key-value pairs in a single SQLite table.
// SQLite serializes writes per connection, which gives every key write
// the atomicity the Store layer assumes.
type SQLiteSubstrate struct {
	q dbx.DBTX
}

// NewSQLiteSubstrate wraps an already-migrated database handle. Both
// *sql.DB and *sql.Tx work; a transactional handle lets callers compose
// several key writes into one atomic unit via dbx.WithTx.
func NewSQLiteSubstrate(q dbx.DBTX) *SQLiteSubstrate {
	return &SQLiteSubstrate{q: q}
}

// RunMigrations applies the embedded schema migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// OpenSQLite opens (or creates) the substrate database at dsn, applies
// migrations, and returns a ready substrate. The caller owns db.Close
// via the returned handle.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteSubstrate, *sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open substrate db: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate substrate db: %w", err)
	}
	return NewSQLiteSubstrate(db), db, nil
}

func (s *SQLiteSubstrate) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get kv[%s]: %w: %w", key, common.ErrPersistence, err)
	}
	return value, true, nil
}

func (s *SQLiteSubstrate) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w: %w", key, common.ErrPersistence, err)
	}
	return nil
}

func (s *SQLiteSubstrate) Delete(ctx context.Context, key string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w: %w", key, common.ErrPersistence, err)
	}
	return nil
}

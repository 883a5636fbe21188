// Package sqlite stores persistence keys as rows of a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver

	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

const upsert = `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// Config holds the configuration for the SQLite store.
type Config struct {
	Path   string
	Logger *slog.Logger
}

// KV implements core.BatchPersistence with a SQLite database file.
type KV struct {
	db     *sqlx.DB
	path   string
	logger *slog.Logger
}

type row struct {
	Key       string `db:"key"`
	Value     []byte `db:"value"`
	UpdatedAt int64  `db:"updated_at"`
}

// Open connects to the database at cfg.Path and creates the table if needed.
func Open(ctx context.Context, cfg Config) (*KV, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", cfg.Path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Debug("sqlite store opened", "path", cfg.Path)
	return &KV{db: db, path: cfg.Path, logger: logger}, nil
}

// Load implements core.Persistence.
func (kv *KV) Load(ctx context.Context, key string) ([]byte, error) {
	var r row
	err := kv.db.GetContext(ctx, &r, `SELECT key, value, updated_at FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return r.Value, nil
}

// Save implements core.Persistence.
func (kv *KV) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("empty key: %w", core.ErrInvalid)
	}
	if _, err := kv.db.ExecContext(ctx, upsert, key, data, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// SaveBatch implements core.BatchPersistence in one transaction.
func (kv *KV) SaveBatch(ctx context.Context, entries map[string][]byte) error {
	tx, err := kv.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	for key, data := range entries {
		if key == "" {
			return fmt.Errorf("empty key: %w", core.ErrInvalid)
		}
		if _, err := tx.ExecContext(ctx, upsert, key, data, now); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Keys lists stored keys with their last update time.
func (kv *KV) Keys(ctx context.Context) (map[string]time.Time, error) {
	var rows []row
	if err := kv.db.SelectContext(ctx, &rows, `SELECT key, updated_at FROM kv ORDER BY key`); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	out := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		out[r.Key] = time.UnixMilli(r.UpdatedAt)
	}
	return out, nil
}

// Close releases the database handle.
func (kv *KV) Close() error {
	return kv.db.Close()
}

var _ core.BatchPersistence = (*KV)(nil)

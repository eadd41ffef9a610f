package templatestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/alnah/go-admitdoc/internal/fileutil"
)

// SQLiteCache is the local read/write configuration cache. Values are
// stored as JSON documents in a key-value table under TemplatesKey and
// ConfigKey.
type SQLiteCache struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLiteCache opens (or creates) the cache database at path and applies
// pending migrations. A nil logger means slog.Default().
func OpenSQLiteCache(ctx context.Context, path string, logger *slog.Logger) (*SQLiteCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", ErrStore, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: pinging database: %v", ErrStore, err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	c := &SQLiteCache{db: db, logger: logger}
	if err := c.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: running migrations: %v", ErrStore, err)
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Load returns the cached configuration.
func (c *SQLiteCache) Load(ctx context.Context) (*Config, error) {
	data, err := c.get(ctx, ConfigKey)
	if err != nil {
		return nil, err
	}
	return decodeConfig(data, "cache")
}

// Save replaces the cached configuration.
func (c *SQLiteCache) Save(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return c.inTx(ctx, func(tx *sql.Tx) error {
		return putJSON(ctx, tx, ConfigKey, cfg)
	})
}

// LoadTemplates returns the cached template texts.
func (c *SQLiteCache) LoadTemplates(ctx context.Context) (*Templates, error) {
	data, err := c.get(ctx, TemplatesKey)
	if err != nil {
		return nil, err
	}
	var t Templates
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: cached templates: %v", ErrInvalidConfig, err)
	}
	return &t, nil
}

// SaveTemplates replaces the cached template texts.
func (c *SQLiteCache) SaveTemplates(ctx context.Context, t *Templates) error {
	return c.inTx(ctx, func(tx *sql.Tx) error {
		return putJSON(ctx, tx, TemplatesKey, t)
	})
}

// ReplaceAll writes templates and configuration in one transaction.
func (c *SQLiteCache) ReplaceAll(ctx context.Context, t *Templates, cfg *Config) error {
	if t == nil {
		return fmt.Errorf("%w: missing templates", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return c.inTx(ctx, func(tx *sql.Tx) error {
		if err := putJSON(ctx, tx, TemplatesKey, t); err != nil {
			return err
		}
		return putJSON(ctx, tx, ConfigKey, cfg)
	})
}

func (c *SQLiteCache) get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s not cached", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStore, key, err)
	}
	return []byte(value), nil
}

func putJSON(ctx context.Context, tx *sql.Tx, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, string(data))
	if err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrStore, key, err)
	}
	return nil
}

func (c *SQLiteCache) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrStore, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStore, err)
	}
	return nil
}

// Compile-time interface check.
var _ Store = (*SQLiteCache)(nil)

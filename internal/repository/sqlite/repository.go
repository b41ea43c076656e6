// Package sqlite stores collection snapshots in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mamadbah2/platelog/internal/repository"
)

const driverName = "sqlite"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Repository implements repository.Store on a single SQLite table.
type Repository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

var _ repository.Store = (*Repository)(nil)

// Open connects to the database at path, creating its directory, and applies migrations.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.ConnectContext(ctx, driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}
	// One writer keeps read-modify-write snapshots ordered.
	db.SetMaxOpenConns(1)

	if err := migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("sqlite store ready", zap.String("path", path))
	return &Repository{db: db, logger: logger}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Get returns the snapshot stored under key.
func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM collections WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(value), nil
}

// Put replaces the snapshot stored under key.
func (r *Repository) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO collections (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	r.logger.Debug("collection saved", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Package sqlite provides the embedded SQLite implementation of
// store.BlobStore, backed by the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phrazzld/memorygame/internal/platform/logger"
	"github.com/phrazzld/memorygame/internal/platform/migrations"
	"github.com/phrazzld/memorygame/internal/store"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// MemoryPath selects a private in-memory database.
const MemoryPath = ":memory:"

const (
	getBlobQuery = `SELECT value FROM kv_blobs WHERE key = ?`

	setBlobQuery = `
		INSERT INTO kv_blobs (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at`
)

// connMaxLifetime is the pool recycling period for path. An in-memory
// database lives only as long as its connection, so it is never recycled.
func connMaxLifetime(path string) time.Duration {
	if path == MemoryPath {
		return 0
	}
	return 5 * time.Minute
}

// Open opens the database file at path, creating its directory when needed,
// and applies pending migrations. The caller owns the returned *sql.DB.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path cannot be empty")
	}

	log := logger.With(slog.String("component", "sqlite"), slog.String("path", path))

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if path == MemoryPath {
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers; a single connection also keeps :memory: shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(connMaxLifetime(path))

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := migrations.Run(ctx, db, migrations.DialectSQLite, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("database opened")
	return db, nil
}

// SQLiteBlobStore implements store.BlobStore on the kv_blobs table.
type SQLiteBlobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.BlobStore = (*SQLiteBlobStore)(nil)

// NewSQLiteBlobStore creates a blob store over db. If logger is nil, a default
// logger will be used.
func NewSQLiteBlobStore(db store.DBTX, logger *slog.Logger) *SQLiteBlobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteBlobStore{
		db:     db,
		logger: logger.With(slog.String("component", "blob_store"), slog.String("backend", "sqlite")),
	}
}

// Get implements store.BlobStore.
func (s *SQLiteBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getBlobQuery, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrKeyNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read blob",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", store.ErrStorage, err)
	}
	return []byte(value), nil
}

// Set implements store.BlobStore.
func (s *SQLiteBlobStore) Set(ctx context.Context, key string, value []byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx, setBlobQuery, key, string(value)); err != nil {
		log.Error("failed to write blob",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrStorage, err)
	}

	log.Debug("blob written", slog.String("key", key), slog.Int("size_bytes", len(value)))
	return nil
}

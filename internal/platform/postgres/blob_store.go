package postgres

import (
	"context"
	"log/slog"

	"github.com/phrazzld/memorygame/internal/platform/logger"
	"github.com/phrazzld/memorygame/internal/store"
)

const (
	getBlobQuery = `SELECT value FROM kv_blobs WHERE key = $1`

	setBlobQuery = `
		INSERT INTO kv_blobs (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// PostgresBlobStore implements the store.BlobStore interface
// using the kv_blobs table as the storage backend.
type PostgresBlobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBlobStore creates a new PostgreSQL implementation of the BlobStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresBlobStore(db store.DBTX, logger *slog.Logger) *PostgresBlobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBlobStore{
		db:     db,
		logger: logger.With(slog.String("component", "blob_store"), slog.String("backend", "postgres")),
	}
}

// Ensure PostgresBlobStore implements store.BlobStore interface
var _ store.BlobStore = (*PostgresBlobStore)(nil)

// Get implements store.BlobStore.Get.
// Returns an error wrapping store.ErrNotFound if no row exists for key.
func (s *PostgresBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getBlobQuery, key).Scan(&value)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrKeyNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read blob",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return []byte(value), nil
}

// Set implements store.BlobStore.Set with an upsert on key.
func (s *PostgresBlobStore) Set(ctx context.Context, key string, value []byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, setBlobQuery, key, string(value))
	if err != nil {
		log.Error("failed to write blob",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	if err := checkWritten(result); err != nil {
		log.Error("blob write was not applied", slog.String("key", key), slog.String("error", err.Error()))
		return err
	}

	log.Debug("blob written", slog.String("key", key), slog.Int("size_bytes", len(value)))
	return nil
}

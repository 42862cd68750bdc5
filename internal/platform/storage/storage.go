// Package storage selects and opens the configured blob store backend.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/memorygame/internal/config"
	"github.com/phrazzld/memorygame/internal/platform/postgres"
	"github.com/phrazzld/memorygame/internal/platform/sqlite"
	"github.com/phrazzld/memorygame/internal/store"
)

// Backend names accepted in StorageConfig.Backend.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// ErrUnknownBackend is returned for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Storage is an opened blob store and the resources backing it.
type Storage struct {
	Blobs   store.BlobStore
	Backend string
	db      *sql.DB
}

// Close releases the underlying database, if any.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the backing database is reachable. Memory storage is
// always reachable.
func (s *Storage) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

// Open connects to the backend named in cfg and returns a ready blob store.
// SQL backends have their schema migrated before Open returns.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	switch cfg.Backend {
	case BackendMemory:
		logger.Warn("using in-memory storage, card sets will not survive a restart")
		return &Storage{Blobs: store.NewMemoryBlobStore(), Backend: BackendMemory}, nil

	case BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return &Storage{Blobs: sqlite.NewSQLiteBlobStore(db, logger), Backend: BackendSQLite, db: db}, nil

	case BackendPostgres:
		db, err := postgres.Open(ctx, cfg.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres storage: %w", err)
		}
		return &Storage{Blobs: postgres.NewPostgresBlobStore(db, logger), Backend: BackendPostgres, db: db}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// OpenRepository opens the configured backend and wraps it in a
// CardSetRepository bound to cfg.Key.
func OpenRepository(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*store.CardSetRepository, *Storage, error) {
	s, err := Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	repo, err := store.NewCardSetRepository(s.Blobs, cfg.Key, logger)
	if err != nil {
		_ = s.Close()
		return nil, nil, err
	}

	return repo, s, nil
}

package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/memorygame/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func openTestStore(t *testing.T, path string) *SQLiteBlobStore {
	t.Helper()

	db, err := Open(context.Background(), path, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSQLiteBlobStore(db, testLogger())
}

func TestSQLiteBlobStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t, MemoryPath)

	_, err := s.Get(ctx, "@memory_game_sets")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, "@memory_game_sets", []byte(`[]`)))
	require.NoError(t, s.Set(ctx, "@memory_game_sets", []byte(`[{"id":"x"}]`)))

	got, err := s.Get(ctx, "@memory_game_sets")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"x"}]`, string(got))
}

func TestSQLiteBlobStore_PersistsAcrossOpens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cards.db")

	db, err := Open(ctx, path, testLogger())
	require.NoError(t, err)
	require.NoError(t, NewSQLiteBlobStore(db, testLogger()).Set(ctx, "k", []byte("v")))
	require.NoError(t, db.Close())

	reopened := openTestStore(t, path)
	got, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestSQLiteBlobStore_WithCardSetRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, err := store.NewCardSetRepository(openTestStore(t, MemoryPath), "", testLogger())
	require.NoError(t, err)

	sets, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestSQLiteBlobStore_ClosedDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(ctx, MemoryPath, testLogger())
	require.NoError(t, err)
	s := NewSQLiteBlobStore(db, testLogger())
	require.NoError(t, db.Close())

	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrStorage)

	err = s.Set(ctx, "k", []byte("v"))
	assert.ErrorIs(t, err, store.ErrStorage)
}

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), MemoryPath, nil)
	assert.Error(t, err)

	_, err = Open(context.Background(), "  ", testLogger())
	assert.Error(t, err)
}

func TestConnMaxLifetime(t *testing.T) {
	t.Parallel()

	assert.Zero(t, connMaxLifetime(MemoryPath), "an in-memory database must keep its only connection")
	assert.Equal(t, 5*time.Minute, connMaxLifetime(filepath.Join(t.TempDir(), "cards.db")))
}

func TestOpen_MemoryKeepsSingleConnection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(ctx, MemoryPath, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLiteBlobStore(db, testLogger())
	require.NoError(t, s.Set(ctx, "k", []byte("v")))

	stats := db.Stats()
	assert.Equal(t, 1, stats.OpenConnections)
	assert.Zero(t, stats.MaxLifetimeClosed)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/memorygame/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:       code,
		Message:    "error message",
		TableName:  "kv_blobs",
		ColumnName: "value",
	}
}

type stubResult struct {
	rows int64
	err  error
}

func (r stubResult) LastInsertId() (int64, error) { return 0, r.err }
func (r stubResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		want    error
		notWant error
	}{
		{name: "no rows", err: sql.ErrNoRows, want: store.ErrKeyNotFound},
		{name: "not null", err: newPgError("23502"), want: store.ErrInvalidEntity, notWant: store.ErrStorage},
		{name: "invalid utf8", err: newPgError("22021"), want: store.ErrInvalidEntity, notWant: store.ErrStorage},
		{name: "connection lost", err: newPgError("08006"), want: store.ErrStorage},
		{name: "admin shutdown", err: fmt.Errorf("exec: %w", newPgError("57P01")), want: store.ErrStorage},
		{name: "disk full", err: newPgError("53100"), want: store.ErrStorage, notWant: store.ErrInvalidEntity},
		{name: "plain error", err: errors.New("boom"), want: store.ErrStorage, notWant: store.ErrNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MapError(tt.err)
			require.Error(t, got)
			assert.ErrorIs(t, got, tt.want)
			if tt.notWant != nil {
				assert.NotErrorIs(t, got, tt.notWant)
			}
		})
	}

	assert.NoError(t, MapError(nil))

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(MapError(newPgError("08006")), &pgErr), "the driver error stays in the chain")
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(store.ErrKeyNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("get: %w", store.ErrNotFound)))
	assert.False(t, IsNotFoundError(errors.New("other")))
	assert.False(t, IsNotFoundError(nil))
}

func TestCheckWritten(t *testing.T) {
	t.Parallel()

	assert.NoError(t, checkWritten(stubResult{rows: 1}))
	assert.NoError(t, checkWritten(stubResult{rows: 2}), "an upsert that updates may report two rows")
	assert.ErrorIs(t, checkWritten(stubResult{rows: 0}), store.ErrStorage)
	assert.ErrorIs(t, checkWritten(stubResult{err: errors.New("unsupported")}), store.ErrStorage)
	assert.ErrorIs(t, checkWritten(nil), store.ErrStorage)
}

func TestPostgresBlobStore_SetNoRowsAffected(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(setBlobQuery)).
		WithArgs("k", "payload").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Set(context.Background(), "k", []byte("payload"))
	assert.ErrorIs(t, err, store.ErrStorage)
}

func TestPostgresBlobStore_SetRejectedValue(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(setBlobQuery)).
		WithArgs("k", "bad\x00value").
		WillReturnError(newPgError("22021"))

	err := s.Set(context.Background(), "k", []byte("bad\x00value"))
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

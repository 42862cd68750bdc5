package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/memorygame/internal/store"
)

// SQLSTATE codes and classes that get a specific mapping.
const (
	notNullViolationCode = "23502"

	// dataExceptionClass covers values the column cannot hold, such as
	// invalid UTF-8 or a NUL byte in a text value.
	dataExceptionClass = "22"
	// connectionExceptionClass and operatorInterventionClass mean the
	// server could not be reached or is shutting down.
	connectionExceptionClass  = "08"
	operatorInterventionClass = "57"
)

// MapError maps a database error to a store error. A missing row maps to
// store.ErrKeyNotFound; a value the kv_blobs table rejects maps to
// store.ErrInvalidEntity; everything else, including connection loss,
// maps to store.ErrStorage. The original error stays in the chain.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrKeyNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == notNullViolationCode:
			return fmt.Errorf("%w: %s must not be null: %v", store.ErrInvalidEntity, pgErr.ColumnName, err)
		case strings.HasPrefix(pgErr.Code, dataExceptionClass):
			return fmt.Errorf("%w: blob value rejected: %v", store.ErrInvalidEntity, err)
		case strings.HasPrefix(pgErr.Code, connectionExceptionClass),
			strings.HasPrefix(pgErr.Code, operatorInterventionClass):
			return fmt.Errorf("%w: database unavailable: %w", store.ErrStorage, err)
		}
	}

	return fmt.Errorf("%w: %w", store.ErrStorage, err)
}

// IsNotFoundError reports whether err is sql.ErrNoRows or wraps store.ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, store.ErrNotFound)
}

// checkWritten verifies that an upsert touched a row. An upsert that
// reports zero rows means the write was lost, which is a storage failure.
func checkWritten(result sql.Result) error {
	if result == nil {
		return fmt.Errorf("%w: no result from write", store.ErrStorage)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %w", store.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: write affected no rows", store.ErrStorage)
	}
	return nil
}

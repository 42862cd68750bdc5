package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Registers the pgx driver
	"github.com/phrazzld/memorygame/internal/platform/migrations"
)

const pingTimeout = 5 * time.Second

// Open establishes a pgx-backed connection pool to databaseURL, verifies it,
// and applies pending migrations. The caller owns the returned *sql.DB.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if databaseURL == "" {
		return nil, errors.New("database URL is empty: check your configuration")
	}

	log := logger.With(
		slog.String("component", "postgres"),
		slog.String("url", MaskDatabaseURL(databaseURL)),
	)

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool with reasonable defaults
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := migrations.Run(ctx, db, migrations.DialectPostgres, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("database connection established")
	return db, nil
}

// MaskDatabaseURL masks the password in a database URL for safe logging.
func MaskDatabaseURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}

	if parsedURL.User != nil {
		if _, hasPassword := parsedURL.User.Password(); hasPassword {
			parsedURL.User = url.UserPassword(parsedURL.User.Username(), "****")
		}
		return parsedURL.String()
	}

	return dbURL
}

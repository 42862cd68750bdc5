// Package migrations applies the embedded SQL schema to PostgreSQL and
// SQLite databases using goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedded embed.FS

// Dialects supported by Run.
const (
	DialectPostgres = goose.DialectPostgres
	DialectSQLite   = goose.DialectSQLite3
)

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf forwards goose progress messages at info level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf forwards goose failures at error level. It does not exit; the
// failure is returned to the caller instead.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// Source returns the embedded migration files.
func Source() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return sub
}

// Run applies all pending migrations to db and returns the resulting schema version.
func Run(ctx context.Context, db *sql.DB, dialect goose.Dialect, logger *slog.Logger) (int64, error) {
	if db == nil {
		return 0, errors.New("database cannot be nil")
	}
	if logger == nil {
		return 0, errors.New("logger cannot be nil")
	}

	log := logger.With(
		slog.String("component", "migrations"),
		slog.String("dialect", string(dialect)),
	)

	provider, err := goose.NewProvider(dialect, db, Source(),
		goose.WithLogger(&slogGooseLogger{logger: log}),
		goose.WithVerbose(log.Enabled(ctx, slog.LevelDebug)),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create migration provider: %w", err)
	}

	start := time.Now()
	results, err := provider.Up(ctx)
	if err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, r := range results {
		log.Info("migration applied",
			slog.Int64("version", r.Source.Version),
			slog.Duration("duration", r.Duration))
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	log.Debug("schema up to date",
		slog.Int64("version", version),
		slog.Int("applied", len(results)),
		slog.Duration("duration", time.Since(start)))

	return version, nil
}

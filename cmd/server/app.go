package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/memorygame/internal/config"
	"github.com/phrazzld/memorygame/internal/conversion"
	"github.com/phrazzld/memorygame/internal/domain/game"
	"github.com/phrazzld/memorygame/internal/platform/docconvert"
	"github.com/phrazzld/memorygame/internal/platform/storage"
	"github.com/phrazzld/memorygame/internal/service"
)

// sessionSweepInterval is how often idle game sessions are evicted.
const sessionSweepInterval = time.Minute

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	storage   *storage.Storage
	converter conversion.Converter

	cardSets service.CardSetService
	imports  service.ImportService
	games    service.GameService
}

// newApplication opens storage, loads the saved card sets and wires the services.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	repo, st, err := storage.OpenRepository(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	app.storage = st
	logger.Info("storage opened", slog.String("backend", st.Backend))

	app.cardSets, err = service.NewCardSetService(repo, cfg.Game.MaxCardTextLength, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create card set service: %w", err)
	}

	// A collection that cannot be read leaves the app usable with no sets.
	if err := app.cardSets.Load(ctx); err != nil {
		logger.Error("failed to load card sets, starting empty", slog.String("error", err.Error()))
	}

	if cfg.Conversion.Endpoint != "" {
		client, err := docconvert.NewClient(docconvert.OptionsFromConfig(cfg.Conversion), logger)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to create document converter: %w", err)
		}
		app.converter = client
		logger.Info("DOCX import enabled", slog.Int("requests_per_minute", cfg.Conversion.RequestsPerMinute))
	} else {
		logger.Info("DOCX import disabled, no conversion endpoint configured")
	}

	app.imports, err = service.NewImportService(app.cardSets, app.converter, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create import service: %w", err)
	}

	params := game.NewDefaultParams()
	params.MinReviewCards = cfg.Game.MinReviewCards
	ttl := time.Duration(cfg.Game.SessionTTLMinutes) * time.Minute

	app.games, err = service.NewGameService(app.cardSets, params, ttl, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create game service: %w", err)
	}

	logger.Info("application initialized", slog.Int("card_sets", len(app.cardSets.List(ctx))))
	return app, nil
}

// Run serves HTTP until ctx is done, then shuts down and releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go app.games.Run(sweepCtx, sessionSweepInterval)

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases storage. It is safe to call more than once.
func (app *application) cleanup() {
	if app.storage != nil {
		if err := app.storage.Close(); err != nil {
			app.logger.Error("error closing storage", slog.String("error", err.Error()))
		}
		app.storage = nil
	}
	app.logger.Info("application shutdown completed")
}

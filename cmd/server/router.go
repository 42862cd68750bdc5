package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/memorygame/internal/api"
	apiMiddleware "github.com/phrazzld/memorygame/internal/api/middleware"
	"golang.org/x/time/rate"
)

// maxUploadBytes caps import and restore uploads.
const maxUploadBytes = 10 << 20

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	var importLimiter *rate.Limiter
	if perMinute := app.config.Conversion.RequestsPerMinute; perMinute > 0 {
		importLimiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}

	api.RegisterRoutes(r, api.Handlers{
		CardSets:      api.NewCardSetHandler(app.cardSets, app.logger),
		Imports:       api.NewImportHandler(app.imports, maxUploadBytes, app.logger),
		Games:         api.NewGameHandler(app.games, app.logger),
		Health:        api.NewHealthHandler(app.storage, app.storage.Backend, app.logger),
		ImportLimiter: importLimiter,
	})

	return r
}

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/memorygame/internal/api/middleware"
	"golang.org/x/time/rate"
)

// Handlers groups the handlers mounted by RegisterRoutes.
type Handlers struct {
	CardSets *CardSetHandler
	Imports  *ImportHandler
	Games    *GameHandler
	Health   *HealthHandler

	// ImportLimiter, when set, rate limits the upload endpoints.
	ImportLimiter *rate.Limiter
}

// RegisterRoutes mounts the API routes on r.
func RegisterRoutes(r chi.Router, h Handlers) {
	r.Get("/health", h.Health.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/parse", h.Imports.ParseText)

		r.Get("/active-set", h.CardSets.GetActiveSet)
		r.Put("/active-set", h.CardSets.SetActiveSet)

		r.Route("/sets", func(r chi.Router) {
			r.Get("/", h.CardSets.ListSets)
			r.Post("/", h.CardSets.CreateSet)
			r.With(middleware.RateLimit(h.ImportLimiter)).Post("/restore", h.Imports.RestoreSet)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.CardSets.GetSet)
				r.Put("/", h.CardSets.RenameSet)
				r.Delete("/", h.CardSets.DeleteSet)
				r.Get("/export", h.CardSets.ExportSet)
				r.Post("/cards", h.CardSets.AddCards)
				r.Delete("/cards/{cardID}", h.CardSets.DeleteCard)
				r.With(middleware.RateLimit(h.ImportLimiter)).Post("/import", h.Imports.ImportFile)
			})
		})

		r.Route("/games", func(r chi.Router) {
			r.Post("/", h.Games.StartGame)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Games.GetGame)
				r.Delete("/", h.Games.EndGame)
				r.Post("/answers", h.Games.SubmitAnswer)
				r.Post("/continue", h.Games.ContinueGame)
				r.Post("/restart", h.Games.RestartGame)
				r.Post("/stop", h.Games.StopGame)
			})
		})
	})
}

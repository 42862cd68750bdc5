package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/memorygame/internal/api/shared"
	"github.com/phrazzld/memorygame/internal/platform/logger"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthTimeout bounds the storage ping of a health check.
const healthTimeout = 2 * time.Second

// HealthHandler serves the health check endpoint.
type HealthHandler struct {
	storage Pinger
	backend string
	logger  *slog.Logger
}

// NewHealthHandler creates a new HealthHandler. storage may be nil.
func NewHealthHandler(storage Pinger, backend string, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		storage: storage,
		backend: backend,
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Storage: h.backend}

	if h.storage != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := h.storage.Ping(ctx); err != nil {
			logger.FromContextOrDefault(r.Context(), h.logger).Error("storage health check failed",
				slog.String("backend", h.backend),
				slog.String("error", err.Error()))
			resp.Status = "unavailable"
			shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, resp)
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

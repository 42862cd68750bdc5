package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/memorygame/internal/api/shared"
	"github.com/phrazzld/memorygame/internal/platform/logger"
	"github.com/phrazzld/memorygame/internal/service"
)

// GameHandler handles game session HTTP requests.
type GameHandler struct {
	games  service.GameService
	logger *slog.Logger
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(games service.GameService, logger *slog.Logger) *GameHandler {
	if games == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("games cannot be nil for GameHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GameHandler")
	}

	return &GameHandler{
		games:  games,
		logger: logger.With(slog.String("component", "game_handler")),
	}
}

// StartGame handles POST /api/games.
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	var req StartGameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	setID, err := normalizeID("setId", req.SetID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	view, err := h.games.Start(r.Context(), setID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start game")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, view)
}

// GetGame handles GET /api/games/{id}.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(id string) (*service.GameView, error) {
		return h.games.Get(r.Context(), id)
	})
}

// SubmitAnswer handles POST /api/games/{id}/answers.
func (h *GameHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	var req AnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.games.Answer(r.Context(), id, *req.Correct)
	h.respond(w, r, view, err)
}

// ContinueGame handles POST /api/games/{id}/continue.
func (h *GameHandler) ContinueGame(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(id string) (*service.GameView, error) {
		return h.games.Continue(r.Context(), id)
	})
}

// RestartGame handles POST /api/games/{id}/restart.
func (h *GameHandler) RestartGame(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(id string) (*service.GameView, error) {
		return h.games.Restart(r.Context(), id)
	})
}

// StopGame handles POST /api/games/{id}/stop.
func (h *GameHandler) StopGame(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(id string) (*service.GameView, error) {
		return h.games.Stop(r.Context(), id)
	})
}

// EndGame handles DELETE /api/games/{id}.
func (h *GameHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.games.End(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) act(
	w http.ResponseWriter,
	r *http.Request,
	fn func(id string) (*service.GameView, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	view, err := fn(id)
	h.respond(w, r, view, err)
}

// respond writes the session view, or the error when the action failed.
// A failure to record the best score still leaves a finished session, so
// it is logged and the view returned.
func (h *GameHandler) respond(w http.ResponseWriter, r *http.Request, view *service.GameView, err error) {
	if err != nil && view != nil && MapErrorToStatusCode(err) == http.StatusInternalServerError {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("game action partially failed",
			slog.String("session_id", view.ID),
			slog.String("error", err.Error()))
		shared.RespondWithJSON(w, r, http.StatusOK, view)
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Game action failed")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

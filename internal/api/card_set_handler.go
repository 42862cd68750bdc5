package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/memorygame/internal/api/shared"
	"github.com/phrazzld/memorygame/internal/export"
	"github.com/phrazzld/memorygame/internal/platform/logger"
	"github.com/phrazzld/memorygame/internal/service"
)

// CardSetHandler handles card set and card HTTP requests.
type CardSetHandler struct {
	cardSets service.CardSetService
	logger   *slog.Logger
	now      func() time.Time
}

// NewCardSetHandler creates a new CardSetHandler.
func NewCardSetHandler(cardSets service.CardSetService, logger *slog.Logger) *CardSetHandler {
	if cardSets == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cardSets cannot be nil for CardSetHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardSetHandler")
	}

	return &CardSetHandler{
		cardSets: cardSets,
		logger:   logger.With(slog.String("component", "card_set_handler")),
		now:      time.Now,
	}
}

// ListSets handles GET /api/sets.
func (h *CardSetHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	sets := h.cardSets.List(r.Context())

	summaries := make([]CardSetSummary, 0, len(sets))
	for _, s := range sets {
		summaries = append(summaries, cardSetToSummary(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summaries)
}

// CreateSet handles POST /api/sets.
func (h *CardSetHandler) CreateSet(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CardSetNameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	set, err := h.cardSets.CreateCardSet(r.Context(), req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create card set")
		return
	}

	log.Debug("card set created via API", slog.String("set_id", set.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardSetToResponse(set))
}

// GetSet handles GET /api/sets/{id}.
func (h *CardSetHandler) GetSet(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	setID, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	set, err := h.cardSets.Get(r.Context(), setID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardSetToResponse(set))
}

// RenameSet handles PUT /api/sets/{id}.
func (h *CardSetHandler) RenameSet(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	setID, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	var req CardSetNameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	set, err := h.cardSets.RenameCardSet(r.Context(), setID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rename card set")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardSetToResponse(set))
}

// DeleteSet handles DELETE /api/sets/{id}.
func (h *CardSetHandler) DeleteSet(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	setID, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.cardSets.RemoveCardSet(r.Context(), setID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card set")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddCards handles POST /api/sets/{id}/cards. The batch is all-or-nothing.
func (h *CardSetHandler) AddCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	setID, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	var req AddCardsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cards, err := h.cardSets.AddCards(r.Context(), setID, req.drafts())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, cardsToResponse(cards))
}

// DeleteCard handles DELETE /api/sets/{id}/cards/{cardID}.
func (h *CardSetHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	setID, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}
	cardID, ok := handlePathID(w, r, "cardID", log)
	if !ok {
		return
	}

	if err := h.cardSets.RemoveCard(r.Context(), setID, cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportSet handles GET /api/sets/{id}/export, returning the set as a
// plain-text attachment.
func (h *CardSetHandler) ExportSet(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	setID, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	set, err := h.cardSets.Get(r.Context(), setID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	body := export.String(set)
	filename := export.FileName(set.Name, h.now())

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Error("failed to write export", slog.String("set_id", setID), slog.String("error", err.Error()))
		return
	}

	log.Info("card set exported",
		slog.String("set_id", setID),
		slog.String("filename", filename),
		slog.Int("card_count", len(set.Cards)))
}

// GetActiveSet handles GET /api/active-set.
func (h *CardSetHandler) GetActiveSet(w http.ResponseWriter, r *http.Request) {
	set, err := h.cardSets.ActiveSet(r.Context())
	if errors.Is(err, service.ErrNoActiveSet) {
		shared.RespondWithJSON(w, r, http.StatusOK, ActiveSetResponse{})
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ActiveSetResponse{SetID: set.ID})
}

// SetActiveSet handles PUT /api/active-set.
func (h *CardSetHandler) SetActiveSet(w http.ResponseWriter, r *http.Request) {
	var req ActiveSetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	setID := strings.TrimSpace(req.SetID)
	if err := h.cardSets.SetActiveSet(r.Context(), setID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ActiveSetResponse{SetID: setID})
}

package api

import (
	"time"

	"github.com/phrazzld/memorygame/internal/domain"
	"github.com/phrazzld/memorygame/internal/parser"
)

// CardSetNameRequest is the payload for creating or renaming a card set.
type CardSetNameRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CardRequest is one front/back pair in a request.
type CardRequest struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back"  validate:"required"`
}

// AddCardsRequest adds one or more cards to a set in a single batch.
type AddCardsRequest struct {
	Cards []CardRequest `json:"cards" validate:"required,min=1,dive"`
}

// ActiveSetRequest selects the active set; an empty SetID clears it.
type ActiveSetRequest struct {
	SetID string `json:"setId" validate:"omitempty,max=200"`
}

// ParseRequest runs the card parser over pasted text.
type ParseRequest struct {
	Content string          `json:"content" validate:"required"`
	Options *parser.Options `json:"options"`
}

// StartGameRequest starts a game over a card set.
type StartGameRequest struct {
	SetID string `json:"setId" validate:"required,max=200"`
}

// AnswerRequest records an answer to the current card. Correct is a pointer
// so that an explicit false passes the required check.
type AnswerRequest struct {
	Correct *bool `json:"correct" validate:"required"`
}

// CardResponse is the API representation of a card.
type CardResponse struct {
	ID           string    `json:"id"`
	Front        string    `json:"front"`
	Back         string    `json:"back"`
	SetID        string    `json:"setId"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// CardSetResponse is the API representation of a card set.
type CardSetResponse struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Cards        []CardResponse `json:"cards"`
	CardCount    int            `json:"cardCount"`
	BestScore    int            `json:"bestScore"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastModified time.Time      `json:"lastModified"`
}

// CardSetSummary is a card set listed without its cards.
type CardSetSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CardCount    int       `json:"cardCount"`
	BestScore    int       `json:"bestScore"`
	LastModified time.Time `json:"lastModified"`
}

// DraftResponse is a parsed front/back pair that has not been stored.
type DraftResponse struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// ImportResponse reports the result of an import or preview.
type ImportResponse struct {
	SetID   string          `json:"setId,omitempty"`
	Count   int             `json:"count"`
	Cards   []CardResponse  `json:"cards,omitempty"`
	Preview []DraftResponse `json:"preview,omitempty"`
}

// ActiveSetResponse reports the active set ID, empty when none is selected.
type ActiveSetResponse struct {
	SetID string `json:"setId"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func cardToResponse(c domain.Card) CardResponse {
	return CardResponse{
		ID:           c.ID,
		Front:        c.Front,
		Back:         c.Back,
		SetID:        c.Set,
		CreatedAt:    c.CreatedAt,
		LastModified: c.LastModified,
	}
}

func cardsToResponse(cards []domain.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToResponse(c))
	}
	return out
}

func cardSetToResponse(s *domain.CardSet) CardSetResponse {
	return CardSetResponse{
		ID:           s.ID,
		Name:         s.Name,
		Cards:        cardsToResponse(s.Cards),
		CardCount:    len(s.Cards),
		BestScore:    s.BestScore,
		CreatedAt:    s.CreatedAt,
		LastModified: s.LastModified,
	}
}

func cardSetToSummary(s domain.CardSet) CardSetSummary {
	return CardSetSummary{
		ID:           s.ID,
		Name:         s.Name,
		CardCount:    len(s.Cards),
		BestScore:    s.BestScore,
		LastModified: s.LastModified,
	}
}

func draftsToResponse(drafts []domain.CardDraft) []DraftResponse {
	out := make([]DraftResponse, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, DraftResponse{Front: d.Front, Back: d.Back})
	}
	return out
}

func (r AddCardsRequest) drafts() []domain.CardDraft {
	out := make([]domain.CardDraft, 0, len(r.Cards))
	for _, c := range r.Cards {
		out = append(out, domain.CardDraft{Front: c.Front, Back: c.Back})
	}
	return out
}

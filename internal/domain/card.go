package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultMaxCardTextLength is the maximum number of characters allowed on
// either side of a card, counted after trimming surrounding whitespace.
const DefaultMaxCardTextLength = 80

// Card represents a single flashcard owned by exactly one CardSet.
// JSON field names match the persisted collection blob.
type Card struct {
	ID           string    `json:"id"`
	Front        string    `json:"front"`
	Back         string    `json:"back"`
	Set          string    `json:"set"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// CardDraft is a front/back pair that has not been assigned to a set yet.
// Parsers and importers produce drafts; the card set controller turns them into cards.
type CardDraft struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Normalize returns a copy of the draft with surrounding whitespace removed.
func (d CardDraft) Normalize() CardDraft {
	return CardDraft{
		Front: strings.TrimSpace(d.Front),
		Back:  strings.TrimSpace(d.Back),
	}
}

// Validate checks the draft against the given per-side length limit.
// A non-positive maxLen disables the length check.
func (d CardDraft) Validate(maxLen int) error {
	return ValidateCardText(d.Front, d.Back, maxLen)
}

// ValidateCardText checks that both sides are non-empty after trimming and
// that neither exceeds maxLen characters.
func ValidateCardText(front, back string, maxLen int) error {
	if err := validateSide("front", front, maxLen); err != nil {
		return err
	}
	return validateSide("back", back, maxLen)
}

func validateSide(field, text string, maxLen int) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return NewValidationError(field, "must not be empty", ErrEmptyContent)
	}

	if maxLen > 0 {
		if n := utf8.RuneCountInString(trimmed); n > maxLen {
			return NewValidationError(
				field,
				fmt.Sprintf("is %d characters, limit is %d", n, maxLen),
				ErrTextTooLong,
			)
		}
	}

	return nil
}

// NewCard creates a card in the given set from a draft.
// The draft is trimmed and validated against maxLen before the card is built.
func NewCard(setID string, draft CardDraft, maxLen int, now time.Time) (*Card, error) {
	if strings.TrimSpace(setID) == "" {
		return nil, NewValidationError("set", "owning set id is required", ErrInvalidID)
	}

	draft = draft.Normalize()
	if err := draft.Validate(maxLen); err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Card{
		ID:           uuid.NewString(),
		Front:        draft.Front,
		Back:         draft.Back,
		Set:          setID,
		CreatedAt:    now,
		LastModified: now,
	}, nil
}

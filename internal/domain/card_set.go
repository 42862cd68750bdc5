package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CardSet is a named, ordered collection of flashcards with the best score
// ever achieved on it. Cards keep insertion order.
type CardSet struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Cards        []Card    `json:"cards"`
	BestScore    int       `json:"bestScore"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// NewCardSet creates an empty card set with a fresh ID.
func NewCardSet(name string, now time.Time) (*CardSet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "must not be empty", ErrEmptyContent)
	}

	now = now.UTC()
	return &CardSet{
		ID:           uuid.NewString(),
		Name:         name,
		Cards:        []Card{},
		CreatedAt:    now,
		LastModified: now,
	}, nil
}

// Rename changes the set name and bumps LastModified. CreatedAt is kept.
func (s *CardSet) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewValidationError("name", "must not be empty", ErrEmptyContent)
	}
	s.Name = name
	s.LastModified = now.UTC()
	return nil
}

// AddCards appends cards in order and bumps LastModified.
func (s *CardSet) AddCards(now time.Time, cards ...Card) {
	if len(cards) == 0 {
		return
	}
	s.Cards = append(s.Cards, cards...)
	s.LastModified = now.UTC()
}

// RemoveCard deletes the card with the given ID.
// It reports whether a card was removed.
func (s *CardSet) RemoveCard(cardID string, now time.Time) bool {
	for i := range s.Cards {
		if s.Cards[i].ID == cardID {
			s.Cards = append(s.Cards[:i], s.Cards[i+1:]...)
			s.LastModified = now.UTC()
			return true
		}
	}
	return false
}

// FindCard returns the card with the given ID, or nil.
func (s *CardSet) FindCard(cardID string) *Card {
	for i := range s.Cards {
		if s.Cards[i].ID == cardID {
			return &s.Cards[i]
		}
	}
	return nil
}

// UpdateBestScore records score as the new best score if it is strictly
// greater than the stored value. It reports whether the score was applied.
// Lower or equal scores are ignored, so BestScore never decreases.
func (s *CardSet) UpdateBestScore(score int, now time.Time) (bool, error) {
	if score < 0 || score > 100 {
		return false, NewValidationError("score", "must be between 0 and 100", ErrInvalidScore)
	}
	if score <= s.BestScore {
		return false, nil
	}
	s.BestScore = score
	s.LastModified = now.UTC()
	return true, nil
}

// Clone returns a deep copy of the set.
func (s *CardSet) Clone() *CardSet {
	if s == nil {
		return nil
	}
	c := *s
	c.Cards = make([]Card, len(s.Cards))
	copy(c.Cards, s.Cards)
	return &c
}

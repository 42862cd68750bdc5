package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/memorygame/internal/domain"
	"github.com/phrazzld/memorygame/internal/platform/logger"
)

// CardSetRepository defines the persistence the card set controller needs.
// store.CardSetRepository satisfies it.
type CardSetRepository interface {
	// Load returns the whole stored collection.
	Load(ctx context.Context) ([]domain.CardSet, error)

	// Save overwrites the stored collection.
	Save(ctx context.Context, sets []domain.CardSet) error
}

// CardSetService owns the card set collection and exposes one command per
// invariant-preserving mutation. Every command persists the whole collection
// before committing it, so a failed save leaves the in-memory state unchanged.
type CardSetService interface {
	// Load replaces the working collection with the stored one.
	//
	// A storage failure is logged and leaves an empty working collection; the
	// error is still returned so callers can surface it, but the service stays usable.
	Load(ctx context.Context) error

	// List returns copies of all card sets in collection order.
	List(ctx context.Context) []domain.CardSet

	// Get returns a copy of the set with the given id, or ErrCardSetNotFound.
	Get(ctx context.Context, setID string) (*domain.CardSet, error)

	// CreateCardSet adds a new empty set.
	CreateCardSet(ctx context.Context, name string) (*domain.CardSet, error)

	// RenameCardSet changes a set's name.
	RenameCardSet(ctx context.Context, setID, name string) (*domain.CardSet, error)

	// RemoveCardSet deletes a set. Removing the active set clears the selection.
	RemoveCardSet(ctx context.Context, setID string) error

	// AddCard validates a single draft and appends it to the set.
	AddCard(ctx context.Context, setID string, draft domain.CardDraft) (*domain.Card, error)

	// AddCards appends a batch of drafts to the set.
	//
	// Admission is all-or-nothing: if any draft is empty or over the length
	// limit, a ValidationError naming the number of offending drafts is
	// returned and no card is added.
	AddCards(ctx context.Context, setID string, drafts []domain.CardDraft) ([]domain.Card, error)

	// RemoveCard deletes one card from a set.
	RemoveCard(ctx context.Context, setID, cardID string) error

	// UpdateBestScore offers score as the set's new best score. It reports
	// whether the stored value changed; lower or equal scores are ignored.
	UpdateBestScore(ctx context.Context, setID string, score int) (bool, error)

	// SetActiveSet selects the set used by default for play. An empty id clears it.
	SetActiveSet(ctx context.Context, setID string) error

	// ActiveSet returns the selected set, or ErrNoActiveSet.
	ActiveSet(ctx context.Context) (*domain.CardSet, error)

	// RestoreCardSet creates a new set named name holding drafts, validated
	// with the same all-or-nothing policy as AddCards, in a single save.
	RestoreCardSet(ctx context.Context, name string, drafts []domain.CardDraft) (*domain.CardSet, error)
}

// Verify interface compliance at compile time
var _ CardSetService = (*cardSetServiceImpl)(nil)

// cardSetServiceImpl implements the CardSetService interface.
type cardSetServiceImpl struct {
	repo       CardSetRepository
	maxTextLen int
	logger     *slog.Logger
	now        func() time.Time

	mu          sync.RWMutex
	sets        []domain.CardSet
	activeSetID string
}

// NewCardSetService creates a new CardSetService with an empty working
// collection. Call Load to read the stored collection.
// maxTextLen bounds each side of a card; non-positive selects domain.DefaultMaxCardTextLength.
func NewCardSetService(repo CardSetRepository, maxTextLen int, logger *slog.Logger) (CardSetService, error) {
	if repo == nil {
		return nil, domain.NewValidationError("repo", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}
	if maxTextLen <= 0 {
		maxTextLen = domain.DefaultMaxCardTextLength
	}

	return &cardSetServiceImpl{
		repo:       repo,
		maxTextLen: maxTextLen,
		logger:     logger.With(slog.String("component", "card_set_service")),
		now:        time.Now,
		sets:       []domain.CardSet{},
	}, nil
}

// Load implements CardSetService.Load.
func (s *cardSetServiceImpl) Load(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sets, err := s.repo.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		log.Error("failed to load card sets, continuing with an empty collection",
			slog.String("error", err.Error()))
		s.sets = []domain.CardSet{}
		s.activeSetID = ""
		return NewServiceError("load", "failed to load card sets", err)
	}

	s.sets = sets
	if s.indexOf(s.activeSetID) < 0 {
		s.activeSetID = ""
	}

	log.Info("card sets loaded", slog.Int("set_count", len(sets)))
	return nil
}

// List implements CardSetService.List.
func (s *cardSetServiceImpl) List(ctx context.Context) []domain.CardSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSets(s.sets)
}

// Get implements CardSetService.Get.
func (s *cardSetServiceImpl) Get(ctx context.Context, setID string) (*domain.CardSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(setID)
	if i < 0 {
		return nil, ErrCardSetNotFound
	}
	return s.sets[i].Clone(), nil
}

// CreateCardSet implements CardSetService.CreateCardSet.
func (s *cardSetServiceImpl) CreateCardSet(ctx context.Context, name string) (*domain.CardSet, error) {
	set, err := domain.NewCardSet(name, s.now())
	if err != nil {
		return nil, err
	}

	err = s.mutate(ctx, "create_card_set", func(sets []domain.CardSet) ([]domain.CardSet, error) {
		return append(sets, *set), nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("card set created",
		slog.String("set_id", set.ID),
		slog.String("name", set.Name))
	return set.Clone(), nil
}

// RenameCardSet implements CardSetService.RenameCardSet.
func (s *cardSetServiceImpl) RenameCardSet(ctx context.Context, setID, name string) (*domain.CardSet, error) {
	var renamed *domain.CardSet
	err := s.mutate(ctx, "rename_card_set", func(sets []domain.CardSet) ([]domain.CardSet, error) {
		set, err := findSet(sets, setID)
		if err != nil {
			return nil, err
		}
		if err := set.Rename(name, s.now()); err != nil {
			return nil, err
		}
		renamed = set.Clone()
		return sets, nil
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

// RemoveCardSet implements CardSetService.RemoveCardSet.
func (s *cardSetServiceImpl) RemoveCardSet(ctx context.Context, setID string) error {
	err := s.mutate(ctx, "remove_card_set", func(sets []domain.CardSet) ([]domain.CardSet, error) {
		for i := range sets {
			if sets[i].ID == setID {
				return append(sets[:i], sets[i+1:]...), nil
			}
		}
		return nil, ErrCardSetNotFound
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.activeSetID == setID {
		s.activeSetID = ""
	}
	s.mu.Unlock()

	logger.FromContextOrDefault(ctx, s.logger).Info("card set removed", slog.String("set_id", setID))
	return nil
}

// AddCard implements CardSetService.AddCard.
func (s *cardSetServiceImpl) AddCard(ctx context.Context, setID string, draft domain.CardDraft) (*domain.Card, error) {
	// A single card reports its own field error rather than the batch summary.
	if err := draft.Validate(s.maxTextLen); err != nil {
		return nil, err
	}

	cards, err := s.AddCards(ctx, setID, []domain.CardDraft{draft})
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

// AddCards implements CardSetService.AddCards.
func (s *cardSetServiceImpl) AddCards(ctx context.Context, setID string, drafts []domain.CardDraft) ([]domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(drafts) == 0 {
		return nil, domain.NewValidationError("cards", "at least one card is required", domain.ErrEmptyContent)
	}
	if err := s.validateBatch(drafts); err != nil {
		log.Warn("card batch rejected",
			slog.String("set_id", setID),
			slog.Int("card_count", len(drafts)),
			slog.String("error", err.Error()))
		return nil, err
	}

	var added []domain.Card
	err := s.mutate(ctx, "add_cards", func(sets []domain.CardSet) ([]domain.CardSet, error) {
		set, err := findSet(sets, setID)
		if err != nil {
			return nil, err
		}

		now := s.now()
		added, err = s.buildCards(set.ID, drafts, now)
		if err != nil {
			return nil, err
		}
		set.AddCards(now, added...)
		return sets, nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("cards added",
		slog.String("set_id", setID),
		slog.Int("card_count", len(added)))
	return added, nil
}

// RemoveCard implements CardSetService.RemoveCard.
func (s *cardSetServiceImpl) RemoveCard(ctx context.Context, setID, cardID string) error {
	return s.mutate(ctx, "remove_card", func(sets []domain.CardSet) ([]domain.CardSet, error) {
		set, err := findSet(sets, setID)
		if err != nil {
			return nil, err
		}
		if !set.RemoveCard(cardID, s.now()) {
			return nil, ErrCardNotFound
		}
		return sets, nil
	})
}

// UpdateBestScore implements CardSetService.UpdateBestScore.
func (s *cardSetServiceImpl) UpdateBestScore(ctx context.Context, setID string, score int) (bool, error) {
	applied := false
	err := s.mutate(ctx, "update_best_score", func(sets []domain.CardSet) ([]domain.CardSet, error) {
		set, err := findSet(sets, setID)
		if err != nil {
			return nil, err
		}
		applied, err = set.UpdateBestScore(score, s.now())
		if err != nil {
			return nil, err
		}
		if !applied {
			return nil, errUnchanged
		}
		return sets, nil
	})
	if errors.Is(err, errUnchanged) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("best score updated",
		slog.String("set_id", setID),
		slog.Int("best_score", score))
	return true, nil
}

// SetActiveSet implements CardSetService.SetActiveSet.
func (s *cardSetServiceImpl) SetActiveSet(ctx context.Context, setID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if setID != "" && s.indexOf(setID) < 0 {
		return ErrCardSetNotFound
	}
	s.activeSetID = setID
	return nil
}

// ActiveSet implements CardSetService.ActiveSet.
func (s *cardSetServiceImpl) ActiveSet(ctx context.Context) (*domain.CardSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(s.activeSetID)
	if s.activeSetID == "" || i < 0 {
		return nil, ErrNoActiveSet
	}
	return s.sets[i].Clone(), nil
}

// RestoreCardSet implements CardSetService.RestoreCardSet.
func (s *cardSetServiceImpl) RestoreCardSet(ctx context.Context, name string, drafts []domain.CardDraft) (*domain.CardSet, error) {
	if err := s.validateBatch(drafts); err != nil {
		return nil, err
	}

	now := s.now()
	set, err := domain.NewCardSet(name, now)
	if err != nil {
		return nil, err
	}
	cards, err := s.buildCards(set.ID, drafts, now)
	if err != nil {
		return nil, err
	}
	set.AddCards(now, cards...)

	err = s.mutate(ctx, "restore_card_set", func(sets []domain.CardSet) ([]domain.CardSet, error) {
		return append(sets, *set), nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("card set restored",
		slog.String("set_id", set.ID),
		slog.Int("card_count", len(cards)))
	return set.Clone(), nil
}

// errUnchanged aborts a mutation that turned out to be a no-op, skipping the save.
var errUnchanged = errors.New("collection unchanged")

// mutate applies fn to a copy of the collection, saves the result and only
// then commits it. fn returning an error aborts without saving.
func (s *cardSetServiceImpl) mutate(
	ctx context.Context,
	operation string,
	fn func(sets []domain.CardSet) ([]domain.CardSet, error),
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(cloneSets(s.sets))
	if err != nil {
		return err
	}

	if err := s.repo.Save(ctx, next); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save card sets",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return NewServiceError(operation, "failed to save card sets", err)
	}

	s.sets = next
	return nil
}

// validateBatch checks every draft and summarizes the failures in one
// ValidationError wrapping the first cause.
func (s *cardSetServiceImpl) validateBatch(drafts []domain.CardDraft) error {
	var (
		invalid int
		first   error
	)
	for _, d := range drafts {
		if err := d.Validate(s.maxTextLen); err != nil {
			invalid++
			if first == nil {
				first = err
			}
		}
	}
	if invalid == 0 {
		return nil
	}

	return domain.NewValidationError(
		"cards",
		fmt.Sprintf("%d of %d cards are empty or longer than %d characters; no cards were added",
			invalid, len(drafts), s.maxTextLen),
		first,
	)
}

// buildCards turns validated drafts into cards of the given set.
func (s *cardSetServiceImpl) buildCards(setID string, drafts []domain.CardDraft, now time.Time) ([]domain.Card, error) {
	cards := make([]domain.Card, 0, len(drafts))
	for _, d := range drafts {
		card, err := domain.NewCard(setID, d, s.maxTextLen, now)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}
	return cards, nil
}

// indexOf returns the position of setID in the working collection, or -1.
// The caller must hold s.mu.
func (s *cardSetServiceImpl) indexOf(setID string) int {
	if strings.TrimSpace(setID) == "" {
		return -1
	}
	for i := range s.sets {
		if s.sets[i].ID == setID {
			return i
		}
	}
	return -1
}

func findSet(sets []domain.CardSet, setID string) (*domain.CardSet, error) {
	for i := range sets {
		if sets[i].ID == setID {
			return &sets[i], nil
		}
	}
	return nil, ErrCardSetNotFound
}

func cloneSets(sets []domain.CardSet) []domain.CardSet {
	out := make([]domain.CardSet, len(sets))
	for i := range sets {
		out[i] = *sets[i].Clone()
	}
	return out
}

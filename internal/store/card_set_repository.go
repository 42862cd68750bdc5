package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/memorygame/internal/domain"
	"github.com/phrazzld/memorygame/internal/platform/logger"
)

// DefaultCardSetsKey is the blob key holding the card set collection.
const DefaultCardSetsKey = "@memory_game_sets"

const cardSetsEntity = "card_sets"

// CardSetRepository persists the whole card set collection as a single JSON
// array under one key. Every save overwrites the entire blob.
type CardSetRepository struct {
	blobs  BlobStore
	key    string
	logger *slog.Logger
}

// NewCardSetRepository creates a repository over blobs. An empty key selects
// DefaultCardSetsKey.
func NewCardSetRepository(blobs BlobStore, key string, logger *slog.Logger) (*CardSetRepository, error) {
	if blobs == nil {
		return nil, errors.New("blob store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if key == "" {
		key = DefaultCardSetsKey
	}

	return &CardSetRepository{
		blobs:  blobs,
		key:    key,
		logger: logger.With(slog.String("component", "card_set_repository")),
	}, nil
}

// Load reads the collection.
//
// A missing key or a blob that is not valid JSON yields an empty collection;
// the parse failure is logged and swallowed. Only a failure to read the
// underlying storage is returned, as a StoreError matching ErrStorage.
func (r *CardSetRepository) Load(ctx context.Context) ([]domain.CardSet, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	data, err := r.blobs.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Debug("no stored card sets, starting empty", slog.String("key", r.key))
			return []domain.CardSet{}, nil
		}
		return nil, NewStorageError(cardSetsEntity, "load", "failed to read card sets", err)
	}

	var sets []domain.CardSet
	if err := json.Unmarshal(data, &sets); err != nil {
		log.Error("stored card sets are not valid JSON, starting empty",
			slog.String("key", r.key),
			slog.String("error", err.Error()))
		return []domain.CardSet{}, nil
	}

	if sets == nil {
		sets = []domain.CardSet{}
	}
	for i := range sets {
		if sets[i].Cards == nil {
			sets[i].Cards = []domain.Card{}
		}
	}

	return sets, nil
}

// Save overwrites the stored collection with sets.
func (r *CardSetRepository) Save(ctx context.Context, sets []domain.CardSet) error {
	if sets == nil {
		sets = []domain.CardSet{}
	}

	data, err := json.Marshal(sets)
	if err != nil {
		return NewStoreError(cardSetsEntity, "save", "failed to encode card sets", fmt.Errorf("%w: %w", ErrInvalidEntity, err))
	}

	if err := r.blobs.Set(ctx, r.key, data); err != nil {
		return NewStorageError(cardSetsEntity, "save", "failed to write card sets", err)
	}

	logger.FromContextOrDefault(ctx, r.logger).Debug("card sets saved",
		slog.String("key", r.key),
		slog.Int("set_count", len(sets)),
		slog.Int("size_bytes", len(data)))

	return nil
}

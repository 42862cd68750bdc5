package game

import (
	"github.com/phrazzld/memorygame/internal/domain"
)

// Partition splits cards into those the player is struggling with and the rest,
// preserving the input order within each group.
//
// A card is struggling when its incorrect count exceeds its correct count.
// Cards without a performance entry are never struggling.
func Partition(
	cards []domain.Card,
	perf map[string]*CardPerformance,
) (struggling []domain.Card, other []domain.Card) {
	for _, c := range cards {
		if p, ok := perf[c.ID]; ok && p.Struggling() {
			struggling = append(struggling, c)
			continue
		}
		other = append(other, c)
	}
	return struggling, other
}

// reviewCount returns how many non-struggling cards are carried into the
// next round: max(minReview, floor(otherCount/2)), capped at otherCount.
func reviewCount(otherCount, minReview int) int {
	n := otherCount / 2
	if n < minReview {
		n = minReview
	}
	if n > otherCount {
		n = otherCount
	}
	return n
}

// NextRound computes the card sequence for a follow-up round.
//
// Parameters:
//   - cards: every card in the set, in set order
//   - perf: performance entries keyed by card ID
//   - params: selection parameters (minimum review breadth and random source)
//
// Algorithm:
//  1. Partition the cards into struggling and other.
//  2. Shuffle the struggling subset.
//  3. Shuffle the other subset and keep a prefix of
//     max(MinReviewCards, floor(len(other)/2)) cards, capped at len(other).
//  4. Concatenate both and shuffle the result once more.
//
// Every struggling card is always part of the returned round.
func NextRound(
	cards []domain.Card,
	perf map[string]*CardPerformance,
	params Params,
) []domain.Card {
	params = params.withDefaults()

	struggling, other := Partition(cards, perf)

	struggling = Shuffle(struggling, params.Source)
	other = Shuffle(other, params.Source)
	other = other[:reviewCount(len(other), params.MinReviewCards)]

	round := make([]domain.Card, 0, len(struggling)+len(other))
	round = append(round, struggling...)
	round = append(round, other...)

	return Shuffle(round, params.Source)
}

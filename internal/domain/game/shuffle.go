// Package game implements the adaptive quiz session: shuffled rounds over a
// card set, per-card performance tracking, success-rate scoring and the
// selection of the next round biased toward struggling cards.
package game

import (
	"math/rand/v2"
)

// RandomSource draws uniform integers. *rand.Rand satisfies it, and tests
// can supply a deterministic source.
type RandomSource interface {
	// IntN returns a uniform integer in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// globalSource uses the package-level generator from math/rand/v2,
// which is safe for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource returns a RandomSource backed by the runtime's
// automatically seeded generator.
func DefaultSource() RandomSource {
	return globalSource{}
}

// Shuffle returns a uniformly random permutation of items using the
// Fisher–Yates algorithm. The input slice is not modified.
//
// For a sequence of length n it walks i from n-1 down to 1, draws j
// uniformly from [0, i] and swaps the elements at i and j.
func Shuffle[T any](items []T, src RandomSource) []T {
	if src == nil {
		src = DefaultSource()
	}

	shuffled := make([]T, len(items))
	copy(shuffled, items)

	for i := len(shuffled) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}

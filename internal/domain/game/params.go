package game

// DefaultMinReviewCards is the minimum number of non-struggling cards kept in a
// follow-up round for review breadth.
const DefaultMinReviewCards = 3

// Params defines the configurable parameters of a session.
type Params struct {
	// MinReviewCards is the lower bound on how many non-struggling cards
	// are carried into the next round (capped by how many exist).
	MinReviewCards int

	// Source provides the random draws used for shuffling.
	Source RandomSource
}

// NewDefaultParams creates a Params instance with default values.
func NewDefaultParams() Params {
	return Params{
		MinReviewCards: DefaultMinReviewCards,
		Source:         DefaultSource(),
	}
}

func (p Params) withDefaults() Params {
	if p.MinReviewCards <= 0 {
		p.MinReviewCards = DefaultMinReviewCards
	}
	if p.Source == nil {
		p.Source = DefaultSource()
	}
	return p
}

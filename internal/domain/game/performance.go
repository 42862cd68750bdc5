package game

import (
	"encoding/json"
	"fmt"
	"math"
)

// Attempt is the outcome of the most recent answer for a card.
type Attempt int

const (
	// AttemptNone means the card has not been answered in this session.
	AttemptNone Attempt = iota
	// AttemptCorrect means the last answer was correct.
	AttemptCorrect
	// AttemptIncorrect means the last answer was incorrect.
	AttemptIncorrect
)

// String returns the wire name of the attempt.
func (a Attempt) String() string {
	switch a {
	case AttemptCorrect:
		return "correct"
	case AttemptIncorrect:
		return "incorrect"
	default:
		return "none"
	}
}

// MarshalJSON encodes the attempt by name.
func (a Attempt) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes an attempt name.
func (a *Attempt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "none", "":
		*a = AttemptNone
	case "correct":
		*a = AttemptCorrect
	case "incorrect":
		*a = AttemptIncorrect
	default:
		return fmt.Errorf("unknown attempt %q", s)
	}
	return nil
}

// CardPerformance tracks answers for one card within a session.
type CardPerformance struct {
	CardID         string  `json:"cardId"`
	CorrectCount   int     `json:"correctCount"`
	IncorrectCount int     `json:"incorrectCount"`
	LastAttempt    Attempt `json:"lastAttempt"`
}

// Record applies one answer to the performance entry.
func (p *CardPerformance) Record(correct bool) {
	if correct {
		p.CorrectCount++
		p.LastAttempt = AttemptCorrect
		return
	}
	p.IncorrectCount++
	p.LastAttempt = AttemptIncorrect
}

// Struggling reports whether the card has been missed more often than
// it has been answered correctly.
func (p CardPerformance) Struggling() bool {
	return p.IncorrectCount > p.CorrectCount
}

// SuccessRate returns 100 × C / (C + I) where C and I are the correct and
// incorrect totals across all entries. It returns 0 when nothing has been
// answered yet.
func SuccessRate(perf []CardPerformance) float64 {
	var correct, incorrect int
	for _, p := range perf {
		correct += p.CorrectCount
		incorrect += p.IncorrectCount
	}

	total := correct + incorrect
	if total == 0 {
		return 0
	}
	return 100 * float64(correct) / float64(total)
}

// RoundScore returns the integer percentage of correct answers in a pass of
// total cards, rounded half away from zero. It returns 0 for an empty pass.
func RoundScore(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

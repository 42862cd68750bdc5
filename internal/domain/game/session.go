package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/memorygame/internal/domain"
)

// Session errors
var (
	ErrNoCards          = errors.New("card set has no cards to play")
	ErrNotInRound       = errors.New("no card is awaiting an answer")
	ErrRoundNotComplete = errors.New("current round is still in progress")
	ErrSessionComplete  = errors.New("session is already complete")
)

// State is the lifecycle state of a session.
type State int

const (
	// StateInRound means a card is being presented.
	StateInRound State = iota
	// StateRoundComplete means every card of the current round was answered.
	StateRoundComplete
	// StateSessionComplete is terminal: the set was mastered or the player stopped.
	StateSessionComplete
)

// String returns the wire name of the state.
func (s State) String() string {
	switch s {
	case StateInRound:
		return "in_round"
	case StateRoundComplete:
		return "round_complete"
	case StateSessionComplete:
		return "session_complete"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state name.
func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "in_round":
		*s = StateInRound
	case "round_complete":
		*s = StateRoundComplete
	case "session_complete":
		*s = StateSessionComplete
	default:
		return fmt.Errorf("unknown session state %q", name)
	}
	return nil
}

// Session drives one or more quiz rounds over a card set.
//
// A Session is not safe for concurrent use; callers serialize access.
// Done may be read from other goroutines.
type Session struct {
	id     string
	setID  string
	params Params

	cards    []domain.Card
	sequence []domain.Card
	index    int

	round        int
	roundCorrect int
	perf         map[string]*CardPerformance

	state     State
	stopped   bool
	startedAt time.Time
	endedAt   time.Time

	done       chan struct{}
	doneClosed bool
}

// NewSession starts a session over cards. The first round is the full set,
// shuffled. The cards slice is copied.
func NewSession(setID string, cards []domain.Card, params Params, now time.Time) (*Session, error) {
	if len(cards) == 0 {
		return nil, ErrNoCards
	}

	s := &Session{
		id:     uuid.NewString(),
		setID:  setID,
		params: params.withDefaults(),
		cards:  append([]domain.Card(nil), cards...),
	}
	s.begin(now)
	return s, nil
}

// begin resets all session-local state and starts round one.
func (s *Session) begin(now time.Time) {
	s.perf = make(map[string]*CardPerformance, len(s.cards))
	for _, c := range s.cards {
		s.perf[c.ID] = &CardPerformance{CardID: c.ID}
	}

	s.sequence = Shuffle(s.cards, s.params.Source)
	s.index = 0
	s.round = 1
	s.roundCorrect = 0
	s.state = StateInRound
	s.stopped = false
	s.startedAt = now
	s.endedAt = time.Time{}
	s.done = make(chan struct{})
	s.doneClosed = false
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SetID returns the ID of the card set being played.
func (s *Session) SetID() string { return s.setID }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Round returns the 1-based round number.
func (s *Session) Round() int { return s.round }

// Stopped reports whether the player ended the session before mastery.
func (s *Session) Stopped() bool { return s.stopped }

// Done returns a channel that is closed when the session completes.
func (s *Session) Done() <-chan struct{} { return s.done }

// Current returns the card awaiting an answer, or false outside a round.
func (s *Session) Current() (domain.Card, bool) {
	if s.state != StateInRound {
		return domain.Card{}, false
	}
	return s.sequence[s.index], true
}

// Sequence returns a copy of the current round's card order.
func (s *Session) Sequence() []domain.Card {
	return append([]domain.Card(nil), s.sequence...)
}

// Progress returns the 1-based position of the current card and the round length.
// Outside a round the position equals the round length.
func (s *Session) Progress() (position, total int) {
	total = len(s.sequence)
	if s.state != StateInRound {
		return total, total
	}
	return s.index + 1, total
}

// Answer records the player's answer for the current card and advances.
// Answering the last card of the round moves the session to RoundComplete,
// or straight to SessionComplete when every answer so far was correct.
func (s *Session) Answer(correct bool, now time.Time) error {
	switch s.state {
	case StateSessionComplete:
		return ErrSessionComplete
	case StateRoundComplete:
		return ErrNotInRound
	}

	card := s.sequence[s.index]
	s.perf[card.ID].Record(correct)
	if correct {
		s.roundCorrect++
	}

	if s.index < len(s.sequence)-1 {
		s.index++
		return nil
	}

	s.state = StateRoundComplete
	if s.mastered() {
		s.finish(now)
	}
	return nil
}

// Continue begins a follow-up round built by NextRound. It is only valid
// after a round has completed without full mastery.
func (s *Session) Continue() error {
	switch s.state {
	case StateSessionComplete:
		return ErrSessionComplete
	case StateInRound:
		return ErrRoundNotComplete
	}

	s.sequence = NextRound(s.cards, s.perf, s.params)
	s.index = 0
	s.round++
	s.roundCorrect = 0
	s.state = StateInRound
	return nil
}

// Stop ends the session at the player's request. Stopping a completed
// session is a no-op.
func (s *Session) Stop(now time.Time) {
	if s.state == StateSessionComplete {
		return
	}
	s.stopped = true
	s.finish(now)
}

// Restart discards all results and starts again from a fresh shuffle of
// the full set.
func (s *Session) Restart(now time.Time) {
	s.closeDone()
	s.begin(now)
}

func (s *Session) finish(now time.Time) {
	s.state = StateSessionComplete
	s.endedAt = now
	s.closeDone()
}

func (s *Session) closeDone() {
	if !s.doneClosed {
		close(s.done)
		s.doneClosed = true
	}
}

// mastered reports a 100% aggregate success rate. Integer totals are
// compared so the check does not depend on float rounding.
func (s *Session) mastered() bool {
	var correct, incorrect int
	for _, p := range s.perf {
		correct += p.CorrectCount
		incorrect += p.IncorrectCount
	}
	return correct > 0 && incorrect == 0
}

// SuccessRate returns the aggregate success rate across all rounds.
func (s *Session) SuccessRate() float64 {
	return SuccessRate(s.Performance())
}

// RoundCorrect returns the number of correct answers in the current round.
func (s *Session) RoundCorrect() int { return s.roundCorrect }

// RoundScore returns round(100 × correct / roundLength) for the current round.
func (s *Session) RoundScore() int {
	return RoundScore(s.roundCorrect, len(s.sequence))
}

// FinalScore returns the score offered as the set's new best score: the
// round score for a single-round session and the rounded aggregate success
// rate once more than one round has been played.
func (s *Session) FinalScore() int {
	if s.round <= 1 {
		return s.RoundScore()
	}
	return int(math.Round(s.SuccessRate()))
}

// Performance returns a copy of every card's performance, in set order.
func (s *Session) Performance() []CardPerformance {
	out := make([]CardPerformance, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, *s.perf[c.ID])
	}
	return out
}

// Struggling returns the cards currently classified as struggling, in set order.
func (s *Session) Struggling() []domain.Card {
	struggling, _ := Partition(s.cards, s.perf)
	return struggling
}

// StartedAt returns when the current session (or restart) began.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Elapsed returns the time played so far, frozen once the session completes.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.state == StateSessionComplete {
		return s.endedAt.Sub(s.startedAt)
	}
	return now.Sub(s.startedAt)
}

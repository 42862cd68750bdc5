package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/memorygame/internal/domain"
	"github.com/phrazzld/memorygame/internal/domain/game"
	"github.com/phrazzld/memorygame/internal/platform/logger"
)

// DefaultSessionTTL is how long an untouched game session is kept.
const DefaultSessionTTL = 2 * time.Hour

// GameView is a snapshot of a game session for presentation.
type GameView struct {
	ID             string                 `json:"id"`
	SetID          string                 `json:"setId"`
	SetName        string                 `json:"setName"`
	State          game.State             `json:"state"`
	Round          int                    `json:"round"`
	Position       int                    `json:"position"`
	Total          int                    `json:"total"`
	Current        *domain.Card           `json:"current,omitempty"`
	RoundCorrect   int                    `json:"roundCorrect"`
	RoundScore     int                    `json:"roundScore"`
	SuccessRate    float64                `json:"successRate"`
	FinalScore     *int                   `json:"finalScore,omitempty"`
	Stopped        bool                   `json:"stopped"`
	BestScore      int                    `json:"bestScore"`
	NewBestScore   bool                   `json:"newBestScore"`
	Struggling     []domain.Card          `json:"struggling"`
	Performance    []game.CardPerformance `json:"performance"`
	ElapsedSeconds int64                  `json:"elapsedSeconds"`
	Elapsed        string                 `json:"elapsed"`
}

// GameService hosts adaptive game sessions over card sets.
type GameService interface {
	// Start begins a session over a copy of the set's cards.
	//
	// Returns:
	//   - (view, nil): the session is in its first round
	//   - (nil, ErrCardSetNotFound): the set does not exist
	//   - (nil, ErrEmptyCardSet): the set has no cards
	Start(ctx context.Context, setID string) (*GameView, error)

	// Get returns the current view of a session, or ErrSessionNotFound.
	// A finished session whose best score could not be saved retries the save.
	Get(ctx context.Context, sessionID string) (*GameView, error)

	// Answer records whether the current card was answered correctly.
	// When the answer completes the session, the final score is offered as
	// the set's best score.
	Answer(ctx context.Context, sessionID string, correct bool) (*GameView, error)

	// Continue starts the next round of struggling and review cards.
	Continue(ctx context.Context, sessionID string) (*GameView, error)

	// Restart discards all results and replays the full set.
	Restart(ctx context.Context, sessionID string) (*GameView, error)

	// Stop ends a session early and offers its final score as the set's best score.
	Stop(ctx context.Context, sessionID string) (*GameView, error)

	// End discards a session.
	End(ctx context.Context, sessionID string) error

	// EvictExpired discards sessions untouched since before now minus the TTL
	// and returns how many were removed.
	EvictExpired(now time.Time) int

	// Run evicts expired sessions every interval until ctx is done.
	Run(ctx context.Context, interval time.Duration)
}

// Verify interface compliance at compile time
var _ GameService = (*gameServiceImpl)(nil)

type gameEntry struct {
	session   *game.Session
	setName   string
	bestScore int
	newBest   bool
	lastSeen  time.Time

	// attempt counts restarts so that a save finishing after a restart is
	// not credited to the new attempt.
	attempt      int
	scoreOffered bool
	offering     bool
}

// scoreOffer is a final score claimed under the lock and persisted outside it.
type scoreOffer struct {
	entry     *gameEntry
	attempt   int
	sessionID string
	setID     string
	score     int
	stopped   bool
}

type gameServiceImpl struct {
	cardSets CardSetService
	params   game.Params
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*gameEntry
}

// NewGameService creates a new GameService. A non-positive ttl selects DefaultSessionTTL.
func NewGameService(
	cardSets CardSetService,
	params game.Params,
	ttl time.Duration,
	logger *slog.Logger,
) (GameService, error) {
	if cardSets == nil {
		return nil, domain.NewValidationError("cardSets", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &gameServiceImpl{
		cardSets: cardSets,
		params:   params,
		ttl:      ttl,
		logger:   logger.With(slog.String("component", "game_service")),
		now:      time.Now,
		sessions: make(map[string]*gameEntry),
	}, nil
}

// Start implements GameService.Start.
func (s *gameServiceImpl) Start(ctx context.Context, setID string) (*GameView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	set, err := s.cardSets.Get(ctx, setID)
	if err != nil {
		return nil, err
	}
	if len(set.Cards) == 0 {
		return nil, ErrEmptyCardSet
	}

	now := s.now()
	session, err := game.NewSession(set.ID, set.Cards, s.params, now)
	if err != nil {
		return nil, NewServiceError("start_game", "failed to start session", err)
	}

	entry := &gameEntry{
		session:   session,
		setName:   set.Name,
		bestScore: set.BestScore,
		lastSeen:  now,
	}

	s.mu.Lock()
	s.evictLocked(now)
	s.sessions[session.ID()] = entry
	view := entry.view(now)
	s.mu.Unlock()

	log.Info("game started",
		slog.String("session_id", session.ID()),
		slog.String("set_id", set.ID),
		slog.Int("card_count", len(set.Cards)))
	return view, nil
}

// Get implements GameService.Get.
func (s *gameServiceImpl) Get(ctx context.Context, sessionID string) (*GameView, error) {
	return s.withSession(ctx, sessionID, func(e *gameEntry, now time.Time) error {
		return nil
	})
}

// Answer implements GameService.Answer.
func (s *gameServiceImpl) Answer(ctx context.Context, sessionID string, correct bool) (*GameView, error) {
	return s.withSession(ctx, sessionID, func(e *gameEntry, now time.Time) error {
		return e.session.Answer(correct, now)
	})
}

// Continue implements GameService.Continue.
func (s *gameServiceImpl) Continue(ctx context.Context, sessionID string) (*GameView, error) {
	return s.withSession(ctx, sessionID, func(e *gameEntry, now time.Time) error {
		return e.session.Continue()
	})
}

// Restart implements GameService.Restart.
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*GameView, error) {
	return s.withSession(ctx, sessionID, func(e *gameEntry, now time.Time) error {
		e.session.Restart(now)
		e.attempt++
		e.scoreOffered = false
		e.newBest = false
		return nil
	})
}

// Stop implements GameService.Stop.
func (s *gameServiceImpl) Stop(ctx context.Context, sessionID string) (*GameView, error) {
	return s.withSession(ctx, sessionID, func(e *gameEntry, now time.Time) error {
		e.session.Stop(now)
		return nil
	})
}

// End implements GameService.End.
func (s *gameServiceImpl) End(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)

	logger.FromContextOrDefault(ctx, s.logger).Debug("game ended", slog.String("session_id", sessionID))
	return nil
}

// EvictExpired implements GameService.EvictExpired.
func (s *gameServiceImpl) EvictExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.evictLocked(now)
}

// Run implements GameService.Run.
func (s *gameServiceImpl) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictExpired(s.now()); n > 0 {
				s.logger.Debug("evicted idle game sessions", slog.Int("count", n))
			}
		}
	}
}

// withSession runs fn on the named session under the lock and returns the
// resulting view. When the session has finished and its score has not been
// recorded yet, the score is saved after the lock is released. The view is
// returned even when that save fails.
func (s *gameServiceImpl) withSession(
	ctx context.Context,
	sessionID string,
	fn func(e *gameEntry, now time.Time) error,
) (*GameView, error) {
	s.mu.Lock()

	now := s.now()
	e, ok := s.sessions[sessionID]
	if !ok || s.expired(e, now) {
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	e.lastSeen = now

	if err := fn(e, now); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("game action rejected",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		view := e.view(now)
		s.mu.Unlock()
		return view, err
	}

	offer := e.claimOffer()
	if offer == nil {
		view := e.view(now)
		s.mu.Unlock()
		return view, nil
	}
	s.mu.Unlock()

	applied, err := s.recordScore(ctx, offer)

	s.mu.Lock()
	defer s.mu.Unlock()
	offer.settle(applied, err)
	return e.view(now), err
}

// claimOffer returns the score a finished session still has to record, or
// nil. The caller must hold s.mu.
func (e *gameEntry) claimOffer() *scoreOffer {
	if e.session.State() != game.StateSessionComplete || e.scoreOffered || e.offering {
		return nil
	}
	e.offering = true

	return &scoreOffer{
		entry:     e,
		attempt:   e.attempt,
		sessionID: e.session.ID(),
		setID:     e.session.SetID(),
		score:     e.session.FinalScore(),
		stopped:   e.session.Stopped(),
	}
}

// settle records the outcome of a save. A failed save leaves the score
// unrecorded so the next request offers it again. The caller must hold s.mu.
func (o *scoreOffer) settle(applied bool, err error) {
	e := o.entry
	e.offering = false
	if err != nil || e.attempt != o.attempt {
		return
	}

	e.scoreOffered = true
	if applied {
		e.bestScore = o.score
		e.newBest = true
	}
}

// recordScore offers the final score as the set's best score. It must be
// called without holding s.mu.
func (s *gameServiceImpl) recordScore(ctx context.Context, o *scoreOffer) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	applied, err := s.cardSets.UpdateBestScore(ctx, o.setID, o.score)
	if err != nil {
		log.Error("failed to record best score",
			slog.String("set_id", o.setID),
			slog.Int("score", o.score),
			slog.String("error", err.Error()))
		return false, err
	}

	log.Info("game finished",
		slog.String("session_id", o.sessionID),
		slog.String("set_id", o.setID),
		slog.Int("score", o.score),
		slog.Bool("stopped", o.stopped),
		slog.Bool("new_best_score", applied))
	return applied, nil
}

func (s *gameServiceImpl) expired(e *gameEntry, now time.Time) bool {
	return now.Sub(e.lastSeen) > s.ttl
}

// evictLocked removes expired sessions. The caller must hold s.mu.
func (s *gameServiceImpl) evictLocked(now time.Time) int {
	n := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (e *gameEntry) view(now time.Time) *GameView {
	sess := e.session
	pos, total := sess.Progress()
	elapsed := sess.Elapsed(now)

	v := &GameView{
		ID:             sess.ID(),
		SetID:          sess.SetID(),
		SetName:        e.setName,
		State:          sess.State(),
		Round:          sess.Round(),
		Position:       pos,
		Total:          total,
		RoundCorrect:   sess.RoundCorrect(),
		RoundScore:     sess.RoundScore(),
		SuccessRate:    sess.SuccessRate(),
		Stopped:        sess.Stopped(),
		BestScore:      e.bestScore,
		NewBestScore:   e.newBest,
		Struggling:     sess.Struggling(),
		Performance:    sess.Performance(),
		ElapsedSeconds: int64(elapsed / time.Second),
		Elapsed:        game.FormatElapsed(elapsed),
	}

	if v.Struggling == nil {
		v.Struggling = []domain.Card{}
	}
	if card, ok := sess.Current(); ok {
		v.Current = &card
	}
	if sess.State() == game.StateSessionComplete {
		score := sess.FinalScore()
		v.FinalScore = &score
	}
	return v
}

package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/pfenwick/retain-api/internal/platform/logger"
	"github.com/pfenwick/retain-api/internal/scheduler"
	"github.com/pfenwick/retain-api/internal/selection"
	"github.com/pfenwick/retain-api/internal/store"
)

// Verify interface compliance at compile time
var _ SessionService = (*sessionServiceImpl)(nil)

// sessionServiceImpl implements the SessionService interface.
type sessionServiceImpl struct {
	deckStore    store.DeckStore
	stateStore   store.SchedulingStateStore
	sessionStore store.SessionStore
	reviewLog    store.ReviewLogStore
	txRunner     store.TxRunner
	strategies   *scheduler.Registry
	algorithms   *selection.Registry
	logger       *slog.Logger
	now          func() time.Time

	defaultStrategyID  string
	defaultAlgorithmID string
}

// Option customizes a SessionService at construction time.
type Option func(*sessionServiceImpl)

// WithClock overrides the service's time source. Tests pin the clock to
// make due times deterministic.
func WithClock(now func() time.Time) Option {
	return func(s *sessionServiceImpl) {
		s.now = now
	}
}

// WithDefaultPolicies overrides the strategy and algorithm IDs used for
// decks whose settings leave them blank. Empty arguments keep the
// built-in defaults.
func WithDefaultPolicies(strategyID, algorithmID string) Option {
	return func(s *sessionServiceImpl) {
		if strategyID != "" {
			s.defaultStrategyID = strategyID
		}
		if algorithmID != "" {
			s.defaultAlgorithmID = algorithmID
		}
	}
}

// NewSessionService creates a new SessionService implementation.
func NewSessionService(
	deckStore store.DeckStore,
	stateStore store.SchedulingStateStore,
	sessionStore store.SessionStore,
	reviewLog store.ReviewLogStore,
	txRunner store.TxRunner,
	strategies *scheduler.Registry,
	algorithms *selection.Registry,
	log *slog.Logger,
	opts ...Option,
) SessionService {
	// Validate inputs
	if deckStore == nil {
		panic("deckStore cannot be nil")
	}
	if stateStore == nil {
		panic("stateStore cannot be nil")
	}
	if sessionStore == nil {
		panic("sessionStore cannot be nil")
	}
	if reviewLog == nil {
		panic("reviewLog cannot be nil")
	}
	if txRunner == nil {
		panic("txRunner cannot be nil")
	}
	if strategies == nil {
		panic("strategies cannot be nil")
	}
	if algorithms == nil {
		panic("algorithms cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	s := &sessionServiceImpl{
		deckStore:    deckStore,
		stateStore:   stateStore,
		sessionStore: sessionStore,
		reviewLog:    reviewLog,
		txRunner:     txRunner,
		strategies:   strategies,
		algorithms:   algorithms,
		logger:       log.With(slog.String("component", "session_service")),
		now:          func() time.Time { return time.Now().UTC() },

		defaultStrategyID:  scheduler.DefaultStrategyID,
		defaultAlgorithmID: selection.DefaultAlgorithmID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession implements SessionService.StartSession.
func (s *sessionServiceImpl) StartSession(
	ctx context.Context,
	userID, deckID uuid.UUID,
	mode domain.SessionMode,
) (*domain.FlashcardSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if mode == "" {
		mode = domain.SessionModeFinite
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSessionMode, mode)
	}

	log.Debug("starting review session",
		slog.String("user_id", userID.String()),
		slog.String("deck_id", deckID.String()),
		slog.String("mode", string(mode)))

	deck, err := s.deckStore.Get(ctx, userID, deckID)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, NewStartSessionError("failed to load deck", err)
	}

	// Resolve both pinned policies before any scheduling-state write, so a
	// deck referencing a retired ID fails loudly without side effects.
	strategyID := deck.Settings.SchedulingStrategyID
	if strategyID == "" {
		strategyID = s.defaultStrategyID
	}
	strategy, err := s.strategies.Get(strategyID)
	if err != nil {
		log.Warn("deck references unknown scheduling strategy",
			slog.String("deck_id", deckID.String()),
			slog.String("strategy_id", strategyID))
		return nil, err
	}

	algorithmID := deck.Settings.SelectionAlgorithmID
	if algorithmID == "" {
		algorithmID = s.defaultAlgorithmID
	}
	algorithm, err := s.algorithms.Get(algorithmID)
	if err != nil {
		log.Warn("deck references unknown selection algorithm",
			slog.String("deck_id", deckID.String()),
			slog.String("algorithm_id", algorithmID))
		return nil, err
	}

	queue, err := s.buildScheduledQueue(ctx, userID, deck, strategy)
	if err != nil {
		return nil, NewStartSessionError("failed to build scheduled queue", err)
	}

	split := algorithm.Initialize(queue, mode)

	session, err := domain.NewFlashcardSession(
		userID, deck.ID, mode, strategyID, algorithmID, split.Active, split.Remaining,
	)
	if err != nil {
		return nil, NewStartSessionError("failed to construct session", err)
	}

	if err := s.sessionStore.Create(ctx, session); err != nil {
		return nil, NewStartSessionError("failed to persist session", err)
	}

	log.Debug("review session started",
		slog.String("session_id", session.ID.String()),
		slog.String("strategy_id", strategyID),
		slog.String("algorithm_id", algorithmID),
		slog.Int("queue_size", len(queue)))

	return session, nil
}

// GetSession implements SessionService.GetSession.
func (s *sessionServiceImpl) GetSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*domain.FlashcardSession, error) {
	session, err := s.sessionStore.Get(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// AnswerCard implements SessionService.AnswerCard. The whole
// read-modify-write runs inside one transaction with the session row
// locked, so two concurrent answers against the same session serialize
// instead of both reading the pre-update session and losing an append.
func (s *sessionServiceImpl) AnswerCard(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	feedback domain.FeedbackRating,
) (*domain.FlashcardSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !feedback.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFeedback, feedback)
	}

	var result *domain.FlashcardSession
	err := s.txRunner.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		sessions := s.sessionStore.WithTx(tx)

		session, err := sessions.GetForUpdate(ctx, userID, sessionID)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to load session: %w", err)
		}

		// No active card: the session already ended. A retry after the
		// final answer lands here, and it must succeed without appending
		// anything.
		if session.ActiveCard == nil {
			log.Debug("answer against finished session ignored",
				slog.String("session_id", sessionID.String()))
			result = session
			return nil
		}

		// Both policies were pinned at session start; deck settings edited
		// mid-session do not disturb an in-progress review.
		strategy, err := s.strategies.Get(session.StrategyID)
		if err != nil {
			return err
		}
		algorithm, err := s.algorithms.Get(session.AlgorithmID)
		if err != nil {
			return err
		}

		now := s.now()
		active := session.ActiveCard
		newState := strategy.ScheduleNext(active.Card, active.State, feedback, scheduler.Context{Now: now})

		if err := s.stateStore.WithTx(tx).Set(ctx, userID, session.DeckID, active.Card.ID, newState); err != nil {
			return NewAnswerCardError("failed to persist scheduling state", err)
		}

		event := domain.ReviewEvent{
			CardID:       active.Card.ID,
			DeckID:       session.DeckID,
			UserID:       userID,
			Timestamp:    now,
			Feedback:     feedback,
			PrevInterval: active.State.Interval,
			NextInterval: newState.Interval,
		}
		if err := s.reviewLog.WithTx(tx).Append(ctx, event); err != nil {
			return NewAnswerCardError("failed to append review event", err)
		}

		answered := domain.ScheduledCard{Card: active.Card, State: newState}
		next := algorithm.Next(session.RemainingQueue, answered, session.Mode, feedback)

		updated := *session
		updated.ActiveCard = next.Active
		updated.RemainingQueue = next.Remaining
		updated.Completed = append(session.Completed, event)

		if err := sessions.Update(ctx, &updated); err != nil {
			return NewAnswerCardError("failed to persist session", err)
		}

		log.Debug("card answered",
			slog.String("session_id", sessionID.String()),
			slog.String("card_id", active.Card.ID),
			slog.String("feedback", string(feedback)),
			slog.Float64("prev_interval", event.PrevInterval),
			slog.Float64("next_interval", event.NextInterval),
			slog.Time("next_due", newState.Due))

		result = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// buildScheduledQueue pairs every deck card with its scheduling state,
// creating and persisting initial state for cards that have none, and
// returns the pairs sorted ascending by due. This base ordering is the
// input handed to the selection algorithm; the algorithm reorders at
// selection time, not here.
func (s *sessionServiceImpl) buildScheduledQueue(
	ctx context.Context,
	userID uuid.UUID,
	deck *domain.Deck,
	strategy scheduler.Strategy,
) ([]domain.ScheduledCard, error) {
	now := s.now()
	sctx := scheduler.Context{Now: now}

	states, err := s.stateStore.ListDeckStates(ctx, userID, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduling states: %w", err)
	}

	queue := make([]domain.ScheduledCard, 0, len(deck.Cards))
	for _, card := range deck.Cards {
		if existing, ok := states[card.ID]; ok {
			queue = append(queue, domain.ScheduledCard{Card: card, State: existing})
			continue
		}

		// Persist immediately so concurrent session starts converge on one
		// initial state instead of racing to create divergent ones; Ensure
		// returns whichever write won.
		state, err := s.stateStore.Ensure(ctx, userID, deck.ID, card.ID, strategy.InitialState(card, sctx))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize scheduling state for card %q: %w", card.ID, err)
		}
		queue = append(queue, domain.ScheduledCard{Card: card, State: state})
	}

	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].State.Due.Before(queue[j].State.Due)
	})
	return queue, nil
}

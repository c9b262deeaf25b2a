package review

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/pfenwick/retain-api/internal/platform/memory"
	"github.com/pfenwick/retain-api/internal/scheduler"
	"github.com/pfenwick/retain-api/internal/selection"
	"github.com/pfenwick/retain-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service    SessionService
	deckStore  *memory.DeckStore
	stateStore *memory.SchedulingStateStore
	reviewLog  *memory.ReviewLogStore
	userID     uuid.UUID
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	deckStore := memory.NewDeckStore()
	stateStore := memory.NewSchedulingStateStore()
	reviewLog := memory.NewReviewLogStore()

	service := NewSessionService(
		deckStore,
		stateStore,
		memory.NewSessionStore(),
		reviewLog,
		memory.NewTxRunner(),
		scheduler.NewDefaultRegistry(),
		selection.NewDefaultRegistry(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithClock(func() time.Time { return now }),
	)

	return &fixture{
		service:    service,
		deckStore:  deckStore,
		stateStore: stateStore,
		reviewLog:  reviewLog,
		userID:     uuid.New(),
		now:        now,
	}
}

func (f *fixture) createDeck(t *testing.T, cardCount int, settings domain.DeckSettings) *domain.Deck {
	t.Helper()
	cards := make([]domain.Card, 0, cardCount)
	for i := 0; i < cardCount; i++ {
		cards = append(cards, domain.Card{
			ID:    fmt.Sprintf("card-%d", i),
			Type:  domain.CardTypeBasic,
			Front: fmt.Sprintf("front %d", i),
			Back:  fmt.Sprintf("back %d", i),
		})
	}
	deck, err := domain.NewDeck(f.userID, "Test Deck", "", nil, cards)
	require.NoError(t, err)
	deck.UpdateSettings(settings)
	require.NoError(t, f.deckStore.Create(context.Background(), deck))
	return deck
}

func TestStartSessionDefaults(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	deck := f.createDeck(t, 3, domain.DeckSettings{})

	session, err := f.service.StartSession(context.Background(), f.userID, deck.ID, domain.SessionModeFinite)
	require.NoError(t, err)

	assert.Equal(t, scheduler.DefaultStrategyID, session.StrategyID, "blank settings resolve to defaults")
	assert.Equal(t, selection.DefaultAlgorithmID, session.AlgorithmID)
	require.NotNil(t, session.ActiveCard)
	assert.Len(t, session.RemainingQueue, 2)
	assert.Empty(t, session.Completed)

	// Every card got a persisted initial state.
	states, err := f.stateStore.ListDeckStates(context.Background(), f.userID, deck.ID)
	require.NoError(t, err)
	assert.Len(t, states, 3)
}

func TestStartSessionPinsDeckSettings(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	deck := f.createDeck(t, 2, domain.DeckSettings{
		SchedulingStrategyID: scheduler.SM2ID,
		SelectionAlgorithmID: selection.FaustID,
	})

	session, err := f.service.StartSession(context.Background(), f.userID, deck.ID, domain.SessionModeFinite)
	require.NoError(t, err)

	assert.Equal(t, scheduler.SM2ID, session.StrategyID)
	assert.Equal(t, selection.FaustID, session.AlgorithmID)
}

func TestStartSessionDeckNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.service.StartSession(context.Background(), f.userID, uuid.New(), domain.SessionModeFinite)
	assert.ErrorIs(t, err, ErrDeckNotFound)
}

func TestStartSessionOtherUsersDeck(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	deck := f.createDeck(t, 1, domain.DeckSettings{})

	_, err := f.service.StartSession(context.Background(), uuid.New(), deck.ID, domain.SessionModeFinite)
	assert.ErrorIs(t, err, ErrDeckNotFound)
}

// A deck referencing a retired strategy ID must fail the whole start,
// before any scheduling state is written. No silent fallback.
func TestStartSessionUnknownStrategyWritesNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	deck := f.createDeck(t, 2, domain.DeckSettings{SchedulingStrategyID: "retired-v1"})

	_, err := f.service.StartSession(context.Background(), f.userID, deck.ID, domain.SessionModeFinite)
	require.Error(t, err)
	assert.ErrorIs(t, err, scheduler.ErrUnknownStrategy)

	states, stErr := f.stateStore.ListDeckStates(context.Background(), f.userID, deck.ID)
	require.NoError(t, stErr)
	assert.Empty(t, states, "failed start must leave no scheduling state behind")
}

func TestStartSessionUnknownAlgorithmWritesNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	deck := f.createDeck(t, 2, domain.DeckSettings{SelectionAlgorithmID: "round-robin"})

	_, err := f.service.StartSession(context.Background(), f.userID, deck.ID, domain.SessionModeFinite)
	require.Error(t, err)
	assert.ErrorIs(t, err, selection.ErrUnknownAlgorithm)

	states, stErr := f.stateStore.ListDeckStates(context.Background(), f.userID, deck.ID)
	require.NoError(t, stErr)
	assert.Empty(t, states)
}

func TestStartSessionEmptyDeck(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	deck := f.createDeck(t, 0, domain.DeckSettings{})

	session, err := f.service.StartSession(context.Background(), f.userID, deck.ID, domain.SessionModeFinite)
	require.NoError(t, err)

	assert.Nil(t, session.ActiveCard, "empty deck yields an already-finished session")
	assert.Empty(t, session.RemainingQueue)
}

func TestAnswerCardAdvancesSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	deck := f.createDeck(t, 3, domain.DeckSettings{})

	session, err := f.service.StartSession(ctx, f.userID, deck.ID, domain.SessionModeFinite)
	require.NoError(t, err)
	firstCard := session.ActiveCard.Card

	updated, err := f.service.AnswerCard(ctx, f.userID, session.ID, domain.FeedbackGood)
	require.NoError(t, err)

	require.NotNil(t, updated.ActiveCard)
	assert.NotEqual(t, firstCard.ID, updated.ActiveCard.Card.ID)
	require.Len(t, updated.Completed, 1)

	event := updated.Completed[0]
	assert.Equal(t, firstCard.ID, event.CardID)
	assert.Equal(t, domain.FeedbackGood, event.Feedback)
	assert.Equal(t, f.now, event.Timestamp)
	assert.Greater(t, event.NextInterval, event.PrevInterval)

	// State store reflects the new schedule.
	states, err := f.stateStore.ListDeckStates(ctx, f.userID, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, event.NextInterval, states[firstCard.ID].Interval)

	// The review log carries the same event.
	events, err := f.reviewLog.ListByDeck(ctx, f.userID, deck.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, firstCard.ID, events[0].CardID)
}

// A finite session over N cards ends after exactly N answers: active card
// nil, remaining empty, completed log length N.
func TestFiniteSessionTerminates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	const cardCount = 5
	deck := f.createDeck(t, cardCount, domain.DeckSettings{})

	session, err := f.service.StartSession(ctx, f.userID, deck.ID, domain.SessionModeFinite)
	require.NoError(t, err)

	for i := 0; i < cardCount; i++ {
		require.NotNil(t, session.ActiveCard, "session ran dry after %d answers", i)
		for _, queued := range session.RemainingQueue {
			assert.NotEqual(t, session.ActiveCard.Card.ID, queued.Card.ID,
				"active card must never sit in the remaining queue")
		}
		session, err = f.service.AnswerCard(ctx, f.userID, session.ID, domain.FeedbackGood)
		require.NoError(t, err)
	}

	assert.Nil(t, session.ActiveCard)
	assert.Empty(t, session.RemainingQueue)
	assert.Len(t, session.Completed, cardCount)
}

// An infinite session never runs out of cards, even over a single-card
// deck answered again and again.
func TestInfiniteSessionNeverTerminates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	deck := f.createDeck(t, 1, domain.DeckSettings{})

	session, err := f.service.StartSession(ctx, f.userID, deck.ID, domain.SessionModeInfinite)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		require.NotNil(t, session.ActiveCard, "infinite session ran dry on answer %d", i)
		session, err = f.service.AnswerCard(ctx, f.userID, session.ID, domain.FeedbackAgain)
		require.NoError(t, err)
	}

	require.NotNil(t, session.ActiveCard)
	assert.Len(t, session.Completed, 50)
}

// Answering a finished session is a no-op success: same session back,
// nothing appended anywhere.
func TestAnswerCardOnFinishedSessionIsNoOp(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	deck := f.createDeck(t, 1, domain.DeckSettings{})

	session, err := f.service.StartSession(ctx, f.userID, deck.ID, domain.SessionModeFinite)
	require.NoError(t, err)

	session, err = f.service.AnswerCard(ctx, f.userID, session.ID, domain.FeedbackGood)
	require.NoError(t, err)
	require.Nil(t, session.ActiveCard)

	again, err := f.service.AnswerCard(ctx, f.userID, session.ID, domain.FeedbackEasy)
	require.NoError(t, err)
	assert.Len(t, again.Completed, 1, "retry after the final answer appends nothing")

	events, err := f.reviewLog.ListByDeck(ctx, f.userID, deck.ID, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestAnswerCardInvalidFeedback(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	deck := f.createDeck(t, 1, domain.DeckSettings{})

	session, err := f.service.StartSession(ctx, f.userID, deck.ID, domain.SessionModeFinite)
	require.NoError(t, err)

	_, err = f.service.AnswerCard(ctx, f.userID, session.ID, domain.FeedbackRating("meh"))
	assert.ErrorIs(t, err, ErrInvalidFeedback)
}

func TestAnswerCardSessionNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.service.AnswerCard(context.Background(), f.userID, uuid.New(), domain.FeedbackGood)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	deck := f.createDeck(t, 2, domain.DeckSettings{})

	session, err := f.service.StartSession(ctx, f.userID, deck.ID, domain.SessionModeFinite)
	require.NoError(t, err)

	got, err := f.service.GetSession(ctx, f.userID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	_, err = f.service.GetSession(ctx, uuid.New(), session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound, "other users' lookups see not-found")
}

// Deck settings edited mid-session must not disturb the running session:
// both policy IDs were pinned at start.
func TestSessionSurvivesSettingsEdit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	deck := f.createDeck(t, 3, domain.DeckSettings{})

	session, err := f.service.StartSession(ctx, f.userID, deck.ID, domain.SessionModeFinite)
	require.NoError(t, err)

	deck.UpdateSettings(domain.DeckSettings{
		SchedulingStrategyID: scheduler.SM2ID,
		SelectionAlgorithmID: selection.FaustID,
	})
	require.NoError(t, f.deckStore.Update(ctx, deck))

	updated, err := f.service.AnswerCard(ctx, f.userID, session.ID, domain.FeedbackGood)
	require.NoError(t, err)
	assert.Equal(t, scheduler.DefaultStrategyID, updated.StrategyID)
	assert.Equal(t, selection.DefaultAlgorithmID, updated.AlgorithmID)
}

// laggySessionStore widens the window between the locked read and the
// commit so an unserialized read-modify-write would reliably interleave.
type laggySessionStore struct {
	*memory.SessionStore
	delay time.Duration
}

func (s *laggySessionStore) GetForUpdate(ctx context.Context, userID, sessionID uuid.UUID) (*domain.FlashcardSession, error) {
	session, err := s.SessionStore.GetForUpdate(ctx, userID, sessionID)
	time.Sleep(s.delay)
	return session, err
}

func (s *laggySessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return s
}

// Two concurrent answers against the same session must serialize: both
// review events land in the completed log, neither append is lost.
func TestConcurrentAnswersDoNotLoseEvents(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	deckStore := memory.NewDeckStore()
	stateStore := memory.NewSchedulingStateStore()
	reviewLog := memory.NewReviewLogStore()
	sessionStore := &laggySessionStore{
		SessionStore: memory.NewSessionStore(),
		delay:        20 * time.Millisecond,
	}

	service := NewSessionService(
		deckStore,
		stateStore,
		sessionStore,
		reviewLog,
		memory.NewTxRunner(),
		scheduler.NewDefaultRegistry(),
		selection.NewDefaultRegistry(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithClock(func() time.Time { return now }),
	)

	ctx := context.Background()
	userID := uuid.New()
	cards := []domain.Card{
		{ID: "c0", Type: domain.CardTypeBasic, Front: "f0", Back: "b0"},
		{ID: "c1", Type: domain.CardTypeBasic, Front: "f1", Back: "b1"},
	}
	deck, err := domain.NewDeck(userID, "Race", "", nil, cards)
	require.NoError(t, err)
	require.NoError(t, deckStore.Create(ctx, deck))

	session, err := service.StartSession(ctx, userID, deck.ID, domain.SessionModeFinite)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.AnswerCard(ctx, userID, session.ID, domain.FeedbackGood)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	final, err := service.GetSession(ctx, userID, session.ID)
	require.NoError(t, err)
	assert.Len(t, final.Completed, 2)
	assert.Nil(t, final.ActiveCard)

	events, err := reviewLog.ListByDeck(ctx, userID, deck.ID, 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

// Service-level default policies apply to decks with blank settings.
func TestStartSessionConfiguredDefaults(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	deckStore := memory.NewDeckStore()

	service := NewSessionService(
		deckStore,
		memory.NewSchedulingStateStore(),
		memory.NewSessionStore(),
		memory.NewReviewLogStore(),
		memory.NewTxRunner(),
		scheduler.NewDefaultRegistry(),
		selection.NewDefaultRegistry(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithClock(func() time.Time { return now }),
		WithDefaultPolicies(scheduler.SM2ID, selection.FaustID),
	)

	ctx := context.Background()
	userID := uuid.New()
	deck, err := domain.NewDeck(userID, "Defaults", "", nil, []domain.Card{
		{ID: "c0", Type: domain.CardTypeBasic, Front: "f", Back: "b"},
	})
	require.NoError(t, err)
	require.NoError(t, deckStore.Create(ctx, deck))

	session, err := service.StartSession(ctx, userID, deck.ID, domain.SessionModeFinite)
	require.NoError(t, err)
	assert.Equal(t, scheduler.SM2ID, session.StrategyID)
	assert.Equal(t, selection.FaustID, session.AlgorithmID)
}

// Restarting a session over the same deck reuses the persisted states
// instead of re-initializing them.
func TestStartSessionReusesExistingStates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	deck := f.createDeck(t, 2, domain.DeckSettings{})

	first, err := f.service.StartSession(ctx, f.userID, deck.ID, domain.SessionModeFinite)
	require.NoError(t, err)
	answeredID := first.ActiveCard.Card.ID
	_, err = f.service.AnswerCard(ctx, f.userID, first.ID, domain.FeedbackEasy)
	require.NoError(t, err)

	second, err := f.service.StartSession(ctx, f.userID, deck.ID, domain.SessionModeFinite)
	require.NoError(t, err)

	// The answered card's new due is far out, so the untouched card
	// (still due immediately) sorts first.
	require.NotNil(t, second.ActiveCard)
	assert.NotEqual(t, answeredID, second.ActiveCard.Card.ID)
}

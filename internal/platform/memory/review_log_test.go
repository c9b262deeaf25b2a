package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLogListByDeckNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewReviewLogStore()
	userID, deckID := uuid.New(), uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Append(ctx, domain.ReviewEvent{
			CardID:    fmt.Sprintf("card-%d", i),
			DeckID:    deckID,
			UserID:    userID,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Feedback:  domain.FeedbackGood,
		}))
	}

	events, err := s.ListByDeck(ctx, userID, deckID, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "card-2", events[0].CardID, "newest first")
	assert.Equal(t, "card-0", events[2].CardID)
}

func TestReviewLogListByDeckCapsAtLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewReviewLogStore()
	userID, deckID := uuid.New(), uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Append(ctx, domain.ReviewEvent{
			CardID:    "card",
			DeckID:    deckID,
			UserID:    userID,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Feedback:  domain.FeedbackAgain,
		}))
	}

	events, err := s.ListByDeck(ctx, userID, deckID, 4)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, base.Add(9*time.Minute), events[0].Timestamp, "cap keeps the newest events")
}

func TestReviewLogScopesByDeck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewReviewLogStore()
	userID := uuid.New()
	deckA, deckB := uuid.New(), uuid.New()
	now := time.Now().UTC()

	require.NoError(t, s.Append(ctx, domain.ReviewEvent{CardID: "a", DeckID: deckA, UserID: userID, Timestamp: now, Feedback: domain.FeedbackGood}))
	require.NoError(t, s.Append(ctx, domain.ReviewEvent{CardID: "b", DeckID: deckB, UserID: userID, Timestamp: now, Feedback: domain.FeedbackGood}))

	events, err := s.ListByDeck(ctx, userID, deckA, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a", events[0].CardID)
}

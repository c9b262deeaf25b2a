package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/pfenwick/retain-api/internal/store"
)

// ReviewLogStore is an in-memory store.ReviewLogStore.
type ReviewLogStore struct {
	mu     sync.Mutex
	events []domain.ReviewEvent
}

// NewReviewLogStore returns an empty in-memory review log.
func NewReviewLogStore() *ReviewLogStore {
	return &ReviewLogStore{}
}

// Verify interface compliance at compile time
var _ store.ReviewLogStore = (*ReviewLogStore)(nil)

// Append implements store.ReviewLogStore.Append.
func (s *ReviewLogStore) Append(ctx context.Context, event domain.ReviewEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	return nil
}

// ListByDeck implements store.ReviewLogStore.ListByDeck. Events come back
// newest first; append order breaks timestamp ties.
func (s *ReviewLogStore) ListByDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
	limit int,
) ([]domain.ReviewEvent, error) {
	if limit <= 0 {
		limit = store.DefaultReviewListLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ReviewEvent, 0)
	for _, event := range s.events {
		if event.UserID == userID && event.DeckID == deckID {
			out = append(out, event)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// WithTx implements store.ReviewLogStore.WithTx as a no-op.
func (s *ReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return s
}

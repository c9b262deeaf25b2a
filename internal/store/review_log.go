package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
)

// DefaultReviewListLimit caps ListByDeck results when the caller passes a
// non-positive limit.
const DefaultReviewListLimit = 500

// ReviewLogStore defines the interface for the append-only review event
// log. Events are immutable facts: there is no update and no delete.
type ReviewLogStore interface {
	// Append records one review event.
	Append(ctx context.Context, event domain.ReviewEvent) error

	// ListByDeck returns events for (userID, deckID), newest first,
	// capped at limit (DefaultReviewListLimit when limit <= 0).
	ListByDeck(ctx context.Context, userID, deckID uuid.UUID, limit int) ([]domain.ReviewEvent, error)

	// WithTx returns a ReviewLogStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewLogStore
}

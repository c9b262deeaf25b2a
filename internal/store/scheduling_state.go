package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
)

// SchedulingStateStore defines the interface for per-(user, deck, card)
// scheduling state persistence.
//
// Required concurrency capability: concurrent initialization of the same
// (user, deck, card) triple must converge to one persisted state.
// First-write-wins with subsequent writers re-reading is the contract
// Ensure expresses; silently persisting two different "initial" states for
// the same card is a correctness bug in the implementation.
type SchedulingStateStore interface {
	// ListDeckStates returns all live states for (userID, deckID), keyed
	// by card ID. Cards with no state yet are simply absent from the map.
	ListDeckStates(ctx context.Context, userID, deckID uuid.UUID) (map[string]domain.SchedulingState, error)

	// Ensure persists state for the triple only if no state exists yet and
	// returns the state that ended up persisted: the given one if this
	// writer won, the already-stored one otherwise.
	Ensure(ctx context.Context, userID, deckID uuid.UUID, cardID string, state domain.SchedulingState) (domain.SchedulingState, error)

	// Set overwrites the state for the triple. States are overwritten,
	// never historized; the review-event log is the history.
	Set(ctx context.Context, userID, deckID uuid.UUID, cardID string, state domain.SchedulingState) error

	// WithTx returns a SchedulingStateStore bound to the given transaction.
	WithTx(tx *sql.Tx) SchedulingStateStore
}

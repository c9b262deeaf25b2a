package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/pfenwick/retain-api/internal/store"
)

type stateKey struct {
	userID uuid.UUID
	deckID uuid.UUID
	cardID string
}

// SchedulingStateStore is an in-memory store.SchedulingStateStore.
type SchedulingStateStore struct {
	mu     sync.Mutex
	states map[stateKey]domain.SchedulingState
}

// NewSchedulingStateStore returns an empty in-memory state store.
func NewSchedulingStateStore() *SchedulingStateStore {
	return &SchedulingStateStore{
		states: make(map[stateKey]domain.SchedulingState),
	}
}

// Verify interface compliance at compile time
var _ store.SchedulingStateStore = (*SchedulingStateStore)(nil)

// ListDeckStates implements store.SchedulingStateStore.ListDeckStates.
func (s *SchedulingStateStore) ListDeckStates(
	ctx context.Context,
	userID, deckID uuid.UUID,
) (map[string]domain.SchedulingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.SchedulingState)
	for key, state := range s.states {
		if key.userID == userID && key.deckID == deckID {
			out[key.cardID] = state
		}
	}
	return out, nil
}

// Ensure implements store.SchedulingStateStore.Ensure with
// first-write-wins semantics: holding the lock across the check and the
// write is what makes concurrent initializations converge.
func (s *SchedulingStateStore) Ensure(
	ctx context.Context,
	userID, deckID uuid.UUID,
	cardID string,
	state domain.SchedulingState,
) (domain.SchedulingState, error) {
	if err := state.Validate(); err != nil {
		return domain.SchedulingState{}, store.NewStoreError("scheduling_state", "ensure", "validation failed", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := stateKey{userID: userID, deckID: deckID, cardID: cardID}
	if existing, ok := s.states[key]; ok {
		return existing, nil
	}
	s.states[key] = state
	return state, nil
}

// Set implements store.SchedulingStateStore.Set.
func (s *SchedulingStateStore) Set(
	ctx context.Context,
	userID, deckID uuid.UUID,
	cardID string,
	state domain.SchedulingState,
) error {
	if err := state.Validate(); err != nil {
		return store.NewStoreError("scheduling_state", "set", "validation failed", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[stateKey{userID: userID, deckID: deckID, cardID: cardID}] = state
	return nil
}

// WithTx implements store.SchedulingStateStore.WithTx as a no-op.
func (s *SchedulingStateStore) WithTx(tx *sql.Tx) store.SchedulingStateStore {
	return s
}

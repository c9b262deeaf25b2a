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

// DeckStore is an in-memory store.DeckStore.
type DeckStore struct {
	mu    sync.RWMutex
	decks map[uuid.UUID]*domain.Deck
}

// NewDeckStore returns an empty in-memory deck store.
func NewDeckStore() *DeckStore {
	return &DeckStore{
		decks: make(map[uuid.UUID]*domain.Deck),
	}
}

// Verify interface compliance at compile time
var _ store.DeckStore = (*DeckStore)(nil)

// Create implements store.DeckStore.Create.
func (s *DeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return store.NewStoreError("deck", "create", "validation failed", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.decks[deck.ID]; ok {
		return store.ErrDuplicate
	}
	s.decks[deck.ID] = copyDeck(deck)
	return nil
}

// Get implements store.DeckStore.Get.
func (s *DeckStore) Get(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deck, ok := s.decks[deckID]
	if !ok || deck.UserID != userID {
		return nil, store.ErrDeckNotFound
	}
	return copyDeck(deck), nil
}

// List implements store.DeckStore.List.
func (s *DeckStore) List(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Deck, 0)
	for _, deck := range s.decks {
		if deck.UserID == userID {
			out = append(out, copyDeck(deck))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update implements store.DeckStore.Update.
func (s *DeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return store.NewStoreError("deck", "update", "validation failed", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.decks[deck.ID]
	if !ok || existing.UserID != deck.UserID {
		return store.ErrDeckNotFound
	}
	s.decks[deck.ID] = copyDeck(deck)
	return nil
}

// WithTx implements store.DeckStore.WithTx as a no-op.
func (s *DeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return s
}

// copyDeck returns a deep enough copy that callers cannot mutate stored
// state through returned pointers. Card values are plain data, so copying
// the slice suffices.
func copyDeck(deck *domain.Deck) *domain.Deck {
	out := *deck
	out.Cards = make([]domain.Card, len(deck.Cards))
	copy(out.Cards, deck.Cards)
	out.Categories = append([]string(nil), deck.Categories...)
	return &out
}

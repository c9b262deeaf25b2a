package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
)

// DeckStore defines the interface for deck persistence.
//
// Decks are always scoped to their owning user: Get and List never return
// another user's deck, and a deck owned by someone else is indistinguishable
// from an absent one (ErrDeckNotFound).
type DeckStore interface {
	// Create saves a new deck. The deck must be valid per domain rules.
	// Returns ErrDuplicate if a deck with the same ID already exists.
	Create(ctx context.Context, deck *domain.Deck) error

	// Get retrieves a deck by (userID, deckID).
	// Returns ErrDeckNotFound if the deck does not exist or is not owned
	// by the user.
	Get(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error)

	// List returns all decks owned by the user, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error)

	// Update replaces a deck's stored representation (cards, categories,
	// status, settings). The deck's ID and UserID identify the row.
	// Returns ErrDeckNotFound if the deck does not exist.
	Update(ctx context.Context, deck *domain.Deck) error

	// WithTx returns a DeckStore bound to the given transaction.
	WithTx(tx *sql.Tx) DeckStore
}

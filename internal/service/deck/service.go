// Package deck provides the deck authoring service: creating decks,
// adding cards, editing scheduling settings, and publishing.
package deck

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
)

// DeckService manages the lifecycle of a learner's decks.
type DeckService interface {
	// CreateDeck creates a draft deck owned by userID.
	CreateDeck(ctx context.Context, userID uuid.UUID, title, description string, categories []string) (*domain.Deck, error)

	// GetDeck loads a single deck. Returns ErrDeckNotFound if absent or
	// not owned by the user.
	GetDeck(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error)

	// ListDecks returns all decks owned by userID, newest first.
	ListDecks(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error)

	// AddCard appends a new card to the deck and persists the change.
	AddCard(ctx context.Context, userID, deckID uuid.UUID, cardType domain.CardType, front, back, hint string, tags []string) (*domain.Deck, error)

	// UpdateSettings replaces the deck's scheduling settings. Both IDs are
	// resolved against their registries before any write; an unknown ID
	// fails the whole update.
	UpdateSettings(ctx context.Context, userID, deckID uuid.UUID, settings domain.DeckSettings) (*domain.Deck, error)

	// PublishDeck transitions a draft deck to published. Returns
	// domain.ErrDeckAlreadyPublished on a repeat call.
	PublishDeck(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error)
}

var (
	// ErrDeckNotFound indicates the deck does not exist or is not owned by
	// the requesting user.
	ErrDeckNotFound = errors.New("deck not found")
)

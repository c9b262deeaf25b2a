package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Deck-specific validation errors
var (
	// ErrDeckIDEmpty is returned when a deck ID is empty or nil.
	ErrDeckIDEmpty = errors.New("deck ID cannot be empty")

	// ErrDeckUserIDEmpty is returned when a deck's user ID is empty or nil.
	ErrDeckUserIDEmpty = errors.New("deck user ID cannot be empty")

	// ErrDeckTitleEmpty is returned when a deck title is empty.
	ErrDeckTitleEmpty = errors.New("deck title cannot be empty")

	// ErrDuplicateCardID is returned when two cards in a deck share an ID.
	ErrDuplicateCardID = errors.New("duplicate card ID in deck")

	// ErrDeckAlreadyPublished is returned when publishing a published deck.
	ErrDeckAlreadyPublished = errors.New("deck is already published")
)

// DeckStatus is the authoring lifecycle state of a deck.
type DeckStatus string

const (
	DeckStatusDraft     DeckStatus = "draft"
	DeckStatusPublished DeckStatus = "published"
)

// DeckSettings carries the scheduling configuration for a deck. Both fields
// are stable string keys into the strategy and algorithm registries; they
// are the only scheduling knowledge persisted on the deck itself.
type DeckSettings struct {
	SchedulingStrategyID string `json:"scheduling_strategy_id"`
	SelectionAlgorithmID string `json:"selection_algorithm_id"`
}

// Deck is a user-owned named collection of cards plus scheduling
// configuration. It is mutated by deck authoring operations only; the
// session orchestrator reads it but never writes it.
type Deck struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Cards       []Card       `json:"cards"`
	Categories  []string     `json:"categories"`
	Status      DeckStatus   `json:"status"`
	Settings    DeckSettings `json:"settings"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewDeck creates a draft deck owned by the given user. Settings default to
// empty strategy/algorithm ids; resolution to concrete defaults happens at
// session start so upgraded defaults apply to old decks automatically.
func NewDeck(userID uuid.UUID, title, description string, categories []string, cards []Card) (*Deck, error) {
	deck := &Deck{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Cards:       cards,
		Categories:  normalizeCategories(categories),
		Status:      DeckStatusDraft,
		Settings:    DeckSettings{},
		CreatedAt:   time.Now().UTC(),
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data, including the invariant that
// every card ID within the deck is unique.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}

	if d.UserID == uuid.Nil {
		return ErrDeckUserIDEmpty
	}

	if d.Title == "" {
		return ErrDeckTitleEmpty
	}

	switch d.Status {
	case DeckStatusDraft, DeckStatusPublished:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDeckStatus, d.Status)
	}

	seen := make(map[string]struct{}, len(d.Cards))
	for _, card := range d.Cards {
		if err := card.Validate(); err != nil {
			return err
		}
		if _, ok := seen[card.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateCardID, card.ID)
		}
		seen[card.ID] = struct{}{}
	}

	return nil
}

// AddCard appends a card to the deck, enforcing card ID uniqueness.
func (d *Deck) AddCard(card Card) error {
	if err := card.Validate(); err != nil {
		return err
	}
	for _, existing := range d.Cards {
		if existing.ID == card.ID {
			return fmt.Errorf("%w: %q", ErrDuplicateCardID, card.ID)
		}
	}
	d.Cards = append(d.Cards, card)
	return nil
}

// CardByID returns the card with the given ID, or false if absent.
func (d *Deck) CardByID(cardID string) (Card, bool) {
	for _, card := range d.Cards {
		if card.ID == cardID {
			return card, true
		}
	}
	return Card{}, false
}

// Publish moves a draft deck to the published state.
func (d *Deck) Publish() error {
	if d.Status == DeckStatusPublished {
		return ErrDeckAlreadyPublished
	}
	d.Status = DeckStatusPublished
	return nil
}

// UpdateSettings replaces the deck's scheduling settings. Registry
// validation of the ids belongs to the service layer, which owns the
// registries.
func (d *Deck) UpdateSettings(settings DeckSettings) {
	d.Settings = settings
}

// normalizeCategories trims, drops empties, and dedupes category names
// while preserving first-seen order.
func normalizeCategories(categories []string) []string {
	if len(categories) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, name := range categories {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

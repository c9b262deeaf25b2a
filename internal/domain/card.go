package domain

import (
	"errors"
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front side is empty.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardTypeInvalid is returned when a card type is not recognized.
	ErrCardTypeInvalid = errors.New("invalid card type")
)

// CardType identifies how a card's front/back are rendered. The scheduler
// treats it as opaque; only deck authoring and presentation layers care.
type CardType string

const (
	CardTypeBasic CardType = "basic"
	CardTypeCloze CardType = "cloze"
)

// Card is an immutable front/back learning unit belonging to a deck.
// The scheduler only ever reads card identity, never card content.
type Card struct {
	ID    string   `json:"id"`
	Type  CardType `json:"type"`
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Hint  string   `json:"hint,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// NewCard creates a new Card with a generated ID. An empty cardType
// defaults to CardTypeBasic. Returns an error if validation fails.
func NewCard(cardType CardType, front, back, hint string, tags []string) (Card, error) {
	id, err := gonanoid.New()
	if err != nil {
		return Card{}, fmt.Errorf("failed to generate card ID: %w", err)
	}

	if cardType == "" {
		cardType = CardTypeBasic
	}

	card := Card{
		ID:    id,
		Type:  cardType,
		Front: strings.TrimSpace(front),
		Back:  strings.TrimSpace(back),
		Hint:  strings.TrimSpace(hint),
		Tags:  normalizeTags(tags),
	}

	if err := card.Validate(); err != nil {
		return Card{}, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c Card) Validate() error {
	if c.ID == "" {
		return ErrCardIDEmpty
	}

	if c.Front == "" {
		return ErrCardFrontEmpty
	}

	switch c.Type {
	case CardTypeBasic, CardTypeCloze:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrCardTypeInvalid, c.Type)
	}
}

// normalizeTags trims whitespace, drops empties, and removes duplicates
// while preserving first-seen order.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

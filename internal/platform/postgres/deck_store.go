package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/pfenwick/retain-api/internal/platform/logger"
	"github.com/pfenwick/retain-api/internal/store"
)

// Verify interface compliance at compile time
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// PostgresDeckStore implements store.DeckStore using PostgreSQL.
type PostgresDeckStore struct {
	db store.DBTX
}

// NewPostgresDeckStore creates a new PostgresDeckStore.
func NewPostgresDeckStore(db store.DBTX) *PostgresDeckStore {
	return &PostgresDeckStore{db: db}
}

// WithTx returns a DeckStore bound to the given transaction.
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{db: tx}
}

// Create saves a new deck.
func (s *PostgresDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContext(ctx)

	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	cards, categories, settings, err := marshalDeckColumns(deck)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO decks (id, user_id, title, description, cards, categories, status, settings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		deck.ID,
		deck.UserID,
		deck.Title,
		deck.Description,
		cards,
		categories,
		deck.Status,
		settings,
		deck.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create deck",
			"deck_id", deck.ID,
			"error", err)
		return MapError(err)
	}
	return nil
}

// Get retrieves a deck by (userID, deckID).
func (s *PostgresDeckStore) Get(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error) {
	query := `
		SELECT id, user_id, title, description, cards, categories, status, settings, created_at
		FROM decks
		WHERE id = $1 AND user_id = $2
	`
	row := s.db.QueryRowContext(ctx, query, deckID, userID)

	deck, err := scanDeck(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDeckNotFound
		}
		return nil, MapError(err)
	}
	return deck, nil
}

// List returns all decks owned by the user, newest first.
func (s *PostgresDeckStore) List(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error) {
	query := `
		SELECT id, user_id, title, description, cards, categories, status, settings, created_at
		FROM decks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var decks []*domain.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, MapError(err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return decks, nil
}

// Update replaces a deck's stored representation.
func (s *PostgresDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContext(ctx)

	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	cards, categories, settings, err := marshalDeckColumns(deck)
	if err != nil {
		return err
	}

	query := `
		UPDATE decks
		SET title = $1, description = $2, cards = $3, categories = $4, status = $5, settings = $6
		WHERE id = $7 AND user_id = $8
	`
	result, err := s.db.ExecContext(ctx, query,
		deck.Title,
		deck.Description,
		cards,
		categories,
		deck.Status,
		settings,
		deck.ID,
		deck.UserID,
	)
	if err != nil {
		log.Error("failed to update deck",
			"deck_id", deck.ID,
			"error", err)
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrDeckNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDeck(row scanner) (*domain.Deck, error) {
	var (
		deck       domain.Deck
		cards      []byte
		categories []byte
		settings   []byte
	)
	err := row.Scan(
		&deck.ID,
		&deck.UserID,
		&deck.Title,
		&deck.Description,
		&cards,
		&categories,
		&deck.Status,
		&settings,
		&deck.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(cards, &deck.Cards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deck cards: %w", err)
	}
	if err := json.Unmarshal(categories, &deck.Categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deck categories: %w", err)
	}
	if err := json.Unmarshal(settings, &deck.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deck settings: %w", err)
	}
	return &deck, nil
}

func marshalDeckColumns(deck *domain.Deck) (cards, categories, settings []byte, err error) {
	cards, err = json.Marshal(deck.Cards)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal deck cards: %w", err)
	}
	categories, err = json.Marshal(deck.Categories)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal deck categories: %w", err)
	}
	settings, err = json.Marshal(deck.Settings)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal deck settings: %w", err)
	}
	return cards, categories, settings, nil
}

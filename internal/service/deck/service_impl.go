package deck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/pfenwick/retain-api/internal/platform/logger"
	"github.com/pfenwick/retain-api/internal/scheduler"
	"github.com/pfenwick/retain-api/internal/selection"
	"github.com/pfenwick/retain-api/internal/store"
)

// Verify interface compliance at compile time
var _ DeckService = (*deckServiceImpl)(nil)

type deckServiceImpl struct {
	deckStore  store.DeckStore
	strategies *scheduler.Registry
	algorithms *selection.Registry
	logger     *slog.Logger
}

// NewDeckService creates a new DeckService implementation.
func NewDeckService(
	deckStore store.DeckStore,
	strategies *scheduler.Registry,
	algorithms *selection.Registry,
	log *slog.Logger,
) DeckService {
	if deckStore == nil {
		panic("deckStore cannot be nil")
	}
	if strategies == nil {
		panic("strategies cannot be nil")
	}
	if algorithms == nil {
		panic("algorithms cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &deckServiceImpl{
		deckStore:  deckStore,
		strategies: strategies,
		algorithms: algorithms,
		logger:     log.With(slog.String("component", "deck_service")),
	}
}

func (s *deckServiceImpl) CreateDeck(
	ctx context.Context,
	userID uuid.UUID,
	title, description string,
	categories []string,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := domain.NewDeck(userID, title, description, categories, nil)
	if err != nil {
		return nil, err
	}

	if err := s.deckStore.Create(ctx, deck); err != nil {
		return nil, fmt.Errorf("failed to persist deck: %w", err)
	}

	log.Debug("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("user_id", userID.String()))
	return deck, nil
}

func (s *deckServiceImpl) GetDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
) (*domain.Deck, error) {
	deck, err := s.deckStore.Get(ctx, userID, deckID)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to load deck: %w", err)
	}
	return deck, nil
}

func (s *deckServiceImpl) ListDecks(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Deck, error) {
	decks, err := s.deckStore.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

func (s *deckServiceImpl) AddCard(
	ctx context.Context,
	userID, deckID uuid.UUID,
	cardType domain.CardType,
	front, back, hint string,
	tags []string,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := s.GetDeck(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}

	card, err := domain.NewCard(cardType, front, back, hint, tags)
	if err != nil {
		return nil, err
	}
	if err := deck.AddCard(card); err != nil {
		return nil, err
	}

	if err := s.deckStore.Update(ctx, deck); err != nil {
		return nil, fmt.Errorf("failed to persist deck: %w", err)
	}

	log.Debug("card added to deck",
		slog.String("deck_id", deckID.String()),
		slog.String("card_id", card.ID),
		slog.Int("deck_size", len(deck.Cards)))
	return deck, nil
}

func (s *deckServiceImpl) UpdateSettings(
	ctx context.Context,
	userID, deckID uuid.UUID,
	settings domain.DeckSettings,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Reject unknown IDs at edit time. Sessions already in flight keep the
	// IDs they pinned at start regardless of what the deck says now.
	if settings.SchedulingStrategyID != "" {
		if _, err := s.strategies.Get(settings.SchedulingStrategyID); err != nil {
			return nil, err
		}
	}
	if settings.SelectionAlgorithmID != "" {
		if _, err := s.algorithms.Get(settings.SelectionAlgorithmID); err != nil {
			return nil, err
		}
	}

	deck, err := s.GetDeck(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}

	deck.UpdateSettings(settings)

	if err := s.deckStore.Update(ctx, deck); err != nil {
		return nil, fmt.Errorf("failed to persist deck: %w", err)
	}

	log.Debug("deck settings updated",
		slog.String("deck_id", deckID.String()),
		slog.String("strategy_id", settings.SchedulingStrategyID),
		slog.String("algorithm_id", settings.SelectionAlgorithmID))
	return deck, nil
}

func (s *deckServiceImpl) PublishDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := s.GetDeck(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}

	if err := deck.Publish(); err != nil {
		return nil, err
	}

	if err := s.deckStore.Update(ctx, deck); err != nil {
		return nil, fmt.Errorf("failed to persist deck: %w", err)
	}

	log.Debug("deck published", slog.String("deck_id", deckID.String()))
	return deck, nil
}

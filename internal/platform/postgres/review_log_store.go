package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/pfenwick/retain-api/internal/platform/logger"
	"github.com/pfenwick/retain-api/internal/store"
)

// Verify interface compliance at compile time
var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// PostgresReviewLogStore implements store.ReviewLogStore using
// PostgreSQL. The table is append-only; no update or delete statements
// exist in this store.
type PostgresReviewLogStore struct {
	db store.DBTX
}

// NewPostgresReviewLogStore creates a new PostgresReviewLogStore.
func NewPostgresReviewLogStore(db store.DBTX) *PostgresReviewLogStore {
	return &PostgresReviewLogStore{db: db}
}

// WithTx returns a ReviewLogStore bound to the given transaction.
func (s *PostgresReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &PostgresReviewLogStore{db: tx}
}

// Append records one review event.
func (s *PostgresReviewLogStore) Append(ctx context.Context, event domain.ReviewEvent) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO review_events (card_id, deck_id, user_id, occurred_at, feedback, prev_interval, next_interval)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.CardID,
		event.DeckID,
		event.UserID,
		event.Timestamp,
		event.Feedback,
		event.PrevInterval,
		event.NextInterval,
	)
	if err != nil {
		log.Error("failed to append review event",
			"deck_id", event.DeckID,
			"card_id", event.CardID,
			"error", err)
		return MapError(err)
	}
	return nil
}

// ListByDeck returns events for (userID, deckID), newest first, capped
// at limit.
func (s *PostgresReviewLogStore) ListByDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
	limit int,
) ([]domain.ReviewEvent, error) {
	if limit <= 0 {
		limit = store.DefaultReviewListLimit
	}

	query := `
		SELECT card_id, deck_id, user_id, occurred_at, feedback, prev_interval, next_interval
		FROM review_events
		WHERE user_id = $1 AND deck_id = $2
		ORDER BY occurred_at DESC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, deckID, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var events []domain.ReviewEvent
	for rows.Next() {
		var event domain.ReviewEvent
		err := rows.Scan(
			&event.CardID,
			&event.DeckID,
			&event.UserID,
			&event.Timestamp,
			&event.Feedback,
			&event.PrevInterval,
			&event.NextInterval,
		)
		if err != nil {
			return nil, MapError(err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return events, nil
}

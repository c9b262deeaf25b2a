package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/pfenwick/retain-api/internal/platform/logger"
	"github.com/pfenwick/retain-api/internal/store"
)

// Verify interface compliance at compile time
var _ store.SchedulingStateStore = (*PostgresStateStore)(nil)

// PostgresStateStore implements store.SchedulingStateStore using
// PostgreSQL. One row per (user, deck, card); the primary key makes
// Ensure's first-write-wins semantics a single ON CONFLICT statement.
type PostgresStateStore struct {
	db store.DBTX
}

// NewPostgresStateStore creates a new PostgresStateStore.
func NewPostgresStateStore(db store.DBTX) *PostgresStateStore {
	return &PostgresStateStore{db: db}
}

// WithTx returns a SchedulingStateStore bound to the given transaction.
func (s *PostgresStateStore) WithTx(tx *sql.Tx) store.SchedulingStateStore {
	return &PostgresStateStore{db: tx}
}

// ListDeckStates returns all live states for (userID, deckID), keyed by
// card ID.
func (s *PostgresStateStore) ListDeckStates(
	ctx context.Context,
	userID, deckID uuid.UUID,
) (map[string]domain.SchedulingState, error) {
	query := `
		SELECT card_id, due, interval_days, ease_factor, stability, difficulty, reps, lapses, last_review
		FROM scheduling_states
		WHERE user_id = $1 AND deck_id = $2
	`
	rows, err := s.db.QueryContext(ctx, query, userID, deckID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	states := make(map[string]domain.SchedulingState)
	for rows.Next() {
		var (
			cardID     string
			state      domain.SchedulingState
			lastReview sql.NullTime
		)
		err := rows.Scan(
			&cardID,
			&state.Due,
			&state.Interval,
			&state.EaseFactor,
			&state.Stability,
			&state.Difficulty,
			&state.Reps,
			&state.Lapses,
			&lastReview,
		)
		if err != nil {
			return nil, MapError(err)
		}
		if lastReview.Valid {
			state.LastReview = lastReview.Time
		}
		states[cardID] = state
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return states, nil
}

// Ensure persists state for the triple only if none exists yet, then
// reads back whichever state won.
func (s *PostgresStateStore) Ensure(
	ctx context.Context,
	userID, deckID uuid.UUID,
	cardID string,
	state domain.SchedulingState,
) (domain.SchedulingState, error) {
	log := logger.FromContext(ctx)

	if err := state.Validate(); err != nil {
		return domain.SchedulingState{}, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	insert := `
		INSERT INTO scheduling_states
			(user_id, deck_id, card_id, due, interval_days, ease_factor, stability, difficulty, reps, lapses, last_review)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, deck_id, card_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, insert,
		userID, deckID, cardID,
		state.Due, state.Interval,
		state.EaseFactor, state.Stability, state.Difficulty,
		state.Reps, state.Lapses, nullableTime(state.LastReview),
	)
	if err != nil {
		log.Error("failed to ensure scheduling state",
			"deck_id", deckID,
			"card_id", cardID,
			"error", err)
		return domain.SchedulingState{}, MapError(err)
	}

	// Read back: either our insert or an earlier writer's row.
	persisted, err := s.get(ctx, userID, deckID, cardID)
	if err != nil {
		return domain.SchedulingState{}, err
	}
	return persisted, nil
}

// Set overwrites the state for the triple.
func (s *PostgresStateStore) Set(
	ctx context.Context,
	userID, deckID uuid.UUID,
	cardID string,
	state domain.SchedulingState,
) error {
	log := logger.FromContext(ctx)

	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO scheduling_states
			(user_id, deck_id, card_id, due, interval_days, ease_factor, stability, difficulty, reps, lapses, last_review)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, deck_id, card_id) DO UPDATE SET
			due = EXCLUDED.due,
			interval_days = EXCLUDED.interval_days,
			ease_factor = EXCLUDED.ease_factor,
			stability = EXCLUDED.stability,
			difficulty = EXCLUDED.difficulty,
			reps = EXCLUDED.reps,
			lapses = EXCLUDED.lapses,
			last_review = EXCLUDED.last_review
	`
	_, err := s.db.ExecContext(ctx, query,
		userID, deckID, cardID,
		state.Due, state.Interval,
		state.EaseFactor, state.Stability, state.Difficulty,
		state.Reps, state.Lapses, nullableTime(state.LastReview),
	)
	if err != nil {
		log.Error("failed to set scheduling state",
			"deck_id", deckID,
			"card_id", cardID,
			"error", err)
		return MapError(err)
	}
	return nil
}

func (s *PostgresStateStore) get(
	ctx context.Context,
	userID, deckID uuid.UUID,
	cardID string,
) (domain.SchedulingState, error) {
	query := `
		SELECT due, interval_days, ease_factor, stability, difficulty, reps, lapses, last_review
		FROM scheduling_states
		WHERE user_id = $1 AND deck_id = $2 AND card_id = $3
	`
	var (
		state      domain.SchedulingState
		lastReview sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, userID, deckID, cardID).Scan(
		&state.Due,
		&state.Interval,
		&state.EaseFactor,
		&state.Stability,
		&state.Difficulty,
		&state.Reps,
		&state.Lapses,
		&lastReview,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SchedulingState{}, store.ErrSchedulingStateNotFound
		}
		return domain.SchedulingState{}, MapError(err)
	}
	if lastReview.Valid {
		state.LastReview = lastReview.Time
	}
	return state, nil
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

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
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// PostgresSessionStore implements store.SessionStore using PostgreSQL.
// The session snapshot (active card, remaining queue, completed log)
// lives in JSONB columns; GetForUpdate takes a row lock so the
// read-modify-write of an answer submission serializes per session.
type PostgresSessionStore struct {
	db store.DBTX
}

// NewPostgresSessionStore creates a new PostgresSessionStore.
func NewPostgresSessionStore(db store.DBTX) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

// WithTx returns a SessionStore bound to the given transaction.
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{db: tx}
}

// Create saves a new session.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.FlashcardSession) error {
	log := logger.FromContext(ctx)

	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	activeCard, remaining, completed, err := marshalSessionColumns(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessions
			(id, user_id, deck_id, mode, strategy_id, algorithm_id, active_card, remaining_queue, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.DeckID,
		session.Mode,
		session.StrategyID,
		session.AlgorithmID,
		activeCard,
		remaining,
		completed,
		session.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create session",
			"session_id", session.ID,
			"error", err)
		return MapError(err)
	}
	return nil
}

// Get retrieves a session by (userID, sessionID) without locking.
func (s *PostgresSessionStore) Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.FlashcardSession, error) {
	return s.get(ctx, userID, sessionID, false)
}

// GetForUpdate retrieves a session and holds a row lock for the rest of
// the surrounding transaction.
func (s *PostgresSessionStore) GetForUpdate(ctx context.Context, userID, sessionID uuid.UUID) (*domain.FlashcardSession, error) {
	return s.get(ctx, userID, sessionID, true)
}

func (s *PostgresSessionStore) get(ctx context.Context, userID, sessionID uuid.UUID, forUpdate bool) (*domain.FlashcardSession, error) {
	query := `
		SELECT id, user_id, deck_id, mode, strategy_id, algorithm_id, active_card, remaining_queue, completed, created_at
		FROM sessions
		WHERE id = $1 AND user_id = $2
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		session    domain.FlashcardSession
		activeCard []byte
		remaining  []byte
		completed  []byte
	)
	err := s.db.QueryRowContext(ctx, query, sessionID, userID).Scan(
		&session.ID,
		&session.UserID,
		&session.DeckID,
		&session.Mode,
		&session.StrategyID,
		&session.AlgorithmID,
		&activeCard,
		&remaining,
		&completed,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, MapError(err)
	}

	if len(activeCard) > 0 {
		var card domain.ScheduledCard
		if err := json.Unmarshal(activeCard, &card); err != nil {
			return nil, fmt.Errorf("failed to unmarshal active card: %w", err)
		}
		session.ActiveCard = &card
	}
	if err := json.Unmarshal(remaining, &session.RemainingQueue); err != nil {
		return nil, fmt.Errorf("failed to unmarshal remaining queue: %w", err)
	}
	if err := json.Unmarshal(completed, &session.Completed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal completed log: %w", err)
	}
	return &session, nil
}

// Update replaces the session's stored representation.
func (s *PostgresSessionStore) Update(ctx context.Context, session *domain.FlashcardSession) error {
	log := logger.FromContext(ctx)

	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	activeCard, remaining, completed, err := marshalSessionColumns(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE sessions
		SET active_card = $1, remaining_queue = $2, completed = $3
		WHERE id = $4 AND user_id = $5
	`
	result, err := s.db.ExecContext(ctx, query,
		activeCard,
		remaining,
		completed,
		session.ID,
		session.UserID,
	)
	if err != nil {
		log.Error("failed to update session",
			"session_id", session.ID,
			"error", err)
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrSessionNotFound
	}
	return nil
}

func marshalSessionColumns(session *domain.FlashcardSession) (activeCard, remaining, completed []byte, err error) {
	if session.ActiveCard != nil {
		activeCard, err = json.Marshal(session.ActiveCard)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal active card: %w", err)
		}
	}
	remaining, err = json.Marshal(session.RemainingQueue)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal remaining queue: %w", err)
	}
	completed, err = json.Marshal(session.Completed)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal completed log: %w", err)
	}
	return activeCard, remaining, completed, nil
}

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
)

// SessionStore defines the interface for flashcard session persistence.
//
// Required concurrency capability: per-session updates must be
// linearizable. Two concurrent answer submissions against the same session
// ID must not both read the pre-update session and both write, each
// clobbering the other's completed-log append. At minimum the store must
// serialize read-modify-write per session ID (row-level lock, optimistic
// version check, or a single-writer queue per session). The orchestrator
// relies on this contract and implements no locking of its own.
type SessionStore interface {
	// Create saves a new session.
	// Returns ErrDuplicate if a session with the same ID already exists.
	Create(ctx context.Context, session *domain.FlashcardSession) error

	// Get retrieves a session by (userID, sessionID).
	// Returns ErrSessionNotFound if the session does not exist or is not
	// owned by the user. No locking; use GetForUpdate when the read
	// precedes a write.
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.FlashcardSession, error)

	// GetForUpdate retrieves a session with a write lock held for the rest
	// of the surrounding transaction (SELECT ... FOR UPDATE or equivalent).
	// Must be called within a transaction-bound store (WithTx).
	// Returns ErrSessionNotFound if the session does not exist.
	GetForUpdate(ctx context.Context, userID, sessionID uuid.UUID) (*domain.FlashcardSession, error)

	// Update replaces the session's stored representation. This is the
	// single commit point of an answer submission.
	// Returns ErrSessionNotFound if the session does not exist.
	Update(ctx context.Context, session *domain.FlashcardSession) error

	// WithTx returns a SessionStore bound to the given transaction.
	WithTx(tx *sql.Tx) SessionStore
}

package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/pfenwick/retain-api/internal/store"
)

// SessionStore is an in-memory store.SessionStore. A single mutex covers
// every session, which trivially satisfies the per-session
// last-writer-wins contract documented on the interface.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.FlashcardSession
}

// NewSessionStore returns an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*domain.FlashcardSession),
	}
}

// Verify interface compliance at compile time
var _ store.SessionStore = (*SessionStore)(nil)

// Create implements store.SessionStore.Create.
func (s *SessionStore) Create(ctx context.Context, session *domain.FlashcardSession) error {
	if err := session.Validate(); err != nil {
		return store.NewStoreError("session", "create", "validation failed", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return store.ErrDuplicate
	}
	s.sessions[session.ID] = copySession(session)
	return nil
}

// Get implements store.SessionStore.Get.
func (s *SessionStore) Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.FlashcardSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil, store.ErrSessionNotFound
	}
	return copySession(session), nil
}

// GetForUpdate implements store.SessionStore.GetForUpdate. Without real
// transactions there is no lock to hold; this is Get.
func (s *SessionStore) GetForUpdate(ctx context.Context, userID, sessionID uuid.UUID) (*domain.FlashcardSession, error) {
	return s.Get(ctx, userID, sessionID)
}

// Update implements store.SessionStore.Update.
func (s *SessionStore) Update(ctx context.Context, session *domain.FlashcardSession) error {
	if err := session.Validate(); err != nil {
		return store.NewStoreError("session", "update", "validation failed", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sessions[session.ID]
	if !ok || existing.UserID != session.UserID {
		return store.ErrSessionNotFound
	}
	s.sessions[session.ID] = copySession(session)
	return nil
}

// WithTx implements store.SessionStore.WithTx as a no-op.
func (s *SessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return s
}

func copySession(session *domain.FlashcardSession) *domain.FlashcardSession {
	out := *session
	if session.ActiveCard != nil {
		active := *session.ActiveCard
		out.ActiveCard = &active
	}
	out.RemainingQueue = make([]domain.ScheduledCard, len(session.RemainingQueue))
	copy(out.RemainingQueue, session.RemainingQueue)
	out.Completed = make([]domain.ReviewEvent, len(session.Completed))
	copy(out.Completed, session.Completed)
	return &out
}

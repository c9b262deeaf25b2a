package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session-specific validation errors
var (
	// ErrSessionIDEmpty is returned when a session ID is empty or nil.
	ErrSessionIDEmpty = errors.New("session ID cannot be empty")

	// ErrSessionUserIDEmpty is returned when a session's user ID is empty or nil.
	ErrSessionUserIDEmpty = errors.New("session user ID cannot be empty")

	// ErrSessionDeckIDEmpty is returned when a session's deck ID is empty or nil.
	ErrSessionDeckIDEmpty = errors.New("session deck ID cannot be empty")

	// ErrSessionStrategyIDEmpty is returned when a session has no pinned strategy ID.
	ErrSessionStrategyIDEmpty = errors.New("session strategy ID cannot be empty")

	// ErrSessionAlgorithmIDEmpty is returned when a session has no pinned algorithm ID.
	ErrSessionAlgorithmIDEmpty = errors.New("session algorithm ID cannot be empty")

	// ErrActiveCardInQueue is returned when the active card also appears in
	// the remaining queue, violating the at-most-one-active-card invariant.
	ErrActiveCardInQueue = errors.New("active card must not appear in remaining queue")
)

// SessionMode controls whether a review run ends once every card has been
// answered (finite) or recycles answered cards forever (infinite).
type SessionMode string

const (
	SessionModeFinite   SessionMode = "finite"
	SessionModeInfinite SessionMode = "infinite"
)

// IsValid reports whether the mode is one of the known modes.
func (m SessionMode) IsValid() bool {
	return m == SessionModeFinite || m == SessionModeInfinite
}

// ParseSessionMode converts a raw string into a SessionMode. An empty
// string defaults to finite.
func ParseSessionMode(raw string) (SessionMode, error) {
	if raw == "" {
		return SessionModeFinite, nil
	}
	mode := SessionMode(raw)
	if !mode.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionMode, raw)
	}
	return mode, nil
}

// FlashcardSession is one ephemeral review run over a deck. Both the
// scheduling strategy ID and the selection algorithm ID are pinned at
// session start: an in-progress review is never disrupted by a concurrent
// deck settings edit.
//
// Invariant: ActiveCard is never simultaneously present in RemainingQueue
// (checked by card ID). A nil ActiveCard means the session has no more work
// under finite mode.
type FlashcardSession struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	DeckID         uuid.UUID       `json:"deck_id"`
	Mode           SessionMode     `json:"mode"`
	StrategyID     string          `json:"strategy_id"`
	AlgorithmID    string          `json:"algorithm_id"`
	ActiveCard     *ScheduledCard  `json:"active_card"`
	RemainingQueue []ScheduledCard `json:"remaining_queue"`
	Completed      []ReviewEvent   `json:"completed"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewFlashcardSession creates a session with the given active/remaining
// split and an empty completed log. Returns an error if validation fails.
func NewFlashcardSession(
	userID, deckID uuid.UUID,
	mode SessionMode,
	strategyID, algorithmID string,
	active *ScheduledCard,
	remaining []ScheduledCard,
) (*FlashcardSession, error) {
	session := &FlashcardSession{
		ID:             uuid.New(),
		UserID:         userID,
		DeckID:         deckID,
		Mode:           mode,
		StrategyID:     strategyID,
		AlgorithmID:    algorithmID,
		ActiveCard:     active,
		RemainingQueue: remaining,
		Completed:      []ReviewEvent{},
		CreatedAt:      time.Now().UTC(),
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the FlashcardSession has valid data, including the
// at-most-one-active-card invariant.
func (s *FlashcardSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}

	if s.UserID == uuid.Nil {
		return ErrSessionUserIDEmpty
	}

	if s.DeckID == uuid.Nil {
		return ErrSessionDeckIDEmpty
	}

	if !s.Mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSessionMode, s.Mode)
	}

	if s.StrategyID == "" {
		return ErrSessionStrategyIDEmpty
	}

	if s.AlgorithmID == "" {
		return ErrSessionAlgorithmIDEmpty
	}

	if s.ActiveCard != nil {
		for _, queued := range s.RemainingQueue {
			if queued.Card.ID == s.ActiveCard.Card.ID {
				return fmt.Errorf("%w: %q", ErrActiveCardInQueue, queued.Card.ID)
			}
		}
	}

	return nil
}

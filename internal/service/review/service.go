// Package review implements the flashcard session orchestrator: the
// coordination point between deck storage, per-card scheduling state, the
// pluggable scheduling strategy and selection algorithm, and the
// append-only review event log.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
)

// SessionService orchestrates flashcard review sessions.
//
// Every operation is a short, request/response unit of work: invoked by an
// external caller, run to completion, no background loops, no implicit
// parallelism. Repository calls execute strictly in the documented order.
type SessionService interface {
	// StartSession creates a review session over the given deck.
	//
	// It loads the deck, resolves the deck's pinned strategy and algorithm
	// (falling back to the documented defaults only when a setting is
	// unset, never on an unknown ID), lazily creates scheduling state for
	// cards that have none, sorts the scheduled cards ascending by due,
	// and delegates the active/remaining split to the selection algorithm.
	//
	// Returns ErrDeckNotFound if the deck is absent or not owned by the
	// user. Returns scheduler.ErrUnknownStrategy or
	// selection.ErrUnknownAlgorithm before any scheduling-state write if
	// the deck references a retired ID.
	StartSession(ctx context.Context, userID, deckID uuid.UUID, mode domain.SessionMode) (*domain.FlashcardSession, error)

	// GetSession loads a session. Pure read, no mutation.
	// Returns ErrSessionNotFound if absent or not owned by the user.
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*domain.FlashcardSession, error)

	// AnswerCard advances a session with the learner's feedback: the
	// pinned strategy computes the new scheduling state, the state is
	// persisted, a review event is appended, and the pinned algorithm
	// picks the next active card. The persisted session update is the
	// single commit point.
	//
	// Answering a session with no active card is a successful no-op (the
	// unchanged session comes back), which keeps client retries after a
	// finished session simple.
	//
	// Returns ErrSessionNotFound if the session is absent, ErrInvalidFeedback
	// for a rating outside the closed set.
	AnswerCard(ctx context.Context, userID, sessionID uuid.UUID, feedback domain.FeedbackRating) (*domain.FlashcardSession, error)
}

// Common error types for SessionService
var (
	// ErrDeckNotFound indicates the deck does not exist or is not owned by
	// the requesting user.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrSessionNotFound indicates the session does not exist or is not
	// owned by the requesting user.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidFeedback indicates a feedback rating outside the closed set.
	ErrInvalidFeedback = errors.New("invalid feedback rating")
)

// ServiceError wraps errors from the session service with additional
// context, so consumers can differentiate failures with errors.As instead
// of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_session")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewStartSessionError returns a new ServiceError for the start_session operation.
func NewStartSessionError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "start_session",
		Message:   message,
		Err:       err,
	}
}

// NewAnswerCardError returns a new ServiceError for the answer_card operation.
func NewAnswerCardError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "answer_card",
		Message:   message,
		Err:       err,
	}
}

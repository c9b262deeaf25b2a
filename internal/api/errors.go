package api

import (
	"errors"
	"net/http"

	"github.com/pfenwick/retain-api/internal/analytics"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/pfenwick/retain-api/internal/scheduler"
	"github.com/pfenwick/retain-api/internal/selection"
	"github.com/pfenwick/retain-api/internal/service/deck"
	"github.com/pfenwick/retain-api/internal/service/review"
	"github.com/pfenwick/retain-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, deck.ErrDeckNotFound),
		errors.Is(err, review.ErrDeckNotFound),
		errors.Is(err, review.ErrSessionNotFound),
		errors.Is(err, analytics.ErrDeckNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Deck settings referencing retired or unknown plugin IDs
	case errors.Is(err, scheduler.ErrUnknownStrategy),
		errors.Is(err, selection.ErrUnknownAlgorithm):
		return http.StatusUnprocessableEntity

	// Conflict errors
	case errors.Is(err, domain.ErrDeckAlreadyPublished),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, review.ErrInvalidFeedback),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidFeedback),
		errors.Is(err, domain.ErrInvalidSessionMode),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// error. Raw error strings never reach clients.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, deck.ErrDeckNotFound),
		errors.Is(err, review.ErrDeckNotFound),
		errors.Is(err, analytics.ErrDeckNotFound):
		return "Deck not found"

	case errors.Is(err, review.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, scheduler.ErrUnknownStrategy):
		return "Unknown scheduling strategy"

	case errors.Is(err, selection.ErrUnknownAlgorithm):
		return "Unknown selection algorithm"

	case errors.Is(err, domain.ErrDeckAlreadyPublished):
		return "Deck is already published"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, review.ErrInvalidFeedback),
		errors.Is(err, domain.ErrInvalidFeedback):
		return "Invalid feedback rating"

	case errors.Is(err, domain.ErrInvalidSessionMode):
		return "Invalid session mode"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidFeedback is returned when a feedback rating is not part of
	// the closed rating set.
	ErrInvalidFeedback = errors.New("invalid feedback rating")

	// ErrInvalidSessionMode is returned when a session mode is not valid.
	ErrInvalidSessionMode = errors.New("invalid session mode")

	// ErrInvalidDeckStatus is returned when a deck status is not valid.
	ErrInvalidDeckStatus = errors.New("invalid deck status")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

package domain

import (
	"errors"
	"time"
)

// SchedulingState validation errors
var (
	// ErrInvalidInterval is returned when an interval is negative.
	ErrInvalidInterval = errors.New("interval must be greater than or equal to 0")

	// ErrZeroDue is returned when a state has no due timestamp.
	ErrZeroDue = errors.New("due timestamp cannot be zero")
)

// SchedulingState is the only mutable memory of a card's learning progress.
// Exactly one live state exists per (user, deck, card) triple; it is created
// lazily on first scheduling need and overwritten, never historized, on
// every review.
//
// Due and Interval are the shared contract every consumer may read. The
// remaining fields are strategy-private: a strategy may interpret, ignore,
// or repurpose them, and nothing outside the owning strategy should assign
// meaning to them. Keeping them as concrete columns rather than an opaque
// blob keeps the state JSON-serializable and queryable.
type SchedulingState struct {
	// Due is the instant the card next becomes eligible for review.
	Due time.Time `json:"due"`
	// Interval is the current spacing in days.
	Interval float64 `json:"interval"`

	// Strategy-private fields.
	EaseFactor float64   `json:"ease_factor,omitempty"`
	Stability  float64   `json:"stability,omitempty"`
	Difficulty float64   `json:"difficulty,omitempty"`
	Reps       int       `json:"reps"`
	Lapses     int       `json:"lapses"`
	LastReview time.Time `json:"last_review,omitempty"`
}

// Validate checks the structural invariants every strategy must uphold:
// a non-negative interval and a present due timestamp.
func (s SchedulingState) Validate() error {
	if s.Interval < 0 {
		return ErrInvalidInterval
	}
	if s.Due.IsZero() {
		return ErrZeroDue
	}
	return nil
}

// ScheduledCard pairs a card with its current scheduling state. It exists
// only in memory during a session and inside the session snapshot; it is
// never persisted as its own entity.
type ScheduledCard struct {
	Card  Card            `json:"card"`
	State SchedulingState `json:"state"`
}

// Package selection defines the pluggable card-selection abstraction:
// policies that decide which scheduled card a session shows next.
//
// Algorithms are pure with respect to their explicit inputs: no hidden
// clock, no I/O. Feeding them synthetic queues is all a test needs.
package selection

import (
	"github.com/pfenwick/retain-api/internal/domain"
)

// Result is an algorithm's verdict: the one card to show, and the rest.
// A nil Active with a finite session means the session has no more work.
// Remaining is never nil, only possibly empty.
type Result struct {
	Active    *domain.ScheduledCard
	Remaining []domain.ScheduledCard
}

// Algorithm decides which card becomes active next.
type Algorithm interface {
	// ID returns the stable registry key for this algorithm.
	ID() string

	// Initialize splits a queue into the first active card and the rest,
	// per the algorithm's ordering policy. Total: a non-empty queue yields
	// a non-nil Active; an empty queue yields a nil Active and an empty
	// Remaining.
	Initialize(queue []domain.ScheduledCard, mode domain.SessionMode) Result

	// Next picks the card following the just-answered one. In finite mode,
	// once remaining and the answered card are both exhausted, Active is
	// nil and the session ends. In infinite mode the answered card rejoins
	// the pool, so the algorithm never terminates the session on its own;
	// stopping an infinite session is the caller's decision.
	Next(
		remaining []domain.ScheduledCard,
		answered domain.ScheduledCard,
		mode domain.SessionMode,
		feedback domain.FeedbackRating,
	) Result
}

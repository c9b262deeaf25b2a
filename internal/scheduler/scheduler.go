// Package scheduler defines the pluggable scheduling-strategy abstraction:
// policies that compute a card's next-due state from recall feedback.
//
// Strategies are pure with respect to their explicit inputs. The current
// time always arrives through Context; no strategy may consult a wall clock
// directly, which keeps every implementation deterministic and testable.
package scheduler

import (
	"time"

	"github.com/pfenwick/retain-api/internal/domain"
)

// Context carries the ambient inputs a strategy is allowed to observe.
type Context struct {
	// Now is the only permitted source of current time.
	Now time.Time
}

// Strategy computes scheduling-state transitions from feedback.
//
// Implementations must uphold two contracts:
//
//   - Structural validity: every returned state satisfies
//     domain.SchedulingState.Validate (interval >= 0, due present).
//   - Monotonicity: holding (card, state, ctx) fixed, a strictly worse
//     feedback never produces a strictly later due than a strictly better
//     one.
//
// A strategy is registered under a stable string ID and that ID is the only
// thing persisted on a deck. The internal math may be swapped or upgraded
// without migrating stored state, provided the new version still interprets
// old state shapes; that versioning concern belongs to the strategy, not
// the orchestrator.
type Strategy interface {
	// ID returns the stable registry key for this strategy.
	ID() string

	// InitialState returns the state for a card that has never been
	// scheduled. The card may be due immediately or slightly out; that
	// policy is the strategy's.
	InitialState(card domain.Card, sctx Context) domain.SchedulingState

	// ScheduleNext computes the next state from the previous state and the
	// feedback just given. Pure: no side effects, no I/O.
	ScheduleNext(
		card domain.Card,
		current domain.SchedulingState,
		feedback domain.FeedbackRating,
		sctx Context,
	) domain.SchedulingState
}

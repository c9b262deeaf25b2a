package selection

import (
	"sort"

	"github.com/pfenwick/retain-api/internal/domain"
)

// FaustID is the registry key for the due-priority algorithm.
const FaustID = "faust"

// faust always selects the card with the earliest due time across the full
// candidate pool; in infinite mode the just-answered card folds back into
// the pool before re-sorting. Ties keep original queue order (stable sort)
// so behavior stays deterministic.
//
// This is a greedy most-overdue-first policy: it re-derives the full order
// on every step instead of maintaining a priority queue. That is fine
// because session queues are bounded by deck size; a deck large enough to
// hurt here would want a min-heap keyed by due, not a different policy.
type faust struct{}

// NewFaust returns the due-priority selection algorithm.
func NewFaust() Algorithm {
	return faust{}
}

// Verify interface compliance at compile time
var _ Algorithm = faust{}

func (faust) ID() string {
	return FaustID
}

func (faust) Initialize(queue []domain.ScheduledCard, mode domain.SessionMode) Result {
	return splitByDue(copyCards(queue))
}

func (faust) Next(
	remaining []domain.ScheduledCard,
	answered domain.ScheduledCard,
	mode domain.SessionMode,
	feedback domain.FeedbackRating,
) Result {
	pool := copyCards(remaining)
	if mode == domain.SessionModeInfinite {
		pool = append(pool, answered)
	}
	return splitByDue(pool)
}

// splitByDue stable-sorts the pool ascending by due and takes the head.
// The pool is owned by the caller of splitByDue, never aliased input.
func splitByDue(pool []domain.ScheduledCard) Result {
	if len(pool) == 0 {
		return Result{Active: nil, Remaining: []domain.ScheduledCard{}}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].State.Due.Before(pool[j].State.Due)
	})

	head := pool[0]
	return Result{Active: &head, Remaining: pool[1:]}
}

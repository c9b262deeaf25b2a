package selection

import (
	"github.com/pfenwick/retain-api/internal/domain"
)

// SequentialID is the registry key for the FIFO algorithm.
const SequentialID = "sequential"

// sequential walks the queue in its given order and ignores due times.
// In infinite mode an exhausted queue recycles the just-answered card as
// the next active card, so the session never runs dry.
type sequential struct{}

// NewSequential returns the FIFO selection algorithm.
func NewSequential() Algorithm {
	return sequential{}
}

// Verify interface compliance at compile time
var _ Algorithm = sequential{}

func (sequential) ID() string {
	return SequentialID
}

func (sequential) Initialize(queue []domain.ScheduledCard, mode domain.SessionMode) Result {
	if len(queue) == 0 {
		return Result{Active: nil, Remaining: []domain.ScheduledCard{}}
	}
	head := queue[0]
	return Result{
		Active:    &head,
		Remaining: copyCards(queue[1:]),
	}
}

func (sequential) Next(
	remaining []domain.ScheduledCard,
	answered domain.ScheduledCard,
	mode domain.SessionMode,
	feedback domain.FeedbackRating,
) Result {
	if len(remaining) == 0 {
		if mode == domain.SessionModeInfinite {
			return Result{Active: &answered, Remaining: []domain.ScheduledCard{}}
		}
		return Result{Active: nil, Remaining: []domain.ScheduledCard{}}
	}

	head := remaining[0]
	rest := copyCards(remaining[1:])
	if mode == domain.SessionModeInfinite {
		rest = append(rest, answered)
	}
	return Result{Active: &head, Remaining: rest}
}

// copyCards returns a fresh, never-nil slice so results do not alias the
// caller's queue.
func copyCards(cards []domain.ScheduledCard) []domain.ScheduledCard {
	out := make([]domain.ScheduledCard, len(cards))
	copy(out, cards)
	return out
}

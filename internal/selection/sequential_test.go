package selection

import (
	"fmt"
	"testing"
	"time"

	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduledCard(id string, due time.Time) domain.ScheduledCard {
	return domain.ScheduledCard{
		Card: domain.Card{
			ID:    id,
			Type:  domain.CardTypeBasic,
			Front: "front " + id,
			Back:  "back " + id,
		},
		State: domain.SchedulingState{Due: due, Interval: 1},
	}
}

func queueOf(n int, base time.Time) []domain.ScheduledCard {
	queue := make([]domain.ScheduledCard, 0, n)
	for i := 0; i < n; i++ {
		queue = append(queue, scheduledCard(fmt.Sprintf("card-%d", i), base.Add(time.Duration(i)*time.Hour)))
	}
	return queue
}

func TestSequentialInitialize(t *testing.T) {
	t.Parallel()
	algo := NewSequential()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	queue := queueOf(3, base)

	res := algo.Initialize(queue, domain.SessionModeFinite)

	require.NotNil(t, res.Active)
	assert.Equal(t, "card-0", res.Active.Card.ID)
	require.Len(t, res.Remaining, 2)
	assert.Equal(t, "card-1", res.Remaining[0].Card.ID)
	assert.Equal(t, "card-2", res.Remaining[1].Card.ID)
}

func TestSequentialInitializeEmptyQueue(t *testing.T) {
	t.Parallel()
	algo := NewSequential()

	res := algo.Initialize(nil, domain.SessionModeFinite)

	assert.Nil(t, res.Active)
	assert.NotNil(t, res.Remaining, "remaining must never be nil")
	assert.Empty(t, res.Remaining)
}

func TestSequentialFiniteTerminates(t *testing.T) {
	t.Parallel()
	algo := NewSequential()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res := algo.Initialize(queueOf(3, base), domain.SessionModeFinite)

	answered := 0
	for res.Active != nil {
		answered++
		res = algo.Next(res.Remaining, *res.Active, domain.SessionModeFinite, domain.FeedbackGood)
	}

	assert.Equal(t, 3, answered, "every card answered exactly once")
	assert.Empty(t, res.Remaining)
}

// In infinite mode an exhausted queue recycles the answered card, so a
// session over even a single card never runs dry.
func TestSequentialInfiniteRecycles(t *testing.T) {
	t.Parallel()
	algo := NewSequential()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res := algo.Initialize(queueOf(1, base), domain.SessionModeInfinite)

	for i := 0; i < 50; i++ {
		require.NotNil(t, res.Active, "infinite session ran dry on answer %d", i)
		assert.Equal(t, "card-0", res.Active.Card.ID)
		res = algo.Next(res.Remaining, *res.Active, domain.SessionModeInfinite, domain.FeedbackAgain)
	}
	assert.NotNil(t, res.Active)
}

func TestSequentialInfiniteAppendsAnsweredToTail(t *testing.T) {
	t.Parallel()
	algo := NewSequential()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res := algo.Initialize(queueOf(3, base), domain.SessionModeInfinite)

	first := *res.Active
	res = algo.Next(res.Remaining, first, domain.SessionModeInfinite, domain.FeedbackGood)

	require.NotNil(t, res.Active)
	assert.Equal(t, "card-1", res.Active.Card.ID)
	require.Len(t, res.Remaining, 2)
	assert.Equal(t, "card-0", res.Remaining[len(res.Remaining)-1].Card.ID,
		"answered card goes to the back of the queue")
}

func TestSequentialDoesNotAliasInput(t *testing.T) {
	t.Parallel()
	algo := NewSequential()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	queue := queueOf(3, base)

	res := algo.Initialize(queue, domain.SessionModeFinite)
	res.Remaining[0].Card.ID = "mutated"

	assert.Equal(t, "card-1", queue[1].Card.ID, "caller's queue must stay untouched")
}

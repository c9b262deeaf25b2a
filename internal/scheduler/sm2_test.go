package scheduler

import (
	"testing"
	"time"

	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSM2InitialState(t *testing.T) {
	t.Parallel()
	strategy := NewSM2()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	state := strategy.InitialState(testCard(), Context{Now: now})

	assert.Equal(t, now, state.Due)
	assert.Equal(t, 0.0, state.Interval)
	assert.Equal(t, 2.5, state.EaseFactor)
	require.NoError(t, state.Validate())
}

func TestSM2ScheduleNext(t *testing.T) {
	t.Parallel()
	strategy := NewSM2()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sctx := Context{Now: now}

	testCases := []struct {
		name     string
		current  domain.SchedulingState
		feedback domain.FeedbackRating
		check    func(t *testing.T, next domain.SchedulingState)
	}{
		{
			name:     "again resets interval and reduces ease",
			current:  domain.SchedulingState{Due: now, Interval: 10, EaseFactor: 2.5, Reps: 3},
			feedback: domain.FeedbackAgain,
			check: func(t *testing.T, next domain.SchedulingState) {
				assert.Equal(t, 0.0, next.Interval)
				assert.Equal(t, 0, next.Reps)
				assert.Equal(t, 1, next.Lapses)
				assert.InDelta(t, 2.3, next.EaseFactor, 1e-9)
				assert.Equal(t, now.Add(10*time.Minute), next.Due)
			},
		},
		{
			name:     "first review good gets one day",
			current:  domain.SchedulingState{Due: now, Interval: 0, EaseFactor: 2.5},
			feedback: domain.FeedbackGood,
			check: func(t *testing.T, next domain.SchedulingState) {
				assert.Equal(t, 1.0, next.Interval)
				assert.Equal(t, 1, next.Reps)
				assert.Equal(t, now.Add(24*time.Hour), next.Due)
			},
		},
		{
			name:     "first review easy gets two days",
			current:  domain.SchedulingState{Due: now, Interval: 0, EaseFactor: 2.5},
			feedback: domain.FeedbackEasy,
			check: func(t *testing.T, next domain.SchedulingState) {
				assert.Equal(t, 2.0, next.Interval)
			},
		},
		{
			name:     "good after streak multiplies by ease factor",
			current:  domain.SchedulingState{Due: now, Interval: 10, EaseFactor: 2.5, Reps: 3},
			feedback: domain.FeedbackGood,
			check: func(t *testing.T, next domain.SchedulingState) {
				assert.Equal(t, 25.0, next.Interval)
			},
		},
		{
			name:     "good right after a lapse grows gently",
			current:  domain.SchedulingState{Due: now, Interval: 10, EaseFactor: 2.1, Reps: 0, Lapses: 1},
			feedback: domain.FeedbackGood,
			check: func(t *testing.T, next domain.SchedulingState) {
				assert.Equal(t, 15.0, next.Interval, "lapse recovery uses the gentler modifier")
			},
		},
		{
			name:     "hard grows by the fixed modifier",
			current:  domain.SchedulingState{Due: now, Interval: 10, EaseFactor: 2.5, Reps: 3},
			feedback: domain.FeedbackHard,
			check: func(t *testing.T, next domain.SchedulingState) {
				assert.Equal(t, 12.0, next.Interval)
				assert.InDelta(t, 2.35, next.EaseFactor, 1e-9)
			},
		},
		{
			name:     "ease factor never drops below the minimum",
			current:  domain.SchedulingState{Due: now, Interval: 5, EaseFactor: 1.35, Reps: 1},
			feedback: domain.FeedbackAgain,
			check: func(t *testing.T, next domain.SchedulingState) {
				assert.Equal(t, 1.3, next.EaseFactor)
			},
		},
		{
			name:     "foreign state without ease factor falls back to default",
			current:  domain.SchedulingState{Due: now, Interval: 4, Stability: 4, Reps: 2},
			feedback: domain.FeedbackGood,
			check: func(t *testing.T, next domain.SchedulingState) {
				assert.Equal(t, 10.0, next.Interval, "4 * default ease 2.5")
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			next := strategy.ScheduleNext(testCard(), tc.current, tc.feedback, sctx)
			require.NoError(t, next.Validate())
			tc.check(t, next)
		})
	}
}

func TestSM2Monotonicity(t *testing.T) {
	t.Parallel()
	strategy := NewSM2()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sctx := Context{Now: now}

	startingStates := []domain.SchedulingState{
		{Due: now, Interval: 0, EaseFactor: 2.5},
		{Due: now, Interval: 1, EaseFactor: 1.3, Reps: 1},
		{Due: now, Interval: 10, EaseFactor: 2.0, Reps: 4},
		{Due: now, Interval: 50, EaseFactor: 2.5, Reps: 9, Lapses: 1},
	}
	ratings := []domain.FeedbackRating{
		domain.FeedbackAgain,
		domain.FeedbackHard,
		domain.FeedbackGood,
		domain.FeedbackEasy,
	}

	for _, current := range startingStates {
		var prevDue time.Time
		for i, feedback := range ratings {
			next := strategy.ScheduleNext(testCard(), current, feedback, sctx)
			require.NoError(t, next.Validate())
			if i > 0 {
				assert.False(t, next.Due.Before(prevDue),
					"feedback %q produced due %v earlier than the worse rating's %v (interval %v)",
					feedback, next.Due, prevDue, current.Interval)
			}
			prevDue = next.Due
		}
	}
}

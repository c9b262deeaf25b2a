package scheduler

import (
	"math"
	"time"

	"github.com/pfenwick/retain-api/internal/domain"
)

// SM2ID is the registry key for the SM-2 variant strategy.
const SM2ID = "sm2"

// SM2Params defines all configurable parameters for the SM-2 variant.
type SM2Params struct {
	// Core limits
	MinEaseFactor float64
	MaxEaseFactor float64

	// Adjustments for different feedback ratings
	EaseFactorAdjustment map[domain.FeedbackRating]float64
	IntervalModifier     map[domain.FeedbackRating]float64

	// Special case handling
	FirstReviewIntervals map[domain.FeedbackRating]float64
	LapseGoodModifier    float64
	AgainReviewMinutes   int
}

// NewDefaultSM2Params returns the stock SM-2 tuning.
func NewDefaultSM2Params() *SM2Params {
	return &SM2Params{
		MinEaseFactor: 1.3,
		MaxEaseFactor: 2.5,

		EaseFactorAdjustment: map[domain.FeedbackRating]float64{
			domain.FeedbackAgain: -0.20,
			domain.FeedbackHard:  -0.15,
			domain.FeedbackGood:  0.0,
			domain.FeedbackEasy:  0.15,
		},

		IntervalModifier: map[domain.FeedbackRating]float64{
			domain.FeedbackAgain: 0.0, // reset interval
			domain.FeedbackHard:  1.2, // slight increase
			domain.FeedbackGood:  1.0, // use ease factor directly
			domain.FeedbackEasy:  1.3, // significant increase, on top of ease factor
		},

		FirstReviewIntervals: map[domain.FeedbackRating]float64{
			domain.FeedbackHard: 1,
			domain.FeedbackGood: 1,
			domain.FeedbackEasy: 2,
		},

		// After a lapse, a Good answer grows the old interval gently
		// instead of applying the full ease factor.
		LapseGoodModifier: 1.5,

		// Review again in 10 minutes
		AgainReviewMinutes: 10,
	}
}

// sm2 is an SM-2 variant: the classic ease-factor model with modifications
// for lapse handling and more granular control over interval growth. It
// interprets SchedulingState.EaseFactor and uses Reps as the count of
// consecutive correct answers.
type sm2 struct {
	params *SM2Params
}

// NewSM2 returns the SM-2 variant strategy with default parameters.
func NewSM2() Strategy {
	return &sm2{params: NewDefaultSM2Params()}
}

// NewSM2WithParams returns the SM-2 variant strategy with custom tuning.
func NewSM2WithParams(params *SM2Params) Strategy {
	return &sm2{params: params}
}

// Verify interface compliance at compile time
var _ Strategy = (*sm2)(nil)

func (s *sm2) ID() string {
	return SM2ID
}

// InitialState configures a card for immediate review with the default
// ease factor.
func (s *sm2) InitialState(card domain.Card, sctx Context) domain.SchedulingState {
	return domain.SchedulingState{
		Due:        sctx.Now,
		Interval:   0,
		EaseFactor: s.params.MaxEaseFactor,
	}
}

// ScheduleNext implements the Strategy contract with the SM-2 transition.
func (s *sm2) ScheduleNext(
	card domain.Card,
	current domain.SchedulingState,
	feedback domain.FeedbackRating,
	sctx Context,
) domain.SchedulingState {
	next := current
	next.LastReview = sctx.Now
	next.EaseFactor = s.newEaseFactor(currentEase(current, s.params), feedback)

	if feedback == domain.FeedbackAgain {
		next.Reps = 0
		next.Lapses = current.Lapses + 1
	} else {
		next.Reps = current.Reps + 1
	}

	next.Interval = s.newInterval(current.Interval, current.Reps, next.EaseFactor, feedback)
	next.Due = s.nextReviewAt(next.Interval, feedback, sctx.Now)
	return next
}

// newEaseFactor applies the feedback's adjustment, clamped to the
// configured limits.
func (s *sm2) newEaseFactor(currentEF float64, feedback domain.FeedbackRating) float64 {
	newEF := currentEF + s.params.EaseFactorAdjustment[feedback]

	if newEF < s.params.MinEaseFactor {
		newEF = s.params.MinEaseFactor
	}
	if newEF > s.params.MaxEaseFactor {
		newEF = s.params.MaxEaseFactor
	}

	return newEF
}

// newInterval computes the next interval in days.
//
//   - Again resets the interval to 0 (review in minutes, not days).
//   - First reviews (interval 0) use the configured initial intervals.
//   - After a lapse (consecutive-correct 0 but interval > 0), Good uses the
//     gentler LapseGoodModifier instead of the full ease factor.
//   - Otherwise Good multiplies by the ease factor, Hard by its fixed
//     modifier, Easy by its modifier times the ease factor.
func (s *sm2) newInterval(
	currentInterval float64,
	consecutiveCorrect int,
	easeFactor float64,
	feedback domain.FeedbackRating,
) float64 {
	if feedback == domain.FeedbackAgain {
		return 0
	}

	if currentInterval == 0 {
		return s.params.FirstReviewIntervals[feedback]
	}

	if consecutiveCorrect == 0 && feedback == domain.FeedbackGood {
		return math.Floor(currentInterval * s.params.LapseGoodModifier)
	}

	var modifier float64
	if feedback == domain.FeedbackGood {
		modifier = easeFactor
	} else {
		modifier = s.params.IntervalModifier[feedback]
		if feedback == domain.FeedbackEasy {
			modifier *= easeFactor
		}
	}

	return math.Floor(currentInterval * modifier)
}

// nextReviewAt converts the interval into an absolute due time. Failed
// cards come back within minutes for quick reinforcement; everything else
// waits out the interval in days.
func (s *sm2) nextReviewAt(interval float64, feedback domain.FeedbackRating, now time.Time) time.Time {
	if feedback == domain.FeedbackAgain {
		return now.Add(time.Duration(s.params.AgainReviewMinutes) * time.Minute)
	}
	return now.Add(daysToDuration(interval))
}

// currentEase falls back to the default ease factor for states written by
// other strategies, which may not populate EaseFactor at all.
func currentEase(state domain.SchedulingState, params *SM2Params) float64 {
	if state.EaseFactor < params.MinEaseFactor {
		return params.MaxEaseFactor
	}
	return state.EaseFactor
}

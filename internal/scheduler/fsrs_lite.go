package scheduler

import (
	"math"
	"time"

	"github.com/pfenwick/retain-api/internal/domain"
)

// FSRSLiteID is the registry key for the default strategy.
const FSRSLiteID = "fsrs-lite"

// FSRSLiteParams defines the tunable constants of the fsrs-lite strategy.
type FSRSLiteParams struct {
	// Initial memory model for a never-reviewed card.
	InitialStability  float64
	InitialDifficulty float64

	// Stability bounds. MinStability keeps a lapsed card from collapsing to
	// a zero-width memory; MaxIntervalDays caps runaway growth.
	MinStability    float64
	MaxIntervalDays float64

	// Multipliers applied to stability per feedback. The Good multiplier is
	// derived from difficulty (see growthFactor), these cover the rest.
	AgainStabilityFactor float64
	HardStabilityFactor  float64
	EasyBonus            float64

	// Difficulty drift per feedback, clamped to [0, 1].
	DifficultyDelta map[domain.FeedbackRating]float64

	// A failed card comes back after this many minutes rather than days.
	AgainReviewMinutes int
}

// NewDefaultFSRSLiteParams returns the stock fsrs-lite tuning.
func NewDefaultFSRSLiteParams() *FSRSLiteParams {
	return &FSRSLiteParams{
		InitialStability:  1.0,
		InitialDifficulty: 0.3,

		MinStability:    0.25,
		MaxIntervalDays: 365,

		AgainStabilityFactor: 0.5,
		HardStabilityFactor:  1.2,
		EasyBonus:            1.5,

		DifficultyDelta: map[domain.FeedbackRating]float64{
			domain.FeedbackAgain: 0.15,
			domain.FeedbackHard:  0.05,
			domain.FeedbackGood:  -0.02,
			domain.FeedbackEasy:  -0.08,
		},

		AgainReviewMinutes: 10,
	}
}

// fsrsLite is a deliberately small cousin of the FSRS family: it tracks a
// per-card stability (how many days the memory holds) and difficulty (how
// reluctantly stability grows), without the full curve-fitting machinery.
// The next interval is simply the new stability, so the state stays
// explainable from its two numbers.
type fsrsLite struct {
	params *FSRSLiteParams
}

// NewFSRSLite returns the fsrs-lite strategy with default parameters.
func NewFSRSLite() Strategy {
	return &fsrsLite{params: NewDefaultFSRSLiteParams()}
}

// NewFSRSLiteWithParams returns the fsrs-lite strategy with custom tuning.
func NewFSRSLiteWithParams(params *FSRSLiteParams) Strategy {
	return &fsrsLite{params: params}
}

// Verify interface compliance at compile time
var _ Strategy = (*fsrsLite)(nil)

func (f *fsrsLite) ID() string {
	return FSRSLiteID
}

// InitialState makes a new card due immediately with a one-day memory.
func (f *fsrsLite) InitialState(card domain.Card, sctx Context) domain.SchedulingState {
	return domain.SchedulingState{
		Due:        sctx.Now,
		Interval:   0,
		Stability:  f.params.InitialStability,
		Difficulty: f.params.InitialDifficulty,
	}
}

// ScheduleNext implements the Strategy contract.
//
// Stability transitions per feedback, from a current stability S:
//
//	again: S * AgainStabilityFactor (floored at MinStability), due in minutes
//	hard:  S * HardStabilityFactor
//	good:  S * growthFactor(difficulty)
//	easy:  S * growthFactor(difficulty) * EasyBonus
//
// growthFactor stays strictly above HardStabilityFactor for any difficulty,
// so the resulting due times are monotone in the feedback ordering.
func (f *fsrsLite) ScheduleNext(
	card domain.Card,
	current domain.SchedulingState,
	feedback domain.FeedbackRating,
	sctx Context,
) domain.SchedulingState {
	next := current
	next.LastReview = sctx.Now
	next.Difficulty = clampUnit(current.Difficulty + f.params.DifficultyDelta[feedback])

	stability := current.Stability
	if stability <= 0 {
		stability = f.params.InitialStability
	}

	if feedback == domain.FeedbackAgain {
		next.Lapses = current.Lapses + 1
		next.Reps = 0
		next.Stability = math.Max(f.params.MinStability, stability*f.params.AgainStabilityFactor)
		next.Interval = 0
		next.Due = sctx.Now.Add(time.Duration(f.params.AgainReviewMinutes) * time.Minute)
		return next
	}

	var factor float64
	switch feedback {
	case domain.FeedbackHard:
		factor = f.params.HardStabilityFactor
	case domain.FeedbackEasy:
		factor = f.growthFactor(next.Difficulty) * f.params.EasyBonus
	default: // good
		factor = f.growthFactor(next.Difficulty)
	}

	next.Reps = current.Reps + 1
	next.Stability = stability * factor
	next.Interval = math.Min(next.Stability, f.params.MaxIntervalDays)
	next.Due = sctx.Now.Add(daysToDuration(next.Interval))
	return next
}

// growthFactor maps difficulty in [0, 1] to a stability multiplier in
// [1.3, 3.0]: easy material compounds fast, hard material crawls. The lower
// bound exceeds HardStabilityFactor, which is what keeps good >= hard.
func (f *fsrsLite) growthFactor(difficulty float64) float64 {
	return 1.3 + 1.7*(1-clampUnit(difficulty))
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * float64(24*time.Hour))
}

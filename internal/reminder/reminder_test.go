package reminder

import (
	"testing"
	"time"

	"github.com/pfenwick/retain-api/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// reviewedDaysAgo produces a single retention point so the scorer sees
// the deck as last reviewed that many days back.
func reviewedDaysAgo(days int) []analytics.RetentionPoint {
	return []analytics.RetentionPoint{
		{Date: testNow.AddDate(0, 0, -days), Attempts: 5, Correct: 4, SuccessRate: 80},
	}
}

func TestBuildPriorityListEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []DeckReminder{}, BuildPriorityList(nil, testNow))
	assert.Equal(t, []DeckReminder{}, BuildPriorityList(&analytics.FlashcardAnalyticsBundle{}, testNow))
}

func TestScoreStrugglingDeck(t *testing.T) {
	t.Parallel()
	bundle := &analytics.FlashcardAnalyticsBundle{
		Decks: []analytics.DeckAnalytics{{
			DeckID:    "d1",
			DeckTitle: "Chemistry",
			Retention: reviewedDaysAgo(20),
			Mastery:   analytics.MasteryStats{Total: 10, Mastered: 1, Percentage: 30},
			Workload:  analytics.WorkloadStats{Overdue: 3, DueToday: 1, DueNext7Days: 4},
			Forgetting: analytics.ForgettingRiskStats{
				AverageRisk: 0.6,
			},
		}},
	}

	list := BuildPriorityList(bundle, testNow)
	require.Len(t, list, 1)
	deck := list[0]

	assert.Equal(t, StatusStruggling, deck.Status)
	assert.Equal(t, "Struggling: overdue 3, risk 60%, 20d idle", deck.StatusReason)
	assert.Equal(t, 20, deck.DaysSinceLastReview)

	// 0.28*0.3 + 0.24*(20/21) + 0.18*0.6 + 0.16*0.4 + 0.14*0.7
	assert.InDelta(t, 0.5826, deck.Priority, 1e-9)
}

func TestScoreMasteredDeck(t *testing.T) {
	t.Parallel()
	bundle := &analytics.FlashcardAnalyticsBundle{
		Decks: []analytics.DeckAnalytics{{
			DeckID:     "d1",
			DeckTitle:  "Capitals",
			Retention:  reviewedDaysAgo(5),
			Mastery:    analytics.MasteryStats{Total: 20, Mastered: 18, Percentage: 90},
			Workload:   analytics.WorkloadStats{Overdue: 0, DueToday: 0, DueNext7Days: 2},
			Forgetting: analytics.ForgettingRiskStats{AverageRisk: 0.1},
		}},
	}

	list := BuildPriorityList(bundle, testNow)
	require.Len(t, list, 1)
	assert.Equal(t, StatusMastered, list[0].Status)
	assert.Equal(t, "Mastered: low risk and high mastery.", list[0].StatusReason)
}

func TestScoreGoodDeck(t *testing.T) {
	t.Parallel()
	bundle := &analytics.FlashcardAnalyticsBundle{
		Decks: []analytics.DeckAnalytics{{
			DeckID:     "d1",
			DeckTitle:  "Verbs",
			Retention:  reviewedDaysAgo(3),
			Mastery:    analytics.MasteryStats{Total: 10, Mastered: 3, Percentage: 50},
			Workload:   analytics.WorkloadStats{Overdue: 0, DueToday: 1, DueNext7Days: 2},
			Forgetting: analytics.ForgettingRiskStats{AverageRisk: 0.2},
		}},
	}

	list := BuildPriorityList(bundle, testNow)
	require.Len(t, list, 1)
	assert.Equal(t, StatusGood, list[0].Status)
	assert.Equal(t, "Stable: keep pace.", list[0].StatusReason)
}

// A deck with no review history is always struggling, reports the
// never-reviewed inactivity placeholder, and scores full inactivity.
func TestNeverReviewedDeck(t *testing.T) {
	t.Parallel()
	bundle := &analytics.FlashcardAnalyticsBundle{
		Decks: []analytics.DeckAnalytics{{
			DeckID:    "d1",
			DeckTitle: "Untouched",
			Mastery:   analytics.MasteryStats{Total: 5},
			// Bucketed days with zero attempts do not count as activity.
			Retention: []analytics.RetentionPoint{{Date: testNow.AddDate(0, 0, -1)}},
		}},
	}

	list := BuildPriorityList(bundle, testNow)
	require.Len(t, list, 1)
	deck := list[0]

	assert.Equal(t, StatusStruggling, deck.Status)
	assert.Equal(t, neverReviewedDays, deck.DaysSinceLastReview)
	assert.Contains(t, deck.StatusReason, "90d idle")
}

func TestPrioritySortDescending(t *testing.T) {
	t.Parallel()
	calm := analytics.DeckAnalytics{
		DeckID:     "calm",
		Retention:  reviewedDaysAgo(1),
		Mastery:    analytics.MasteryStats{Total: 10, Mastered: 9, Percentage: 90},
		Forgetting: analytics.ForgettingRiskStats{AverageRisk: 0.05},
	}
	urgent := analytics.DeckAnalytics{
		DeckID:     "urgent",
		Retention:  reviewedDaysAgo(20),
		Mastery:    analytics.MasteryStats{Total: 10, Percentage: 10},
		Workload:   analytics.WorkloadStats{Overdue: 6, DueNext7Days: 8},
		Forgetting: analytics.ForgettingRiskStats{AverageRisk: 0.8},
	}

	list := BuildPriorityList(&analytics.FlashcardAnalyticsBundle{
		Decks: []analytics.DeckAnalytics{calm, urgent},
	}, testNow)

	require.Len(t, list, 2)
	assert.Equal(t, "urgent", list[0].DeckID)
	assert.Equal(t, "calm", list[1].DeckID)
	assert.Greater(t, list[0].Priority, list[1].Priority)
}

// Equal scores keep the bundle's deck order.
func TestPrioritySortIsStable(t *testing.T) {
	t.Parallel()
	deck := analytics.DeckAnalytics{
		Retention:  reviewedDaysAgo(10),
		Mastery:    analytics.MasteryStats{Total: 8, Mastered: 2, Percentage: 25},
		Workload:   analytics.WorkloadStats{Overdue: 2, DueNext7Days: 3},
		Forgetting: analytics.ForgettingRiskStats{AverageRisk: 0.4},
	}
	first, second := deck, deck
	first.DeckID = "first"
	second.DeckID = "second"

	list := BuildPriorityList(&analytics.FlashcardAnalyticsBundle{
		Decks: []analytics.DeckAnalytics{first, second},
	}, testNow)

	require.Len(t, list, 2)
	assert.Equal(t, list[0].Priority, list[1].Priority)
	assert.Equal(t, "first", list[0].DeckID)
	assert.Equal(t, "second", list[1].DeckID)
}

func TestStatusCounts(t *testing.T) {
	t.Parallel()
	bundle := &analytics.FlashcardAnalyticsBundle{
		Decks: []analytics.DeckAnalytics{{
			DeckID:    "d1",
			Retention: reviewedDaysAgo(2),
			Mastery:   analytics.MasteryStats{Total: 10, Mastered: 4, Percentage: 40},
			Workload:  analytics.WorkloadStats{Overdue: 2, DueToday: 1},
			Forgetting: analytics.ForgettingRiskStats{
				AverageRisk: 0.3,
				HighRiskCards: []analytics.ForgettingRiskCard{
					{CardID: "a", Risk: 0.7},
					{CardID: "b", Risk: 0.6},
				},
			},
		}},
	}

	list := BuildPriorityList(bundle, testNow)
	require.Len(t, list, 1)
	counts := list[0].StatusCounts

	// max(overdue+dueToday, highRisk) = 3, risk estimate round(10*0.3) = 3,
	// capped by the 6 non-mastered cards.
	assert.Equal(t, 4, counts.Mastered)
	assert.Equal(t, 3, counts.Struggling)
	assert.Equal(t, 3, counts.Good)
	assert.Equal(t, 10, counts.Mastered+counts.Struggling+counts.Good)
}

// The never-reviewed branch also covers decks whose only activity is in
// the future (clock skew); the delta clamps at zero days.
func TestFutureReviewClampsToZeroDays(t *testing.T) {
	t.Parallel()
	bundle := &analytics.FlashcardAnalyticsBundle{
		Decks: []analytics.DeckAnalytics{{
			DeckID: "d1",
			Retention: []analytics.RetentionPoint{
				{Date: testNow.Add(6 * time.Hour), Attempts: 1, Correct: 1},
			},
			Mastery: analytics.MasteryStats{Total: 3, Percentage: 0},
		}},
	}

	list := BuildPriorityList(bundle, testNow)
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].DaysSinceLastReview)
}

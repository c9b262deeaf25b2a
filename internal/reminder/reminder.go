// Package reminder ranks decks by review urgency so the dashboard can
// nudge learners toward neglected or risky decks first. Scoring is a
// pure function over a precomputed analytics bundle; it performs no I/O.
package reminder

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pfenwick/retain-api/internal/analytics"
)

// Scoring weights. They sum to 1.0 so priority stays in [0, 1].
const (
	weightOverdueShare = 0.28
	weightInactivity   = 0.24
	weightRisk         = 0.18
	weightDueSoon      = 0.16
	weightMasteryGap   = 0.14
)

const (
	// inactivityHorizonDays is the idle span that saturates the
	// inactivity score.
	inactivityHorizonDays = 21

	// neverReviewedDays is reported for decks with no review history.
	neverReviewedDays = 90
)

// DeckStatus is the tri-state health classification of a deck.
type DeckStatus string

const (
	StatusStruggling DeckStatus = "struggling"
	StatusGood       DeckStatus = "good"
	StatusMastered   DeckStatus = "mastered"
)

// StatusCounts estimates how the deck's cards split across the three
// statuses.
type StatusCounts struct {
	Struggling int `json:"struggling"`
	Good       int `json:"good"`
	Mastered   int `json:"mastered"`
}

// DeckReminder is one ranked entry in the priority list.
type DeckReminder struct {
	DeckID              string       `json:"deck_id"`
	DeckTitle           string       `json:"deck_title"`
	Priority            float64      `json:"priority"`
	Overdue             int          `json:"overdue"`
	DueToday            int          `json:"due_today"`
	DueNext7Days        int          `json:"due_next_7_days"`
	AverageRisk         float64      `json:"average_risk"`
	Mastery             float64      `json:"mastery"`
	DaysSinceLastReview int          `json:"days_since_last_review"`
	TotalCards          int          `json:"total_cards"`
	Status              DeckStatus   `json:"status"`
	StatusReason        string       `json:"status_reason"`
	StatusCounts        StatusCounts `json:"status_counts"`
}

// BuildPriorityList scores every deck in the bundle and returns them
// sorted by priority descending. The sort is stable: decks with equal
// priority keep their input order. A nil or empty bundle yields an
// empty list.
func BuildPriorityList(bundle *analytics.FlashcardAnalyticsBundle, now time.Time) []DeckReminder {
	if bundle == nil || len(bundle.Decks) == 0 {
		return []DeckReminder{}
	}

	reminders := make([]DeckReminder, 0, len(bundle.Decks))
	for _, deck := range bundle.Decks {
		reminders = append(reminders, scoreDeck(deck, now))
	}
	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].Priority > reminders[j].Priority
	})
	return reminders
}

func scoreDeck(deck analytics.DeckAnalytics, now time.Time) DeckReminder {
	inactivityDays, everReviewed := lastReviewedDaysAgo(deck, now)
	inactivityScore := 1.0
	if everReviewed {
		inactivityScore = clamp01(float64(inactivityDays) / inactivityHorizonDays)
	}

	totalCards := deck.Mastery.Total
	overdue := deck.Workload.Overdue

	overdueShare := 0.0
	switch {
	case totalCards > 0:
		overdueShare = float64(overdue) / float64(totalCards)
	case overdue > 0:
		overdueShare = 1
	}

	dueSoonScore := clamp01(float64(deck.Workload.DueNext7Days) / 10)
	if totalCards > 0 {
		dueSoonScore = clamp01(float64(deck.Workload.DueNext7Days) / float64(totalCards))
	}

	riskScore := clamp01(deck.Forgetting.AverageRisk)
	masteryGap := clamp01(1 - deck.Mastery.Percentage/100)

	overdueRatio := 0.0
	if totalCards > 0 {
		overdueRatio = float64(overdue) / float64(totalCards)
	}

	// Struggling is evaluated before mastered so a deck can never be both.
	struggling := riskScore >= 0.5 ||
		overdue > 0 ||
		overdueRatio >= 0.2 ||
		(everReviewed && inactivityDays >= 14) || !everReviewed
	mastered := deck.Mastery.Percentage >= 80 &&
		riskScore < 0.25 &&
		overdue <= 1 &&
		everReviewed && inactivityDays < 45

	status := StatusGood
	statusReason := "Stable: keep pace."
	if struggling {
		status = StatusStruggling
		var reasons []string
		if overdue > 0 {
			reasons = append(reasons, fmt.Sprintf("overdue %d", overdue))
		}
		if riskScore >= 0.5 {
			reasons = append(reasons, fmt.Sprintf("risk %d%%", int(math.Round(riskScore*100))))
		}
		if !everReviewed || inactivityDays >= 14 {
			reasons = append(reasons, fmt.Sprintf("%dd idle", reportedInactivity(inactivityDays, everReviewed)))
		}
		statusReason = "Struggling: " + strings.Join(reasons, ", ")
	} else if mastered {
		status = StatusMastered
		statusReason = "Mastered: low risk and high mastery."
	}

	masteredCount := deck.Mastery.Mastered
	strugglingEstimate := overdue + deck.Workload.DueToday
	if highRisk := len(deck.Forgetting.HighRiskCards); highRisk > strugglingEstimate {
		strugglingEstimate = highRisk
	}
	strugglingFromRisk := int(math.Round(float64(totalCards) * riskScore))
	strugglingCount := min(totalCards-masteredCount, max(strugglingEstimate, strugglingFromRisk))
	goodCount := max(totalCards-masteredCount-strugglingCount, 0)

	priority := weightOverdueShare*overdueShare +
		weightInactivity*inactivityScore +
		weightRisk*riskScore +
		weightDueSoon*dueSoonScore +
		weightMasteryGap*masteryGap

	return DeckReminder{
		DeckID:              deck.DeckID,
		DeckTitle:           deck.DeckTitle,
		Priority:            round4(priority),
		Overdue:             overdue,
		DueToday:            deck.Workload.DueToday,
		DueNext7Days:        deck.Workload.DueNext7Days,
		AverageRisk:         deck.Forgetting.AverageRisk,
		Mastery:             deck.Mastery.Percentage,
		DaysSinceLastReview: reportedInactivity(inactivityDays, everReviewed),
		TotalCards:          totalCards,
		Status:              status,
		StatusReason:        statusReason,
		StatusCounts: StatusCounts{
			Struggling: strugglingCount,
			Good:       goodCount,
			Mastered:   masteredCount,
		},
	}
}

// lastReviewedDaysAgo finds the most recent retention point with
// attempts and reports how many days ago it was. The second return is
// false when the deck has never been reviewed.
func lastReviewedDaysAgo(deck analytics.DeckAnalytics, now time.Time) (int, bool) {
	for i := len(deck.Retention) - 1; i >= 0; i-- {
		point := deck.Retention[i]
		if point.Attempts == 0 {
			continue
		}
		delta := now.Sub(point.Date)
		if delta < 0 {
			delta = 0
		}
		return int(math.Round(delta.Hours() / 24)), true
	}
	return 0, false
}

func reportedInactivity(days int, everReviewed bool) int {
	if !everReviewed {
		return neverReviewedDays
	}
	return days
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Package analytics builds per-deck learning statistics from the review
// log and scheduling states: retention history, mastery, workload
// forecast, and forgetting risk. The reminder scorer consumes the
// bundle produced here.
package analytics

import "time"

// RetentionPoint is one day of answer history.
type RetentionPoint struct {
	Date        time.Time `json:"date"`
	Attempts    int       `json:"attempts"`
	Correct     int       `json:"correct"`
	SuccessRate float64   `json:"success_rate"`
}

// MasteryStats counts cards whose interval has grown past the mastery
// threshold.
type MasteryStats struct {
	Total      int     `json:"total"`
	Mastered   int     `json:"mastered"`
	Percentage float64 `json:"percentage"`
}

// ForecastPoint is the number of cards coming due on a single day.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// WorkloadStats describes how much review work a deck is carrying.
type WorkloadStats struct {
	Overdue      int             `json:"overdue"`
	DueToday     int             `json:"due_today"`
	DueNext7Days int             `json:"due_next_7_days"`
	Forecast     []ForecastPoint `json:"forecast"`
}

// ForgettingRiskCard is a card whose estimated forgetting risk crossed
// the high-risk threshold.
type ForgettingRiskCard struct {
	CardID string    `json:"card_id"`
	Front  string    `json:"front"`
	Due    time.Time `json:"due"`
	Risk   float64   `json:"risk"`
}

// ForgettingRiskStats aggregates per-card forgetting risk for a deck.
type ForgettingRiskStats struct {
	AverageRisk   float64              `json:"average_risk"`
	HighRiskCards []ForgettingRiskCard `json:"high_risk_cards"`
}

// TagStatEntry breaks mastery and due counts down by card tag.
type TagStatEntry struct {
	Tag      string `json:"tag"`
	Total    int    `json:"total"`
	Mastered int    `json:"mastered"`
	Due      int    `json:"due"`
}

// DeckAnalytics is the full analytics snapshot for one deck.
type DeckAnalytics struct {
	DeckID       string              `json:"deck_id"`
	DeckTitle    string              `json:"deck_title"`
	Retention    []RetentionPoint    `json:"retention"`
	Mastery      MasteryStats        `json:"mastery"`
	Workload     WorkloadStats       `json:"workload"`
	Forgetting   ForgettingRiskStats `json:"forgetting"`
	TagBreakdown []TagStatEntry      `json:"tag_breakdown"`
	LastUpdated  time.Time           `json:"last_updated"`
}

// BundleSummary rolls the per-deck snapshots up to account level.
type BundleSummary struct {
	TotalDecks       int     `json:"total_decks"`
	TotalCards       int     `json:"total_cards"`
	CardsMastered    int     `json:"cards_mastered"`
	AverageRetention float64 `json:"average_retention"`
	UpcomingReviews  int     `json:"upcoming_reviews"`
}

// FlashcardAnalyticsBundle is the account-wide analytics snapshot.
type FlashcardAnalyticsBundle struct {
	Summary BundleSummary   `json:"summary"`
	Decks   []DeckAnalytics `json:"decks"`
}

package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/pfenwick/retain-api/internal/store"
)

const (
	// retentionWindowDays is how far back the retention series reaches.
	retentionWindowDays = 14

	// masteredIntervalDays is the interval at which a card counts as
	// mastered.
	masteredIntervalDays = 21.0

	// highRiskThreshold marks a card for the high-risk list.
	highRiskThreshold = 0.55

	// maxHighRiskCards caps the high-risk list per deck.
	maxHighRiskCards = 10

	// forecastDays is the length of the workload forecast.
	forecastDays = 7
)

// ErrDeckNotFound indicates the deck does not exist or is not owned by
// the requesting user.
var ErrDeckNotFound = errors.New("deck not found")

// Aggregator computes analytics bundles from the stores.
type Aggregator struct {
	deckStore       store.DeckStore
	stateStore      store.SchedulingStateStore
	reviewLog       store.ReviewLogStore
	logger          *slog.Logger
	now             func() time.Time
	reviewListLimit int
}

// AggregatorOption customizes an Aggregator at construction time.
type AggregatorOption func(*Aggregator)

// WithClock overrides the aggregator's time source.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		a.now = now
	}
}

// WithReviewListLimit caps how many review events feed each deck's
// retention series. Non-positive values keep the store default.
func WithReviewListLimit(limit int) AggregatorOption {
	return func(a *Aggregator) {
		if limit > 0 {
			a.reviewListLimit = limit
		}
	}
}

// NewAggregator creates a new Aggregator.
func NewAggregator(
	deckStore store.DeckStore,
	stateStore store.SchedulingStateStore,
	reviewLog store.ReviewLogStore,
	log *slog.Logger,
	opts ...AggregatorOption,
) *Aggregator {
	if deckStore == nil {
		panic("deckStore cannot be nil")
	}
	if stateStore == nil {
		panic("stateStore cannot be nil")
	}
	if reviewLog == nil {
		panic("reviewLog cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	a := &Aggregator{
		deckStore:       deckStore,
		stateStore:      stateStore,
		reviewLog:       reviewLog,
		logger:          log.With(slog.String("component", "analytics_aggregator")),
		now:             func() time.Time { return time.Now().UTC() },
		reviewListLimit: store.DefaultReviewListLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GetDeck computes the analytics snapshot for a single deck.
func (a *Aggregator) GetDeck(ctx context.Context, userID, deckID uuid.UUID) (DeckAnalytics, error) {
	deck, err := a.deckStore.Get(ctx, userID, deckID)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return DeckAnalytics{}, ErrDeckNotFound
		}
		return DeckAnalytics{}, fmt.Errorf("failed to load deck: %w", err)
	}
	return a.buildDeckAnalytics(ctx, userID, deck)
}

// GetAll computes the account-wide bundle across every deck the user
// owns.
func (a *Aggregator) GetAll(ctx context.Context, userID uuid.UUID) (FlashcardAnalyticsBundle, error) {
	decks, err := a.deckStore.List(ctx, userID)
	if err != nil {
		return FlashcardAnalyticsBundle{}, fmt.Errorf("failed to list decks: %w", err)
	}
	if len(decks) == 0 {
		return FlashcardAnalyticsBundle{Decks: []DeckAnalytics{}}, nil
	}

	bundle := FlashcardAnalyticsBundle{
		Decks: make([]DeckAnalytics, 0, len(decks)),
	}

	totalCards := 0
	cardsMastered := 0
	upcomingReviews := 0
	retentionSum := 0.0
	retentionSamples := 0

	for _, deck := range decks {
		da, err := a.buildDeckAnalytics(ctx, userID, deck)
		if err != nil {
			return FlashcardAnalyticsBundle{}, err
		}
		bundle.Decks = append(bundle.Decks, da)

		totalCards += len(deck.Cards)
		cardsMastered += da.Mastery.Mastered
		upcomingReviews += da.Workload.DueNext7Days
		for _, point := range da.Retention {
			if point.Attempts > 0 {
				retentionSum += point.SuccessRate
				retentionSamples++
			}
		}
	}

	averageRetention := 0.0
	if retentionSamples > 0 {
		averageRetention = round1(retentionSum / float64(retentionSamples))
	}

	bundle.Summary = BundleSummary{
		TotalDecks:       len(decks),
		TotalCards:       totalCards,
		CardsMastered:    cardsMastered,
		AverageRetention: averageRetention,
		UpcomingReviews:  upcomingReviews,
	}
	return bundle, nil
}

func (a *Aggregator) buildDeckAnalytics(ctx context.Context, userID uuid.UUID, deck *domain.Deck) (DeckAnalytics, error) {
	now := a.now()

	states, err := a.stateStore.ListDeckStates(ctx, userID, deck.ID)
	if err != nil {
		return DeckAnalytics{}, fmt.Errorf("failed to list scheduling states: %w", err)
	}
	// Cards never reviewed get a synthetic "due now, never seen" state so
	// workload and risk include them. Analytics stays read-only; the
	// orchestrator is the only writer of scheduling state.
	for _, card := range deck.Cards {
		if _, ok := states[card.ID]; !ok {
			states[card.ID] = domain.SchedulingState{
				Due:        now,
				Interval:   0,
				EaseFactor: 2.3,
				Stability:  1,
				Difficulty: 0.5,
			}
		}
	}

	events, err := a.reviewLog.ListByDeck(ctx, userID, deck.ID, a.reviewListLimit)
	if err != nil {
		return DeckAnalytics{}, fmt.Errorf("failed to list review events: %w", err)
	}

	return DeckAnalytics{
		DeckID:       deck.ID.String(),
		DeckTitle:    deck.Title,
		Retention:    buildRetentionSeries(events, now),
		Mastery:      computeMastery(states, len(deck.Cards)),
		Workload:     computeWorkload(states, now),
		Forgetting:   computeRisk(deck.Cards, states, now),
		TagBreakdown: computeTagStats(deck.Cards, states, now),
		LastUpdated:  now,
	}, nil
}

// buildRetentionSeries buckets the review events into one point per day
// over the retention window, oldest first. A rating of good or easy
// counts as correct.
func buildRetentionSeries(events []domain.ReviewEvent, now time.Time) []RetentionPoint {
	series := make([]RetentionPoint, 0, retentionWindowDays)
	for i := retentionWindowDays - 1; i >= 0; i-- {
		dayStart := startOfDay(now.AddDate(0, 0, -i))
		dayEnd := dayStart.AddDate(0, 0, 1)

		attempts := 0
		correct := 0
		for _, event := range events {
			if event.Timestamp.Before(dayStart) || !event.Timestamp.Before(dayEnd) {
				continue
			}
			attempts++
			if event.Feedback == domain.FeedbackGood || event.Feedback == domain.FeedbackEasy {
				correct++
			}
		}

		successRate := 0.0
		if attempts > 0 {
			successRate = float64(correct) / float64(attempts) * 100
		}
		series = append(series, RetentionPoint{
			Date:        dayStart,
			Attempts:    attempts,
			Correct:     correct,
			SuccessRate: successRate,
		})
	}
	return series
}

func computeMastery(states map[string]domain.SchedulingState, totalCards int) MasteryStats {
	if totalCards == 0 {
		return MasteryStats{}
	}
	mastered := 0
	for _, state := range states {
		if state.Interval >= masteredIntervalDays {
			mastered++
		}
	}
	return MasteryStats{
		Total:      totalCards,
		Mastered:   mastered,
		Percentage: round1(float64(mastered) / float64(totalCards) * 100),
	}
}

func computeWorkload(states map[string]domain.SchedulingState, now time.Time) WorkloadStats {
	todayStart := startOfDay(now)
	todayEnd := todayStart.AddDate(0, 0, 1)

	workload := WorkloadStats{
		Forecast: make([]ForecastPoint, forecastDays),
	}
	for i := range workload.Forecast {
		workload.Forecast[i].Date = todayStart.AddDate(0, 0, i)
	}

	for _, state := range states {
		if state.Due.Before(todayStart) {
			workload.Overdue++
		}
		if !state.Due.Before(todayStart) && state.Due.Before(todayEnd) {
			workload.DueToday++
		}
		for i := range workload.Forecast {
			dayStart := workload.Forecast[i].Date
			dayEnd := dayStart.AddDate(0, 0, 1)
			if !state.Due.Before(dayStart) && state.Due.Before(dayEnd) {
				workload.Forecast[i].Count++
			}
		}
	}

	for _, point := range workload.Forecast {
		workload.DueNext7Days += point.Count
	}
	return workload
}

// computeRisk estimates per-card forgetting risk with an exponential
// decay of retrievability over time elapsed since the last review,
// scaled by the card's stability.
func computeRisk(cards []domain.Card, states map[string]domain.SchedulingState, now time.Time) ForgettingRiskStats {
	day := 24 * time.Hour

	var highRisk []ForgettingRiskCard
	cumulative := 0.0
	scored := 0
	for _, card := range cards {
		state, ok := states[card.ID]
		if !ok {
			continue
		}
		scored++

		lastReview := state.LastReview
		if lastReview.IsZero() {
			lastReview = state.Due.Add(-daysToDuration(state.Interval))
		}
		elapsed := now.Sub(lastReview)
		if elapsed < 0 {
			elapsed = 0
		}
		stability := daysToDuration(state.Stability)
		if stability < day {
			stability = day
		}

		retrievability := math.Exp(-float64(elapsed) / float64(stability))
		risk := clamp01(1 - retrievability)
		cumulative += risk

		if risk >= highRiskThreshold {
			highRisk = append(highRisk, ForgettingRiskCard{
				CardID: card.ID,
				Front:  card.Front,
				Due:    state.Due,
				Risk:   round2(risk),
			})
		}
	}

	averageRisk := 0.0
	if scored > 0 {
		averageRisk = round2(cumulative / float64(scored))
	}

	sort.SliceStable(highRisk, func(i, j int) bool {
		return highRisk[i].Risk > highRisk[j].Risk
	})
	if len(highRisk) > maxHighRiskCards {
		highRisk = highRisk[:maxHighRiskCards]
	}

	return ForgettingRiskStats{
		AverageRisk:   averageRisk,
		HighRiskCards: highRisk,
	}
}

func computeTagStats(cards []domain.Card, states map[string]domain.SchedulingState, now time.Time) []TagStatEntry {
	stats := make(map[string]*TagStatEntry)
	order := make([]string, 0)

	for _, card := range cards {
		tags := card.Tags
		if len(tags) == 0 {
			tags = []string{"untagged"}
		}
		state, hasState := states[card.ID]
		for _, tag := range tags {
			entry, ok := stats[tag]
			if !ok {
				entry = &TagStatEntry{Tag: tag}
				stats[tag] = entry
				order = append(order, tag)
			}
			entry.Total++
			if hasState {
				if state.Interval >= masteredIntervalDays {
					entry.Mastered++
				}
				if !state.Due.After(now) {
					entry.Due++
				}
			}
		}
	}

	entries := make([]TagStatEntry, 0, len(stats))
	for _, tag := range order {
		entries = append(entries, *stats[tag])
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})
	return entries
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * float64(24*time.Hour))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

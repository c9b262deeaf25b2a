package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/analytics"
	"github.com/pfenwick/retain-api/internal/api/shared"
	"github.com/pfenwick/retain-api/internal/reminder"
)

// AnalyticsHandler serves deck analytics and the reminder priority list.
type AnalyticsHandler struct {
	aggregator *analytics.Aggregator
	logger     *slog.Logger
	now        func() time.Time
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(aggregator *analytics.Aggregator, log *slog.Logger) *AnalyticsHandler {
	if aggregator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("aggregator cannot be nil for AnalyticsHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AnalyticsHandler{
		aggregator: aggregator,
		logger:     log.With(slog.String("component", "analytics_handler")),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetBundle handles GET /analytics requests.
func (h *AnalyticsHandler) GetBundle(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	bundle, err := h.aggregator.GetAll(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, bundle)
}

// GetDeckAnalytics handles GET /decks/{id}/analytics requests.
func (h *AnalyticsHandler) GetDeckAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID")
		return
	}

	deckAnalytics, err := h.aggregator.GetDeck(r.Context(), userID, deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deckAnalytics)
}

// GetReminders handles GET /reminders requests. The priority list ranks
// the learner's decks by review urgency, most urgent first.
func (h *AnalyticsHandler) GetReminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	bundle, err := h.aggregator.GetAll(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	reminders := reminder.BuildPriorityList(&bundle, h.now())
	shared.RespondWithJSON(w, r, http.StatusOK, reminders)
}

// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/api/shared"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/pfenwick/retain-api/internal/platform/logger"
	"github.com/pfenwick/retain-api/internal/service/deck"
)

// DeckSettingsPayload mirrors domain.DeckSettings on the wire.
type DeckSettingsPayload struct {
	SchedulingStrategyID string `json:"scheduling_strategy_id"`
	SelectionAlgorithmID string `json:"selection_algorithm_id"`
}

// DeckResponse represents the response data for a deck.
type DeckResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Cards       []domain.Card       `json:"cards"`
	Categories  []string            `json:"categories"`
	Status      string              `json:"status"`
	Settings    DeckSettingsPayload `json:"settings"`
	CreatedAt   time.Time           `json:"created_at"`
}

func deckToResponse(d *domain.Deck) DeckResponse {
	return DeckResponse{
		ID:          d.ID.String(),
		Title:       d.Title,
		Description: d.Description,
		Cards:       d.Cards,
		Categories:  d.Categories,
		Status:      string(d.Status),
		Settings: DeckSettingsPayload{
			SchedulingStrategyID: d.Settings.SchedulingStrategyID,
			SelectionAlgorithmID: d.Settings.SelectionAlgorithmID,
		},
		CreatedAt: d.CreatedAt,
	}
}

// DeckHandler handles deck authoring HTTP requests.
type DeckHandler struct {
	deckService deck.DeckService
	logger      *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(deckService deck.DeckService, log *slog.Logger) *DeckHandler {
	if deckService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("deckService cannot be nil for DeckHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &DeckHandler{
		deckService: deckService,
		logger:      log.With(slog.String("component", "deck_handler")),
	}
}

// CreateDeckRequest represents the request body for creating a deck.
type CreateDeckRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Categories  []string `json:"categories" validate:"max=20"`
}

// CreateDeck handles POST /decks requests.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateDeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	created, err := h.deckService.CreateDeck(r.Context(), userID, req.Title, req.Description, req.Categories)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("deck created via API",
		slog.String("deck_id", created.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, deckToResponse(created))
}

// ListDecks handles GET /decks requests.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	decks, err := h.deckService.ListDecks(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]DeckResponse, 0, len(decks))
	for _, d := range decks {
		responses = append(responses, deckToResponse(d))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetDeck handles GET /decks/{id} requests.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
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

	found, err := h.deckService.GetDeck(r.Context(), userID, deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(found))
}

// AddCardRequest represents the request body for adding a card to a deck.
type AddCardRequest struct {
	Type  string   `json:"type" validate:"required,oneof=basic cloze"`
	Front string   `json:"front" validate:"required,min=1"`
	Back  string   `json:"back" validate:"required,min=1"`
	Hint  string   `json:"hint"`
	Tags  []string `json:"tags" validate:"max=20"`
}

// AddCard handles POST /decks/{id}/cards requests.
func (h *DeckHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

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

	var req AddCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	updated, err := h.deckService.AddCard(
		r.Context(), userID, deckID, domain.CardType(req.Type), req.Front, req.Back, req.Hint, req.Tags,
	)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrDuplicateCardID) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card data")
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("card added via API",
		slog.String("deck_id", deckID.String()),
		slog.Int("deck_size", len(updated.Cards)))
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(updated))
}

// UpdateSettingsRequest represents the request body for updating deck
// scheduling settings.
type UpdateSettingsRequest struct {
	SchedulingStrategyID string `json:"scheduling_strategy_id"`
	SelectionAlgorithmID string `json:"selection_algorithm_id"`
}

// UpdateSettings handles PUT /decks/{id}/settings requests.
func (h *DeckHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
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

	var req UpdateSettingsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.deckService.UpdateSettings(r.Context(), userID, deckID, domain.DeckSettings{
		SchedulingStrategyID: req.SchedulingStrategyID,
		SelectionAlgorithmID: req.SelectionAlgorithmID,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(updated))
}

// PublishDeck handles POST /decks/{id}/publish requests.
func (h *DeckHandler) PublishDeck(w http.ResponseWriter, r *http.Request) {
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

	published, err := h.deckService.PublishDeck(r.Context(), userID, deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(published))
}

// userIDFromContext extracts the authenticated user ID placed in the
// context by the identity middleware.
func userIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

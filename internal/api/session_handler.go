package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/api/shared"
	"github.com/pfenwick/retain-api/internal/domain"
	"github.com/pfenwick/retain-api/internal/platform/logger"
	"github.com/pfenwick/retain-api/internal/service/review"
)

// SessionResponse represents the response data for a review session.
type SessionResponse struct {
	ID             string                  `json:"id"`
	DeckID         string                  `json:"deck_id"`
	Mode           string                  `json:"mode"`
	StrategyID     string                  `json:"strategy_id"`
	AlgorithmID    string                  `json:"algorithm_id"`
	ActiveCard     *domain.ScheduledCard   `json:"active_card"`
	RemainingCount int                     `json:"remaining_count"`
	Completed      []domain.ReviewEvent    `json:"completed"`
	CreatedAt      time.Time               `json:"created_at"`
}

func sessionToResponse(s *domain.FlashcardSession) SessionResponse {
	return SessionResponse{
		ID:             s.ID.String(),
		DeckID:         s.DeckID.String(),
		Mode:           string(s.Mode),
		StrategyID:     s.StrategyID,
		AlgorithmID:    s.AlgorithmID,
		ActiveCard:     s.ActiveCard,
		RemainingCount: len(s.RemainingQueue),
		Completed:      s.Completed,
		CreatedAt:      s.CreatedAt,
	}
}

// SessionHandler handles review session HTTP requests.
type SessionHandler struct {
	sessionService review.SessionService
	logger         *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService review.SessionService, log *slog.Logger) *SessionHandler {
	if sessionService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessionService cannot be nil for SessionHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &SessionHandler{
		sessionService: sessionService,
		logger:         log.With(slog.String("component", "session_handler")),
	}
}

// StartSessionRequest represents the request body for starting a session.
type StartSessionRequest struct {
	DeckID string `json:"deck_id" validate:"required,uuid"`
	Mode   string `json:"mode" validate:"omitempty,oneof=finite infinite"`
}

// StartSession handles POST /sessions requests.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req StartSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	deckID, err := uuid.Parse(req.DeckID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID")
		return
	}

	mode, err := domain.ParseSessionMode(req.Mode)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session mode")
		return
	}

	session, err := h.sessionService.StartSession(r.Context(), userID, deckID, mode)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("session started via API",
		slog.String("session_id", session.ID.String()),
		slog.String("deck_id", deckID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session))
}

// GetSession handles GET /sessions/{id} requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return
	}

	session, err := h.sessionService.GetSession(r.Context(), userID, sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// AnswerCardRequest represents the request body for answering the active
// card in a session.
type AnswerCardRequest struct {
	Feedback string `json:"feedback" validate:"required,oneof=again hard good easy"`
}

// AnswerCard handles POST /sessions/{id}/answer requests.
func (h *SessionHandler) AnswerCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return
	}

	var req AnswerCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid feedback rating")
		return
	}

	session, err := h.sessionService.AnswerCard(
		r.Context(), userID, sessionID, domain.FeedbackRating(req.Feedback),
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("card answered via API",
		slog.String("session_id", sessionID.String()),
		slog.String("feedback", req.Feedback))
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/pfenwick/retain-api/internal/analytics"
	"github.com/pfenwick/retain-api/internal/api"
	"github.com/pfenwick/retain-api/internal/api/middleware"
	"github.com/pfenwick/retain-api/internal/config"
	"github.com/pfenwick/retain-api/internal/platform/postgres"
	"github.com/pfenwick/retain-api/internal/scheduler"
	"github.com/pfenwick/retain-api/internal/selection"
	"github.com/pfenwick/retain-api/internal/service/deck"
	"github.com/pfenwick/retain-api/internal/service/review"
	"github.com/pfenwick/retain-api/internal/store"
)

// application bundles the wired components of the running server.
type application struct {
	router chi.Router
	logger *slog.Logger
}

// newApplication wires stores, registries, services, and handlers into a
// ready-to-serve application.
func newApplication(db *sql.DB, cfg *config.Config, log *slog.Logger) (*application, error) {
	strategies := scheduler.NewDefaultRegistry()
	algorithms := selection.NewDefaultRegistry()

	// A configured default no registry resolves should fail startup, not
	// the first session start.
	if _, err := strategies.Get(cfg.Review.DefaultStrategy); err != nil {
		return nil, fmt.Errorf("invalid review.default_strategy: %w", err)
	}
	if _, err := algorithms.Get(cfg.Review.DefaultAlgorithm); err != nil {
		return nil, fmt.Errorf("invalid review.default_algorithm: %w", err)
	}

	deckStore := postgres.NewPostgresDeckStore(db)
	stateStore := postgres.NewPostgresStateStore(db)
	sessionStore := postgres.NewPostgresSessionStore(db)
	reviewLog := postgres.NewPostgresReviewLogStore(db)

	deckService := deck.NewDeckService(deckStore, strategies, algorithms, log)
	sessionService := review.NewSessionService(
		deckStore, stateStore, sessionStore, reviewLog,
		store.NewSQLTxRunner(db),
		strategies, algorithms, log,
		review.WithDefaultPolicies(cfg.Review.DefaultStrategy, cfg.Review.DefaultAlgorithm),
	)
	aggregator := analytics.NewAggregator(deckStore, stateStore, reviewLog, log,
		analytics.WithReviewListLimit(cfg.Review.ReviewLogLimit))

	deckHandler := api.NewDeckHandler(deckService, log)
	sessionHandler := api.NewSessionHandler(sessionService, log)
	analyticsHandler := api.NewAnalyticsHandler(aggregator, log)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.TraceMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity)

		r.Route("/decks", func(r chi.Router) {
			r.Post("/", deckHandler.CreateDeck)
			r.Get("/", deckHandler.ListDecks)
			r.Get("/{id}", deckHandler.GetDeck)
			r.Post("/{id}/cards", deckHandler.AddCard)
			r.Put("/{id}/settings", deckHandler.UpdateSettings)
			r.Post("/{id}/publish", deckHandler.PublishDeck)
			r.Get("/{id}/analytics", analyticsHandler.GetDeckAnalytics)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.StartSession)
			r.Get("/{id}", sessionHandler.GetSession)
			r.Post("/{id}/answer", sessionHandler.AnswerCard)
		})

		r.Get("/analytics", analyticsHandler.GetBundle)
		r.Get("/reminders", analyticsHandler.GetReminders)
	})

	return &application{
		router: r,
		logger: log,
	}, nil
}

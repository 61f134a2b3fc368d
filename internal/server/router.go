package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/parser"
	"github.com/sevigo/review-relay/internal/server/handler"
	"github.com/sevigo/review-relay/internal/storage"
)

// NewRouter creates and configures a new HTTP router with middleware and API routes.
// store may be nil when the review archive is disabled.
func NewRouter(p *parser.Parser, dispatcher core.JobDispatcher, store storage.Store, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		parseHandler := handler.NewParseHandler(p, logger)
		r.Post("/parse", parseHandler.Handle)

		reviewsHandler := handler.NewReviewsHandler(dispatcher, store, logger)
		r.Post("/reviews", reviewsHandler.Create)
		r.Get("/reviews", reviewsHandler.List)
		r.Get("/reviews/{owner}/{repo}/{number}", reviewsHandler.Latest)
	})

	return r
}

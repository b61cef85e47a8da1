package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"planwrite/internal/config"
	"planwrite/internal/core"
	"planwrite/internal/draft"
	"planwrite/internal/logger"
	"planwrite/internal/observability"
	"planwrite/internal/outline"
)

// Planner produces outlines.
type Planner interface {
	Plan(ctx context.Context, req outline.Request) core.Outline
}

// Drafter writes articles from outlines.
type Drafter interface {
	Execute(ctx context.Context, req draft.Request) (string, error)
	Stream(ctx context.Context, req draft.Request) <-chan draft.Event
}

// LinkIndex serves and rebuilds internal link suggestions.
type LinkIndex interface {
	Suggest(ctx context.Context, title string, terms []string, k int, property, brand string) []core.InternalLinkSpec
	Ingest(ctx context.Context, property string, source io.Reader) (int, error)
}

// Deps are the components the API exposes. Any of them may be nil; the
// matching endpoints then answer 503.
type Deps struct {
	Planner         Planner
	Drafter         Drafter
	Links           LinkIndex
	Tracker         observability.Tracker
	Properties      map[string]config.Property
	Draft           config.Draft
	DefaultProperty string
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     config.Server
	deps       Deps
	log        *slog.Logger
}

// New creates a new HTTP server instance
func New(cfg config.Server, deps Deps) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		deps:   deps,
		log:    logger.With("server"),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  config.Duration(cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: config.Duration(cfg.WriteTimeout, 5*time.Minute),
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.trackRequests)

	if s.config.CORSEnabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Stream-ID"},
			AllowCredentials: false,
			MaxAge:           300, // Maximum value not ignored by any major browsers
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/outline", s.handlePlanOutline)
		r.Post("/outline/text", s.handleOutlineText)

		r.Post("/draft", s.handleDraft)
		r.Post("/draft/stream", s.handleDraftStream)

		r.Post("/validate", s.handleValidate)

		r.Route("/links", func(r chi.Router) {
			r.Post("/suggest", s.handleSuggestLinks)
			r.Post("/ingest", s.handleIngestLinks)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout,
		"write_timeout", s.httpServer.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Package api exposes the document intelligence service over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Satya7781/pdfintel/internal/config"
	"github.com/Satya7781/pdfintel/internal/embed"
	"github.com/Satya7781/pdfintel/internal/jobs"
	"github.com/Satya7781/pdfintel/internal/pipeline"
)

// Server is the HTTP API server for pdfintel.
type Server struct {
	router       chi.Router
	pipe         *pipeline.Pipeline
	orchestrator *jobs.Orchestrator
	embedder     embed.Embedder
	stats        *embed.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil when the
// embedding provider does not report latencies.
func NewServer(pipe *pipeline.Pipeline, orch *jobs.Orchestrator, embedder embed.Embedder, stats *embed.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		pipe:         pipe,
		orchestrator: orch,
		embedder:     embedder,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.ServiceAPIKey, s.log))

		r.Post("/api/process", s.handleProcess)
		r.Post("/api/collection", s.handleCollection)
		r.Get("/api/collection/{jobID}", s.handleCollectionStatus)
		r.Get("/api/stats/embedding", s.handleEmbeddingStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

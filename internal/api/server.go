package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/finlens/ipoagent/internal/agent"
	"github.com/finlens/ipoagent/internal/config"
	"github.com/finlens/ipoagent/internal/document"
	"github.com/finlens/ipoagent/internal/llm"
	"github.com/finlens/ipoagent/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// QueryProcessor answers a free-text question about a document.
type QueryProcessor interface {
	Process(ctx context.Context, docID, query string) string
}

// TrendProvider extracts multi-year metric series for charting.
type TrendProvider interface {
	Trend(ctx context.Context, docID string) *agent.TrendData
}

// MetricStore exposes the stored metrics for the document stats endpoint.
type MetricStore interface {
	GetAll(ctx context.Context, docID string) (map[document.MetricKey]float64, error)
}

// Server is the HTTP API server.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	dispatcher   QueryProcessor
	trends       TrendProvider
	metrics      MetricStore
	chat         *llm.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, dispatcher QueryProcessor, trends TrendProvider, metrics MetricStore, chat *llm.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		dispatcher:   dispatcher,
		trends:       trends,
		metrics:      metrics,
		chat:         chat,
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

		r.Post("/api/ingest", s.handleIngest)
		r.Get("/api/ingest/{jobID}/status", s.handleIngestStatus)

		r.Post("/api/query", s.handleQuery)
		r.Get("/api/trend", s.handleTrend)

		r.Get("/api/stats/llm", s.handleLLMStats)
		r.Get("/api/stats/document", s.handleDocumentStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

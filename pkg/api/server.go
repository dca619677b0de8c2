package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/vmweaver/vmweaver/pkg/config"
	"github.com/vmweaver/vmweaver/pkg/engine"
	"github.com/vmweaver/vmweaver/pkg/telemetry"
)

// Server serves the vmweaver HTTP API.
type Server struct {
	orch    *engine.Orchestrator
	cfg     config.ServerConfig
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
	server  *http.Server
}

// NewServer creates an API server. metrics may be nil.
func NewServer(cfg config.ServerConfig, orch *engine.Orchestrator, logger *telemetry.Logger, metrics *telemetry.Metrics) *Server {
	return &Server{
		orch:    orch,
		cfg:     cfg,
		logger:  logger.NewComponentLogger("api"),
		metrics: metrics,
	}
}

// Handler builds the route table. Exposed separately so tests can drive
// the full stack through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/vm/provision", s.handleProvision)
	mux.HandleFunc("GET /api/v1/vms", s.handleListVMs)
	mux.HandleFunc("GET /api/v1/vms/provider/{type}", s.handleVMsByProvider)
	mux.HandleFunc("GET /api/v1/vms/status/{status}", s.handleVMsByStatus)
	mux.HandleFunc("GET /api/v1/vms/{id}", s.handleGetVM)
	mux.HandleFunc("PUT /api/v1/vms/{id}/status", s.handleUpdateStatus)
	mux.HandleFunc("GET /api/v1/vms-summary", s.handleSummary)
	mux.HandleFunc("GET /api/v1/providers", s.handleProviders)

	if h := s.metrics.Handler(); h != nil {
		mux.Handle("GET /metrics", h)
	}

	return s.instrument(mux)
}

// instrument wraps the mux with request logging and metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = r.URL.Path
		}
		duration := time.Since(start)
		s.metrics.RecordHTTPRequest(r.Method, pattern, strconv.Itoa(rec.status), duration)
		s.logger.
			WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("status", rec.status).
			WithField("duration_ms", duration.Milliseconds()).
			Debug("request served")
	})
}

// statusRecorder captures the response status for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Start begins serving. It blocks until the listener stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.cfg.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Infof("API listening on %s", s.cfg.ListenAddress)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

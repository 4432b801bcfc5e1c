package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ghostnote/confession-relay/internal/biz/repo"
)

// Server exposes health and Prometheus metrics over HTTP
type Server struct {
	reviewRepo        repo.ReviewRepo
	rateLimitRepo     repo.RateLimitRepo
	classifierEnabled bool
	startedAt         time.Time
	logger            *slog.Logger

	server *http.Server
	addr   string
}

// HealthResponse is the /health body
type HealthResponse struct {
	Status            string `json:"status"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
	PendingReviews    int    `json:"pending_reviews"`
	RateLimitEntries  int    `json:"rate_limit_entries"`
	ClassifierEnabled bool   `json:"classifier_enabled"`
}

// NewServer creates a new API server
func NewServer(reviewRepo repo.ReviewRepo, rateLimitRepo repo.RateLimitRepo, classifierEnabled bool, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		reviewRepo:        reviewRepo,
		rateLimitRepo:     rateLimitRepo,
		classifierEnabled: classifierEnabled,
		startedAt:         time.Now(),
		logger:            logger.With("component", "api"),
		addr:              addr,
	}
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, HealthResponse{
		Status:            "ok",
		UptimeSeconds:     int64(time.Since(s.startedAt).Seconds()),
		PendingReviews:    s.reviewRepo.Len(),
		RateLimitEntries:  s.rateLimitRepo.Len(),
		ClassifierEnabled: s.classifierEnabled,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("write response failed", "error", err)
	}
}

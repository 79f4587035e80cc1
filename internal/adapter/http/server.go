package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TNRProtography/solar-dashboard/internal/pipeline"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// SnapshotSource provides the latest refresh snapshot.
type SnapshotSource interface {
	Latest() (pipeline.Snapshot, bool)
}

// Server exposes health, readiness, metrics, and snapshot API endpoints.
type Server struct {
	httpServer *http.Server
	snapshots  SnapshotSource
	logger     *slog.Logger
}

// NewServer creates the HTTP server. The snapshot endpoints serve the
// pipeline's latest output as read-only JSON; rendering is the caller's
// concern.
func NewServer(addr string, ready ReadinessChecker, snapshots SnapshotSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		snapshots: snapshots,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/snapshot", s.withSnapshot(func(snap pipeline.Snapshot) any {
		return snap
	}))
	mux.HandleFunc("GET /api/v1/cmes", s.withSnapshot(func(snap pipeline.Snapshot) any {
		return map[string]any{
			"earth_directed": snap.EarthDirected,
			"other":          snap.Other,
			"refreshed_at":   snap.RefreshedAt,
		}
	}))
	mux.HandleFunc("GET /api/v1/flares", s.withSnapshot(func(snap pipeline.Snapshot) any {
		return map[string]any{"flares": snap.Flares, "refreshed_at": snap.RefreshedAt}
	}))
	mux.HandleFunc("GET /api/v1/shocks", s.withSnapshot(func(snap pipeline.Snapshot) any {
		return map[string]any{"shocks": snap.Shocks, "refreshed_at": snap.RefreshedAt}
	}))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// withSnapshot serves a view of the latest snapshot, or 503 before the
// first refresh completes.
func (s *Server) withSnapshot(view func(pipeline.Snapshot) any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap, ok := s.snapshots.Latest()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "no snapshot available yet",
			})
			return
		}
		writeJSON(w, http.StatusOK, view(snap))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

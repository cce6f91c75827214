package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/cusip/internal/core"
)

// pingTimeout bounds the database check behind /health and /ready.
const pingTimeout = 2 * time.Second

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status      string          `json:"status"`
	Database    string          `json:"database"`
	Version     string          `json:"version"`
	ActiveLoads []core.FileKind `json:"active_loads"`
}

func (s *Server) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.deps.DB.Ping(ctx)
}

// handleHealth always answers 200; the body says whether the database is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:      "healthy",
		Database:    "connected",
		Version:     Version,
		ActiveLoads: s.deps.Gate.Status().Active,
	}
	if err := s.ping(r.Context()); err != nil {
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
	}
	writeJSON(w, resp)
}

// handleReady answers 503 while the database is unreachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.ping(r.Context()); err != nil {
		writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": err.Error(),
		})
		return
	}
	writeJSON(w, map[string]string{"status": "ready"})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "alive"})
}

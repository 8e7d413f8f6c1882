package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vytor/brainyflash/internal/logger"
)

// handleHealth returns a liveness probe - always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady returns 200 when the database answers a ping, 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if err := s.checkDatabase(r.Context()); err != nil {
		log.Warn("readiness check failed - database: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) checkDatabase(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.DB.PingContext(ctx)
}

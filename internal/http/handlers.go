package http

import (
	"context"
	"net/http"
	"time"

	"ledger/internal/log"
)

// Diagnostics is the storage view used by /db and /readyz.
type Diagnostics interface {
	SchemaInfo(ctx context.Context) ([]map[string]any, error)
	Ping(ctx context.Context) error
}

// handleSchema returns the raw schema catalogue of the database.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) error {
	rows, err := s.diagnostics.SchemaInfo(r.Context())
	if err != nil {
		return err
	}
	return NewJSONResponse().JSON(rows).Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) error {
	return NewJSONResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks that the database answers
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"database": "ok"}

	if err := s.diagnostics.Ping(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err.Error())
		checks["database"] = "failed"
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	return NewJSONResponse().Status(code).JSON(map[string]any{
		"status": status,
		"checks": checks,
	}).Write(w)
}

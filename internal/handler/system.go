package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/openapi"
)

// Pinger is satisfied by the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves health checks and the API description.
type SystemHandler struct {
	db      Pinger
	version string
	logger  *slog.Logger
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(db Pinger, version string, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{db: db, version: version, logger: orDefault(logger)}
}

// Health reports that the process is up.
// GET /healthz
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "ok", map[string]string{"version": h.version})
}

// Ready reports whether the database answers within two seconds.
// GET /readyz
func (h *SystemHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.WarnContext(r.Context(), "readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, model.Response{Success: false, Message: "database unavailable"})
		return
	}
	writeData(w, http.StatusOK, "ready", nil)
}

// OpenAPI serves the API description for the requesting host.
// GET /openapi.json
func (h *SystemHandler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	writeJSON(w, http.StatusOK, openapi.Generate(scheme+"://"+r.Host, h.version))
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/storyweave/storyweave-api/internal/provider"
	"github.com/storyweave/storyweave-api/internal/upstream"
)

// Pinger verifies a dependency is reachable. The user repository
// implements it for the database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness and dependency health checks.
type HealthHandler struct {
	db       Pinger
	registry *provider.Registry
	probe    *upstream.Client
}

// NewHealthHandler creates a new HealthHandler. db may be nil when the
// service runs without persistence (degraded mode).
func NewHealthHandler(db Pinger, registry *provider.Registry, probe *upstream.Client) *HealthHandler {
	return &HealthHandler{db: db, registry: registry, probe: probe}
}

// HandleHealth handles GET /health requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleDBHealth handles GET /health/db requests.
func (h *HealthHandler) HandleDBHealth(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleProvidersHealth handles GET /health/providers requests. Verifies
// the credential store holds at least one credential and the default
// resolves; with ?probe=1 it also checks reachability of the default
// provider's endpoint.
func (h *HealthHandler) HandleProvidersHealth(w http.ResponseWriter, r *http.Request) {
	if h.registry.Len() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"detail": "no provider credentials configured",
		})
		return
	}

	cred, err := h.registry.Resolve("")
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"detail": "no default provider configured",
		})
		return
	}

	if r.URL.Query().Get("probe") == "1" && h.probe != nil {
		if err := h.probe.CheckReachable(r.Context(), cred); err != nil {
			slog.Warn("provider probe failed", "provider", cred.ID(), "error", err)
			status := http.StatusServiceUnavailable
			if errors.Is(err, upstream.ErrUpstreamUnavailable) {
				status = http.StatusBadGateway
			}
			writeJSON(w, status, map[string]string{"status": "unavailable"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

package handler

import (
	"net/http"

	"github.com/storyweave/storyweave-api/internal/provider"
)

// ProviderHandler exposes the configured provider catalog. Identifiers
// only — secrets stay server-side.
type ProviderHandler struct {
	registry *provider.Registry
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(registry *provider.Registry) *ProviderHandler {
	return &ProviderHandler{registry: registry}
}

// HandleListProviders handles GET /api/v1/providers requests.
func (h *ProviderHandler) HandleListProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": h.registry.IDs(),
		"default":   h.registry.DefaultID(),
	})
}

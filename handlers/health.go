package handlers

import (
	"context"
	"net/http"

	"github.com/upb/llm-dispatch/utils"
)

// Pinger is any dependency that can report readiness
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves liveness and readiness endpoints
type HealthHandler struct {
	db Pinger // nil when no audit database is configured
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HandleHealth handles GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReady handles GET /readyz
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.HealthCheck(r.Context()); err != nil {
			_ = utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}
	}
	_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ProviderLister is the slice of the dispatch client the providers endpoint needs
type ProviderLister interface {
	Providers() []string
}

// HandleListProviders returns the registered provider keys
func HandleListProviders(lister ProviderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, map[string]any{"providers": lister.Providers()})
	}
}

package handlers

import (
	"context"
	"net/http"

	"github.com/pagetalk-ai/pagetalk/internal/api"
)

// ComponentCheck reports whether a single backend component is usable.
type ComponentCheck func(ctx context.Context) bool

type HealthHandler struct {
	checks map[string]ComponentCheck
}

// NewHealthHandler creates a health handler over the given component checks.
// Checks should be cheap; expensive probes belong behind cached values.
func NewHealthHandler(checks map[string]ComponentCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

type HealthResponse struct {
	Status     string          `json:"status"`
	Components map[string]bool `json:"components"`
}

// Health handles GET /health. The service reports ok as long as it can serve
// requests at all; individual component flags tell the caller which answer
// and storage tiers are live.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]bool, len(h.checks))
	for name, check := range h.checks {
		components[name] = check(r.Context())
	}

	api.JSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Components: components,
	})
}

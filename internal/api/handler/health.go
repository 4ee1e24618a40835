package handler

import (
	"net/http"

	"github.com/mcoot/reflextile/internal/api/response"
	"github.com/mcoot/reflextile/internal/dependencies/clock"
)

// HealthHandler reports liveness
type HealthHandler struct {
	clock clock.Clock
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(clock clock.Clock) *HealthHandler {
	return &HealthHandler{clock: clock}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok", Now: h.clock.Now().UTC()})
}

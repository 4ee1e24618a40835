package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/reflextile/internal/api/request"
	"github.com/mcoot/reflextile/internal/api/response"
	"github.com/mcoot/reflextile/internal/services/analytics"
)

// AnalyticsHandler handles logo tap reporting
type AnalyticsHandler struct {
	analytics *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// RecordTaps handles POST /api/v1/analytics/taps
func (h *AnalyticsHandler) RecordTaps(w http.ResponseWriter, r *http.Request) {
	var req request.RecordTapsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	taps, err := h.analytics.RecordTaps(r.Context(), req.Brand, req.DeviceID, req.Taps)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TapsResponse{Brand: req.Brand, Taps: taps})
}

// Totals handles GET /api/v1/analytics/taps
func (h *AnalyticsHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.analytics.Totals(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TapTotalsResponse{Totals: totals})
}

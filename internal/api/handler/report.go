package handler

import (
	"bytes"
	"net/http"

	"github.com/mcoot/reflextile/internal/api/response"
	"github.com/mcoot/reflextile/internal/services/report"
)

// ExportFilename is offered to browsers downloading an export
const ExportFilename = "reflex-tile-players.csv"

// ReportHandler handles operator reports
type ReportHandler struct {
	report *report.Service
}

// NewReportHandler creates a new report handler
func NewReportHandler(report *report.Service) *ReportHandler {
	return &ReportHandler{report: report}
}

// Stats handles GET /api/v1/admin/stats
func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.report.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StatsFromReport(st))
}

// Export handles GET /api/v1/admin/export
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.report.Export(r.Context(), &buf); err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/interfaces"
	"github.com/ternarybob/regula/internal/services/reports"
)

// ReportHandler runs an assessment and returns the result as a rendered
// HTML or PDF report
type ReportHandler struct {
	logger     arbor.ILogger
	assessment interfaces.AssessmentService
	renderer   *reports.Renderer
}

// NewReportHandler creates the report handler
func NewReportHandler(assessment interfaces.AssessmentService, renderer *reports.Renderer, logger arbor.ILogger) *ReportHandler {
	return &ReportHandler{
		logger:     logger,
		assessment: assessment,
		renderer:   renderer,
	}
}

// ReportHandler handles POST /api/reports?format=html|pdf
func (h *ReportHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}
	if format != "html" && format != "pdf" {
		WriteError(w, http.StatusBadRequest, "format must be html or pdf")
		return
	}

	var req struct {
		Request string `json:"request"`
		Title   string `json:"title,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Request == "" {
		WriteError(w, http.StatusBadRequest, "request is required")
		return
	}

	title := req.Title
	if title == "" {
		title = "Risk Assessment Report"
	}

	result, err := h.assessment.Handle(r.Context(), req.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Assessment failed for report")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var payload []byte
	var contentType string
	switch format {
	case "pdf":
		payload, err = h.renderer.RenderPDF(result.Result, title)
		contentType = "application/pdf"
	default:
		payload, err = h.renderer.RenderHTML(result.Result, title)
		contentType = "text/html; charset=utf-8"
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("assessment-%s.%s", time.Now().Format("20060102-150405"), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

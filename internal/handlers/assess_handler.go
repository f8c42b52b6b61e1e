package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/interfaces"
	"github.com/ternarybob/regula/internal/models"
	"github.com/ternarybob/regula/internal/services/documents"
)

// AssessHandler exposes the assessment pipeline over HTTP
type AssessHandler struct {
	logger     arbor.ILogger
	assessment interfaces.AssessmentService
	retrieval  interfaces.RetrievalService
}

// NewAssessHandler creates the assessment handler
func NewAssessHandler(assessment interfaces.AssessmentService, retrieval interfaces.RetrievalService, logger arbor.ILogger) *AssessHandler {
	return &AssessHandler{
		logger:     logger,
		assessment: assessment,
		retrieval:  retrieval,
	}
}

// assessRequest is the POST /api/assess body. File content is base64.
type assessRequest struct {
	Request string `json:"request"`
	File    *struct {
		FileName    string `json:"file_name"`
		DisplayName string `json:"display_name,omitempty"`
		MimeType    string `json:"mime_type,omitempty"`
		Content     string `json:"content"`
	} `json:"file,omitempty"`
}

// AssessHandler handles POST /api/assess
func (h *AssessHandler) AssessHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Request == "" {
		WriteError(w, http.StatusBadRequest, "request is required")
		return
	}

	var upload *models.DocumentUpload
	if req.File != nil {
		var err error
		upload, err = documents.DecodeBase64Upload(req.File.FileName, req.File.DisplayName, req.File.MimeType, req.File.Content)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	result, err := h.assessment.Handle(r.Context(), req.Request, upload)
	if err != nil {
		h.logger.Error().Err(err).Msg("Assessment failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// HealthHandler handles GET /api/assess/health
func (h *AssessHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if err := h.retrieval.HealthCheck(r.Context()); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

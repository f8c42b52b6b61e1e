package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/models"
	"github.com/ternarybob/regula/internal/services/collections"
	"github.com/ternarybob/regula/internal/services/documents"
)

// DocumentHandler exposes document upload and management over HTTP
type DocumentHandler struct {
	logger      arbor.ILogger
	documents   *documents.Service
	collections *collections.Service
}

// NewDocumentHandler creates the document handler
func NewDocumentHandler(documentsService *documents.Service, collectionsService *collections.Service, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		logger:      logger,
		documents:   documentsService,
		collections: collectionsService,
	}
}

// ListHandler handles GET /api/collections/{name}/documents
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request, collection string) {
	docs, err := h.collections.ListDocuments(r.Context(), collection)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"collection": collection,
		"documents":  docs,
		"count":      len(docs),
	})
}

// UploadHandler handles POST /api/collections/{name}/documents.
// Accepts multipart form data (field "file") or a JSON body with base64
// content. Validation runs before anything is stored.
func (h *DocumentHandler) UploadHandler(w http.ResponseWriter, r *http.Request, collection string) {
	upload, err := h.decodeUpload(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.documents.Upload(r.Context(), collection, upload)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case strings.Contains(err.Error(), "not found"):
			status = http.StatusNotFound
		case strings.Contains(err.Error(), "not a valid"),
			strings.Contains(err.Error(), "exceeds maximum"),
			strings.Contains(err.Error(), "is empty"),
			strings.Contains(err.Error(), "required"):
			status = http.StatusBadRequest
		}
		WriteError(w, status, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, doc)
}

// DeleteHandler handles DELETE /api/collections/{name}/documents/{id}?confirm=true
func (h *DocumentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, collection, docID string) {
	confirm := r.URL.Query().Get("confirm") == "true"
	if err := h.collections.DeleteDocument(r.Context(), collection, docID, confirm); err != nil {
		status := http.StatusInternalServerError
		switch {
		case strings.Contains(err.Error(), "confirmation"):
			status = http.StatusBadRequest
		case strings.Contains(err.Error(), "not found"):
			status = http.StatusNotFound
		}
		WriteError(w, status, err.Error())
		return
	}
	WriteSuccess(w, "Document "+docID+" deleted")
}

func (h *DocumentHandler) decodeUpload(r *http.Request) (*models.DocumentUpload, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return documents.ReadMultipartUpload(file, header, r.FormValue("display_name"))
	}

	var req struct {
		FileName    string `json:"file_name"`
		DisplayName string `json:"display_name,omitempty"`
		MimeType    string `json:"mime_type,omitempty"`
		Content     string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	return documents.DecodeBase64Upload(req.FileName, req.DisplayName, req.MimeType, req.Content)
}

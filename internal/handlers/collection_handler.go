package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/models"
	"github.com/ternarybob/regula/internal/services/collections"
)

// CollectionHandler exposes collection management over HTTP
type CollectionHandler struct {
	logger      arbor.ILogger
	collections *collections.Service
}

// NewCollectionHandler creates the collection handler
func NewCollectionHandler(collectionsService *collections.Service, logger arbor.ILogger) *CollectionHandler {
	return &CollectionHandler{
		logger:      logger,
		collections: collectionsService,
	}
}

// ListHandler handles GET /api/collections
func (h *CollectionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	list, err := h.collections.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"collections": list,
		"count":       len(list),
	})
}

// CreateHandler handles POST /api/collections
func (h *CollectionHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	kind, err := models.ParseCollectionKind(req.Kind)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	collection, err := h.collections.Create(r.Context(), req.Name, kind)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "empty") {
			status = http.StatusBadRequest
		}
		WriteError(w, status, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, collection)
}

// GetHandler handles GET /api/collections/{name}
func (h *CollectionHandler) GetHandler(w http.ResponseWriter, r *http.Request, name string) {
	collection, err := h.collections.Get(r.Context(), name)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, collection)
}

// DeleteHandler handles DELETE /api/collections/{name}?confirm=true
func (h *CollectionHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, name string) {
	confirm := r.URL.Query().Get("confirm") == "true"
	if err := h.collections.Delete(r.Context(), name, confirm); err != nil {
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
	WriteSuccess(w, "Collection "+name+" deleted")
}

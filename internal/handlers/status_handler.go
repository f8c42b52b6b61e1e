package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/common"
	"github.com/ternarybob/regula/internal/services/collections"
)

// StatusHandler serves application status and version endpoints
type StatusHandler struct {
	logger      arbor.ILogger
	config      *common.Config
	collections *collections.Service
	startedAt   time.Time
}

// NewStatusHandler creates the status handler
func NewStatusHandler(cfg *common.Config, collectionsService *collections.Service, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		logger:      logger,
		config:      cfg,
		collections: collectionsService,
		startedAt:   time.Now(),
	}
}

// StatusHandler handles GET /api/status
func (h *StatusHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status := map[string]interface{}{
		"status":      "running",
		"version":     common.GetVersion(),
		"environment": h.config.Environment,
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
	}

	if snapshot, err := h.collections.Snapshot(r.Context()); err == nil {
		status["collections"] = len(snapshot.Collections)
		status["snapshot_refreshed_at"] = snapshot.RefreshedAt
	}

	WriteJSON(w, http.StatusOK, status)
}

// VersionHandler handles GET /api/version
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetFullVersion(),
	})
}

// NotFoundHandler handles unmatched API routes
func (h *StatusHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "Not found: "+r.URL.Path)
}

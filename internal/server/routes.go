package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Assessment
	mux.HandleFunc("/api/assess", s.app.AssessHandler.AssessHandler)
	mux.HandleFunc("/api/assess/health", s.app.AssessHandler.HealthHandler)

	// API routes - Reports
	mux.HandleFunc("/api/reports", s.app.ReportHandler.ReportHandler)

	// API routes - Collections and documents
	mux.HandleFunc("/api/collections", s.handleCollectionsRoute)
	mux.HandleFunc("/api/collections/", s.handleCollectionRoutes)

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.StatusHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.StatusHandler.NotFoundHandler)

	return mux
}

// handleCollectionsRoute dispatches /api/collections by method
func (s *Server) handleCollectionsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.app.CollectionHandler.ListHandler(w, r)
	case http.MethodPost:
		s.app.CollectionHandler.CreateHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCollectionRoutes dispatches /api/collections/{name} and
// /api/collections/{name}/documents[/{id}]
func (s *Server) handleCollectionRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/collections/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		name := parts[0]
		switch r.Method {
		case http.MethodGet:
			s.app.CollectionHandler.GetHandler(w, r, name)
		case http.MethodDelete:
			s.app.CollectionHandler.DeleteHandler(w, r, name)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	case len(parts) == 2 && parts[1] == "documents":
		name := parts[0]
		switch r.Method {
		case http.MethodGet:
			s.app.DocumentHandler.ListHandler(w, r, name)
		case http.MethodPost:
			s.app.DocumentHandler.UploadHandler(w, r, name)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	case len(parts) == 3 && parts[1] == "documents":
		if r.Method == http.MethodDelete {
			s.app.DocumentHandler.DeleteHandler(w, r, parts[0], parts[2])
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

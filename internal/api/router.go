package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Get("/{id}", s.handleGetDevice)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"devices": len(s.controllers),
	})
}

// handleListDevices returns a status snapshot of every managed television.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := make([]any, 0, len(s.controllers))
	for _, c := range s.controllers {
		devices = append(devices, c.Snapshot())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleGetDevice returns the status snapshot of one television.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, c := range s.controllers {
		snap := c.Snapshot()
		if snap.ID == id {
			writeJSON(w, http.StatusOK, snap)
			return
		}
	}
	writeNotFound(w, "no such device")
}

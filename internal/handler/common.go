package handler

import (
	"encoding/json"
	"net/http"

	"attendance/internal/logger"
	"attendance/internal/view"
)

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// render writes an HTML page, falling back to a plain 500 when the template fails.
func render(w http.ResponseWriter, renderer *view.Renderer, logger *logger.Logger, status int, page string, data interface{}) {
	if err := renderer.Render(w, status, page, data); err != nil {
		logger.Error("%v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// HealthHandler handles GET /healthz.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

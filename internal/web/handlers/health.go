package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kozaktomas/faceid/internal/recognition"
)

// HealthHandler reports whether the template store is reachable.
type HealthHandler struct {
	service *recognition.Service
	backend string
	now     func() time.Time
}

// NewHealthHandler creates a health handler for the named storage backend.
func NewHealthHandler(service *recognition.Service, backend string) *HealthHandler {
	return &HealthHandler{service: service, backend: backend, now: time.Now}
}

// Check returns the gallery size, or 500 when the store cannot be queried.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	timestamp := h.now().UTC().Format(time.RFC3339)

	count, err := h.service.Count(r.Context())
	if err != nil {
		log.WithError(err).Error("Health check failed")
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"success":   false,
			"status":    "unhealthy",
			"database":  "error",
			"backend":   h.backend,
			"error":     err.Error(),
			"timestamp": timestamp,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"status":          "healthy",
		"database":        "connected",
		"backend":         h.backend,
		"registeredFaces": count,
		"timestamp":       timestamp,
	})
}

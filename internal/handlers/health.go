package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// HealthHandler отвечает на служебные запросы.
type HealthHandler struct {
	log logrus.FieldLogger
}

// NewHealthHandler создает HealthHandler.
func NewHealthHandler(log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{log: log}
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"}, h.log)
}

// Root обрабатывает GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to ITZone API"}, h.log)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/minutemate/task-engine/internal/repository"
	"github.com/minutemate/task-engine/internal/service"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError maps service errors onto HTTP statuses so callers can tell a
// bad request or a vanished record apart from a transient failure they might
// want to retry.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyProcessing),
		errors.Is(err, service.ErrIntegrationDisabled):
		status = http.StatusConflict
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrTooFewTasks),
		errors.Is(err, service.ErrUnknownIntegration):
		status = http.StatusBadRequest
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

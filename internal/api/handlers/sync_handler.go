package handlers

import (
	"net/http"

	"github.com/minutemate/task-engine/internal/service"
)

type SyncHandler struct {
	syncService *service.SyncService
}

func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.syncService.SyncAll(r.Context(), r.PathValue("integration"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"report": report})
}

func (h *SyncHandler) Retry(w http.ResponseWriter, r *http.Request) {
	report, err := h.syncService.RetryFailed(r.Context(), r.PathValue("integration"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"report": report})
}

func (h *SyncHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	report, err := h.syncService.DeleteTask(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"report": report})
}

func (h *SyncHandler) Integrations(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.syncService.Integrations(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"integrations": statuses})
}

func (h *SyncHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

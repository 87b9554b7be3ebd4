package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/minutemate/task-engine/internal/models"
	"github.com/minutemate/task-engine/internal/repository"
	"github.com/minutemate/task-engine/internal/service"
)

type CompleteTaskRequestBody struct {
	Note string `json:"note"`
}

type TaskHandler struct {
	taskService    *service.TaskService
	clusterService *service.ClusterService
}

func NewTaskHandler(taskService *service.TaskService, clusterService *service.ClusterService) *TaskHandler {
	return &TaskHandler{taskService: taskService, clusterService: clusterService}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON body: " + err.Error(),
		})
		return
	}

	task, err := h.taskService.CreateManual(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"task": task})
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.TaskFilter{
		TranscriptID: r.URL.Query().Get("transcript_id"),
		Status:       models.TaskStatus(r.URL.Query().Get("status")),
	}
	switch r.URL.Query().Get("needs_confirmation") {
	case "true":
		yes := true
		filter.NeedsConfirmation = &yes
	case "false":
		no := false
		filter.NeedsConfirmation = &no
	}

	tasks, err := h.taskService.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"task": task})
}

func (h *TaskHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if err := h.taskService.Confirm(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"confirmed": true})
}

func (h *TaskHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.taskService.Reject(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"rejected": true})
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var reqBody CompleteTaskRequestBody
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid JSON body: " + err.Error(),
			})
			return
		}
	}

	if err := h.taskService.Complete(r.Context(), r.PathValue("id"), reqBody.Note); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"completed": true})
}

func (h *TaskHandler) Cluster(w http.ResponseWriter, r *http.Request) {
	report, err := h.clusterService.ClusterPending(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"report": report})
}

package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minutemate/task-engine/internal/service"
)

type SubmitTranscriptRequestBody struct {
	Content     string `json:"content"`
	Source      string `json:"source"`
	MeetingDate string `json:"meeting_date"`
}

type TranscriptHandler struct {
	extractionService *service.ExtractionService
}

func NewTranscriptHandler(extractionService *service.ExtractionService) *TranscriptHandler {
	return &TranscriptHandler{extractionService: extractionService}
}

func parseMeetingDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%w: meeting_date must be YYYY-MM-DD", service.ErrValidation)
	}
	utc := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &utc, nil
}

func (h *TranscriptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var reqBody SubmitTranscriptRequestBody
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON body: " + err.Error(),
		})
		return
	}

	meetingDate, err := parseMeetingDate(reqBody.MeetingDate)
	if err != nil {
		respondError(w, err)
		return
	}

	transcriptID, err := h.extractionService.Submit(r.Context(), reqBody.Content, reqBody.Source, meetingDate)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]any{
		"transcript_id":     transcriptID,
		"processing_status": "processing",
	})
}

func (h *TranscriptHandler) SubmitAudio(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "audio file is required: " + err.Error(),
		})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "read audio file: " + err.Error(),
		})
		return
	}

	meetingDate, err := parseMeetingDate(r.FormValue("meeting_date"))
	if err != nil {
		respondError(w, err)
		return
	}

	transcriptID, err := h.extractionService.SubmitAudio(
		r.Context(), audio, header.Filename, r.FormValue("source"), meetingDate,
	)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]any{
		"transcript_id":     transcriptID,
		"processing_status": "processing",
	})
}

func (h *TranscriptHandler) Get(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.extractionService.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"transcript": transcript})
}

func (h *TranscriptHandler) List(w http.ResponseWriter, r *http.Request) {
	transcripts, err := h.extractionService.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"transcripts": transcripts})
}

func (h *TranscriptHandler) Reprocess(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.extractionService.Reprocess(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]any{
		"transcript_id":     id,
		"processing_status": "processing",
	})
}

func (h *TranscriptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.extractionService.DeleteTranscript(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

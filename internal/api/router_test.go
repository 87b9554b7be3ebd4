package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/minutemate/task-engine/internal/client"
	"github.com/minutemate/task-engine/internal/models"
	"github.com/minutemate/task-engine/internal/repository"
)

type scriptedExtractor struct {
	result *models.ExtractionResult
}

func (s *scriptedExtractor) ExtractTasks(ctx context.Context, transcript, dateContext string) (*models.ExtractionResult, error) {
	return s.result, nil
}

func (s *scriptedExtractor) ClusterTasks(ctx context.Context, tasks []models.ClusterTask) ([]models.Cluster, error) {
	return nil, nil
}

func newTestServer(t *testing.T, extractor client.Extractor) *httptest.Server {
	t.Helper()

	db, err := repository.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mux := SetupRouter(db, extractor, nil, map[string]client.IntegrationClient{}, zap.NewNop())
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestTranscriptEndpoints(t *testing.T) {
	extractor := &scriptedExtractor{result: &models.ExtractionResult{
		ActionItems: []models.ExtractedItem{{Description: "File the report", Assignee: "Alice"}},
	}}
	server := newTestServer(t, extractor)

	resp := postJSON(t, server.URL+"/transcripts", map[string]string{
		"content":      "Alice will file the report.",
		"source":       "standup",
		"meeting_date": "2025-11-10",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var submitted struct {
		TranscriptID string `json:"transcript_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&submitted))
	require.NotEmpty(t, submitted.TranscriptID)

	// Poll the status endpoint until the background run finishes.
	deadline := time.Now().Add(5 * time.Second)
	var status struct {
		Transcript models.Transcript `json:"transcript"`
	}
	for {
		getResp, err := http.Get(server.URL + "/transcripts/" + submitted.TranscriptID)
		require.NoError(t, err)
		require.NoError(t, json.NewDecoder(getResp.Body).Decode(&status))
		getResp.Body.Close()
		if status.Transcript.Status.Terminal() || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, models.ProcessingStatusCompleted, status.Transcript.Status)

	tasksResp, err := http.Get(server.URL + "/tasks?transcript_id=" + submitted.TranscriptID)
	require.NoError(t, err)
	defer tasksResp.Body.Close()
	var listed struct {
		Tasks []models.Task `json:"tasks"`
	}
	require.NoError(t, json.NewDecoder(tasksResp.Body).Decode(&listed))
	require.Len(t, listed.Tasks, 1)
	assert.Equal(t, "File the report", listed.Tasks[0].Description)
}

func TestValidationAndNotFoundMapping(t *testing.T) {
	server := newTestServer(t, &scriptedExtractor{result: &models.ExtractionResult{}})

	resp := postJSON(t, server.URL+"/transcripts", map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, server.URL+"/transcripts", map[string]string{
		"content":      "hello",
		"meeting_date": "not-a-date",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	getResp, err := http.Get(server.URL + "/transcripts/missing")
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)

	resp = postJSON(t, server.URL+"/sync/jira", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, server.URL+"/tasks/cluster", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "too few tasks to cluster")
}

func TestManualTaskLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t, &scriptedExtractor{result: &models.ExtractionResult{}})

	resp := postJSON(t, server.URL+"/tasks", map[string]string{"description": "Renew certificates"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Task models.Task `json:"task"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.Task.ID)
	assert.Equal(t, models.TaskTypeAction, created.Task.Type)

	resp = postJSON(t, server.URL+"/tasks/"+created.Task.ID+"/complete", map[string]string{"note": "done"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	listResp, err := http.Get(server.URL + "/tasks?status=completed")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var listed struct {
		Tasks []models.Task `json:"tasks"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&listed))
	require.Len(t, listed.Tasks, 1)
	assert.Equal(t, created.Task.ID, listed.Tasks[0].ID)

	emptyResp, err := http.Get(server.URL + "/tasks?status=pending")
	require.NoError(t, err)
	defer emptyResp.Body.Close()
	var pending struct {
		Tasks []models.Task `json:"tasks"`
	}
	require.NoError(t, json.NewDecoder(emptyResp.Body).Decode(&pending))
	assert.Empty(t, pending.Tasks)

	req, err := http.NewRequest("DELETE", server.URL+"/tasks/"+created.Task.ID, nil)
	require.NoError(t, err)
	deleteResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer deleteResp.Body.Close()
	assert.Equal(t, http.StatusOK, deleteResp.StatusCode)

	getResp, err := http.Get(server.URL + "/tasks/" + created.Task.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

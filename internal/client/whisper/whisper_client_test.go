package whisper

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-key")
	client.baseUrl = server.URL
	return client
}

func TestTranscribe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "standup.wav", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake-audio", string(content))

		w.Write([]byte(`{"text": "ship it friday"}`))
	})

	text, err := client.Transcribe(t.Context(), strings.NewReader("fake-audio"), "standup.wav")
	require.NoError(t, err)
	assert.Equal(t, "ship it friday", text)
}

func TestTranscribeErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Unsupported file format"}}`))
	})

	_, err := client.Transcribe(t.Context(), strings.NewReader("x"), "notes.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unsupported file format")
}

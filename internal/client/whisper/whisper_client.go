package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Client transcribes audio through the OpenAI Whisper API. Supported input
// formats: mp3, mp4, mpeg, mpga, m4a, wav, webm; max 25MB per file.
type Client struct {
	baseUrl    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		baseUrl:    "https://api.openai.com/v1",
		apiKey:     apiKey,
		model:      "whisper-1",
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

type whisperError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build upload form (whisper): %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio (whisper): %w", err)
	}
	if err := writer.WriteField("model", c.model); err != nil {
		return "", fmt.Errorf("build upload form (whisper): %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build upload form (whisper): %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseUrl+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("build request (whisper): %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe audio (whisper): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("read error body (whisper): %w", err)
		}

		var apiErr whisperError
		if err := json.Unmarshal(errorBody, &apiErr); err != nil {
			return "", fmt.Errorf("API error status %d (whisper)", resp.StatusCode)
		}
		if apiErr.Error.Message != "" {
			return "", fmt.Errorf("Whisper error: %s", apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error status %d (whisper)", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body (whisper): %w", err)
	}

	var transcription transcriptionResponse
	if err := json.Unmarshal(body, &transcription); err != nil {
		return "", fmt.Errorf("parse transcription (whisper): %w", err)
	}

	return transcription.Text, nil
}

package anthropic

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/minutemate/task-engine/internal/models"
)

const (
	DefaultModel = "claude-sonnet-4-5-20250929"

	extractMaxTokens = 4096
	clusterMaxTokens = 1024
)

// Client is the extraction and clustering collaborator backed by the
// Anthropic messages API.
type Client struct {
	api   sdk.Client
	model sdk.Model
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:   sdk.NewClient(option.WithAPIKey(apiKey)),
		model: sdk.Model(model),
	}
}

func (c *Client) complete(ctx context.Context, prompt string, maxTokens int64, temperature float64) (string, error) {
	msg, err := c.api.Messages.New(ctx, sdk.MessageNewParams{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: sdk.Float(temperature),
		System: []sdk.TextBlockParam{
			{Text: "Respond with valid JSON only. No markdown, no explanations."},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		sb.WriteString(block.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic request: empty response")
	}
	return sb.String(), nil
}

// ExtractTasks asks the model for the four item lists and validates the
// response against the expected schema. Any shape mismatch is an error for
// the whole run; there is no partial extraction.
func (c *Client) ExtractTasks(ctx context.Context, transcript string, dateContext string) (*models.ExtractionResult, error) {
	raw, err := c.complete(ctx, extractionPrompt(transcript, dateContext), extractMaxTokens, 0.2)
	if err != nil {
		return nil, err
	}
	return parseExtraction(raw)
}

// ClusterTasks asks the model to group the given tasks. Output the model
// mangles is treated as "no grouping possible" rather than a failure, so the
// caller only sees errors for transport-level problems.
func (c *Client) ClusterTasks(ctx context.Context, tasks []models.ClusterTask) ([]models.Cluster, error) {
	raw, err := c.complete(ctx, clusteringPrompt(tasks), clusterMaxTokens, 0.4)
	if err != nil {
		return nil, err
	}
	return parseClusters(raw), nil
}

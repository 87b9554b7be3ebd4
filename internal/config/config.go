package config

import (
	"fmt"
	"os"
)

// Config holds everything the process reads from the environment. Integration
// credentials are all optional; an integration without credentials is simply
// not registered.
type Config struct {
	HTTPAddr     string
	DatabasePath string

	AnthropicAPIKey string
	AnthropicModel  string

	OpenAIAPIKey string

	AsanaToken      string
	AsanaProjectGid string

	ClickUpToken  string
	ClickUpListID string

	GoogleCredentialsFile string
	GoogleCalendarID      string
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:     envOr("HTTP_ADDR", ":8080"),
		DatabasePath: envOr("DATABASE_PATH", "./task-engine.db"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  os.Getenv("ANTHROPIC_MODEL"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),

		AsanaToken:      os.Getenv("ASANA_TOKEN"),
		AsanaProjectGid: os.Getenv("ASANA_PROJECT_GID"),

		ClickUpToken:  os.Getenv("CLICKUP_TOKEN"),
		ClickUpListID: os.Getenv("CLICKUP_LIST_ID"),

		GoogleCredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		GoogleCalendarID:      os.Getenv("GOOGLE_CALENDAR_ID"),
	}

	if cfg.AnthropicAPIKey == "" {
		return Config{}, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if cfg.AsanaToken != "" && cfg.AsanaProjectGid == "" {
		return Config{}, fmt.Errorf("ASANA_PROJECT_GID is required when ASANA_TOKEN is set")
	}
	if cfg.ClickUpToken != "" && cfg.ClickUpListID == "" {
		return Config{}, fmt.Errorf("CLICKUP_LIST_ID is required when CLICKUP_TOKEN is set")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

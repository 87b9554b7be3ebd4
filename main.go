package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"github.com/minutemate/task-engine/internal/api"
	"github.com/minutemate/task-engine/internal/client"
	"github.com/minutemate/task-engine/internal/client/anthropic"
	"github.com/minutemate/task-engine/internal/client/asana"
	"github.com/minutemate/task-engine/internal/client/clickup"
	"github.com/minutemate/task-engine/internal/client/gcal"
	"github.com/minutemate/task-engine/internal/client/whisper"
	"github.com/minutemate/task-engine/internal/config"
	"github.com/minutemate/task-engine/internal/repository"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	db, err := repository.InitDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer db.Close()

	extractor := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)

	var transcriber client.Transcriber
	if cfg.OpenAIAPIKey != "" {
		transcriber = whisper.NewClient(cfg.OpenAIAPIKey)
	}

	ctx := context.Background()
	integrations := buildIntegrations(ctx, cfg, logger)

	profileRepo := repository.NewProfileRepository(db)
	if err := profileRepo.EnsureProfile(repository.DefaultProfileID, "Default"); err != nil {
		logger.Fatal("ensure default profile", zap.Error(err))
	}
	for name := range integrations {
		if err := profileRepo.UpsertIntegration(repository.DefaultProfileID, name, true, nil); err != nil {
			logger.Fatal("enable integration", zap.String("integration", name), zap.Error(err))
		}
	}

	router := api.SetupRouter(db, extractor, transcriber, integrations, logger)

	logger.Info("server listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.Int("integrations", len(integrations)),
		zap.Bool("audio", transcriber != nil))

	if err := http.ListenAndServe(cfg.HTTPAddr, router); err != nil {
		logger.Fatal("http server", zap.Error(err))
	}
}

// buildIntegrations registers every integration whose credentials are
// configured. A credential error is fatal; an absent credential just leaves
// that integration out.
func buildIntegrations(ctx context.Context, cfg config.Config, logger *zap.Logger) map[string]client.IntegrationClient {
	integrations := make(map[string]client.IntegrationClient)

	if cfg.AsanaToken != "" {
		c := asana.NewAsanaClient(cfg.AsanaToken, cfg.AsanaProjectGid)
		integrations[c.Name()] = c
	}

	if cfg.ClickUpToken != "" {
		c := clickup.NewClickUpClient(cfg.ClickUpToken, cfg.ClickUpListID)
		integrations[c.Name()] = c
	}

	if cfg.GoogleCredentialsFile != "" {
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			logger.Fatal("read google credentials", zap.Error(err))
		}
		creds, err := google.CredentialsFromJSON(ctx, data, calendar.CalendarScope)
		if err != nil {
			logger.Fatal("parse google credentials", zap.Error(err))
		}
		c, err := gcal.NewClient(ctx, creds.TokenSource, cfg.GoogleCalendarID)
		if err != nil {
			logger.Fatal("build calendar client", zap.Error(err))
		}
		integrations[c.Name()] = c
	}

	return integrations
}

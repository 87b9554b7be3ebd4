package api

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/minutemate/task-engine/internal/api/handlers"
	"github.com/minutemate/task-engine/internal/client"
	"github.com/minutemate/task-engine/internal/repository"
	"github.com/minutemate/task-engine/internal/service"
)

func SetupRouter(
	db *sql.DB,
	extractor client.Extractor,
	transcriber client.Transcriber,
	integrations map[string]client.IntegrationClient,
	logger *zap.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()

	transcriptRepo := repository.NewTranscriptRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	extractionService := service.NewExtractionService(transcriptRepo, taskRepo, extractor, transcriber, logger)
	taskService := service.NewTaskService(taskRepo, logger)
	clusterService := service.NewClusterService(taskRepo, extractor, logger)
	syncService := service.NewSyncService(taskRepo, profileRepo, integrations, logger)

	transcriptHandler := handlers.NewTranscriptHandler(extractionService)
	taskHandler := handlers.NewTaskHandler(taskService, clusterService)
	syncHandler := handlers.NewSyncHandler(syncService)

	mux.HandleFunc("POST /transcripts", transcriptHandler.Submit)
	mux.HandleFunc("POST /transcripts/audio", transcriptHandler.SubmitAudio)
	mux.HandleFunc("GET /transcripts", transcriptHandler.List)
	mux.HandleFunc("GET /transcripts/{id}", transcriptHandler.Get)
	mux.HandleFunc("POST /transcripts/{id}/reprocess", transcriptHandler.Reprocess)
	mux.HandleFunc("DELETE /transcripts/{id}", transcriptHandler.Delete)

	mux.HandleFunc("POST /tasks", taskHandler.Create)
	mux.HandleFunc("GET /tasks", taskHandler.List)
	mux.HandleFunc("POST /tasks/cluster", taskHandler.Cluster)
	mux.HandleFunc("GET /tasks/{id}", taskHandler.Get)
	mux.HandleFunc("POST /tasks/{id}/confirm", taskHandler.Confirm)
	mux.HandleFunc("POST /tasks/{id}/reject", taskHandler.Reject)
	mux.HandleFunc("POST /tasks/{id}/complete", taskHandler.Complete)
	mux.HandleFunc("DELETE /tasks/{id}", syncHandler.DeleteTask)

	mux.HandleFunc("POST /sync/{integration}", syncHandler.Sync)
	mux.HandleFunc("POST /sync/{integration}/retry", syncHandler.Retry)
	mux.HandleFunc("GET /integrations", syncHandler.Integrations)
	mux.HandleFunc("GET /health", syncHandler.Health)

	return mux
}

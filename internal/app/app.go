package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/common"
	"github.com/ternarybob/regula/internal/handlers"
	"github.com/ternarybob/regula/internal/interfaces"
	"github.com/ternarybob/regula/internal/services/collections"
	"github.com/ternarybob/regula/internal/services/documents"
	"github.com/ternarybob/regula/internal/services/events"
	"github.com/ternarybob/regula/internal/services/orchestrator"
	"github.com/ternarybob/regula/internal/services/reports"
	"github.com/ternarybob/regula/internal/services/retrieval"
	"github.com/ternarybob/regula/internal/services/scheduler"
	"github.com/ternarybob/regula/internal/storage/badger"
	"github.com/ternarybob/regula/internal/storage/blob"
)

// App is the dependency container: storage, services, and handlers wired
// in initialization order
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	CollectionStore interfaces.CollectionStore
	BlobStore       interfaces.BlobStore

	// Services
	EventService       interfaces.EventService
	CollectionsService *collections.Service
	DocumentsService   *documents.Service
	RetrievalService   interfaces.RetrievalService
	Orchestrator       *orchestrator.Orchestrator
	SchedulerService   *scheduler.Service
	ReportRenderer     *reports.Renderer

	// Handlers
	AssessHandler     *handlers.AssessHandler
	CollectionHandler *handlers.CollectionHandler
	DocumentHandler   *handlers.DocumentHandler
	ReportHandler     *handlers.ReportHandler
	StatusHandler     *handlers.StatusHandler
	WSHandler         *handlers.WebSocketHandler
}

// New builds the application from configuration
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	// Storage
	collectionStore, err := badger.NewCollectionStorage(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize collection store: %w", err)
	}
	a.CollectionStore = collectionStore

	blobStore, err := blob.NewFilesystemStore(cfg.Storage.Filesystem.Blobs, logger)
	if err != nil {
		collectionStore.Close()
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}
	a.BlobStore = blobStore

	// Services
	a.EventService = events.NewService(logger)
	a.CollectionsService = collections.NewService(a.CollectionStore, a.BlobStore, logger)
	a.DocumentsService = documents.NewService(cfg, a.CollectionsService, a.BlobStore, logger)

	retrievalService, err := retrieval.NewGeminiService(cfg, a.CollectionStore, a.BlobStore, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize retrieval service: %w", err)
	}
	a.RetrievalService = retrievalService

	a.Orchestrator = orchestrator.New(cfg, a.RetrievalService, a.CollectionsService, a.DocumentsService, a.EventService, logger)
	a.SchedulerService = scheduler.NewService(cfg, a.CollectionsService, logger)
	a.ReportRenderer = reports.NewRenderer(logger)

	// Handlers
	a.AssessHandler = handlers.NewAssessHandler(a.Orchestrator, a.RetrievalService, logger)
	a.CollectionHandler = handlers.NewCollectionHandler(a.CollectionsService, logger)
	a.DocumentHandler = handlers.NewDocumentHandler(a.DocumentsService, a.CollectionsService, logger)
	a.ReportHandler = handlers.NewReportHandler(a.Orchestrator, a.ReportRenderer, logger)
	a.StatusHandler = handlers.NewStatusHandler(cfg, a.CollectionsService, logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, logger)

	logger.Info().Msg("Application initialized")
	return a, nil
}

// Start launches background services
func (a *App) Start(ctx context.Context) error {
	if _, err := a.CollectionsService.RefreshSnapshot(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Initial snapshot refresh failed")
	}

	if a.Config.Scheduler.Enabled {
		if err := a.SchedulerService.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}
	return nil
}

// Close releases all resources in reverse initialization order
func (a *App) Close() {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}
	if a.WSHandler != nil {
		a.WSHandler.Close()
	}
	if a.CollectionStore != nil {
		if err := a.CollectionStore.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close collection store")
		}
	}
	a.Logger.Info().Msg("Application closed")
}

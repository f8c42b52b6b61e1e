package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/regula/internal/common"
	"github.com/ternarybob/regula/internal/services/collections"
	"github.com/ternarybob/regula/internal/services/documents"
	"github.com/ternarybob/regula/internal/services/orchestrator"
	"github.com/ternarybob/regula/internal/services/retrieval"
	"github.com/ternarybob/regula/internal/storage/badger"
	"github.com/ternarybob/regula/internal/storage/blob"
)

func main() {
	configPath := os.Getenv("REGULA_CONFIG")
	if configPath == "" {
		configPath = "regula.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Console-only logger at warn to keep MCP stdio clean
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	collectionStore, err := badger.NewCollectionStorage(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize collection store")
	}
	defer collectionStore.Close()

	blobStore, err := blob.NewFilesystemStore(config.Storage.Filesystem.Blobs, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize blob store")
	}

	retrievalService, err := retrieval.NewGeminiService(config, collectionStore, blobStore, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize retrieval service")
	}

	collectionsService := collections.NewService(collectionStore, blobStore, logger)
	documentsService := documents.NewService(config, collectionsService, blobStore, logger)
	assessment := orchestrator.New(config, retrievalService, collectionsService, documentsService, nil, logger)

	mcpServer := server.NewMCPServer(
		"regula",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createAssessTool(), handleAssess(assessment, logger))
	mcpServer.AddTool(createQueryDocumentsTool(), handleQueryDocuments(assessment, logger))
	mcpServer.AddTool(createListCollectionsTool(), handleListCollections(collectionsService, logger))
	mcpServer.AddTool(createListDocumentsTool(), handleListDocuments(collectionsService, logger))
	mcpServer.AddTool(createUploadDocumentTool(), handleUploadDocument(documentsService, logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}

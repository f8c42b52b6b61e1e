package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/interfaces"
	"github.com/ternarybob/regula/internal/services/collections"
	"github.com/ternarybob/regula/internal/services/documents"
)

func textError(format string, args ...interface{}) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(fmt.Sprintf(format, args...)),
		},
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleAssess implements the assess tool
func handleAssess(assessment interfaces.AssessmentService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userRequest, err := request.RequireString("request")
		if err != nil || userRequest == "" {
			return textError("Error: request parameter is required"), nil
		}

		result, err := assessment.Handle(ctx, userRequest, nil)
		if err != nil {
			logger.Error().Err(err).Msg("Assessment failed")
			return textError("Assessment error: %v", err), nil
		}

		text := result.Result
		if len(result.SuggestedQuestions) > 0 {
			var b strings.Builder
			b.WriteString(text)
			b.WriteString("\n### Suggested Questions\n\n")
			for _, question := range result.SuggestedQuestions {
				fmt.Fprintf(&b, "- %s\n", question)
			}
			text = b.String()
		}
		return textResult(text), nil
	}
}

// handleQueryDocuments implements the query_documents tool. It routes
// through the same pipeline as assess; the planner resolves it to a plain
// document query.
func handleQueryDocuments(assessment interfaces.AssessmentService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return textError("Error: query parameter is required"), nil
		}

		result, err := assessment.Handle(ctx, query, nil)
		if err != nil {
			logger.Error().Err(err).Msg("Document query failed")
			return textError("Query error: %v", err), nil
		}
		return textResult(result.Result), nil
	}
}

// handleListCollections implements the list_collections tool
func handleListCollections(collectionsService *collections.Service, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := collectionsService.List(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("List collections failed")
			return textError("Error listing collections: %v", err), nil
		}

		if len(list) == 0 {
			return textResult("No collections exist yet."), nil
		}

		var b strings.Builder
		b.WriteString("## Collections\n\n")
		for _, collection := range list {
			fmt.Fprintf(&b, "- **%s** (%s) — %d documents\n", collection.Name, collection.Kind, collection.DocumentCount)
		}
		return textResult(b.String()), nil
	}
}

// handleListDocuments implements the list_documents tool
func handleListDocuments(collectionsService *collections.Service, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		collection, err := request.RequireString("collection")
		if err != nil || collection == "" {
			return textError("Error: collection parameter is required"), nil
		}

		docs, err := collectionsService.ListDocuments(ctx, collection)
		if err != nil {
			logger.Error().Err(err).Str("collection", collection).Msg("List documents failed")
			return textError("Error listing documents: %v", err), nil
		}

		if len(docs) == 0 {
			return textResult(fmt.Sprintf("Collection %s has no documents.", collection)), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "## Documents in %s\n\n", collection)
		for _, doc := range docs {
			fmt.Fprintf(&b, "- %s (%s, %d bytes, id: %s)\n", doc.DisplayName, doc.MimeType, doc.SizeBytes, doc.ID)
		}
		return textResult(b.String()), nil
	}
}

// handleUploadDocument implements the upload_document tool
func handleUploadDocument(documentsService *documents.Service, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		collection, err := request.RequireString("collection")
		if err != nil || collection == "" {
			return textError("Error: collection parameter is required"), nil
		}
		fileName, err := request.RequireString("file_name")
		if err != nil || fileName == "" {
			return textError("Error: file_name parameter is required"), nil
		}
		content, err := request.RequireString("content")
		if err != nil || content == "" {
			return textError("Error: content parameter is required"), nil
		}
		displayName := request.GetString("display_name", "")

		upload, err := documents.DecodeBase64Upload(fileName, displayName, "", content)
		if err != nil {
			return textError("Invalid upload: %v", err), nil
		}

		doc, err := documentsService.Upload(ctx, collection, upload)
		if err != nil {
			logger.Error().Err(err).Str("collection", collection).Msg("Upload failed")
			return textError("Upload error: %v", err), nil
		}

		return textResult(fmt.Sprintf("Uploaded %s to %s (id: %s)", doc.DisplayName, collection, doc.ID)), nil
	}
}

package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAssessTool returns the assess tool definition
func createAssessTool() mcp.Tool {
	return mcp.NewTool("assess",
		mcp.WithDescription("Run a regulatory risk assessment: routes the request across business-process, regulatory, and ontology collections and returns a markdown result with suggested follow-up questions"),
		mcp.WithString("request",
			mcp.Required(),
			mcp.Description("Natural-language request, e.g. 'Analyze CCPA compliance risks in our onboarding process'"),
		),
	)
}

// createQueryDocumentsTool returns the query_documents tool definition
func createQueryDocumentsTool() mcp.Tool {
	return mcp.NewTool("query_documents",
		mcp.WithDescription("Search the document collections with a free-text question and return the grounded answer with citations"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text question, e.g. 'What happens during customer onboarding?'"),
		),
	)
}

// createListCollectionsTool returns the list_collections tool definition
func createListCollectionsTool() mcp.Tool {
	return mcp.NewTool("list_collections",
		mcp.WithDescription("List document collections with their kind and document counts"),
	)
}

// createListDocumentsTool returns the list_documents tool definition
func createListDocumentsTool() mcp.Tool {
	return mcp.NewTool("list_documents",
		mcp.WithDescription("List the documents registered in a collection"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection name"),
		),
	)
}

// createUploadDocumentTool returns the upload_document tool definition
func createUploadDocumentTool() mcp.Tool {
	return mcp.NewTool("upload_document",
		mcp.WithDescription("Upload a document into a collection (content is base64-encoded)"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Target collection name"),
		),
		mcp.WithString("file_name",
			mcp.Required(),
			mcp.Description("Original file name, used to infer the mime type"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Base64-encoded file content"),
		),
		mcp.WithString("display_name",
			mcp.Description("Optional display name; defaults to the file name"),
		),
	)
}

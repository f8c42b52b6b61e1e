package interfaces

import (
	"context"
)

// BlobStore persists raw uploaded file bytes. Writes come from the document
// upload path; reads come from retrieval grounding.
type BlobStore interface {
	// Save writes the payload and returns a locator for later retrieval
	Save(ctx context.Context, data []byte, name string, mimeType string) (string, error)

	// Load reads back a previously saved blob by its locator
	Load(ctx context.Context, locator string) ([]byte, error)

	// Delete removes a previously saved blob; deleting a missing blob is not an error
	Delete(ctx context.Context, locator string) error
}

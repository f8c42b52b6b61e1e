package interfaces

import (
	"context"

	"github.com/ternarybob/regula/internal/models"
)

// CollectionStore manages named document collections and their document
// registry. Implementations own collection/document metadata; document
// content lives in blob storage and search indexing is owned by the
// retrieval service.
type CollectionStore interface {
	// List returns all collections with name, kind, and document count
	List(ctx context.Context) ([]models.Collection, error)

	// Create registers a new collection of the given kind and returns its ID.
	// Collection names are unique; creating an existing name is an error.
	Create(ctx context.Context, name string, kind models.CollectionKind) (string, error)

	// Get returns a collection by name
	Get(ctx context.Context, name string) (*models.Collection, error)

	// Delete removes a collection and cascades to its documents.
	// Deletion requires confirm=true as a safety check.
	Delete(ctx context.Context, name string, confirm bool) error

	// AddDocument registers a document in a collection
	AddDocument(ctx context.Context, doc *models.Document) error

	// ListDocuments returns the documents registered in a collection
	ListDocuments(ctx context.Context, collection string) ([]*models.Document, error)

	// DeleteDocument removes a document from a collection.
	// Deletion requires confirm=true as a safety check.
	DeleteDocument(ctx context.Context, collection, docID string, confirm bool) error

	// Close releases storage resources
	Close() error
}

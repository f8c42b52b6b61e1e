package interfaces

import (
	"context"

	"github.com/ternarybob/regula/internal/models"
)

// RetrievalAnswer is the raw response of one semantic search call: a
// natural-language answer plus (source, snippet) citations. The service
// never returns a citation without content.
type RetrievalAnswer struct {
	Answer    string
	Citations []models.Citation
}

// RetrievalService is the hosted semantic search collaborator. Chunking,
// embedding, and ranking are owned entirely by the implementation; callers
// see only the answer/citations contract.
type RetrievalService interface {
	// Search runs a free-text query against one collection
	Search(ctx context.Context, collection string, query string) (*RetrievalAnswer, error)

	// HealthCheck verifies the service can accept calls
	HealthCheck(ctx context.Context) error
}

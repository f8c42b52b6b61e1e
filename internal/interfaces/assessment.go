package interfaces

import (
	"context"

	"github.com/ternarybob/regula/internal/models"
)

// AssessmentService is the single operation exposed by the core: route a
// natural-language request across the collections, gate analysis on
// retrieved evidence, and return the assembled result.
type AssessmentService interface {
	// Handle processes one user request. upload may be nil.
	Handle(ctx context.Context, request string, upload *models.DocumentUpload) (*models.AssessmentResult, error)
}

// SnapshotProvider serves the current collections snapshot used for
// planner inputs and gate refusal alternatives.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*models.CollectionSnapshot, error)
}

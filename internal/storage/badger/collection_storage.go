package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/regula/internal/common"
	"github.com/ternarybob/regula/internal/interfaces"
	"github.com/ternarybob/regula/internal/models"
)

// CollectionStorage implements the CollectionStore interface on Badger.
// Collections are keyed by name; documents are keyed by ID and indexed by
// their collection name.
type CollectionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.CollectionStore = (*CollectionStorage)(nil)

// NewCollectionStorage creates the Badger collection store
func NewCollectionStorage(logger arbor.ILogger, config *common.BadgerConfig) (*CollectionStorage, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}
	return &CollectionStorage{db: db, logger: logger}, nil
}

// List returns all collections with their current document counts
func (s *CollectionStorage) List(ctx context.Context) ([]models.Collection, error) {
	var collections []models.Collection
	if err := s.db.Store().Find(&collections, nil); err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	for i := range collections {
		count, err := s.db.Store().Count(&models.Document{}, badgerhold.Where("CollectionName").Eq(collections[i].Name))
		if err != nil {
			return nil, fmt.Errorf("failed to count documents for collection %s: %w", collections[i].Name, err)
		}
		collections[i].DocumentCount = int(count)
	}
	return collections, nil
}

// Create registers a new collection. Names are unique.
func (s *CollectionStorage) Create(ctx context.Context, name string, kind models.CollectionKind) (string, error) {
	if name == "" {
		return "", fmt.Errorf("collection name is required")
	}

	var existing models.Collection
	err := s.db.Store().Get(name, &existing)
	if err == nil {
		return "", fmt.Errorf("collection %s already exists", name)
	}
	if err != badgerhold.ErrNotFound {
		return "", fmt.Errorf("failed to check collection %s: %w", name, err)
	}

	now := time.Now()
	collection := models.Collection{
		ID:        common.NewCollectionID(),
		Name:      name,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.Store().Insert(name, &collection); err != nil {
		return "", fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	s.logger.Debug().Str("collection", name).Str("kind", string(kind)).Msg("Collection stored")
	return collection.ID, nil
}

// Get returns one collection by name
func (s *CollectionStorage) Get(ctx context.Context, name string) (*models.Collection, error) {
	var collection models.Collection
	if err := s.db.Store().Get(name, &collection); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("collection not found: %s", name)
		}
		return nil, fmt.Errorf("failed to get collection %s: %w", name, err)
	}

	count, err := s.db.Store().Count(&models.Document{}, badgerhold.Where("CollectionName").Eq(name))
	if err != nil {
		return nil, fmt.Errorf("failed to count documents for collection %s: %w", name, err)
	}
	collection.DocumentCount = int(count)
	return &collection, nil
}

// Delete removes a collection and every document registered in it
func (s *CollectionStorage) Delete(ctx context.Context, name string, confirm bool) error {
	if !confirm {
		return fmt.Errorf("collection deletion requires confirmation")
	}

	if err := s.db.Store().Delete(name, &models.Collection{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("collection not found: %s", name)
		}
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}

	if err := s.db.Store().DeleteMatching(&models.Document{}, badgerhold.Where("CollectionName").Eq(name)); err != nil {
		return fmt.Errorf("failed to delete documents of collection %s: %w", name, err)
	}

	s.logger.Debug().Str("collection", name).Msg("Collection and documents deleted")
	return nil
}

// AddDocument registers a document. The owning collection must exist.
func (s *CollectionStorage) AddDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	var collection models.Collection
	if err := s.db.Store().Get(doc.CollectionName, &collection); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("collection not found: %s", doc.CollectionName)
		}
		return fmt.Errorf("failed to check collection %s: %w", doc.CollectionName, err)
	}

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
	}

	collection.UpdatedAt = now
	if err := s.db.Store().Update(doc.CollectionName, &collection); err != nil {
		s.logger.Warn().Err(err).Str("collection", doc.CollectionName).Msg("Failed to touch collection timestamp")
	}
	return nil
}

// ListDocuments returns the documents registered in a collection
func (s *CollectionStorage) ListDocuments(ctx context.Context, collection string) ([]*models.Document, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, badgerhold.Where("CollectionName").Eq(collection)); err != nil {
		return nil, fmt.Errorf("failed to list documents for collection %s: %w", collection, err)
	}

	out := make([]*models.Document, len(docs))
	for i := range docs {
		out[i] = &docs[i]
	}
	return out, nil
}

// DeleteDocument removes one document from a collection
func (s *CollectionStorage) DeleteDocument(ctx context.Context, collection, docID string, confirm bool) error {
	if !confirm {
		return fmt.Errorf("document deletion requires confirmation")
	}

	var doc models.Document
	if err := s.db.Store().Get(docID, &doc); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("document not found: %s", docID)
		}
		return fmt.Errorf("failed to get document %s: %w", docID, err)
	}
	if doc.CollectionName != collection {
		return fmt.Errorf("document %s does not belong to collection %s", docID, collection)
	}

	if err := s.db.Store().Delete(docID, &models.Document{}); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", docID, err)
	}
	return nil
}

// Close closes the database connection
func (s *CollectionStorage) Close() error {
	return s.db.Close()
}

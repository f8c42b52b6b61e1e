package collections

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/regula/internal/interfaces"
	"github.com/ternarybob/regula/internal/models"
)

// Service manages collection lifecycle and serves the collections snapshot
// used by assessment planning. Mutations to the same collection are
// serialized; different collections do not contend.
type Service struct {
	logger arbor.ILogger
	store  interfaces.CollectionStore
	blobs  interfaces.BlobStore

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	snapshotMu sync.RWMutex
	snapshot   *models.CollectionSnapshot
}

// NewService creates the collections service
func NewService(store interfaces.CollectionStore, blobs interfaces.BlobStore, logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
		store:  store,
		blobs:  blobs,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Create registers a new collection of the given kind
func (s *Service) Create(ctx context.Context, name string, kind models.CollectionKind) (*models.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}
	if _, err := models.ParseCollectionKind(string(kind)); err != nil {
		return nil, err
	}

	lock := s.collectionLock(name)
	lock.Lock()
	defer lock.Unlock()

	id, err := s.store.Create(ctx, name, kind)
	if err != nil {
		return nil, err
	}
	s.invalidateSnapshot()

	s.logger.Info().
		Str("collection", name).
		Str("kind", string(kind)).
		Str("id", id).
		Msg("Collection created")

	return s.store.Get(ctx, name)
}

// Get returns one collection by name
func (s *Service) Get(ctx context.Context, name string) (*models.Collection, error) {
	return s.store.Get(ctx, name)
}

// List returns all collections
func (s *Service) List(ctx context.Context) ([]models.Collection, error) {
	return s.store.List(ctx)
}

// Delete removes a collection, its document registry, and the documents'
// blobs. Requires confirm=true.
func (s *Service) Delete(ctx context.Context, name string, confirm bool) error {
	if !confirm {
		return fmt.Errorf("collection deletion requires confirmation")
	}

	lock := s.collectionLock(name)
	lock.Lock()
	defer lock.Unlock()

	docs, err := s.store.ListDocuments(ctx, name)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, name, confirm); err != nil {
		return err
	}

	// Metadata is gone; orphaned blobs are only logged.
	for _, doc := range docs {
		if doc.BlobRef == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, doc.BlobRef); err != nil {
			s.logger.Warn().Err(err).Str("blob", doc.BlobRef).Msg("Failed to delete document blob")
		}
	}
	s.invalidateSnapshot()

	s.logger.Info().
		Str("collection", name).
		Int("documents", len(docs)).
		Msg("Collection deleted")

	return nil
}

// Snapshot returns the cached collections snapshot, refreshing on first use
func (s *Service) Snapshot(ctx context.Context) (*models.CollectionSnapshot, error) {
	s.snapshotMu.RLock()
	cached := s.snapshot
	s.snapshotMu.RUnlock()
	if cached != nil {
		return cached, nil
	}
	return s.RefreshSnapshot(ctx)
}

// RefreshSnapshot rebuilds the snapshot from the store. Called by the
// scheduler and after mutations.
func (s *Service) RefreshSnapshot(ctx context.Context) (*models.CollectionSnapshot, error) {
	collections, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh collections snapshot: %w", err)
	}

	snapshot := &models.CollectionSnapshot{
		Collections: collections,
		RefreshedAt: time.Now(),
	}

	s.snapshotMu.Lock()
	s.snapshot = snapshot
	s.snapshotMu.Unlock()

	s.logger.Debug().Int("collections", len(collections)).Msg("Collections snapshot refreshed")
	return snapshot, nil
}

// RegisterDocument adds a document record under its collection lock
func (s *Service) RegisterDocument(ctx context.Context, doc *models.Document) error {
	lock := s.collectionLock(doc.CollectionName)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.AddDocument(ctx, doc); err != nil {
		return err
	}
	s.invalidateSnapshot()
	return nil
}

// ListDocuments returns the documents registered in a collection
func (s *Service) ListDocuments(ctx context.Context, collection string) ([]*models.Document, error) {
	return s.store.ListDocuments(ctx, collection)
}

// DeleteDocument removes one document and its blob. Requires confirm=true.
func (s *Service) DeleteDocument(ctx context.Context, collection, docID string, confirm bool) error {
	if !confirm {
		return fmt.Errorf("document deletion requires confirmation")
	}

	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	docs, err := s.store.ListDocuments(ctx, collection)
	if err != nil {
		return err
	}
	blobRef := ""
	for _, doc := range docs {
		if doc.ID == docID {
			blobRef = doc.BlobRef
			break
		}
	}

	if err := s.store.DeleteDocument(ctx, collection, docID, confirm); err != nil {
		return err
	}
	if blobRef != "" {
		if err := s.blobs.Delete(ctx, blobRef); err != nil {
			s.logger.Warn().Err(err).Str("blob", blobRef).Msg("Failed to delete document blob")
		}
	}
	s.invalidateSnapshot()

	s.logger.Info().
		Str("collection", collection).
		Str("document", docID).
		Msg("Document deleted")

	return nil
}

func (s *Service) collectionLock(name string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}

func (s *Service) invalidateSnapshot() {
	s.snapshotMu.Lock()
	s.snapshot = nil
	s.snapshotMu.Unlock()
}

package collections

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/models"
)

type memStore struct {
	mu    sync.Mutex
	cols  []models.Collection
	docs  map[string][]*models.Document
	lists int
}

func newMemStore() *memStore {
	return &memStore{docs: map[string][]*models.Document{}}
}

func (m *memStore) List(ctx context.Context) ([]models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	out := make([]models.Collection, len(m.cols))
	for i, col := range m.cols {
		col.DocumentCount = len(m.docs[col.Name])
		out[i] = col
	}
	return out, nil
}

func (m *memStore) Create(ctx context.Context, name string, kind models.CollectionKind) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, col := range m.cols {
		if col.Name == name {
			return "", fmt.Errorf("collection %s already exists", name)
		}
	}
	id := fmt.Sprintf("col_%d", len(m.cols)+1)
	m.cols = append(m.cols, models.Collection{ID: id, Name: name, Kind: kind})
	return id, nil
}

func (m *memStore) Get(ctx context.Context, name string) (*models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, col := range m.cols {
		if col.Name == name {
			col.DocumentCount = len(m.docs[name])
			return &col, nil
		}
	}
	return nil, fmt.Errorf("collection %s not found", name)
}

func (m *memStore) Delete(ctx context.Context, name string, confirm bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, col := range m.cols {
		if col.Name == name {
			m.cols = append(m.cols[:i], m.cols[i+1:]...)
			delete(m.docs, name)
			return nil
		}
	}
	return fmt.Errorf("collection %s not found", name)
}

func (m *memStore) AddDocument(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.CollectionName] = append(m.docs[doc.CollectionName], doc)
	return nil
}

func (m *memStore) ListDocuments(ctx context.Context, collection string) ([]*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Document{}, m.docs[collection]...), nil
}

func (m *memStore) DeleteDocument(ctx context.Context, collection, docID string, confirm bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.docs[collection]
	for i, doc := range docs {
		if doc.ID == docID {
			m.docs[collection] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("document %s not found", docID)
}

func (m *memStore) Close() error { return nil }

func (m *memStore) listCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}

type memBlobs struct {
	mu      sync.Mutex
	deleted []string
}

func (m *memBlobs) Save(ctx context.Context, data []byte, name string, mimeType string) (string, error) {
	return "blob-" + name, nil
}

func (m *memBlobs) Load(ctx context.Context, locator string) ([]byte, error) {
	return nil, fmt.Errorf("blob %s not found", locator)
}

func (m *memBlobs) Delete(ctx context.Context, locator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, locator)
	return nil
}

func (m *memBlobs) deletedBlobs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.deleted...)
}

func newTestService() (*Service, *memStore, *memBlobs) {
	store := newMemStore()
	blobs := &memBlobs{}
	return NewService(store, blobs, arbor.NewLogger()), store, blobs
}

func TestCreateValidation(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	_, err := s.Create(ctx, "", models.KindRegulatory)
	assert.Error(t, err)

	_, err = s.Create(ctx, "docs", models.CollectionKind("misc"))
	assert.Error(t, err)

	col, err := s.Create(ctx, "regs", models.KindRegulatory)
	require.NoError(t, err)
	assert.Equal(t, models.KindRegulatory, col.Kind)

	_, err = s.Create(ctx, "regs", models.KindRegulatory)
	assert.ErrorContains(t, err, "already exists")
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	_, err := s.Create(ctx, "regs", models.KindRegulatory)
	require.NoError(t, err)

	assert.Error(t, s.Delete(ctx, "regs", false))

	_, err = s.Get(ctx, "regs")
	assert.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "regs", true))
	_, err = s.Get(ctx, "regs")
	assert.Error(t, err)
}

func TestDeleteCascadesToBlobs(t *testing.T) {
	s, _, blobs := newTestService()
	ctx := context.Background()

	_, err := s.Create(ctx, "regs", models.KindRegulatory)
	require.NoError(t, err)

	require.NoError(t, s.RegisterDocument(ctx, &models.Document{
		ID:             "doc_1",
		CollectionName: "regs",
		DisplayName:    "ccpa.pdf",
		BlobRef:        "blob-ccpa.pdf",
	}))

	require.NoError(t, s.Delete(ctx, "regs", true))
	assert.Equal(t, []string{"blob-ccpa.pdf"}, blobs.deletedBlobs())
}

func TestDeleteDocumentRequiresConfirmation(t *testing.T) {
	s, _, blobs := newTestService()
	ctx := context.Background()

	_, err := s.Create(ctx, "regs", models.KindRegulatory)
	require.NoError(t, err)
	require.NoError(t, s.RegisterDocument(ctx, &models.Document{
		ID:             "doc_1",
		CollectionName: "regs",
		BlobRef:        "blob-ccpa.pdf",
	}))

	assert.Error(t, s.DeleteDocument(ctx, "regs", "doc_1", false))
	assert.Empty(t, blobs.deletedBlobs())

	require.NoError(t, s.DeleteDocument(ctx, "regs", "doc_1", true))
	assert.Equal(t, []string{"blob-ccpa.pdf"}, blobs.deletedBlobs())

	docs, err := s.ListDocuments(ctx, "regs")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSnapshotIsCachedUntilInvalidated(t *testing.T) {
	s, store, _ := newTestService()
	ctx := context.Background()

	first, err := s.Snapshot(ctx)
	require.NoError(t, err)
	listsAfterFirst := store.listCalls()

	// A second read serves the cached snapshot without hitting the store.
	second, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, listsAfterFirst, store.listCalls())

	// Mutations invalidate the cache; the next read rebuilds it.
	_, err = s.Create(ctx, "regs", models.KindRegulatory)
	require.NoError(t, err)

	third, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	require.Len(t, third.Collections, 1)
	assert.Equal(t, "regs", third.Collections[0].Name)
}

func TestRefreshSnapshotReflectsDocumentCounts(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	_, err := s.Create(ctx, "regs", models.KindRegulatory)
	require.NoError(t, err)
	require.NoError(t, s.RegisterDocument(ctx, &models.Document{
		ID:             "doc_1",
		CollectionName: "regs",
	}))

	snapshot, err := s.RefreshSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Collections, 1)
	assert.Equal(t, 1, snapshot.Collections[0].DocumentCount)
}

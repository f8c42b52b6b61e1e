package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/interfaces"
)

// FilesystemStore persists uploaded file bytes under a single directory.
// Locators are relative file names; the directory layout is flat.
type FilesystemStore struct {
	logger arbor.ILogger
	dir    string
}

// Compile-time interface assertion
var _ interfaces.BlobStore = (*FilesystemStore)(nil)

// NewFilesystemStore creates the blob directory if needed
func NewFilesystemStore(dir string, logger arbor.ILogger) (*FilesystemStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("blob directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory %s: %w", dir, err)
	}
	return &FilesystemStore{logger: logger, dir: dir}, nil
}

// Save writes the payload under a unique name derived from the original
// file name
func (s *FilesystemStore) Save(ctx context.Context, data []byte, name string, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("blob payload is empty")
	}

	locator := fmt.Sprintf("%s_%s", uuid.New().String(), sanitizeName(name))
	path := filepath.Join(s.dir, locator)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write blob %s: %w", locator, err)
	}

	s.logger.Debug().
		Str("locator", locator).
		Str("mime_type", mimeType).
		Int("size", len(data)).
		Msg("Blob saved")

	return locator, nil
}

// Load reads a blob back by locator
func (s *FilesystemStore) Load(ctx context.Context, locator string) ([]byte, error) {
	path, err := s.resolve(locator)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", locator, err)
	}
	return data, nil
}

// Delete removes a blob; a missing blob is not an error
func (s *FilesystemStore) Delete(ctx context.Context, locator string) error {
	path, err := s.resolve(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", locator, err)
	}
	return nil
}

// resolve rejects locators that escape the blob directory
func (s *FilesystemStore) resolve(locator string) (string, error) {
	if locator == "" || locator != filepath.Base(locator) {
		return "", fmt.Errorf("invalid blob locator: %q", locator)
	}
	return filepath.Join(s.dir, locator), nil
}

// sanitizeName keeps only filesystem-safe characters of the original name
func sanitizeName(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '.', c == '-', c == '_':
			b.WriteRune(c)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "blob"
	}
	return b.String()
}

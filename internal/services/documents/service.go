package documents

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/common"
	"github.com/ternarybob/regula/internal/interfaces"
	"github.com/ternarybob/regula/internal/models"
	"github.com/ternarybob/regula/internal/services/collections"
)

// Service handles document ingestion: payload validation, blob persistence,
// and registration in the owning collection. Validation happens before any
// state changes; a rejected upload mutates nothing.
type Service struct {
	logger      arbor.ILogger
	collections *collections.Service
	blobs       interfaces.BlobStore
	maxSize     int64
}

// NewService creates the documents service
func NewService(cfg *common.Config, collectionsService *collections.Service, blobs interfaces.BlobStore, logger arbor.ILogger) *Service {
	return &Service{
		logger:      logger,
		collections: collectionsService,
		blobs:       blobs,
		maxSize:     cfg.Upload.MaxSizeBytes,
	}
}

// Upload validates the payload, saves the blob, and registers the document
// in the named collection
func (s *Service) Upload(ctx context.Context, collection string, upload *models.DocumentUpload) (*models.Document, error) {
	if err := s.Validate(upload); err != nil {
		return nil, err
	}

	if _, err := s.collections.Get(ctx, collection); err != nil {
		return nil, fmt.Errorf("collection %s not found: %w", collection, err)
	}

	blobRef, err := s.blobs.Save(ctx, upload.Data, upload.FileName, upload.MimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to save document blob: %w", err)
	}

	now := time.Now()
	doc := &models.Document{
		ID:             common.NewDocumentID(),
		CollectionName: collection,
		DisplayName:    displayName(upload),
		MimeType:       upload.MimeType,
		SizeBytes:      int64(len(upload.Data)),
		BlobRef:        blobRef,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.collections.RegisterDocument(ctx, doc); err != nil {
		// Registration failed; do not leave the blob orphaned.
		if delErr := s.blobs.Delete(ctx, blobRef); delErr != nil {
			s.logger.Warn().Err(delErr).Str("blob", blobRef).Msg("Failed to clean up blob after registration failure")
		}
		return nil, fmt.Errorf("failed to register document: %w", err)
	}

	s.logger.Info().
		Str("collection", collection).
		Str("document", doc.ID).
		Str("name", doc.DisplayName).
		Int64("size", doc.SizeBytes).
		Msg("Document uploaded")

	return doc, nil
}

// Validate checks an upload payload without mutating any state
func (s *Service) Validate(upload *models.DocumentUpload) error {
	if upload == nil {
		return fmt.Errorf("upload payload is required")
	}
	if upload.FileName == "" {
		return fmt.Errorf("upload file name is required")
	}
	if len(upload.Data) == 0 {
		return fmt.Errorf("upload %s is empty", upload.FileName)
	}
	if s.maxSize > 0 && int64(len(upload.Data)) > s.maxSize {
		return fmt.Errorf("upload %s exceeds maximum size of %d bytes", upload.FileName, s.maxSize)
	}

	if upload.MimeType == "" {
		upload.MimeType = InferMimeType(upload.FileName)
	}

	if upload.MimeType == "application/pdf" {
		if err := validatePDF(upload.Data); err != nil {
			return fmt.Errorf("upload %s is not a valid PDF: %w", upload.FileName, err)
		}
	}
	return nil
}

// validatePDF parses the document structure with pdfcpu. Encrypted PDFs
// are rejected because their text cannot ground retrieval answers.
func validatePDF(data []byte) error {
	pdfCtx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return err
	}
	if pdfCtx.Encrypt != nil {
		return fmt.Errorf("encrypted PDFs are not supported")
	}
	return nil
}

func displayName(upload *models.DocumentUpload) string {
	if upload.DisplayName != "" {
		return upload.DisplayName
	}
	return upload.FileName
}

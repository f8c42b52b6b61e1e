package documents

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/ternarybob/regula/internal/models"
)

// mimeByExtension maps upload file extensions to mime types. Unlisted
// extensions fall back to application/octet-stream and are stored but
// never used to ground retrieval answers.
var mimeByExtension = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".html": "text/html",
	".json": "application/json",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".xml":  "application/xml",
	".pdf":  "application/pdf",
}

// InferMimeType maps a file name to a mime type by extension
func InferMimeType(fileName string) string {
	if mime, ok := mimeByExtension[strings.ToLower(filepath.Ext(fileName))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// DecodeBase64Upload builds an upload payload from a base64-encoded body.
// Malformed encoding is rejected before any state is touched.
func DecodeBase64Upload(fileName, displayName, mimeType, encoded string) (*models.DocumentUpload, error) {
	if fileName == "" {
		return nil, fmt.Errorf("file_name is required")
	}
	if encoded == "" {
		return nil, fmt.Errorf("file content is required")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("file content is not valid base64: %w", err)
	}

	return &models.DocumentUpload{
		FileName:    fileName,
		DisplayName: displayName,
		MimeType:    mimeType,
		Data:        data,
	}, nil
}

// ReadMultipartUpload builds an upload payload from a multipart form file
func ReadMultipartUpload(file multipart.File, header *multipart.FileHeader, displayName string) (*models.DocumentUpload, error) {
	if header == nil || header.Filename == "" {
		return nil, fmt.Errorf("multipart file name is required")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read multipart file %s: %w", header.Filename, err)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = InferMimeType(header.Filename)
	}

	return &models.DocumentUpload{
		FileName:    header.Filename,
		DisplayName: displayName,
		MimeType:    mimeType,
		Data:        data,
	}, nil
}

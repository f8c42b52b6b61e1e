package models

import (
	"time"
)

// Document represents a file registered in exactly one collection.
// The binary content lives in blob storage; retrieval indexing is owned
// by the external retrieval service.
type Document struct {
	ID             string    `json:"id"` // doc_{uuid}
	CollectionName string    `json:"collection_name"`
	DisplayName    string    `json:"display_name"` // Used as citation source
	MimeType       string    `json:"mime_type"`
	SizeBytes      int64     `json:"size_bytes"`
	BlobRef        string    `json:"blob_ref"` // Locator returned by the blob store
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DocumentUpload is a decoded upload payload ready for registration
type DocumentUpload struct {
	FileName    string `json:"file_name"`
	DisplayName string `json:"display_name"`
	MimeType    string `json:"mime_type"`
	Data        []byte `json:"-"`
}

package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewCollectionID generates a unique collection ID with the "col_" prefix
// Format: col_<uuid>
func NewCollectionID() string {
	return "col_" + uuid.New().String()
}

// NewRequestID generates a unique assessment request ID with the "req_" prefix
// Format: req_<uuid>
func NewRequestID() string {
	return "req_" + uuid.New().String()
}

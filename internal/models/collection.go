package models

import (
	"fmt"
	"time"
)

// CollectionKind identifies the semantic domain a collection is restricted to
type CollectionKind string

const (
	// KindBusinessProcess holds business processes, data flows, and operational documents
	KindBusinessProcess CollectionKind = "business-process"
	// KindRegulatory holds regulatory texts (CCPA, GDPR, etc.)
	KindRegulatory CollectionKind = "regulatory"
	// KindOntology holds entity type definitions and relationship schemas
	KindOntology CollectionKind = "ontology"
)

// AllCollectionKinds lists every valid collection kind
func AllCollectionKinds() []CollectionKind {
	return []CollectionKind{KindBusinessProcess, KindRegulatory, KindOntology}
}

// ParseCollectionKind validates a kind string
func ParseCollectionKind(s string) (CollectionKind, error) {
	switch CollectionKind(s) {
	case KindBusinessProcess, KindRegulatory, KindOntology:
		return CollectionKind(s), nil
	}
	return "", fmt.Errorf("unknown collection kind: %q (valid: business-process, regulatory, ontology)", s)
}

// Collection represents a named set of documents restricted to one semantic domain.
// Identity is immutable once created.
type Collection struct {
	ID            string         `json:"id"` // col_{uuid}
	Name          string         `json:"name"`
	Kind          CollectionKind `json:"kind"`
	DocumentCount int            `json:"document_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// CollectionSnapshot is a point-in-time view of available collections,
// used by the evidence gate to enumerate alternatives on refusal.
type CollectionSnapshot struct {
	Collections []Collection `json:"collections"`
	RefreshedAt time.Time    `json:"refreshed_at"`
}

// ByKind returns the collections of the given kind
func (s *CollectionSnapshot) ByKind(kind CollectionKind) []Collection {
	var out []Collection
	for _, c := range s.Collections {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Kinds returns the distinct kinds present in the snapshot
func (s *CollectionSnapshot) Kinds() []CollectionKind {
	seen := make(map[CollectionKind]bool)
	var out []CollectionKind
	for _, c := range s.Collections {
		if !seen[c.Kind] {
			seen[c.Kind] = true
			out = append(out, c.Kind)
		}
	}
	return out
}

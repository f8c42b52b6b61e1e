package models

import (
	"sort"
)

// Relationship links an entity to a named target via an ontology-declared
// relation type.
type Relationship struct {
	Type   string `json:"type" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// Entity is a typed instance extracted from business documents. Type and
// every Relationship.Type must be members of the ontology-declared sets at
// extraction time.
type Entity struct {
	Type          string            `json:"type" validate:"required"`
	Name          string            `json:"name" validate:"required"`
	Attributes    map[string]string `json:"attributes"`
	Relationships []Relationship    `json:"relationships"`
}

// Ontology declares which entity types and relationship types are valid
// for extraction, with optional attribute hints per entity type.
type Ontology struct {
	EntityTypes       []EntityTypeDef `json:"entity_types"`
	RelationshipTypes []string        `json:"relationship_types"`
}

// EntityTypeDef declares one extractable entity type
type EntityTypeDef struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes,omitempty"`
}

// DeclaredTypes returns the set of declared entity type names
func (o *Ontology) DeclaredTypes() map[string]bool {
	set := make(map[string]bool, len(o.EntityTypes))
	for _, t := range o.EntityTypes {
		set[t.Name] = true
	}
	return set
}

// DeclaredRelationships returns the set of declared relationship type names
func (o *Ontology) DeclaredRelationships() map[string]bool {
	set := make(map[string]bool, len(o.RelationshipTypes))
	for _, r := range o.RelationshipTypes {
		set[r] = true
	}
	return set
}

// DataGraph is the result of ontology-driven entity extraction.
// Invariants: TypesFound and TypesMissing are disjoint, and their union
// equals the ontology-declared type set.
type DataGraph struct {
	Entities           []Entity `json:"entities"`
	TypesFound         []string `json:"types_found"`
	TypesMissing       []string `json:"types_missing"`
	DocumentsAnalyzed  int      `json:"documents_analyzed"`
	Summary            string   `json:"summary"`
	Gaps               []string `json:"gaps"`
	SuggestedQuestions []string `json:"suggested_questions"`
}

// SortedTypes returns a sorted copy of a type list, for stable output
func SortedTypes(types []string) []string {
	out := make([]string, len(types))
	copy(out, types)
	sort.Strings(out)
	return out
}

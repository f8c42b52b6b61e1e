package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/models"
)

const ontologyYAML = `entity_types:
  - name: Customer
    attributes: [email, region]
  - name: Vendor
    attributes: [contract_id]
relationship_types:
  - owns
  - processes
`

func testOntology() *models.Ontology {
	return &models.Ontology{
		EntityTypes: []models.EntityTypeDef{
			{Name: "Customer", Attributes: []string{"email", "region"}},
			{Name: "Vendor", Attributes: []string{"contract_id"}},
		},
		RelationshipTypes: []string{"owns", "processes"},
	}
}

func businessResult(contents ...string) *models.QueryResult {
	result := &models.QueryResult{
		Query:        "business processes",
		ResultsFound: true,
		Summary:      "Process documentation.",
	}
	for i, content := range contents {
		result.Citations = append(result.Citations, models.Citation{
			Source:  []string{"onboarding.md", "billing.md", "support.md"}[i%3],
			Content: content,
		})
	}
	return result
}

func TestParseOntologyYAML(t *testing.T) {
	result := &models.QueryResult{
		ResultsFound: true,
		Citations:    []models.Citation{{Source: "schema.yaml", Content: ontologyYAML}},
	}

	ont := ParseOntology(result)
	require.NotNil(t, ont)
	require.Len(t, ont.EntityTypes, 2)
	assert.Equal(t, "Customer", ont.EntityTypes[0].Name)
	assert.Equal(t, []string{"email", "region"}, ont.EntityTypes[0].Attributes)
	assert.Equal(t, []string{"owns", "processes"}, ont.RelationshipTypes)
}

func TestParseOntologyProseFallback(t *testing.T) {
	prose := `The schema defines the following entity types:
- Customer (email, region)
- Vendor: contract_id

Relationship types:
- owns
`
	result := &models.QueryResult{
		ResultsFound: true,
		Summary:      prose,
	}

	ont := ParseOntology(result)
	require.NotNil(t, ont)
	require.Len(t, ont.EntityTypes, 2)
	assert.Equal(t, "Customer", ont.EntityTypes[0].Name)
	assert.Equal(t, []string{"email", "region"}, ont.EntityTypes[0].Attributes)
	assert.Equal(t, "Vendor", ont.EntityTypes[1].Name)
	assert.Equal(t, []string{"owns"}, ont.RelationshipTypes)
}

func TestParseOntologyNothingRecoverable(t *testing.T) {
	tests := []struct {
		name   string
		result *models.QueryResult
	}{
		{"nil result", nil},
		{"no results", &models.QueryResult{ResultsFound: false}},
		{"unrelated prose", &models.QueryResult{
			ResultsFound: true,
			Summary:      "This document describes quarterly revenue targets.",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ParseOntology(tt.result))
		})
	}
}

func TestExtractDeclaredTypesOnly(t *testing.T) {
	e := New(arbor.NewLogger())

	graph := e.Extract(testOntology(), businessResult(
		`- Customer: Acme Corp (email: ops@acme.example, region: EU)
- Employee: Jane Doe (email: jane@acme.example)
- Vendor: CloudHost Inc (contract_id: CH-2041)`,
	))

	require.Len(t, graph.Entities, 2)
	assert.Equal(t, "Customer", graph.Entities[0].Type)
	assert.Equal(t, "Acme Corp", graph.Entities[0].Name)
	assert.Equal(t, "Vendor", graph.Entities[1].Type)
	// Employee is not declared, so the mention is dropped entirely.
	for _, entity := range graph.Entities {
		assert.NotEqual(t, "Employee", entity.Type)
	}
}

func TestExtractAttributeFiltering(t *testing.T) {
	e := New(arbor.NewLogger())

	graph := e.Extract(testOntology(), businessResult(
		`Customer: Acme Corp (email: ops@acme.example, favorite_color: blue)`,
	))

	require.Len(t, graph.Entities, 1)
	attrs := graph.Entities[0].Attributes
	assert.Equal(t, "ops@acme.example", attrs["email"])
	// Undeclared attributes are dropped.
	assert.NotContains(t, attrs, "favorite_color")
}

func TestExtractRelationshipClassification(t *testing.T) {
	e := New(arbor.NewLogger())

	graph := e.Extract(testOntology(), businessResult(
		`Customer: Acme Corp (region: EU, owns: Billing Account)`,
	))

	require.Len(t, graph.Entities, 1)
	entity := graph.Entities[0]
	assert.Equal(t, "EU", entity.Attributes["region"])
	require.Len(t, entity.Relationships, 1)
	assert.Equal(t, "owns", entity.Relationships[0].Type)
	assert.Equal(t, "Billing Account", entity.Relationships[0].Target)
}

func TestExtractDeduplicatesAcrossDocuments(t *testing.T) {
	e := New(arbor.NewLogger())

	graph := e.Extract(testOntology(), businessResult(
		`Customer: Acme Corp (email: ops@acme.example)`,
		`Customer: Acme Corp (region: EU, owns: Billing Account)`,
	))

	require.Len(t, graph.Entities, 1)
	entity := graph.Entities[0]
	// Merged attributes and relationships from both mentions.
	assert.Equal(t, "ops@acme.example", entity.Attributes["email"])
	assert.Equal(t, "EU", entity.Attributes["region"])
	require.Len(t, entity.Relationships, 1)
	assert.Equal(t, 2, graph.DocumentsAnalyzed)
}

func TestExtractTypePartition(t *testing.T) {
	e := New(arbor.NewLogger())

	graph := e.Extract(testOntology(), businessResult(
		`Customer: Acme Corp (region: EU)`,
	))

	assert.Equal(t, []string{"Customer"}, graph.TypesFound)
	assert.Equal(t, []string{"Vendor"}, graph.TypesMissing)

	// Every declared type lands in exactly one of the two lists.
	seen := map[string]bool{}
	for _, name := range append(graph.TypesFound, graph.TypesMissing...) {
		assert.False(t, seen[name])
		seen[name] = true
	}
	assert.Len(t, seen, 2)

	// Each missing type produces a gap and a follow-up question.
	require.Len(t, graph.Gaps, 1)
	assert.Contains(t, graph.Gaps[0], "Vendor")
	require.Len(t, graph.SuggestedQuestions, 1)
	assert.Contains(t, graph.SuggestedQuestions[0], "Vendor")
}

func TestExtractWithoutOntology(t *testing.T) {
	e := New(arbor.NewLogger())

	graph := e.Extract(nil, businessResult(`Customer: Acme Corp`))

	assert.Empty(t, graph.Entities)
	assert.Contains(t, graph.Summary, "No ontology schema is available")
	require.Len(t, graph.SuggestedQuestions, 1)
	assert.Contains(t, graph.SuggestedQuestions[0], "upload an ontology schema")
}

func TestExtractNoBusinessEvidence(t *testing.T) {
	e := New(arbor.NewLogger())

	graph := e.Extract(testOntology(), nil)

	assert.Empty(t, graph.Entities)
	assert.Empty(t, graph.TypesFound)
	assert.ElementsMatch(t, []string{"Customer", "Vendor"}, graph.TypesMissing)
	assert.Equal(t, 0, graph.DocumentsAnalyzed)
}

package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/models"
)

func newTestPlanner() *Planner {
	return New(arbor.NewLogger())
}

var allKinds = []models.CollectionKind{
	models.KindBusinessProcess,
	models.KindRegulatory,
	models.KindOntology,
}

func TestDetectRegulation(t *testing.T) {
	tests := []struct {
		name     string
		request  string
		expected string
	}{
		{"lexicon entry", "Analyze CCPA compliance risks", "CCPA"},
		{"lexicon lowercase", "are we gdpr compliant?", "GDPR"},
		{"multiword lexicon", "audit against PCI DSS requirements", "PCI DSS"},
		{"unknown acronym", "Check our processes against the XYZPA rules", "XYZPA"},
		{"stopword acronym ignored", "Show me ALL the API documentation", ""},
		{"no regulation", "What data do we collect about customers?", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectRegulation(tt.request))
		})
	}
}

func TestDetectRegulationFirstMentionWins(t *testing.T) {
	assert.Equal(t, "GDPR", DetectRegulation("Compare GDPR and CCPA obligations"))
	assert.Equal(t, "CCPA", DetectRegulation("Compare CCPA and GDPR obligations"))
}

func TestPlanRiskAnalysis(t *testing.T) {
	p := newTestPlanner()

	plan := p.Plan("Analyze CCPA compliance risks in our customer onboarding", allKinds)

	require.Equal(t, IntentRiskAnalysis, plan.Intent)
	assert.Equal(t, "CCPA", plan.RegulationName)
	require.Len(t, plan.Calls, 2)

	// Regulatory evidence is fetched first; the business call waits on it.
	assert.Equal(t, models.KindRegulatory, plan.Calls[0].CollectionKind)
	assert.Equal(t, 1, plan.Calls[0].Stage)
	assert.Equal(t, models.KindBusinessProcess, plan.Calls[1].CollectionKind)
	assert.Equal(t, 2, plan.Calls[1].Stage)
}

func TestPlanDataGraph(t *testing.T) {
	p := newTestPlanner()

	plan := p.Plan("Build a data graph of our entities and relationships", allKinds)

	require.Equal(t, IntentDataGraph, plan.Intent)
	require.Len(t, plan.Calls, 2)

	// Schema and instance discovery are independent and share a stage.
	kinds := []models.CollectionKind{plan.Calls[0].CollectionKind, plan.Calls[1].CollectionKind}
	assert.Contains(t, kinds, models.KindOntology)
	assert.Contains(t, kinds, models.KindBusinessProcess)
	assert.Equal(t, plan.Calls[0].Stage, plan.Calls[1].Stage)
}

func TestPlanCombined(t *testing.T) {
	p := newTestPlanner()

	plan := p.Plan("Map our data entities and assess GDPR compliance risks", allKinds)

	require.Equal(t, IntentCombined, plan.Intent)
	assert.Equal(t, "GDPR", plan.RegulationName)
	require.Len(t, plan.Calls, 3)
}

func TestPlanDocumentQuery(t *testing.T) {
	p := newTestPlanner()

	tests := []struct {
		name     string
		request  string
		expected models.CollectionKind
	}{
		{"plain question defaults to business", "What happens during customer onboarding?", models.KindBusinessProcess},
		{"regulatory keywords route to regulatory", "What does the law say about consent requirements?", models.KindRegulatory},
		{"ontology keywords route to ontology", "Show me the ontology taxonomy definitions", models.KindOntology},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := p.Plan(tt.request, allKinds)
			require.Equal(t, IntentDocumentQuery, plan.Intent)
			require.Len(t, plan.Calls, 1)
			assert.Equal(t, tt.expected, plan.Calls[0].CollectionKind)
		})
	}
}

func TestPlanDocumentQueryWithNamedRegulation(t *testing.T) {
	p := newTestPlanner()

	// Naming a regulation always yields a regulatory call with the
	// regulation as sub-query, even without risk wording.
	plan := p.Plan("Tell me about GDPR", allKinds)

	require.Equal(t, IntentDocumentQuery, plan.Intent)
	assert.Equal(t, "GDPR", plan.RegulationName)
	require.Len(t, plan.Calls, 2)
	assert.Equal(t, models.KindRegulatory, plan.Calls[0].CollectionKind)
	assert.Equal(t, "GDPR", plan.Calls[0].SubQuery)
	assert.Equal(t, models.KindBusinessProcess, plan.Calls[1].CollectionKind)
}

func TestPlanDocumentQueryRegulationCallNotDuplicated(t *testing.T) {
	p := newTestPlanner()

	// When keyword routing already picks the regulatory collection, the
	// plan carries a single regulatory call.
	plan := p.Plan("What consent requirements does the GDPR law impose?", allKinds)

	require.Equal(t, IntentDocumentQuery, plan.Intent)
	require.Len(t, plan.Calls, 1)
	assert.Equal(t, models.KindRegulatory, plan.Calls[0].CollectionKind)
	assert.Equal(t, "GDPR", plan.Calls[0].SubQuery)
}

func TestPlanDataGraphWithNamedRegulation(t *testing.T) {
	p := newTestPlanner()

	plan := p.Plan("Map the entities in our GDPR processing", allKinds)

	require.Equal(t, IntentDataGraph, plan.Intent)
	require.Len(t, plan.Calls, 3)
	assert.Equal(t, models.KindRegulatory, plan.Calls[0].CollectionKind)
	assert.Equal(t, "GDPR", plan.Calls[0].SubQuery)
	assert.Equal(t, 1, plan.Calls[0].Stage)
}

func TestPlanDocumentQueryFallsBackWhenKindUnavailable(t *testing.T) {
	p := newTestPlanner()

	plan := p.Plan("Show me the ontology taxonomy definitions",
		[]models.CollectionKind{models.KindBusinessProcess})

	require.Len(t, plan.Calls, 1)
	assert.Equal(t, models.KindBusinessProcess, plan.Calls[0].CollectionKind)
}

func TestRiskWithoutRegulationIsDocumentQuery(t *testing.T) {
	p := newTestPlanner()

	// Risk wording without a named regulation cannot be gated, so it is
	// treated as plain retrieval.
	plan := p.Plan("What are the risks in our deployment process?", allKinds)

	assert.Equal(t, IntentDocumentQuery, plan.Intent)
	assert.Empty(t, plan.RegulationName)
}

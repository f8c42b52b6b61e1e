package gate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/models"
)

func newTestGate() *Gate {
	return New(arbor.NewLogger())
}

func TestCheckRefusesWhenNoResults(t *testing.T) {
	g := newTestGate()

	tests := []struct {
		name   string
		result *models.QueryResult
	}{
		{"nil result", nil},
		{"empty result", models.NoResults("CCPA", models.KindRegulatory)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := g.Check("CCPA", tt.result, []string{"GDPR", "HIPAA"})

			assert.False(t, decision.Proceed)
			assert.Empty(t, decision.RegulationText)
			assert.Contains(t, decision.Reason, "CCPA")
			assert.Contains(t, decision.Reason, "must first be uploaded")
			assert.Equal(t, []string{"GDPR", "HIPAA"}, decision.AvailableRegulations)
		})
	}
}

func TestCheckRefusesUnrelatedContent(t *testing.T) {
	g := newTestGate()

	// Retrieval found something, but nothing tied to the asked-for
	// regulation. That must refuse exactly like an empty result.
	result := &models.QueryResult{
		Query:        "CCPA",
		ResultsFound: true,
		Summary:      "General privacy principles for handling personal information.",
		Citations: []models.Citation{
			{Source: "privacy-handbook.pdf", Content: "Personal information should be handled with care."},
		},
	}

	decision := g.Check("CCPA", result, nil)

	assert.False(t, decision.Proceed)
	assert.Contains(t, decision.Reason, "No regulations are currently available")
}

func TestCheckProceedsWithEvidence(t *testing.T) {
	g := newTestGate()

	result := &models.QueryResult{
		Query:        "CCPA",
		ResultsFound: true,
		Summary:      "The CCPA grants consumers rights over their personal information.",
		Citations: []models.Citation{
			{Source: "ccpa-full-text.pdf", Content: "§ 1798.100 Consumers have the right to know what personal information is collected."},
		},
	}

	decision := g.Check("CCPA", result, []string{"CCPA"})

	require.True(t, decision.Proceed)
	assert.Empty(t, decision.Reason)
	// All retrieved evidence is carried into the analysis text.
	assert.Contains(t, decision.RegulationText, "right to know")
	assert.Contains(t, decision.RegulationText, "grants consumers rights")
}

func TestRegulationTextLeadsWithCitations(t *testing.T) {
	g := newTestGate()

	result := &models.QueryResult{
		Query:        "CCPA",
		ResultsFound: true,
		Summary:      "The CCPA requires consent before personal information is sold.",
		Citations: []models.Citation{
			{Source: "CCPA.pdf", Content: "§ 1798.120 A business shall not sell personal information without the consumer's consent."},
		},
	}

	decision := g.Check("CCPA", result, nil)
	require.True(t, decision.Proceed)

	// Citation excerpts carry the section markers and must come before the
	// summary, which restates obligations without markers.
	citationAt := strings.Index(decision.RegulationText, "§ 1798.120")
	summaryAt := strings.Index(decision.RegulationText, "The CCPA requires consent")
	require.GreaterOrEqual(t, citationAt, 0)
	require.GreaterOrEqual(t, summaryAt, 0)
	assert.Less(t, citationAt, summaryAt)
}

func TestCheckMatchesCitationSourceCaseInsensitively(t *testing.T) {
	g := newTestGate()

	result := &models.QueryResult{
		Query:        "GDPR",
		ResultsFound: true,
		Summary:      "Retrieved regulation text.",
		Citations: []models.Citation{
			{Source: "gdpr-articles.txt", Content: "Article 5 sets out principles for processing."},
		},
	}

	decision := g.Check("GDPR", result, nil)
	assert.True(t, decision.Proceed)
}

func TestRefusalListsAlternativesInReason(t *testing.T) {
	g := newTestGate()

	decision := g.Check("LGPD", nil, []string{"CCPA", "GDPR"})

	assert.Contains(t, decision.Reason, "Available regulations: CCPA, GDPR.")
}

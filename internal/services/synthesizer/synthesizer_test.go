package synthesizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/models"
)

func newTestSynthesizer(citationMaxRunes int) *Synthesizer {
	return New(arbor.NewLogger(), citationMaxRunes)
}

func TestSynthesizeCitationVerbatimUnderBound(t *testing.T) {
	s := newTestSynthesizer(100)

	snippet := "Consumers have the right to know what personal information is collected."
	result := s.Synthesize(&models.ComponentOutputs{
		QueryResults: []*models.QueryResult{{
			ResultsFound: true,
			Summary:      "Found one relevant passage.",
			Citations:    []models.Citation{{Source: "ccpa.pdf", Content: snippet}},
		}},
	})

	assert.Contains(t, result.Result, snippet)
	assert.NotContains(t, result.Result, truncationMarker)
}

func TestSynthesizeCitationTruncatedAtRuneBound(t *testing.T) {
	s := newTestSynthesizer(10)

	// Multibyte runes count as one; the cut lands on a rune boundary.
	snippet := "données personnelles traitées par le responsable"
	result := s.Synthesize(&models.ComponentOutputs{
		QueryResults: []*models.QueryResult{{
			ResultsFound: true,
			Summary:      "Found one relevant passage.",
			Citations:    []models.Citation{{Source: "rgpd.txt", Content: snippet}},
		}},
	})

	expected := string([]rune(snippet)[:10]) + truncationMarker
	assert.Contains(t, result.Result, expected)
	assert.NotContains(t, result.Result, snippet)
}

func TestSynthesizeDeduplicatesQuestionsFirstSeen(t *testing.T) {
	s := newTestSynthesizer(1200)

	shared := "How does your organization currently handle retention limits?"
	result := s.Synthesize(&models.ComponentOutputs{
		Risk: &models.RiskAnalysis{
			RegulationName:      "CCPA",
			RegulationAvailable: true,
			ExecutiveSummary:    "One gap identified.",
			SuggestedQuestions:  []string{shared, "Who approves new vendors?"},
		},
		Graph: &models.DataGraph{
			Summary:            "No entities found.",
			SuggestedQuestions: []string{shared, "Can you provide vendor documentation?"},
		},
	})

	require.Equal(t, []string{
		shared,
		"Who approves new vendors?",
		"Can you provide vendor documentation?",
	}, result.SuggestedQuestions)
}

func TestSynthesizeRefusalRendering(t *testing.T) {
	s := newTestSynthesizer(1200)

	result := s.Synthesize(&models.ComponentOutputs{
		Gate: &models.GateOutcome{
			RegulationName:       "LGPD",
			Proceed:              false,
			Reason:               "The LGPD regulation text must first be uploaded.",
			AvailableRegulations: []string{"CCPA", "GDPR"},
		},
		Risk: &models.RiskAnalysis{
			RegulationName:      "LGPD",
			RegulationAvailable: false,
			ExecutiveSummary:    "The LGPD regulation text must first be uploaded.",
		},
	})

	assert.Contains(t, result.Result, "## LGPD Risk Analysis")
	assert.Contains(t, result.Result, "must first be uploaded")
	assert.Contains(t, result.Result, "- CCPA\n- GDPR")
	// A refused analysis never renders findings or a score.
	assert.NotContains(t, result.Result, "Compliance score")
}

func TestSynthesizeRiskRendering(t *testing.T) {
	s := newTestSynthesizer(1200)
	score := 74

	result := s.Synthesize(&models.ComponentOutputs{
		Risk: &models.RiskAnalysis{
			RegulationName:      "CCPA",
			RegulationAvailable: true,
			OverallSeverity:     models.SeverityHigh,
			ComplianceScore:     &score,
			ExecutiveSummary:    "Two gaps identified.",
			CriticalRisks: []models.RiskFinding{{
				Severity:          models.SeverityHigh,
				Title:             "Consent management",
				RegulationSection: "§ 1798.120",
				CurrentState:      "Consent is not collected.",
				Requirement:       "Consent must be recorded and revocable.",
				RecommendedAction: "Implement consent capture.",
			}},
			SectionsAnalyzed: []string{"§ 1798.120"},
			RemediationRoadmap: models.RemediationRoadmap{
				Immediate: []string{"Implement consent capture."},
			},
		},
	})

	assert.Contains(t, result.Result, "## CCPA Compliance Risk Analysis")
	assert.Contains(t, result.Result, "**Compliance score:** 74/100")
	assert.Contains(t, result.Result, "**Overall severity:** High")
	assert.Contains(t, result.Result, "#### Consent management (§ 1798.120)")
	assert.Contains(t, result.Result, "### Remediation Roadmap")
	assert.Contains(t, result.Result, "Sections analyzed: § 1798.120")
}

func TestSynthesizeDropsMalformedFindings(t *testing.T) {
	s := newTestSynthesizer(1200)

	result := s.Synthesize(&models.ComponentOutputs{
		Risk: &models.RiskAnalysis{
			RegulationName:      "CCPA",
			RegulationAvailable: true,
			ExecutiveSummary:    "One malformed finding.",
			MediumRisks: []models.RiskFinding{{
				Severity: models.SeverityMedium,
				Title:    "Orphaned finding",
				// Missing requirement, state, and action fail validation.
			}},
		},
	})

	assert.NotContains(t, result.Result, "Orphaned finding")
}

func TestSynthesizeGraphRendering(t *testing.T) {
	s := newTestSynthesizer(1200)

	result := s.Synthesize(&models.ComponentOutputs{
		Graph: &models.DataGraph{
			Summary: "Extracted 1 entities covering 1 of 2 declared entity types from 1 documents.",
			Entities: []models.Entity{{
				Type:       "Customer",
				Name:       "Acme Corp",
				Attributes: map[string]string{"region": "EU", "email": "ops@acme.example"},
				Relationships: []models.Relationship{
					{Type: "owns", Target: "Billing Account"},
				},
			}},
			TypesFound:   []string{"Customer"},
			TypesMissing: []string{"Vendor"},
			Gaps:         []string{"No Vendor instances were found in the analyzed documents."},
		},
	})

	assert.Contains(t, result.Result, "## Data Graph")
	// Attribute pairs render in sorted key order.
	assert.Contains(t, result.Result, "**Acme Corp** (Customer) — email: ops@acme.example, region: EU")
	assert.Contains(t, result.Result, "  - owns Billing Account")
	assert.Contains(t, result.Result, "Entity types found: Customer")
	assert.Contains(t, result.Result, "Entity types with no instances: Vendor")
}

func TestSynthesizeEmptyOutputs(t *testing.T) {
	s := newTestSynthesizer(1200)

	result := s.Synthesize(&models.ComponentOutputs{})

	assert.Equal(t, "No content could be produced for this request.\n", result.Result)
	assert.Empty(t, result.SuggestedQuestions)
}

func TestSynthesizeUploadNoteLeadsResult(t *testing.T) {
	s := newTestSynthesizer(1200)

	result := s.Synthesize(&models.ComponentOutputs{
		UploadNote: "Uploaded ccpa.pdf into the regulatory collection.",
		QueryResults: []*models.QueryResult{{
			ResultsFound: true,
			Summary:      "Found one relevant passage.",
		}},
	})

	assert.True(t, strings.HasPrefix(result.Result, "Uploaded ccpa.pdf"))
}

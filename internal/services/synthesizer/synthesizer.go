package synthesizer

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/regula/internal/models"
)

// truncationMarker is appended whenever a citation snippet exceeds the
// configured rune bound. Up to the bound the snippet is carried verbatim.
const truncationMarker = " [... truncated]"

// Synthesizer assembles component outputs into the single markdown result
// returned to the caller. It reports what upstream components produced and
// never adds findings or citations of its own.
type Synthesizer struct {
	logger           arbor.ILogger
	validate         *validator.Validate
	citationMaxRunes int
}

// New creates a response synthesizer. citationMaxRunes bounds how much of
// each citation snippet is rendered.
func New(logger arbor.ILogger, citationMaxRunes int) *Synthesizer {
	return &Synthesizer{
		logger:           logger,
		validate:         validator.New(),
		citationMaxRunes: citationMaxRunes,
	}
}

// Synthesize renders the assessment result. Suggested questions from every
// component are merged in first-seen order with exact-match deduplication.
func (s *Synthesizer) Synthesize(outputs *models.ComponentOutputs) *models.AssessmentResult {
	var b strings.Builder
	var questions []string
	seen := map[string]bool{}

	collect := func(qs []string) {
		for _, q := range qs {
			if q == "" || seen[q] {
				continue
			}
			seen[q] = true
			questions = append(questions, q)
		}
	}

	if outputs.UploadNote != "" {
		fmt.Fprintf(&b, "%s\n\n", outputs.UploadNote)
	}

	if outputs.Gate != nil && !outputs.Gate.Proceed {
		s.renderRefusal(&b, outputs.Gate)
	}

	if outputs.Risk != nil && outputs.Risk.RegulationAvailable {
		s.renderRisk(&b, outputs.Risk)
		collect(outputs.Risk.SuggestedQuestions)
	}

	if outputs.Graph != nil {
		s.renderGraph(&b, outputs.Graph)
		collect(outputs.Graph.SuggestedQuestions)
	}

	for _, result := range outputs.QueryResults {
		if result == nil {
			continue
		}
		s.renderQueryResult(&b, result)
		collect(result.SuggestedQuestions)
	}

	if b.Len() == 0 {
		b.WriteString("No content could be produced for this request.\n")
	}

	result := &models.AssessmentResult{
		Result:             strings.TrimRight(b.String(), "\n") + "\n",
		SuggestedQuestions: questions,
	}

	if err := s.validate.Struct(result); err != nil {
		s.logger.Warn().Err(err).Msg("Synthesized result failed validation")
	}

	return result
}

func (s *Synthesizer) renderRefusal(b *strings.Builder, gate *models.GateOutcome) {
	fmt.Fprintf(b, "## %s Risk Analysis\n\n", gate.RegulationName)
	fmt.Fprintf(b, "%s\n\n", gate.Reason)
	if len(gate.AvailableRegulations) > 0 {
		b.WriteString("Regulations currently available for analysis:\n\n")
		for _, name := range gate.AvailableRegulations {
			fmt.Fprintf(b, "- %s\n", name)
		}
		b.WriteString("\n")
	}
}

func (s *Synthesizer) renderRisk(b *strings.Builder, risk *models.RiskAnalysis) {
	fmt.Fprintf(b, "## %s Compliance Risk Analysis\n\n", risk.RegulationName)
	fmt.Fprintf(b, "%s\n\n", risk.ExecutiveSummary)

	if risk.ComplianceScore != nil {
		fmt.Fprintf(b, "**Compliance score:** %d/100\n\n", *risk.ComplianceScore)
	}
	if risk.OverallSeverity != "" {
		fmt.Fprintf(b, "**Overall severity:** %s\n\n", risk.OverallSeverity)
	}

	s.renderFindings(b, "Critical Risks", risk.CriticalRisks)
	s.renderFindings(b, "Medium Risks", risk.MediumRisks)
	s.renderFindings(b, "Low Risks", risk.LowRisks)

	if len(risk.SectionsAnalyzed) > 0 {
		fmt.Fprintf(b, "Sections analyzed: %s\n\n", strings.Join(risk.SectionsAnalyzed, ", "))
	}

	s.renderRoadmap(b, risk.RemediationRoadmap)

	if len(risk.InformationGaps) > 0 {
		b.WriteString("### Information Gaps\n\n")
		for _, gap := range risk.InformationGaps {
			fmt.Fprintf(b, "- %s\n", gap)
		}
		b.WriteString("\n")
	}
}

func (s *Synthesizer) renderFindings(b *strings.Builder, heading string, findings []models.RiskFinding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", heading)
	for _, finding := range findings {
		if err := s.validate.Struct(finding); err != nil {
			s.logger.Warn().Err(err).Str("title", finding.Title).Msg("Dropping malformed risk finding")
			continue
		}
		fmt.Fprintf(b, "#### %s", finding.Title)
		if finding.RegulationSection != "" {
			fmt.Fprintf(b, " (%s)", finding.RegulationSection)
		}
		b.WriteString("\n\n")
		fmt.Fprintf(b, "- **Severity:** %s\n", finding.Severity)
		fmt.Fprintf(b, "- **Requirement:** %s\n", finding.Requirement)
		fmt.Fprintf(b, "- **Current state:** %s\n", finding.CurrentState)
		fmt.Fprintf(b, "- **Recommended action:** %s\n", finding.RecommendedAction)
		if finding.RelatedActivity != "" {
			fmt.Fprintf(b, "- **Related activity:** %s\n", finding.RelatedActivity)
		}
		b.WriteString("\n")
	}
}

func (s *Synthesizer) renderRoadmap(b *strings.Builder, roadmap models.RemediationRoadmap) {
	if len(roadmap.Immediate)+len(roadmap.ShortTerm)+len(roadmap.LongTerm) == 0 {
		return
	}
	b.WriteString("### Remediation Roadmap\n\n")
	writeBucket := func(label string, actions []string) {
		if len(actions) == 0 {
			return
		}
		fmt.Fprintf(b, "**%s:**\n\n", label)
		for _, action := range actions {
			fmt.Fprintf(b, "- %s\n", action)
		}
		b.WriteString("\n")
	}
	writeBucket("Immediate", roadmap.Immediate)
	writeBucket("Short term", roadmap.ShortTerm)
	writeBucket("Long term", roadmap.LongTerm)
}

func (s *Synthesizer) renderGraph(b *strings.Builder, graph *models.DataGraph) {
	b.WriteString("## Data Graph\n\n")
	fmt.Fprintf(b, "%s\n\n", graph.Summary)

	for _, entity := range graph.Entities {
		fmt.Fprintf(b, "- **%s** (%s)", entity.Name, entity.Type)
		if len(entity.Attributes) > 0 {
			var pairs []string
			for _, key := range models.SortedTypes(attributeKeys(entity.Attributes)) {
				pairs = append(pairs, fmt.Sprintf("%s: %s", key, entity.Attributes[key]))
			}
			fmt.Fprintf(b, " — %s", strings.Join(pairs, ", "))
		}
		b.WriteString("\n")
		for _, rel := range entity.Relationships {
			fmt.Fprintf(b, "  - %s %s\n", rel.Type, rel.Target)
		}
	}
	if len(graph.Entities) > 0 {
		b.WriteString("\n")
	}

	if len(graph.TypesFound) > 0 {
		fmt.Fprintf(b, "Entity types found: %s\n\n", strings.Join(graph.TypesFound, ", "))
	}
	if len(graph.TypesMissing) > 0 {
		fmt.Fprintf(b, "Entity types with no instances: %s\n\n", strings.Join(graph.TypesMissing, ", "))
	}
	if len(graph.Gaps) > 0 {
		b.WriteString("### Gaps\n\n")
		for _, gap := range graph.Gaps {
			fmt.Fprintf(b, "- %s\n", gap)
		}
		b.WriteString("\n")
	}
}

func (s *Synthesizer) renderQueryResult(b *strings.Builder, result *models.QueryResult) {
	b.WriteString("## Document Search\n\n")
	fmt.Fprintf(b, "%s\n\n", result.Summary)

	if !result.ResultsFound {
		return
	}

	if len(result.KeyFindings) > 0 {
		b.WriteString("### Key Findings\n\n")
		for _, finding := range result.KeyFindings {
			fmt.Fprintf(b, "- %s\n", finding)
		}
		b.WriteString("\n")
	}

	if len(result.Citations) > 0 {
		b.WriteString("### Citations\n\n")
		for _, citation := range result.Citations {
			if err := s.validate.Struct(citation); err != nil {
				s.logger.Warn().Err(err).Msg("Dropping malformed citation")
				continue
			}
			fmt.Fprintf(b, "> %s\n>\n> — %s\n\n", s.boundCitation(citation.Content), citation.Source)
		}
	}

	if len(result.RelevantDocuments) > 0 {
		fmt.Fprintf(b, "Relevant documents: %s\n\n", strings.Join(result.RelevantDocuments, ", "))
	}
}

// boundCitation returns the snippet verbatim up to the configured rune
// bound. Longer snippets are cut at the bound and marked, never reworded.
func (s *Synthesizer) boundCitation(content string) string {
	runes := []rune(content)
	if len(runes) <= s.citationMaxRunes {
		return content
	}
	return string(runes[:s.citationMaxRunes]) + truncationMarker
}

func attributeKeys(attrs map[string]string) []string {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	return keys
}

package risk

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/regula/internal/models"
)

// provision is one regulatory obligation the comparator can recognize.
// A provision is analyzed only when its markers appear in the supplied
// regulation text; obligations the retrieved text does not contain are
// never assumed.
type provision struct {
	name              string
	requirement       string
	regulationMarkers []string
	metMarkers        []string
	gapMarkers        []string
	severityIfGap     models.Severity
	action            string
}

var provisions = []provision{
	{
		name:              "Legal basis for processing",
		requirement:       "Each processing activity must rest on a documented legal basis.",
		regulationMarkers: []string{"legal basis", "lawful basis", "lawfulness of processing"},
		metMarkers:        []string{"legal basis", "lawful basis", "legitimate interest assessment"},
		gapMarkers:        []string{"no legal basis", "without a legal basis", "basis is undocumented"},
		severityIfGap:     models.SeverityHigh,
		action:            "Document a legal basis for every processing activity.",
	},
	{
		name:              "Purpose limitation",
		requirement:       "Personal data must be collected for specified purposes and not reused incompatibly.",
		regulationMarkers: []string{"purpose limitation", "specified purpose", "compatible purpose"},
		metMarkers:        []string{"purpose register", "documented purpose", "purposes are specified"},
		gapMarkers:        []string{"repurpose", "secondary use without", "purposes are not documented"},
		severityIfGap:     models.SeverityMedium,
		action:            "Record the purpose of each collection and review downstream uses against it.",
	},
	{
		name:              "Data minimization",
		requirement:       "Only data adequate and necessary for the stated purpose may be collected.",
		regulationMarkers: []string{"data minimization", "data minimisation", "adequate, relevant and limited"},
		metMarkers:        []string{"minimization review", "only collects necessary", "limited to what is necessary"},
		gapMarkers:        []string{"collects all available", "collect everything", "more data than necessary"},
		severityIfGap:     models.SeverityMedium,
		action:            "Review collected fields per activity and drop those without a documented need.",
	},
	{
		name:              "Consent management",
		requirement:       "Where consent is the basis, it must be freely given, recorded, and revocable.",
		regulationMarkers: []string{"consent"},
		metMarkers:        []string{"consent is recorded", "consent records", "opt-in", "consent mechanism", "withdraw consent"},
		gapMarkers:        []string{"no consent", "without consent", "consent is not", "pre-checked"},
		severityIfGap:     models.SeverityHigh,
		action:            "Implement consent capture with revocation and keep auditable records.",
	},
	{
		name:              "Transparency and notice",
		requirement:       "Individuals must be informed about collection, use, and their rights.",
		regulationMarkers: []string{"transparency", "privacy notice", "right to know", "inform the data subject"},
		metMarkers:        []string{"privacy notice", "privacy policy", "notice at collection"},
		gapMarkers:        []string{"no privacy notice", "notice is missing", "not informed"},
		severityIfGap:     models.SeverityMedium,
		action:            "Publish a notice covering collection purposes, sharing, and individual rights.",
	},
	{
		name:              "Security safeguards",
		requirement:       "Appropriate technical and organizational measures must protect personal data.",
		regulationMarkers: []string{"security", "technical and organizational measures", "safeguards"},
		metMarkers:        []string{"encrypt", "access control", "security controls", "least privilege"},
		gapMarkers:        []string{"unencrypted", "not encrypted", "no access control", "plaintext", "shared credentials"},
		severityIfGap:     models.SeverityHigh,
		action:            "Apply encryption and access controls to stores holding personal data.",
	},
	{
		name:              "Retention limits",
		requirement:       "Personal data must not be kept longer than the purpose requires.",
		regulationMarkers: []string{"retention", "storage limitation", "kept for no longer"},
		metMarkers:        []string{"retention schedule", "retention policy", "deleted after", "purged after"},
		gapMarkers:        []string{"indefinitely", "never deleted", "no retention"},
		severityIfGap:     models.SeverityMedium,
		action:            "Define retention periods per data category and automate deletion.",
	},
	{
		name:              "Third-party sharing",
		requirement:       "Disclosures to processors and other parties must be governed by contract and disclosed.",
		regulationMarkers: []string{"third party", "third-party", "processor", "service provider", "sell"},
		metMarkers:        []string{"data processing agreement", "processing agreement", "vendor contract", "dpa in place"},
		gapMarkers:        []string{"no agreement", "without a contract", "shared without", "sold without"},
		severityIfGap:     models.SeverityHigh,
		action:            "Put data processing agreements in place with every recipient of personal data.",
	},
}

// sectionMarker matches citations of regulation structure: "§ 1798.100",
// "Section 12(b)", "Article 5"
var sectionMarker = regexp.MustCompile(`(?:§\s*[\d.]+(?:\([a-z]\))?|(?:Section|Article|Sec\.)\s+[\dIVX]+(?:\.[\d]+)*(?:\([a-z]\))?)`)

// Comparator produces a risk analysis by comparing retrieved regulation text
// against retrieved business-process evidence. It works exclusively from
// supplied text; it has no built-in knowledge of any regulation's content.
type Comparator struct {
	logger arbor.ILogger
}

// New creates a risk comparator
func New(logger arbor.ILogger) *Comparator {
	return &Comparator{logger: logger}
}

// Refused builds the analysis recorded when the evidence gate declines.
// No findings and no score are ever attached to a refusal.
func Refused(regulationName, reason string) *models.RiskAnalysis {
	return &models.RiskAnalysis{
		RegulationName:      regulationName,
		RegulationAvailable: false,
		CriticalRisks:       []models.RiskFinding{},
		MediumRisks:         []models.RiskFinding{},
		LowRisks:            []models.RiskFinding{},
		ExecutiveSummary:    reason,
	}
}

// Compare analyzes the named regulation's supplied text against business
// evidence. business may be nil or empty; analysis then proceeds with every
// unverifiable provision recorded as an information gap rather than a
// finding.
func (c *Comparator) Compare(regulationName, regulationText string, business *models.QueryResult) *models.RiskAnalysis {
	analysis := &models.RiskAnalysis{
		RegulationName:      regulationName,
		RegulationAvailable: true,
		CriticalRisks:       []models.RiskFinding{},
		MediumRisks:         []models.RiskFinding{},
		LowRisks:            []models.RiskFinding{},
	}

	regLower := strings.ToLower(regulationText)
	businessText, businessAvailable := businessEvidence(business)
	bizLower := strings.ToLower(businessText)

	analyzed := 0
	for _, prov := range provisions {
		idx := markerIndex(regLower, prov.regulationMarkers)
		if idx < 0 {
			continue
		}
		analyzed++

		section := nearestSection(regulationText, idx)
		if section != "" {
			analysis.SectionsAnalyzed = appendUnique(analysis.SectionsAnalyzed, section)
		}

		if !businessAvailable {
			analysis.InformationGaps = append(analysis.InformationGaps,
				fmt.Sprintf("Business practices for %q could not be verified: no business-process documentation was retrieved.", prov.name))
			continue
		}

		switch {
		case markerIndex(bizLower, prov.gapMarkers) >= 0:
			c.addFinding(analysis, prov, section, prov.severityIfGap,
				fmt.Sprintf("Documented practices conflict with the %s requirement.", strings.ToLower(prov.name)))
		case markerIndex(bizLower, prov.metMarkers) >= 0:
			// Evidence of compliance; no finding.
		default:
			// The regulation requires it and the evidence is silent.
			// Ambiguous posture is always rated Medium, never High.
			c.addFinding(analysis, prov, section, models.SeverityMedium,
				fmt.Sprintf("The retrieved documentation does not describe how %s is handled.", strings.ToLower(prov.name)))
			analysis.SuggestedQuestions = append(analysis.SuggestedQuestions,
				fmt.Sprintf("How does your organization currently handle %s?", strings.ToLower(prov.name)))
		}
	}

	analysis.OverallSeverity = overallSeverity(analysis)
	analysis.RemediationRoadmap = buildRoadmap(analysis)
	if businessAvailable {
		score := ComputeScore(analysis.AllFindings())
		analysis.ComplianceScore = &score
	} else {
		analysis.InformationGaps = append(analysis.InformationGaps,
			"No compliance score is assigned because business practices could not be verified.")
	}
	analysis.ExecutiveSummary = executiveSummary(analysis, analyzed, businessAvailable)

	c.logger.Info().
		Str("regulation", regulationName).
		Int("provisions_analyzed", analyzed).
		Int("critical", len(analysis.CriticalRisks)).
		Int("medium", len(analysis.MediumRisks)).
		Int("low", len(analysis.LowRisks)).
		Msg("Risk comparison completed")

	return analysis
}

func (c *Comparator) addFinding(analysis *models.RiskAnalysis, prov provision, section string, severity models.Severity, currentState string) {
	finding := models.RiskFinding{
		Severity:          severity,
		Title:             prov.name,
		RegulationSection: section,
		CurrentState:      currentState,
		Requirement:       prov.requirement,
		RecommendedAction: prov.action,
	}
	switch severity {
	case models.SeverityHigh:
		analysis.CriticalRisks = append(analysis.CriticalRisks, finding)
	case models.SeverityMedium:
		analysis.MediumRisks = append(analysis.MediumRisks, finding)
	default:
		analysis.LowRisks = append(analysis.LowRisks, finding)
	}
}

func businessEvidence(business *models.QueryResult) (string, bool) {
	if business == nil || !business.ResultsFound {
		return "", false
	}
	var parts []string
	parts = append(parts, business.Summary)
	parts = append(parts, business.KeyFindings...)
	for _, citation := range business.Citations {
		parts = append(parts, citation.Content)
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	return text, text != ""
}

func markerIndex(lower string, markers []string) int {
	for _, marker := range markers {
		if idx := strings.Index(lower, strings.ToLower(marker)); idx >= 0 {
			return idx
		}
	}
	return -1
}

// nearestSection finds the last section marker appearing at or before the
// provision match. Markers come only from the supplied text; when none
// precede the match the finding carries no section.
func nearestSection(text string, before int) string {
	matches := sectionMarker.FindAllStringIndex(text, -1)
	section := ""
	for _, m := range matches {
		if m[0] > before {
			break
		}
		section = text[m[0]:m[1]]
	}
	return strings.TrimSpace(section)
}

func overallSeverity(analysis *models.RiskAnalysis) models.Severity {
	switch {
	case len(analysis.CriticalRisks) > 0:
		return models.SeverityHigh
	case len(analysis.MediumRisks) > 0:
		return models.SeverityMedium
	case len(analysis.LowRisks) > 0:
		return models.SeverityLow
	}
	return ""
}

func buildRoadmap(analysis *models.RiskAnalysis) models.RemediationRoadmap {
	roadmap := models.RemediationRoadmap{}
	for _, finding := range analysis.CriticalRisks {
		roadmap.Immediate = append(roadmap.Immediate, finding.RecommendedAction)
	}
	for _, finding := range analysis.MediumRisks {
		roadmap.ShortTerm = append(roadmap.ShortTerm, finding.RecommendedAction)
	}
	for _, finding := range analysis.LowRisks {
		roadmap.LongTerm = append(roadmap.LongTerm, finding.RecommendedAction)
	}
	return roadmap
}

func executiveSummary(analysis *models.RiskAnalysis, analyzed int, businessAvailable bool) string {
	if !businessAvailable {
		return fmt.Sprintf(
			"%d %s provisions were identified in the retrieved regulation text, but business practices could not be verified because no business-process documentation was available. See information gaps.",
			analyzed, analysis.RegulationName)
	}
	total := len(analysis.AllFindings())
	if total == 0 {
		return fmt.Sprintf(
			"The documented business practices show no gaps against the %d %s provisions identified in the retrieved regulation text.",
			analyzed, analysis.RegulationName)
	}
	return fmt.Sprintf(
		"Comparison against %d %s provisions identified %d compliance gaps: %d critical, %d medium, %d low. Overall risk is %s.",
		analyzed, analysis.RegulationName, total,
		len(analysis.CriticalRisks), len(analysis.MediumRisks), len(analysis.LowRisks),
		analysis.OverallSeverity)
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

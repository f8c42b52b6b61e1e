package planner

import (
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/regula/internal/models"
)

// Intent represents the category of work a user request calls for
type Intent string

const (
	IntentDocumentQuery Intent = "document_query" // Plain retrieval across collections
	IntentDataGraph     Intent = "data_graph"     // Ontology-driven entity extraction
	IntentRiskAnalysis  Intent = "risk_analysis"  // Regulation vs. practice comparison
	IntentCombined      Intent = "combined"       // Graph building plus risk analysis
)

// Plan is the ordered set of retrieval calls for one request. Calls sharing
// a stage are independent and may run concurrently; a later stage must wait
// for earlier stages to complete.
type Plan struct {
	Intent         Intent
	RegulationName string
	Calls          []models.RetrievalCall
}

// Planner decides which collections must be queried for a request and with
// what sub-queries. Classification is rule-based: keyword and regex tables,
// no model calls.
type Planner struct {
	logger arbor.ILogger
}

// New creates a query planner
func New(logger arbor.ILogger) *Planner {
	return &Planner{logger: logger}
}

// knownRegulations maps lexicon entries to canonical regulation names.
// Matched case-insensitively against the request text.
var knownRegulations = map[string]string{
	"ccpa":     "CCPA",
	"cpra":     "CPRA",
	"gdpr":     "GDPR",
	"hipaa":    "HIPAA",
	"glba":     "GLBA",
	"coppa":    "COPPA",
	"ferpa":    "FERPA",
	"lgpd":     "LGPD",
	"pipeda":   "PIPEDA",
	"sox":      "SOX",
	"pci dss":  "PCI DSS",
	"pci-dss":  "PCI DSS",
	"privacy act": "Privacy Act",
}

// acronymPattern matches regulation-style acronyms not in the lexicon
// (e.g., "analyze XYZPA compliance")
var acronymPattern = regexp.MustCompile(`\b[A-Z]{3,8}\b`)

// acronymStopwords are common uppercase tokens that are not regulations
var acronymStopwords = map[string]bool{
	"AND": true, "THE": true, "FOR": true, "NOT": true, "ALL": true,
	"API": true, "PII": true, "URL": true, "PDF": true, "FAQ": true,
	"AWS": true, "SQL": true, "CRM": true, "ERP": true, "USA": true,
}

var riskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcomplian(ce|t)\b`),
	regexp.MustCompile(`(?i)\brisk(s)?\b`),
	regexp.MustCompile(`(?i)\bgap(s)?\b.*\b(regulat|requirement|law)`),
	regexp.MustCompile(`(?i)\bviolat(e|ion)`),
	regexp.MustCompile(`(?i)\baudit\b`),
	regexp.MustCompile(`(?i)\bassess\b`),
}

var graphPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bdata\s+graph\b`),
	regexp.MustCompile(`(?i)\bentit(y|ies)\b`),
	regexp.MustCompile(`(?i)\brelationship(s)?\b`),
	regexp.MustCompile(`(?i)\bdata\s+model\b`),
	regexp.MustCompile(`(?i)\b(map|structure)\b.*\b(data|system|process)`),
	regexp.MustCompile(`(?i)\bconnected\s+to\b`),
}

// regulatoryKeywords route plain queries toward the regulatory collection
var regulatoryKeywords = []string{"regulation", "regulatory", "law", "legal", "requirement", "consent", "privacy right"}

// ontologyKeywords route plain queries toward the ontology collection
var ontologyKeywords = []string{"ontology", "schema", "entity type", "data model", "definition", "taxonomy"}

// Plan classifies the request and emits the staged retrieval calls per the
// routing rules:
//   - A named regulation always produces a regulatory call with the
//     regulation name as sub-query, staged before dependent calls.
//   - Graph intent produces independent ontology + business-process calls.
//   - Combined intent composes both, with analysis inputs staged after the
//     regulatory result so the evidence gate can short-circuit.
//   - Otherwise a single call goes to the best keyword match, defaulting to
//     the business-process collection.
func (p *Planner) Plan(request string, availableKinds []models.CollectionKind) *Plan {
	regulation := DetectRegulation(request)
	wantsRisk := matchesAny(request, riskPatterns) && regulation != ""
	wantsGraph := matchesAny(request, graphPatterns)

	plan := &Plan{RegulationName: regulation}

	switch {
	case wantsRisk && wantsGraph:
		plan.Intent = IntentCombined
	case wantsRisk:
		plan.Intent = IntentRiskAnalysis
	case wantsGraph:
		plan.Intent = IntentDataGraph
	default:
		plan.Intent = IntentDocumentQuery
	}

	switch plan.Intent {
	case IntentRiskAnalysis:
		// Regulatory evidence first; the business-process call is deferred
		// behind the gate so a refusal costs no further retrieval.
		plan.Calls = []models.RetrievalCall{
			{CollectionKind: models.KindRegulatory, SubQuery: regulation, Stage: 1},
			{CollectionKind: models.KindBusinessProcess, SubQuery: businessSubQuery(request), Stage: 2},
		}
	case IntentDataGraph:
		// Schema discovery and instance discovery are independent. A named
		// regulation still gets its lookup; the regulatory call is
		// unconditional whenever a regulation is mentioned.
		if regulation != "" {
			plan.Calls = append(plan.Calls,
				models.RetrievalCall{CollectionKind: models.KindRegulatory, SubQuery: regulation, Stage: 1})
		}
		plan.Calls = append(plan.Calls,
			models.RetrievalCall{CollectionKind: models.KindOntology, SubQuery: "entity types, relationship types, and attribute definitions", Stage: 1},
			models.RetrievalCall{CollectionKind: models.KindBusinessProcess, SubQuery: businessSubQuery(request), Stage: 1},
		)
	case IntentCombined:
		plan.Calls = []models.RetrievalCall{
			{CollectionKind: models.KindRegulatory, SubQuery: regulation, Stage: 1},
			{CollectionKind: models.KindOntology, SubQuery: "entity types, relationship types, and attribute definitions", Stage: 1},
			{CollectionKind: models.KindBusinessProcess, SubQuery: businessSubQuery(request), Stage: 1},
		}
	default:
		// Mentioning a regulation always produces a regulatory call with
		// the regulation name as sub-query, even for plain queries.
		if regulation != "" {
			plan.Calls = append(plan.Calls,
				models.RetrievalCall{CollectionKind: models.KindRegulatory, SubQuery: regulation, Stage: 1})
		}
		kind := bestKindMatch(request, availableKinds)
		if regulation == "" || kind != models.KindRegulatory {
			plan.Calls = append(plan.Calls,
				models.RetrievalCall{CollectionKind: kind, SubQuery: strings.TrimSpace(request), Stage: 1})
		}
	}

	p.logger.Debug().
		Str("intent", string(plan.Intent)).
		Str("regulation", regulation).
		Int("calls", len(plan.Calls)).
		Msg("Request planned")

	return plan
}

// DetectRegulation extracts a named regulation from the request text.
// The lexicon wins over the acronym heuristic; when several regulations are
// named, the first mention in the request wins. Returns "" when nothing
// resembling a regulation is named.
func DetectRegulation(request string) string {
	lower := strings.ToLower(request)

	canonical := ""
	earliest := -1
	for token, name := range knownRegulations {
		idx := wordIndex(lower, token)
		if idx < 0 {
			continue
		}
		if earliest < 0 || idx < earliest {
			earliest = idx
			canonical = name
		}
	}
	if canonical != "" {
		return canonical
	}

	for _, acronym := range acronymPattern.FindAllString(request, -1) {
		if !acronymStopwords[acronym] {
			return acronym
		}
	}
	return ""
}

// businessSubQuery narrows the business-process query to compliance-relevant
// material while preserving the user's own terms
func businessSubQuery(request string) string {
	return strings.TrimSpace(request) + " (processing activities, data flows, consent mechanisms, third-party sharing)"
}

// bestKindMatch picks the collection kind whose keyword table best matches
// the request; ambiguity defaults to business-process
func bestKindMatch(request string, available []models.CollectionKind) models.CollectionKind {
	lower := strings.ToLower(request)

	regScore := keywordScore(lower, regulatoryKeywords)
	ontScore := keywordScore(lower, ontologyKeywords)

	kind := models.KindBusinessProcess
	if regScore > 0 && regScore >= ontScore {
		kind = models.KindRegulatory
	} else if ontScore > 0 {
		kind = models.KindOntology
	}

	for _, k := range available {
		if k == kind {
			return kind
		}
	}
	// Requested kind has no collection; fall back to business-process
	return models.KindBusinessProcess
}

func keywordScore(lower string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	return score
}

func matchesAny(request string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(request) {
			return true
		}
	}
	return false
}

// wordIndex returns the index of the first whole-word occurrence of word in
// haystack, or -1
func wordIndex(haystack, word string) int {
	idx := strings.Index(haystack, word)
	for idx >= 0 {
		before := idx == 0 || !isWordChar(haystack[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(haystack) || !isWordChar(haystack[afterIdx])
		if before && after {
			return idx
		}
		next := strings.Index(haystack[idx+1:], word)
		if next < 0 {
			return -1
		}
		idx = idx + 1 + next
	}
	return -1
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

package gate

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/regula/internal/models"
)

// Decision is the outcome of the evidence check. When Proceed is false the
// caller must not invoke risk analysis, must surface Reason verbatim, and
// must offer AvailableRegulations as alternatives.
type Decision struct {
	Proceed              bool
	RegulationText       string
	Reason               string
	AvailableRegulations []string
}

// Gate verifies that regulation text was actually retrieved before any risk
// analysis may run. This is the load-bearing invariant of the system: no
// risk finding is ever produced for a regulation whose text was not found.
type Gate struct {
	logger arbor.ILogger
}

// New creates an evidence gate
func New(logger arbor.ILogger) *Gate {
	return &Gate{logger: logger}
}

// Check inspects the regulatory query result for evidence of the named
// regulation. No results, or results with no textual association to the
// regulation name, both refuse: content unrelated to the asked-for
// regulation is treated the same as nothing found.
func (g *Gate) Check(regulationName string, result *models.QueryResult, available []string) Decision {
	if result == nil || !result.ResultsFound {
		g.logger.Info().
			Str("regulation", regulationName).
			Msg("Evidence gate refused: no retrieval results")
		return g.refuse(regulationName, available)
	}

	if !mentionsRegulation(regulationName, result) {
		g.logger.Info().
			Str("regulation", regulationName).
			Int("citations", len(result.Citations)).
			Msg("Evidence gate refused: retrieved content unrelated to regulation")
		return g.refuse(regulationName, available)
	}

	text := assembleRegulationText(result)
	g.logger.Info().
		Str("regulation", regulationName).
		Int("text_len", len(text)).
		Msg("Evidence gate passed")

	return Decision{Proceed: true, RegulationText: text}
}

// mentionsRegulation looks for the regulation name in the summary and in
// citation sources and snippets, case-insensitively
func mentionsRegulation(name string, result *models.QueryResult) bool {
	needle := strings.ToLower(name)
	if strings.Contains(strings.ToLower(result.Summary), needle) {
		return true
	}
	for _, citation := range result.Citations {
		if strings.Contains(strings.ToLower(citation.Source), needle) ||
			strings.Contains(strings.ToLower(citation.Content), needle) {
			return true
		}
	}
	return false
}

// assembleRegulationText concatenates the retrieved evidence into the text
// the comparator analyzes. Only retrieved content ever reaches analysis.
// Citation excerpts lead so their section markers precede any restatement of
// the same obligations in the summary.
func assembleRegulationText(result *models.QueryResult) string {
	var parts []string
	for _, citation := range result.Citations {
		parts = append(parts, citation.Content)
	}
	if result.Summary != "" {
		parts = append(parts, result.Summary)
	}
	return strings.Join(parts, "\n\n")
}

func (g *Gate) refuse(regulationName string, available []string) Decision {
	reason := fmt.Sprintf(
		"A %s compliance risk analysis cannot be performed because the %s regulatory requirements are not available in the regulatory collection. To perform this analysis, the %s regulation text must first be uploaded.",
		regulationName, regulationName, regulationName)

	if len(available) > 0 {
		reason += fmt.Sprintf(" Available regulations: %s.", strings.Join(available, ", "))
	} else {
		reason += " No regulations are currently available."
	}

	return Decision{
		Proceed:              false,
		Reason:               reason,
		AvailableRegulations: available,
	}
}

package risk

import (
	"github.com/ternarybob/regula/internal/models"
)

// Deduction weights per finding severity. High outweighs Medium outweighs
// Low so that adding a finding can never raise the score.
const (
	deductionHigh   = 18
	deductionMedium = 8
	deductionLow    = 3
)

// ComputeScore maps findings to a 0-100 compliance score by weighted
// deduction from a clean baseline.
func ComputeScore(findings []models.RiskFinding) int {
	score := 100
	for _, finding := range findings {
		switch finding.Severity {
		case models.SeverityHigh:
			score -= deductionHigh
		case models.SeverityMedium:
			score -= deductionMedium
		case models.SeverityLow:
			score -= deductionLow
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

package models

// Severity classifies a compliance risk finding
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// Rank orders severities for comparison: High > Medium > Low
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// RiskFinding is a single gap between a regulatory requirement and an
// observed business practice. RegulationSection is empty only when the
// regulation text contains no section markers; it is never invented.
type RiskFinding struct {
	Severity          Severity `json:"severity" validate:"required,oneof=High Medium Low"`
	Title             string   `json:"title" validate:"required"`
	RegulationSection string   `json:"regulation_section,omitempty"`
	CurrentState      string   `json:"current_state" validate:"required"`
	Requirement       string   `json:"requirement" validate:"required"`
	RecommendedAction string   `json:"recommended_action" validate:"required"`
	RelatedActivity   string   `json:"related_activity,omitempty"`
}

// RemediationRoadmap buckets recommended actions by urgency
type RemediationRoadmap struct {
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"short_term"`
	LongTerm  []string `json:"long_term"`
}

// RiskAnalysis is the structured outcome of comparing a regulation against
// observed business practices.
//
// Invariant: RegulationAvailable == false implies all finding lists are
// empty, ComplianceScore is nil, and ExecutiveSummary states the refusal
// reason.
type RiskAnalysis struct {
	RegulationName      string             `json:"regulation_name" validate:"required"`
	RegulationAvailable bool               `json:"regulation_available"`
	OverallSeverity     Severity           `json:"overall_severity,omitempty"`
	ComplianceScore     *int               `json:"compliance_score,omitempty"`
	CriticalRisks       []RiskFinding      `json:"critical_risks"`
	MediumRisks         []RiskFinding      `json:"medium_risks"`
	LowRisks            []RiskFinding      `json:"low_risks"`
	ExecutiveSummary    string             `json:"executive_summary"`
	RemediationRoadmap  RemediationRoadmap `json:"remediation_roadmap"`
	InformationGaps     []string           `json:"information_gaps"`
	SectionsAnalyzed    []string           `json:"sections_analyzed"`
	SuggestedQuestions  []string           `json:"suggested_questions"`
}

// AllFindings returns findings across every severity bucket
func (a *RiskAnalysis) AllFindings() []RiskFinding {
	out := make([]RiskFinding, 0, len(a.CriticalRisks)+len(a.MediumRisks)+len(a.LowRisks))
	out = append(out, a.CriticalRisks...)
	out = append(out, a.MediumRisks...)
	out = append(out, a.LowRisks...)
	return out
}

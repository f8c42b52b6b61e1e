package models

// AssessmentResult is the only value returned across the system boundary:
// a markdown narrative plus deduplicated follow-up questions.
type AssessmentResult struct {
	Result             string   `json:"result"`
	SuggestedQuestions []string `json:"suggested_questions"`
}

// GateOutcome records the evidence gate decision for a regulation
type GateOutcome struct {
	RegulationName       string   `json:"regulation_name"`
	Proceed              bool     `json:"proceed"`
	Reason               string   `json:"reason,omitempty"`
	AvailableRegulations []string `json:"available_regulations,omitempty"`
}

// ComponentOutputs carries the structured partial results of one assessment
// into the synthesizer. Any field may be nil when the corresponding
// component did not run.
type ComponentOutputs struct {
	Request        string
	QueryResults   []*QueryResult
	Gate           *GateOutcome
	RegulationText string
	Graph          *DataGraph
	Risk           *RiskAnalysis
	UploadNote     string
}

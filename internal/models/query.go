package models

// Citation is a (source document, text snippet) pair evidencing a retrieval
// answer. Both fields are always carried together; a source without content
// is an invariant violation.
type Citation struct {
	Source  string `json:"source" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// RetrievalCall is a single planned call against one collection kind.
// Calls sharing a Stage have no data dependency and may run concurrently;
// a call in stage N depends on results from stages < N.
type RetrievalCall struct {
	CollectionKind CollectionKind `json:"collection_kind"`
	SubQuery       string         `json:"sub_query"`
	Stage          int            `json:"stage"`
}

// QueryResult is the outcome of one or more retrieval calls.
// ResultsFound == false implies KeyFindings and Citations are empty.
type QueryResult struct {
	Query              string           `json:"query"`
	CollectionsQueried []CollectionKind `json:"collections_queried"`
	ResultsFound       bool             `json:"results_found"`
	Summary            string           `json:"summary"`
	KeyFindings        []string         `json:"key_findings"`
	RelevantDocuments  []string         `json:"relevant_documents"`
	Citations          []Citation       `json:"citations"`
	SuggestedQuestions []string         `json:"suggested_questions"`
}

// NoResults builds an explicit empty result for the given query.
// Retrieval failures degrade to this, never to fabricated content.
func NoResults(query string, kinds ...CollectionKind) *QueryResult {
	return &QueryResult{
		Query:              query,
		CollectionsQueried: kinds,
		ResultsFound:       false,
		Summary:            "No matching content was found in the queried collections.",
	}
}

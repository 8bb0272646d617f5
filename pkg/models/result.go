package models

// SelectionReason records which retrieval pass selected a candidate.
type SelectionReason string

const (
	// SelectionRelevance marks candidates from the pure-relevance pass.
	SelectionRelevance SelectionReason = "relevance"

	// SelectionDiversity marks candidates from the diversity (MMR) pass.
	SelectionDiversity SelectionReason = "diversity"
)

// RetrievalCandidate is a query-scoped wrapper around a vector record.
// It exists only for the duration of one query and is not persisted.
type RetrievalCandidate struct {
	Record *VectorRecord   `json:"record"`
	Score  float64         `json:"score"`
	Reason SelectionReason `json:"reason"`
}

// QueryResult is the ordered, deduplicated candidate set for one question,
// bounded by the retriever. An empty result is a normal outcome signaling
// that no indexed content matched, not an error.
type QueryResult struct {
	Candidates []RetrievalCandidate `json:"candidates"`

	// SourceNames lists the distinct source names represented by the
	// candidates, deduplicated in first-seen order, for citation display.
	SourceNames []string `json:"source_names"`
}

// Empty reports whether the result carries no candidates.
func (r *QueryResult) Empty() bool {
	return r == nil || len(r.Candidates) == 0
}

// Answer represents the response to a query, pairing the generated text with
// the retrieval result it was grounded on.
type Answer struct {
	Text   string       `json:"text"`
	Result *QueryResult `json:"result"`
}

// IngestResult reports the outcome of ingesting one source document.
type IngestResult struct {
	SourceID      string `json:"source_id"`
	ChunksCreated int    `json:"chunks_created"`
	RecordsStored int    `json:"records_stored"`
	Success       bool   `json:"success"`

	// Reason explains a non-error failure, e.g. an empty source.
	Reason string `json:"reason,omitempty"`

	// Err holds the failure for this source when ingestion errored.
	// Batch ingestion isolates failures per source, so this is carried
	// in the result instead of being returned.
	Err error `json:"-"`
}

package models

// Chunk represents a contiguous slice of a source document's normalized text.
// Chunks are immutable once emitted; re-ingesting a source supersedes its
// chunks rather than mutating them.
type Chunk struct {
	// SourceID identifies the owning document. Stable across re-ingestion.
	SourceID string `json:"source_id"`

	// PositionIndex is the 0-based insertion order within the source.
	// Assigned only to emitted (non-empty) chunks and contiguous per source.
	PositionIndex int `json:"position_index"`

	// Text is the chunk content. Never empty.
	Text string `json:"text"`

	// CharStart and CharEnd are rune offsets into the normalized source text.
	CharStart int `json:"char_start"`
	CharEnd   int `json:"char_end"`

	// BoundaryTruncated reports whether segmentation stopped at a sentence
	// or whitespace boundary rather than a hard cut.
	BoundaryTruncated bool `json:"boundary_truncated"`
}

package models

import "time"

// RecordMetadata carries retrieval metadata for a vector record. Well-known
// fields are typed; provider-specific extras go in the open Extra map.
type RecordMetadata struct {
	// SourceName is the display name of the originating document,
	// used for citation output.
	SourceName string `json:"source_name"`

	// Page is the 1-based page number within the source, when applicable.
	// Zero means not paginated.
	Page int `json:"page,omitempty"`

	// Extra holds provider-specific metadata not covered by the typed fields.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// VectorRecord is a chunk plus its embedding and retrieval metadata.
// Records are created during ingestion (one per chunk), deleted in bulk by
// source, and never partially updated.
type VectorRecord struct {
	// ID is unique and assigned at insert time. Format: rec_<uuid>.
	ID string `json:"id" badgerhold:"key"`

	// SourceID is the unit of deletion; many records share one source.
	SourceID string `json:"source_id" badgerhold:"index"`

	// PositionIndex is the chunk's 0-based position within the source.
	PositionIndex int `json:"position_index"`

	// Vector is the embedding. Every record in one collection has the
	// same dimensionality.
	Vector []float32 `json:"vector"`

	// Text is a denormalized copy of the chunk text so answer generation
	// needs no second fetch.
	Text string `json:"text"`

	Metadata RecordMetadata `json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
}

package models

// Source is a document handed to ingestion. Content is the raw text or HTML;
// the pipeline normalizes it before chunking.
type Source struct {
	// ID identifies the source for deletion and re-ingestion. When empty,
	// ingestion assigns one (format: src_<uuid>).
	ID string `json:"id"`

	// Name is the display name carried into record metadata for citations.
	Name string `json:"name"`

	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`

	// Metadata is copied into every record created from this source.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

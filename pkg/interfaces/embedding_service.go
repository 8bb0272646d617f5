package interfaces

import "context"

// EmbeddingService generates vector embeddings. It is the narrow port the
// ingestion and query pipelines depend on; implementations wrap an LLM
// provider and are external collaborators as far as the engine is concerned.
type EmbeddingService interface {
	// GenerateEmbedding creates a vector embedding for raw text.
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GenerateEmbeddings creates embeddings for multiple texts in a single
	// provider call, preserving input order.
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// GenerateQueryEmbedding creates an embedding for a search query
	// (may use different preparation than document embedding).
	GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error)

	// ModelName returns the embedding model identifier.
	ModelName() string

	// Dimension returns the fixed embedding dimensionality.
	Dimension() int

	// IsAvailable checks if the embedding provider is reachable.
	IsAvailable(ctx context.Context) bool
}

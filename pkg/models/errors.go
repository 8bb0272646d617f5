package models

import "errors"

// Sentinel errors for the retrieval engine. Callers match with errors.Is.
//
// Configuration errors are fatal and never retried. Provider and store
// errors are retryable by the caller; batch ingestion isolates them per
// source. Expected empties (empty collection, deleting a missing source)
// are value results, not errors.
var (
	// ErrInvalidConfig reports bad engine parameters, e.g. a non-positive
	// chunk size or an overlap that is not smaller than the chunk size.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidQuery reports an empty or whitespace-only question.
	// User-correctable.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmbeddingUnavailable reports an embedding provider failure.
	// Retryable with backoff.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrStoreUnavailable reports a backing store failure. Retryable.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrTimeout marks a provider or store call that exceeded its
	// deadline. Wrapped alongside the unavailable errors so callers can
	// distinguish retryable timeouts from permanent failures.
	ErrTimeout = errors.New("operation timed out")
)

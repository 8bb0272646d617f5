package interfaces

import (
	"context"

	"github.com/ternarybob/reperio/pkg/models"
)

// ScanFilter restricts a scan or count to matching records. A nil filter
// matches everything.
type ScanFilter struct {
	// SourceIDs limits results to records from the given sources.
	SourceIDs []string

	// SourceName limits results to records whose metadata carries the
	// given source name.
	SourceName string
}

// VectorStorage persists vector records for one logical collection with a
// fixed vector dimensionality. Concurrent reads need no locking; concurrent
// ingestion of different sources is safe. Re-ingestion of one source must be
// serialized by the caller.
type VectorStorage interface {
	// InsertBatch persists the given records, assigning each an ID, and
	// returns the assigned IDs in input order. A batch is atomic per
	// call: either every record becomes visible or none do. A partial
	// failure is reported as an error naming the first failing record's
	// source and position; records from prior calls are never rolled
	// back. Input records must not carry an ID.
	InsertBatch(ctx context.Context, records []*models.VectorRecord) ([]string, error)

	// DeleteBySource removes all records for the given source and returns
	// the number deleted. Idempotent: a missing source yields 0, nil.
	DeleteBySource(ctx context.Context, sourceID string) (int, error)

	// Scan returns the records matching the filter. Each call begins a
	// fresh pass over the collection.
	Scan(ctx context.Context, filter *ScanFilter) ([]*models.VectorRecord, error)

	// Count returns the number of records matching the filter.
	Count(ctx context.Context, filter *ScanFilter) (int, error)

	// Close releases the underlying store.
	Close() error
}

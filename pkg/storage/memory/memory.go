// Package memory provides an in-memory VectorStorage for tests and for
// embedding the engine in applications that need no durability.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/reperio/pkg/common"
	"github.com/ternarybob/reperio/pkg/interfaces"
	"github.com/ternarybob/reperio/pkg/models"
)

// Storage is a mutex-guarded in-memory vector record store. The collection
// dimensionality is fixed by the first inserted record.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	records   []*models.VectorRecord
}

// NewStorage creates an empty in-memory store.
func NewStorage() *Storage {
	return &Storage{}
}

// Ensure Storage implements the interface.
var _ interfaces.VectorStorage = (*Storage)(nil)

// InsertBatch persists the records atomically: the batch is validated in
// full before anything becomes visible.
func (s *Storage) InsertBatch(ctx context.Context, records []*models.VectorRecord) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dimension := s.dimension
	if dimension == 0 {
		dimension = len(records[0].Vector)
	}

	// Validate the whole batch before mutating anything.
	for _, record := range records {
		if record.ID != "" {
			return nil, fmt.Errorf("record for source %s position %d already has an ID", record.SourceID, record.PositionIndex)
		}
		if record.SourceID == "" {
			return nil, fmt.Errorf("record at position %d has no source ID", record.PositionIndex)
		}
		if len(record.Vector) == 0 || len(record.Vector) != dimension {
			return nil, fmt.Errorf("record for source %s position %d has dimension %d, collection requires %d",
				record.SourceID, record.PositionIndex, len(record.Vector), dimension)
		}
	}

	now := time.Now()
	ids := make([]string, 0, len(records))
	for _, record := range records {
		stored := *record
		stored.ID = common.NewRecordID()
		stored.CreatedAt = now
		stored.Vector = append([]float32(nil), record.Vector...)
		s.records = append(s.records, &stored)
		ids = append(ids, stored.ID)
	}
	s.dimension = dimension

	return ids, nil
}

// DeleteBySource removes all records for the source and returns the count.
// Deleting a missing source returns 0, nil.
func (s *Storage) DeleteBySource(ctx context.Context, sourceID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	deleted := 0
	for _, record := range s.records {
		if record.SourceID == sourceID {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept
	return deleted, nil
}

// Scan returns a fresh copy of the records matching the filter. Copies keep
// callers from mutating stored state, matching the decode-on-read semantics
// of the durable store.
func (s *Storage) Scan(ctx context.Context, filter *interfaces.ScanFilter) ([]*models.VectorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.VectorRecord, 0, len(s.records))
	for _, record := range s.records {
		if matchesFilter(record, filter) {
			clone := *record
			clone.Vector = append([]float32(nil), record.Vector...)
			result = append(result, &clone)
		}
	}
	return result, nil
}

// Count returns the number of records matching the filter.
func (s *Storage) Count(ctx context.Context, filter *interfaces.ScanFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, record := range s.records {
		if matchesFilter(record, filter) {
			count++
		}
	}
	return count, nil
}

// Close clears the store.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.dimension = 0
	return nil
}

func matchesFilter(record *models.VectorRecord, filter *interfaces.ScanFilter) bool {
	if filter == nil {
		return true
	}
	if len(filter.SourceIDs) > 0 {
		found := false
		for _, id := range filter.SourceIDs {
			if record.SourceID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.SourceName != "" && record.Metadata.SourceName != filter.SourceName {
		return false
	}
	return true
}

package badger

import (
	"context"
	"fmt"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/reperio/pkg/common"
	"github.com/ternarybob/reperio/pkg/interfaces"
	"github.com/ternarybob/reperio/pkg/models"
)

// RecordStorage implements the VectorStorage interface on BadgerDB. Batch
// inserts run in a single badger transaction so a batch is visible in full
// or not at all. The collection dimensionality is fixed by the first record
// ever inserted and enforced on every later batch.
type RecordStorage struct {
	db     *BadgerDB
	logger arbor.ILogger

	mu        sync.Mutex
	dimension int
}

// NewRecordStorage creates a new RecordStorage instance
func NewRecordStorage(db *BadgerDB, logger arbor.ILogger) *RecordStorage {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &RecordStorage{
		db:     db,
		logger: logger,
	}
}

// Ensure RecordStorage implements the interface.
var _ interfaces.VectorStorage = (*RecordStorage)(nil)

// InsertBatch persists the records in one transaction, assigning IDs, and
// returns the assigned IDs in input order.
func (s *RecordStorage) InsertBatch(ctx context.Context, records []*models.VectorRecord) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dimension, err := s.collectionDimension()
	if err != nil {
		return nil, err
	}
	if dimension == 0 {
		dimension = len(records[0].Vector)
	}

	// Validate the whole batch up front so a bad record never costs a
	// half-applied transaction.
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
	stored := make([]*models.VectorRecord, 0, len(records))
	for _, record := range records {
		clone := *record
		clone.ID = common.NewRecordID()
		clone.CreatedAt = now
		ids = append(ids, clone.ID)
		stored = append(stored, &clone)
	}

	err = s.db.Store().Badger().Update(func(tx *badgerdb.Txn) error {
		for _, record := range stored {
			if err := s.db.Store().TxInsert(tx, record.ID, record); err != nil {
				return fmt.Errorf("failed to insert record for source %s position %d: %w",
					record.SourceID, record.PositionIndex, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	s.dimension = dimension

	s.logger.Debug().
		Int("records", len(stored)).
		Str("source_id", stored[0].SourceID).
		Msg("Inserted record batch")

	return ids, nil
}

// DeleteBySource removes all records for the source and returns the count.
// Deleting a non-existent source returns 0, not an error.
func (s *RecordStorage) DeleteBySource(ctx context.Context, sourceID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	count, err := s.db.Store().Count(&models.VectorRecord{}, badgerhold.Where("SourceID").Eq(sourceID))
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count records for source %s: %w", models.ErrStoreUnavailable, sourceID, err)
	}
	if count == 0 {
		return 0, nil
	}

	if err := s.db.Store().DeleteMatching(&models.VectorRecord{}, badgerhold.Where("SourceID").Eq(sourceID)); err != nil {
		return 0, fmt.Errorf("%w: failed to delete records for source %s: %w", models.ErrStoreUnavailable, sourceID, err)
	}

	s.logger.Debug().
		Str("source_id", sourceID).
		Int("deleted", int(count)).
		Msg("Deleted records by source")

	return int(count), nil
}

// Scan returns the records matching the filter. Each call begins a fresh
// pass over the collection.
func (s *RecordStorage) Scan(ctx context.Context, filter *interfaces.ScanFilter) ([]*models.VectorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	var found []models.VectorRecord
	if err := s.db.Store().Find(&found, sourceQuery(filter)); err != nil {
		return nil, fmt.Errorf("%w: scan failed: %w", models.ErrStoreUnavailable, err)
	}

	result := make([]*models.VectorRecord, 0, len(found))
	for i := range found {
		if filter != nil && filter.SourceName != "" && found[i].Metadata.SourceName != filter.SourceName {
			continue
		}
		result = append(result, &found[i])
	}
	return result, nil
}

// Count returns the number of records matching the filter.
func (s *RecordStorage) Count(ctx context.Context, filter *interfaces.ScanFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	// Source-name filtering needs the metadata, so it counts via a scan.
	if filter != nil && filter.SourceName != "" {
		records, err := s.Scan(ctx, filter)
		if err != nil {
			return 0, err
		}
		return len(records), nil
	}

	count, err := s.db.Store().Count(&models.VectorRecord{}, sourceQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("%w: count failed: %w", models.ErrStoreUnavailable, err)
	}
	return int(count), nil
}

// Close closes the underlying database connection.
func (s *RecordStorage) Close() error {
	return s.db.Close()
}

// collectionDimension returns the dimensionality fixed by previously stored
// records, loading it lazily after a restart. Zero means the collection is
// still empty.
func (s *RecordStorage) collectionDimension() (int, error) {
	if s.dimension != 0 {
		return s.dimension, nil
	}

	var existing []models.VectorRecord
	if err := s.db.Store().Find(&existing, badgerhold.Where("ID").Ne("").Limit(1)); err != nil {
		return 0, fmt.Errorf("%w: failed to probe collection dimension: %w", models.ErrStoreUnavailable, err)
	}
	if len(existing) > 0 {
		s.dimension = len(existing[0].Vector)
	}
	return s.dimension, nil
}

// sourceQuery builds the badgerhold query for the filter's source IDs.
// Returns nil (match all) when the filter carries no source restriction.
func sourceQuery(filter *interfaces.ScanFilter) *badgerhold.Query {
	if filter == nil || len(filter.SourceIDs) == 0 {
		return nil
	}
	ids := make([]interface{}, len(filter.SourceIDs))
	for i, id := range filter.SourceIDs {
		ids[i] = id
	}
	return badgerhold.Where("SourceID").In(ids...)
}

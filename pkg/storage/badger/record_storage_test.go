package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/reperio/pkg/interfaces"
	"github.com/ternarybob/reperio/pkg/models"
)

func newTestStorage(t *testing.T) *RecordStorage {
	t.Helper()

	tmpDir := t.TempDir()
	options := badgerhold.DefaultOptions
	options.Dir = tmpDir
	options.ValueDir = tmpDir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	db := &BadgerDB{store: store}
	return NewRecordStorage(db, arbor.NewLogger())
}

func batchFor(sourceID string, vectors ...[]float32) []*models.VectorRecord {
	records := make([]*models.VectorRecord, len(vectors))
	for i, vector := range vectors {
		records[i] = &models.VectorRecord{
			SourceID:      sourceID,
			PositionIndex: i,
			Vector:        vector,
			Text:          fmt.Sprintf("chunk %d of %s", i, sourceID),
			Metadata:      models.RecordMetadata{SourceName: sourceID + ".md"},
		}
	}
	return records
}

func TestRecordStorage_InsertAndScan(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	ids, err := storage.InsertBatch(ctx, batchFor("src_1", []float32{1, 0, 0}, []float32{0, 1, 0}))
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])

	records, err := storage.Scan(ctx, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.Contains(t, record.ID, "rec_")
		assert.Equal(t, "src_1", record.SourceID)
		assert.False(t, record.CreatedAt.IsZero())
	}
}

func TestRecordStorage_RejectsPresetID(t *testing.T) {
	storage := newTestStorage(t)

	records := batchFor("src_1", []float32{1, 0})
	records[0].ID = "rec_preset"

	_, err := storage.InsertBatch(context.Background(), records)
	assert.Error(t, err)
}

func TestRecordStorage_DimensionEnforcedAcrossBatches(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	_, err := storage.InsertBatch(ctx, batchFor("src_1", []float32{1, 0, 0}))
	require.NoError(t, err)

	_, err = storage.InsertBatch(ctx, batchFor("src_2", []float32{1, 0}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")

	count, err := storage.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecordStorage_DimensionSurvivesReopen(t *testing.T) {
	tmpDir := t.TempDir()
	options := badgerhold.DefaultOptions
	options.Dir = tmpDir
	options.ValueDir = tmpDir
	options.Logger = nil
	ctx := context.Background()

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	storage := NewRecordStorage(&BadgerDB{store: store}, arbor.NewLogger())

	_, err = storage.InsertBatch(ctx, batchFor("src_1", []float32{1, 0, 0}))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// A fresh storage over the same path must rediscover the dimension.
	store, err = badgerhold.Open(options)
	require.NoError(t, err)
	defer store.Close()
	reopened := NewRecordStorage(&BadgerDB{store: store}, arbor.NewLogger())

	_, err = reopened.InsertBatch(ctx, batchFor("src_2", []float32{1, 0}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")

	_, err = reopened.InsertBatch(ctx, batchFor("src_3", []float32{0, 0, 1}))
	assert.NoError(t, err)
}

func TestRecordStorage_AtomicBatch(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	// Mixed-dimension batch fails validation; nothing is stored.
	records := batchFor("src_1", []float32{1, 0, 0})
	records = append(records, batchFor("src_1", []float32{1, 0})...)

	_, err := storage.InsertBatch(ctx, records)
	require.Error(t, err)

	count, err := storage.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRecordStorage_DeleteBySource(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	_, err := storage.InsertBatch(ctx, batchFor("src_keep", []float32{1, 0}))
	require.NoError(t, err)
	_, err = storage.InsertBatch(ctx, batchFor("src_drop", []float32{0, 1}, []float32{1, 1}))
	require.NoError(t, err)

	deleted, err := storage.DeleteBySource(ctx, "src_drop")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	records, err := storage.Scan(ctx, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "src_keep", records[0].SourceID)

	deleted, err = storage.DeleteBySource(ctx, "src_drop")
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)

	deleted, err = storage.DeleteBySource(ctx, "src_never_existed")
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestRecordStorage_ScanFilters(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	_, err := storage.InsertBatch(ctx, batchFor("src_a", []float32{1, 0}))
	require.NoError(t, err)
	_, err = storage.InsertBatch(ctx, batchFor("src_b", []float32{0, 1}))
	require.NoError(t, err)

	t.Run("by source ID", func(t *testing.T) {
		records, err := storage.Scan(ctx, &interfaces.ScanFilter{SourceIDs: []string{"src_a"}})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "src_a", records[0].SourceID)
	})

	t.Run("by source name", func(t *testing.T) {
		records, err := storage.Scan(ctx, &interfaces.ScanFilter{SourceName: "src_b.md"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "src_b", records[0].SourceID)

		count, err := storage.Count(ctx, &interfaces.ScanFilter{SourceName: "src_b.md"})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("no matches", func(t *testing.T) {
		records, err := storage.Scan(ctx, &interfaces.ScanFilter{SourceIDs: []string{"src_missing"}})
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestRecordStorage_CancelledContext(t *testing.T) {
	storage := newTestStorage(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := storage.InsertBatch(ctx, batchFor("src_a", []float32{1}))
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	_, err = storage.Scan(ctx, nil)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

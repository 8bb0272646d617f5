// Package ingest turns source documents into stored vector records:
// normalize, chunk, embed in batches, insert in position order.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/reperio/pkg/chunker"
	"github.com/ternarybob/reperio/pkg/common"
	"github.com/ternarybob/reperio/pkg/interfaces"
	"github.com/ternarybob/reperio/pkg/models"
)

// Service runs the ingestion pipeline for one collection.
type Service struct {
	chunker          *chunker.Chunker
	embeddingService interfaces.EmbeddingService
	storage          interfaces.VectorStorage
	normalizer       *Normalizer
	batchSize        int
	logger           arbor.ILogger
}

// NewService creates an ingestion service. batchSize bounds the number of
// chunks embedded per provider call; non-positive values fall back to the
// default.
func NewService(chk *chunker.Chunker, embeddingService interfaces.EmbeddingService, storage interfaces.VectorStorage, batchSize int, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Service{
		chunker:          chk,
		embeddingService: embeddingService,
		storage:          storage,
		normalizer:       NewNormalizer(logger),
		batchSize:        batchSize,
		logger:           logger,
	}
}

// Ingest processes one source end to end. A source that normalizes to no
// chunkable text yields Success=false with a reason, not an error. A failure
// partway through leaves records from completed batches in the store; the
// caller can re-ingest the source to reach a clean state.
func (s *Service) Ingest(ctx context.Context, source *models.Source) *models.IngestResult {
	if source == nil {
		return &models.IngestResult{Err: fmt.Errorf("source cannot be nil")}
	}

	sourceID := source.ID
	if sourceID == "" {
		sourceID = common.NewSourceID()
	}
	result := &models.IngestResult{SourceID: sourceID}

	text, title, err := s.normalizer.Normalize(source.Content, source.ContentType)
	if err != nil {
		result.Err = fmt.Errorf("normalize source %s: %w", sourceID, err)
		return result
	}

	sourceName := source.Name
	if sourceName == "" {
		sourceName = title
	}

	chunks := s.chunker.Chunk(sourceID, text)
	result.ChunksCreated = len(chunks)
	if len(chunks) == 0 {
		result.Reason = "source produced no chunkable text"
		s.logger.Info().Str("source_id", sourceID).Str("name", sourceName).Msg("Skipping empty source")
		return result
	}

	start := time.Now()
	for batchStart := 0; batchStart < len(chunks); batchStart += s.batchSize {
		if err := ctx.Err(); err != nil {
			result.Err = fmt.Errorf("ingest source %s cancelled after %d records: %w", sourceID, result.RecordsStored, err)
			return result
		}

		batchEnd := batchStart + s.batchSize
		if batchEnd > len(chunks) {
			batchEnd = len(chunks)
		}
		batch := chunks[batchStart:batchEnd]

		stored, err := s.ingestBatch(ctx, source, sourceID, sourceName, batch)
		result.RecordsStored += stored
		if err != nil {
			result.Err = fmt.Errorf("ingest source %s at position %d: %w", sourceID, batch[0].PositionIndex, err)
			return result
		}
	}

	result.Success = true
	s.logger.Info().
		Str("source_id", sourceID).
		Str("name", sourceName).
		Int("chunks", result.ChunksCreated).
		Dur("duration", time.Since(start)).
		Msg("Ingested source")

	return result
}

// ingestBatch embeds one batch of chunks and inserts the resulting records
// atomically, preserving position order.
func (s *Service) ingestBatch(ctx context.Context, source *models.Source, sourceID, sourceName string, batch []models.Chunk) (int, error) {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	vectors, err := s.embeddingService.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return 0, err
	}

	records := make([]*models.VectorRecord, len(batch))
	for i, chunk := range batch {
		records[i] = &models.VectorRecord{
			SourceID:      sourceID,
			PositionIndex: chunk.PositionIndex,
			Vector:        vectors[i],
			Text:          chunk.Text,
			Metadata: models.RecordMetadata{
				SourceName: sourceName,
				Extra:      source.Metadata,
			},
		}
	}

	ids, err := s.storage.InsertBatch(ctx, records)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// IngestAll processes sources in order with per-source isolation: one
// source's failure is recorded in its result and the remaining sources still
// run. Results are returned in input order.
func (s *Service) IngestAll(ctx context.Context, sources []*models.Source) []*models.IngestResult {
	results := make([]*models.IngestResult, 0, len(sources))
	for _, source := range sources {
		results = append(results, s.ingestIsolated(ctx, source))
	}

	succeeded := 0
	for _, result := range results {
		if result.Success {
			succeeded++
		}
	}
	s.logger.Info().
		Int("sources", len(sources)).
		Int("succeeded", succeeded).
		Msg("Batch ingestion completed")

	return results
}

// ingestIsolated shields the batch loop from a panic in a single source.
func (s *Service) ingestIsolated(ctx context.Context, source *models.Source) (result *models.IngestResult) {
	defer func() {
		if r := recover(); r != nil {
			sourceID := ""
			if source != nil {
				sourceID = source.ID
			}
			s.logger.Error().Str("source_id", sourceID).Msgf("Panic during ingestion: %v", r)
			result = &models.IngestResult{
				SourceID: sourceID,
				Err:      fmt.Errorf("panic during ingestion: %v", r),
			}
		}
	}()
	return s.Ingest(ctx, source)
}

// Reingest replaces a source's records: existing records are deleted first,
// then the source is ingested fresh. The caller must serialize concurrent
// re-ingestion of the same source.
func (s *Service) Reingest(ctx context.Context, source *models.Source) *models.IngestResult {
	if source == nil {
		return &models.IngestResult{Err: fmt.Errorf("source cannot be nil")}
	}
	if source.ID == "" {
		return &models.IngestResult{Err: fmt.Errorf("re-ingestion requires a source ID")}
	}

	deleted, err := s.storage.DeleteBySource(ctx, source.ID)
	if err != nil {
		return &models.IngestResult{
			SourceID: source.ID,
			Err:      fmt.Errorf("delete existing records for source %s: %w", source.ID, err),
		}
	}
	if deleted > 0 {
		s.logger.Info().Str("source_id", source.ID).Int("deleted", deleted).Msg("Removed existing records before re-ingestion")
	}

	return s.Ingest(ctx, source)
}

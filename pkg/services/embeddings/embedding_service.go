// Package embeddings adapts an LLM provider into the embedding port the
// ingestion and query pipelines depend on, adding dimension validation,
// rate limiting, and timeout classification.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/reperio/pkg/common"
	"github.com/ternarybob/reperio/pkg/interfaces"
	"github.com/ternarybob/reperio/pkg/models"
)

// DefaultTimeout bounds a single provider call when no timeout is
// configured. Seconds, not minutes: embedding calls are expected to be
// quick and the caller retries on timeout.
const DefaultTimeout = 30 * time.Second

// Service implements the EmbeddingService interface over an LLM provider.
type Service struct {
	llmService interfaces.LLMService
	limiter    *rate.Limiter
	dimension  int
	timeout    time.Duration
	logger     arbor.ILogger
}

// NewService creates a new embedding service. ratePerSecond bounds calls to
// the provider; zero means unlimited. timeout bounds each provider call and
// falls back to DefaultTimeout when non-positive.
func NewService(llmService interfaces.LLMService, dimension int, ratePerSecond float64, timeout time.Duration, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if ratePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Service{
		llmService: llmService,
		limiter:    limiter,
		dimension:  dimension,
		timeout:    timeout,
		logger:     logger,
	}
}

// Ensure Service implements the interface.
var _ interfaces.EmbeddingService = (*Service)(nil)

// GenerateEmbedding creates a vector embedding for text.
func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	vectors, err := s.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// GenerateEmbeddings creates embeddings for multiple texts in a single
// provider call, preserving input order.
func (s *Service) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", models.ErrEmbeddingUnavailable, err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	vectors, err := s.llmService.EmbedBatch(timeoutCtx, texts)
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w: embedding call exceeded %s: %w",
				models.ErrEmbeddingUnavailable, models.ErrTimeout, s.timeout, err)
		}
		return nil, fmt.Errorf("%w: %w", models.ErrEmbeddingUnavailable, err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: provider returned %d embeddings for %d texts",
			models.ErrEmbeddingUnavailable, len(vectors), len(texts))
	}
	for i, vector := range vectors {
		if len(vector) != s.dimension {
			return nil, fmt.Errorf("%w: embedding %d has dimension %d, expected %d",
				models.ErrEmbeddingUnavailable, i, len(vector), s.dimension)
		}
	}

	s.logger.Debug().
		Int("texts", len(texts)).
		Int("embedding_dim", s.dimension).
		Dur("duration", duration).
		Msg("Generated embeddings")

	return vectors, nil
}

// GenerateQueryEmbedding generates an embedding for a search query.
// Queries currently use the same preparation as document text.
func (s *Service) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return s.GenerateEmbedding(ctx, query)
}

// ModelName returns the embedding model identifier.
func (s *Service) ModelName() string {
	return string(s.llmService.GetMode())
}

// Dimension returns the embedding dimension.
func (s *Service) Dimension() int {
	return s.dimension
}

// IsAvailable checks if the embedding provider is reachable.
func (s *Service) IsAvailable(ctx context.Context) bool {
	if s.llmService == nil {
		return false
	}

	if err := s.llmService.HealthCheck(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("LLM service not available")
		return false
	}

	return true
}

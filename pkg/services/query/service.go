// Package query runs the retrieval side of the engine: embed the question,
// retrieve candidates, and optionally generate a grounded answer.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/reperio/pkg/common"
	"github.com/ternarybob/reperio/pkg/interfaces"
	"github.com/ternarybob/reperio/pkg/models"
	"github.com/ternarybob/reperio/pkg/retriever"
)

// NoDocumentsAnswer is returned by Answer when the collection holds nothing
// relevant; no LLM call is made in that case.
const NoDocumentsAnswer = "No documents have been indexed that match this question."

// Service answers questions against the indexed collection.
type Service struct {
	embeddingService interfaces.EmbeddingService
	retriever        *retriever.HybridRetriever
	answerService    interfaces.AnswerService
	topK             int
	logger           arbor.ILogger
}

// NewService creates a query service. answerService may be nil when only
// Retrieve is used; Answer then fails with a configuration error. topK falls
// back to a default of 5 when non-positive.
func NewService(embeddingService interfaces.EmbeddingService, hybridRetriever *retriever.HybridRetriever, answerService interfaces.AnswerService, topK int, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	if topK <= 0 {
		topK = 5
	}
	return &Service{
		embeddingService: embeddingService,
		retriever:        hybridRetriever,
		answerService:    answerService,
		topK:             topK,
		logger:           logger,
	}
}

// Retrieve returns the candidate set for a question. An empty result means
// nothing indexed matched; it is not an error.
func (s *Service) Retrieve(ctx context.Context, question string) (*models.QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question cannot be empty", models.ErrInvalidQuery)
	}

	start := time.Now()
	queryVector, err := s.embeddingService.GenerateQueryEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	candidates, err := s.retriever.Retrieve(ctx, queryVector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}

	result := &models.QueryResult{
		Candidates:  candidates,
		SourceNames: distinctSourceNames(candidates),
	}

	s.logger.Debug().
		Int("candidates", len(candidates)).
		Int("sources", len(result.SourceNames)).
		Dur("duration", time.Since(start)).
		Msg("Query retrieval completed")

	return result, nil
}

// Answer retrieves candidates for the question and generates a grounded
// answer from them. An empty retrieval short-circuits with NoDocumentsAnswer
// instead of calling the LLM.
func (s *Service) Answer(ctx context.Context, question string) (*models.Answer, error) {
	if s.answerService == nil {
		return nil, fmt.Errorf("%w: no answer service configured", models.ErrInvalidConfig)
	}

	result, err := s.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	if result.Empty() {
		return &models.Answer{Text: NoDocumentsAnswer, Result: result}, nil
	}

	blocks := FormatContext(result.Candidates, s.topK)
	text, err := s.answerService.Generate(ctx, strings.TrimSpace(question), blocks)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &models.Answer{Text: text, Result: result}, nil
}

// distinctSourceNames collects source names in first-seen candidate order.
func distinctSourceNames(candidates []models.RetrievalCandidate) []string {
	seen := make(map[string]bool, len(candidates))
	names := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		name := candidate.Record.Metadata.SourceName
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

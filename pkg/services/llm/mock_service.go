package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/reperio/pkg/common"
	"github.com/ternarybob/reperio/pkg/interfaces"
)

// MockService implements the LLMService interface with deterministic fake
// responses. It exists for tests and for running the engine without any
// provider credentials; embeddings are seeded from the input text so the
// same text always yields the same vector.
type MockService struct {
	dimension int
	logger    arbor.ILogger
}

// NewMockService creates a mock LLM service with the given embedding
// dimensionality.
func NewMockService(dimension int, logger arbor.ILogger) *MockService {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &MockService{
		dimension: dimension,
		logger:    logger,
	}
}

// Embed generates a deterministic embedding seeded from the text.
func (s *MockService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	embedding := make([]float32, s.dimension)
	seed := 0
	for _, c := range text {
		seed += int(c)
	}
	for i := range embedding {
		embedding[i] = float32((seed+i)%100) / 100.0
	}

	return embedding, nil
}

// EmbedBatch generates deterministic embeddings for multiple texts.
func (s *MockService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty for embedding generation")
	}

	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		embedding, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, embedding)
	}
	return vectors, nil
}

// Chat echoes the last message back as a fake completion.
func (s *MockService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty for chat completion")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lastMsg := messages[len(messages)-1]
	return fmt.Sprintf("Mock response to: %s", lastMsg.Content), nil
}

// HealthCheck always succeeds for the mock service.
func (s *MockService) HealthCheck(ctx context.Context) error {
	return nil
}

// GetMode returns the operational mode of the LLM service.
func (s *MockService) GetMode() interfaces.LLMMode {
	return interfaces.LLMModeOffline
}

// Close releases resources; the mock holds none.
func (s *MockService) Close() error {
	return nil
}

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/reperio/pkg/common"
	"github.com/ternarybob/reperio/pkg/interfaces"
)

const answerSystemPrompt = `You are a document assistant. Answer the question using only the provided context. Each context block names the document it came from; cite those names in your answer. If the context does not contain the answer, say so.`

// AnswerService generates answers from attributed context blocks using an
// LLM provider's chat capability.
type AnswerService struct {
	llmService interfaces.LLMService
	logger     arbor.ILogger
}

// NewAnswerService creates an answer service over the given LLM provider.
func NewAnswerService(llmService interfaces.LLMService, logger arbor.ILogger) *AnswerService {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &AnswerService{
		llmService: llmService,
		logger:     logger,
	}
}

// Ensure AnswerService implements the interface.
var _ interfaces.AnswerService = (*AnswerService)(nil)

// Generate produces an answer grounded on the given context blocks.
func (s *AnswerService) Generate(ctx context.Context, question string, contextBlocks []string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question cannot be empty")
	}

	var prompt strings.Builder
	prompt.WriteString("Context:\n\n")
	prompt.WriteString(strings.Join(contextBlocks, "\n---\n"))
	prompt.WriteString("\n\nQuestion: ")
	prompt.WriteString(question)

	messages := []interfaces.Message{
		{Role: "system", Content: answerSystemPrompt},
		{Role: "user", Content: prompt.String()},
	}

	answer, err := s.llmService.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}

	s.logger.Debug().
		Int("context_blocks", len(contextBlocks)).
		Int("answer_length", len(answer)).
		Msg("Generated answer")

	return answer, nil
}

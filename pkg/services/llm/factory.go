package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/reperio/pkg/common"
	"github.com/ternarybob/reperio/pkg/interfaces"
)

// NewLLMService creates the appropriate LLM service implementation based on
// the configured provider.
func NewLLMService(config *common.LLMConfig, logger arbor.ILogger) (interfaces.LLMService, error) {
	if logger == nil {
		logger = common.GetLogger()
	}
	logger.Info().Str("provider", config.Provider).Msg("Initializing LLM service")

	switch config.Provider {
	case "gemini":
		return NewGeminiService(config, logger)

	case "claude":
		return NewClaudeService(config, logger)

	case "mock":
		return NewMockService(config.EmbedDimension, logger), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider '%s': must be 'gemini', 'claude', or 'mock'", config.Provider)
	}
}

package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/reperio/pkg/common"
	"github.com/ternarybob/reperio/pkg/interfaces"
)

func TestMockService_DeterministicEmbeddings(t *testing.T) {
	service := NewMockService(16, arbor.NewLogger())
	ctx := context.Background()

	first, err := service.Embed(ctx, "the same text")
	require.NoError(t, err)
	second, err := service.Embed(ctx, "the same text")
	require.NoError(t, err)

	assert.Len(t, first, 16)
	assert.Equal(t, first, second)

	other, err := service.Embed(ctx, "different text entirely")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestMockService_EmbedBatchPreservesOrder(t *testing.T) {
	service := NewMockService(8, arbor.NewLogger())
	ctx := context.Background()

	vectors, err := service.EmbedBatch(ctx, []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)

	alpha, err := service.Embed(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, alpha, vectors[0])
}

func TestMockService_EmptyInputs(t *testing.T) {
	service := NewMockService(8, arbor.NewLogger())
	ctx := context.Background()

	_, err := service.Embed(ctx, "")
	assert.Error(t, err)

	_, err = service.EmbedBatch(ctx, nil)
	assert.Error(t, err)

	_, err = service.Chat(ctx, nil)
	assert.Error(t, err)
}

func TestMockService_ChatEchoesLastMessage(t *testing.T) {
	service := NewMockService(8, arbor.NewLogger())

	response, err := service.Chat(context.Background(), []interfaces.Message{
		{Role: "system", Content: "ignored"},
		{Role: "user", Content: "hello"},
	})
	require.NoError(t, err)
	assert.Contains(t, response, "hello")
}

func TestMockService_Mode(t *testing.T) {
	service := NewMockService(8, arbor.NewLogger())
	assert.Equal(t, interfaces.LLMModeOffline, service.GetMode())
	assert.NoError(t, service.HealthCheck(context.Background()))
	assert.NoError(t, service.Close())
}

func TestNewLLMService_Factory(t *testing.T) {
	logger := arbor.NewLogger()

	service, err := NewLLMService(&common.LLMConfig{Provider: "mock", EmbedDimension: 8}, logger)
	require.NoError(t, err)
	assert.Equal(t, interfaces.LLMModeOffline, service.GetMode())

	_, err = NewLLMService(&common.LLMConfig{Provider: "unknown"}, logger)
	assert.Error(t, err)

	// Cloud providers require credentials.
	_, err = NewLLMService(&common.LLMConfig{Provider: "claude"}, logger)
	assert.Error(t, err)
}

func TestAnswerService_Generate(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewAnswerService(NewMockService(8, logger), logger)

	answer, err := service.Generate(context.Background(), "how does chunking work?", []string{
		"[From guide.md, position 0] Text is split into overlapping windows.",
	})
	require.NoError(t, err)
	assert.Contains(t, answer, "how does chunking work?")
}

func TestAnswerService_EmptyQuestion(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewAnswerService(NewMockService(8, logger), logger)

	_, err := service.Generate(context.Background(), "   ", nil)
	assert.Error(t, err)
}

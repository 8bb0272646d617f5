package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/reperio/pkg/interfaces"
	"github.com/ternarybob/reperio/pkg/models"
	"github.com/ternarybob/reperio/pkg/retriever"
	"github.com/ternarybob/reperio/pkg/storage/memory"
)

// fixedEmbedder returns the same vector for every input.
type fixedEmbedder struct {
	vector []float32
	err    error
}

func (f *fixedEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fixedEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vector, err := f.GenerateEmbedding(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func (f *fixedEmbedder) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return f.GenerateEmbedding(ctx, query)
}

func (f *fixedEmbedder) ModelName() string                    { return "fixed" }
func (f *fixedEmbedder) Dimension() int                       { return len(f.vector) }
func (f *fixedEmbedder) IsAvailable(ctx context.Context) bool { return true }

var _ interfaces.EmbeddingService = (*fixedEmbedder)(nil)

// recordingAnswerer captures the blocks it was asked to answer from.
type recordingAnswerer struct {
	blocks []string
	answer string
	err    error
}

func (r *recordingAnswerer) Generate(ctx context.Context, question string, contextBlocks []string) (string, error) {
	r.blocks = contextBlocks
	if r.err != nil {
		return "", r.err
	}
	return r.answer, nil
}

func seedRecords(t *testing.T, store *memory.Storage, records ...*models.VectorRecord) {
	t.Helper()
	_, err := store.InsertBatch(context.Background(), records)
	require.NoError(t, err)
}

func record(sourceID, sourceName, text string, position int, vector ...float32) *models.VectorRecord {
	return &models.VectorRecord{
		SourceID:      sourceID,
		PositionIndex: position,
		Vector:        vector,
		Text:          text,
		Metadata:      models.RecordMetadata{SourceName: sourceName},
	}
}

func newQueryService(t *testing.T, embedder interfaces.EmbeddingService, answerer interfaces.AnswerService, topK int) (*Service, *memory.Storage) {
	t.Helper()
	store := memory.NewStorage()
	t.Cleanup(func() { store.Close() })

	logger := arbor.NewLogger()
	hybrid := retriever.New(store, logger)
	return NewService(embedder, hybrid, answerer, topK, logger), store
}

func TestRetrieve_RejectsEmptyQuestion(t *testing.T) {
	service, _ := newQueryService(t, &fixedEmbedder{vector: []float32{1, 0}}, nil, 5)

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := service.Retrieve(context.Background(), question)
		assert.ErrorIs(t, err, models.ErrInvalidQuery)
	}
}

func TestRetrieve_EmptyCollection(t *testing.T) {
	service, _ := newQueryService(t, &fixedEmbedder{vector: []float32{1, 0}}, nil, 5)

	result, err := service.Retrieve(context.Background(), "anything indexed?")
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Empty(t, result.SourceNames)
}

func TestRetrieve_EmbeddingFailure(t *testing.T) {
	embedder := &fixedEmbedder{err: fmt.Errorf("%w: provider down", models.ErrEmbeddingUnavailable)}
	service, _ := newQueryService(t, embedder, nil, 5)

	_, err := service.Retrieve(context.Background(), "question")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
}

func TestRetrieve_SourceNamesFirstSeenOrder(t *testing.T) {
	service, store := newQueryService(t, &fixedEmbedder{vector: []float32{1, 0}}, nil, 5)
	seedRecords(t, store,
		record("src_a", "alpha.md", "closest content", 0, 1, 0),
		record("src_b", "beta.md", "second content", 0, 0.9, 0.3),
		record("src_a", "alpha.md", "third content", 1, 0.8, 0.4),
	)

	result, err := service.Retrieve(context.Background(), "question")
	require.NoError(t, err)
	require.False(t, result.Empty())
	assert.Equal(t, []string{"alpha.md", "beta.md"}, result.SourceNames)
}

func TestAnswer_EmptyCollectionShortCircuits(t *testing.T) {
	answerer := &recordingAnswerer{answer: "should never be called"}
	service, _ := newQueryService(t, &fixedEmbedder{vector: []float32{1, 0}}, answerer, 5)

	answer, err := service.Answer(context.Background(), "is anything indexed?")
	require.NoError(t, err)
	assert.Equal(t, NoDocumentsAnswer, answer.Text)
	assert.True(t, answer.Result.Empty())
	assert.Nil(t, answerer.blocks, "LLM must not be called for an empty result")
}

func TestAnswer_FormatsAttributedContext(t *testing.T) {
	answerer := &recordingAnswerer{answer: "Install via the guide."}
	service, store := newQueryService(t, &fixedEmbedder{vector: []float32{1, 0}}, answerer, 5)
	seedRecords(t, store,
		record("src_a", "guide.md", "Run the installer.", 3, 1, 0),
	)

	answer, err := service.Answer(context.Background(), "how do I install?")
	require.NoError(t, err)
	assert.Equal(t, "Install via the guide.", answer.Text)

	require.NotEmpty(t, answerer.blocks)
	assert.Equal(t, "[From guide.md, position 3] Run the installer.", answerer.blocks[0])
}

func TestAnswer_ForwardsAtMostTopK(t *testing.T) {
	answerer := &recordingAnswerer{answer: "ok"}
	service, store := newQueryService(t, &fixedEmbedder{vector: []float32{1, 0}}, answerer, 2)

	records := make([]*models.VectorRecord, 0, 8)
	for i := 0; i < 8; i++ {
		records = append(records, record("src_a", "doc.md",
			fmt.Sprintf("distinct chunk number %d", i), i, float32(i+1), float32(8-i)))
	}
	seedRecords(t, store, records...)

	_, err := service.Answer(context.Background(), "question")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(answerer.blocks), 2)
}

func TestAnswer_GenerationFailure(t *testing.T) {
	answerer := &recordingAnswerer{err: fmt.Errorf("model overloaded")}
	service, store := newQueryService(t, &fixedEmbedder{vector: []float32{1, 0}}, answerer, 5)
	seedRecords(t, store, record("src_a", "doc.md", "content", 0, 1, 0))

	_, err := service.Answer(context.Background(), "question")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate answer")
}

func TestAnswer_WithoutAnswerService(t *testing.T) {
	service, _ := newQueryService(t, &fixedEmbedder{vector: []float32{1, 0}}, nil, 5)

	_, err := service.Answer(context.Background(), "question")
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
}

func TestFormatContext(t *testing.T) {
	candidates := []models.RetrievalCandidate{
		{Record: record("src_a", "a.md", "first", 0, 1)},
		{Record: record("src_b", "b.md", "second", 4, 1)},
		{Record: record("src_c", "c.md", "third", 2, 1)},
	}

	blocks := FormatContext(candidates, 2)
	require.Len(t, blocks, 2)
	assert.Equal(t, "[From a.md, position 0] first", blocks[0])
	assert.Equal(t, "[From b.md, position 4] second", blocks[1])

	assert.Len(t, FormatContext(candidates, 0), 3)
	assert.Empty(t, FormatContext(nil, 5))
}

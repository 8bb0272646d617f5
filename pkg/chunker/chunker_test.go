package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/reperio/pkg/models"
)

func TestNew_InvalidParameters(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{name: "zero size", size: 0, overlap: 0},
		{name: "negative size", size: -10, overlap: 0},
		{name: "negative overlap", size: 100, overlap: -1},
		{name: "overlap equals size", size: 100, overlap: 100},
		{name: "overlap exceeds size", size: 100, overlap: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidConfig))
		})
	}
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	c, err := New(1000, 200)
	require.NoError(t, err)

	text := "A short document that fits in one chunk."
	chunks := c.Chunk("src_test", text)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].PositionIndex)
	assert.Equal(t, 0, chunks[0].CharStart)
	assert.Equal(t, len([]rune(text)), chunks[0].CharEnd)
	assert.False(t, chunks[0].BoundaryTruncated)
}

func TestChunk_EmptyText(t *testing.T) {
	c, err := New(1000, 200)
	require.NoError(t, err)

	assert.Empty(t, c.Chunk("src_test", ""))
}

func TestChunk_WhitespaceOnlyText(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	assert.Empty(t, c.Chunk("src_test", strings.Repeat(" \n\t", 50)))
}

// 2,500 characters with no boundaries at size 1000 / overlap 200 walks the
// text in steps of 800: [0,1000) [800,1800) [1600,2500).
func TestChunk_SlidingWindowSteps(t *testing.T) {
	c, err := New(1000, 200)
	require.NoError(t, err)

	text := strings.Repeat("a", 2500)
	chunks := c.Chunk("src_test", text)

	require.Len(t, chunks, 3)
	assert.Equal(t, 0, chunks[0].CharStart)
	assert.Equal(t, 1000, chunks[0].CharEnd)
	assert.Equal(t, 800, chunks[1].CharStart)
	assert.Equal(t, 1800, chunks[1].CharEnd)
	assert.Equal(t, 1600, chunks[2].CharStart)
	assert.Equal(t, 2500, chunks[2].CharEnd)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.PositionIndex)
		assert.Equal(t, "src_test", chunk.SourceID)
	}
}

func TestChunk_CoverageAndOverlapBound(t *testing.T) {
	c, err := New(500, 100)
	require.NoError(t, err)

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)
	runes := []rune(text)
	chunks := c.Chunk("src_test", text)
	require.NotEmpty(t, chunks)

	// Full coverage: every rune falls inside at least one chunk window.
	covered := make([]bool, len(runes))
	for _, chunk := range chunks {
		require.LessOrEqual(t, chunk.CharEnd-chunk.CharStart, 500)
		for i := chunk.CharStart; i < chunk.CharEnd; i++ {
			covered[i] = true
		}
	}
	for i, ok := range covered {
		require.True(t, ok, "rune %d not covered by any chunk", i)
	}

	// Consecutive chunks overlap by at most the configured width.
	for i := 1; i < len(chunks); i++ {
		overlap := chunks[i-1].CharEnd - chunks[i].CharStart
		assert.LessOrEqual(t, overlap, 100)
		assert.Greater(t, chunks[i].CharStart, chunks[i-1].CharStart, "windows must make forward progress")
	}
}

func TestChunk_PrefersSentenceBoundary(t *testing.T) {
	c, err := New(1000, 200)
	require.NoError(t, err)

	// Sentence terminator at rune 995, inside the lookback window of the
	// hard cut at 1000.
	text := strings.Repeat("a", 995) + "." + strings.Repeat("b", 1000)
	chunks := c.Chunk("src_test", text)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 996, chunks[0].CharEnd)
	assert.True(t, chunks[0].BoundaryTruncated)
	assert.True(t, strings.HasSuffix(chunks[0].Text, "."))
}

func TestChunk_FallsBackToWhitespaceBoundary(t *testing.T) {
	c, err := New(1000, 200)
	require.NoError(t, err)

	// No sentence terminator in the lookback window, but a space at 990.
	text := strings.Repeat("a", 990) + " " + strings.Repeat("b", 1009)
	chunks := c.Chunk("src_test", text)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 991, chunks[0].CharEnd)
	assert.True(t, chunks[0].BoundaryTruncated)
}

func TestChunk_NoBoundaryHardCut(t *testing.T) {
	c, err := New(100, 10)
	require.NoError(t, err)

	chunks := c.Chunk("src_test", strings.Repeat("x", 150))
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 100, chunks[0].CharEnd)
	assert.False(t, chunks[0].BoundaryTruncated)
}

func TestChunk_RuneOffsets(t *testing.T) {
	c, err := New(10, 2)
	require.NoError(t, err)

	// Multi-byte runes: offsets must count runes, not bytes.
	text := strings.Repeat("é", 15)
	chunks := c.Chunk("src_test", text)

	require.Len(t, chunks, 2)
	assert.Equal(t, 10, chunks[0].CharEnd)
	assert.Equal(t, 8, chunks[1].CharStart)
	assert.Equal(t, 15, chunks[1].CharEnd)
	assert.Equal(t, 10, len([]rune(chunks[0].Text)))
}

func TestChunk_Deterministic(t *testing.T) {
	c, err := New(300, 60)
	require.NoError(t, err)

	text := strings.Repeat("Deterministic chunking is required for re-ingestion. ", 40)
	first := c.Chunk("src_test", text)
	second := c.Chunk("src_test", text)

	assert.Equal(t, first, second)
}

func TestChunk_ZeroOverlap(t *testing.T) {
	c, err := New(100, 0)
	require.NoError(t, err)

	chunks := c.Chunk("src_test", strings.Repeat("z", 250))
	require.Len(t, chunks, 3)
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].CharEnd, chunks[i].CharStart)
	}
}

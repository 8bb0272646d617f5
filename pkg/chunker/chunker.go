// Package chunker splits normalized document text into overlapping,
// size-bounded segments with boundary-aware truncation and positional
// metadata.
package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ternarybob/reperio/pkg/models"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// maxBoundaryLookback bounds how far back from a hard cut the chunker
// searches for a sentence or whitespace boundary.
const maxBoundaryLookback = 200

// Chunker splits text into overlapping chunks. Chunking is deterministic:
// the same text and parameters always yield the same chunk sequence.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a chunker. Returns models.ErrInvalidConfig when size is not
// positive or overlap is negative or not smaller than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be > 0, got %d", models.ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be >= 0 and < chunk size, got overlap=%d size=%d", models.ErrInvalidConfig, overlap, size)
	}
	return &Chunker{chunkSize: size, overlap: overlap}, nil
}

// ChunkSize returns the configured window size in characters.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap width in characters.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits text into overlapping chunks for the given source. Offsets
// are rune offsets into text. Whitespace-only windows are dropped without
// consuming a position index, so PositionIndex is contiguous from 0 across
// the emitted chunks. Text no longer than the chunk size yields exactly one
// chunk covering all of it.
func (c *Chunker) Chunk(sourceID, text string) []models.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	lookback := maxBoundaryLookback
	if c.chunkSize < lookback {
		lookback = c.chunkSize
	}

	estimated := len(runes)/(c.chunkSize-c.overlap) + 1
	chunks := make([]models.Chunk, 0, estimated)

	position := 0
	start := 0

	for start < len(runes) {
		end := start + c.chunkSize
		truncated := false
		if end >= len(runes) {
			end = len(runes)
		} else if b := boundaryBefore(runes, start, end, lookback); b > start {
			end = b
			truncated = true
		}

		window := string(runes[start:end])
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, models.Chunk{
				SourceID:          sourceID,
				PositionIndex:     position,
				Text:              window,
				CharStart:         start,
				CharEnd:           end,
				BoundaryTruncated: truncated,
			})
			position++
		}

		if end == len(runes) {
			break
		}

		// Next window starts inside the previous one to guarantee overlap.
		next := end - c.overlap
		if next <= start {
			// Guard forward progress when a boundary cut shrank the window.
			next = start + 1
		}
		start = next
	}

	return chunks
}

// boundaryBefore finds the best cut point at or before end, looking back at
// most lookback runes. Sentence terminators win over plain whitespace; the
// cut lands just after the boundary rune. Returns -1 when no boundary exists
// in the window.
func boundaryBefore(runes []rune, start, end, lookback int) int {
	limit := end - lookback
	if limit < start {
		limit = start
	}

	whitespaceCut := -1
	for i := end - 1; i >= limit; i-- {
		switch runes[i] {
		case '.', '!', '?', '\n':
			return i + 1
		}
		if whitespaceCut == -1 && unicode.IsSpace(runes[i]) {
			whitespaceCut = i + 1
		}
	}
	return whitespaceCut
}

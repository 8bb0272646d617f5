package query

import (
	"fmt"

	"github.com/ternarybob/reperio/pkg/models"
)

// FormatContext renders candidates into attributed context blocks for the
// answer prompt, at most topK of them, in candidate order. Each block names
// the source and chunk position so the model can cite its grounding.
func FormatContext(candidates []models.RetrievalCandidate, topK int) []string {
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}

	blocks := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		record := candidate.Record
		blocks = append(blocks, fmt.Sprintf("[From %s, position %d] %s",
			record.Metadata.SourceName, record.PositionIndex, record.Text))
	}
	return blocks
}

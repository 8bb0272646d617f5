package retriever

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/reperio/pkg/ranker"
)

// fingerprintLength is how many characters of chunk text feed the content
// fingerprint used for dedup. Overlapping windows and repeated boilerplate
// share their head, so the prefix is enough to identify duplicate content.
const fingerprintLength = 200

// selectMMR greedily picks up to limit candidates from the pool, each time
// maximizing lambda*relevance - (1-lambda)*maxSimilarity(candidate,
// selected). The pool must be relevance-ranked; the first pick is therefore
// always the top relevance candidate. Ties keep the earlier (higher
// relevance) pool entry.
func selectMMR(queryVector []float32, pool []ranker.ScoredRecord, limit int, lambda float64) ([]ranker.ScoredRecord, error) {
	if len(pool) == 0 || limit <= 0 {
		return nil, nil
	}

	for _, scored := range pool {
		if len(scored.Record.Vector) != len(queryVector) {
			return nil, fmt.Errorf("candidate %s has dimension %d, query has %d",
				scored.Record.ID, len(scored.Record.Vector), len(queryVector))
		}
	}

	selected := make([]ranker.ScoredRecord, 0, limit)
	remaining := make([]ranker.ScoredRecord, len(pool))
	copy(remaining, pool)

	// maxSim[i] tracks the highest similarity between remaining[i] and any
	// selected candidate, updated incrementally after each pick.
	maxSim := make([]float64, len(remaining))

	for len(selected) < limit && len(remaining) > 0 {
		bestIdx := 0
		bestScore := lambda*remaining[0].Score - (1-lambda)*maxSim[0]
		for i := 1; i < len(remaining); i++ {
			score := lambda*remaining[i].Score - (1-lambda)*maxSim[i]
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		picked := remaining[bestIdx]
		selected = append(selected, picked)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		maxSim = append(maxSim[:bestIdx], maxSim[bestIdx+1:]...)

		for i := range remaining {
			sim := ranker.CosineSimilarity(picked.Record.Vector, remaining[i].Record.Vector)
			if sim > maxSim[i] {
				maxSim[i] = sim
			}
		}
	}

	return selected, nil
}

// fingerprint hashes the first fingerprintLength characters of the chunk
// text. Content identity keys on text, not record ID.
func fingerprint(text string) uint64 {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > fingerprintLength {
		runes := []rune(text)
		text = string(runes[:fingerprintLength])
	}

	h := fnv.New64a()
	h.Write([]byte(text))
	return h.Sum64()
}

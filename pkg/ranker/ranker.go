// Package ranker scores candidate vectors against a query vector and
// produces a deterministic total order over a candidate set. It performs an
// exact linear pass, so a future approximate-nearest-neighbor index can be
// substituted behind the same Rank contract without touching callers.
package ranker

import (
	"math"
	"sort"

	"github.com/ternarybob/reperio/pkg/models"
)

// ScoredRecord pairs a vector record with its similarity to the query.
type ScoredRecord struct {
	Record *models.VectorRecord
	Score  float64
}

// CosineSimilarity computes dot(a, b) / (||a|| * ||b||) in [-1, 1]. A zero
// vector scores 0 against everything, including another zero vector: never
// an error, never NaN. Mismatched lengths also score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Clamp accumulated floating-point drift to the contract range.
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score
}

// Rank orders candidates by descending cosine similarity to query. Ties
// break by ascending record ID so the ordering is deterministic regardless
// of input order. Scores are compared exactly, no epsilon. topN caps the
// result length; fewer candidates return all of them.
func Rank(query []float32, candidates []*models.VectorRecord, topN int) []ScoredRecord {
	if len(candidates) == 0 || topN <= 0 {
		return nil
	}

	scored := make([]ScoredRecord, 0, len(candidates))
	for _, record := range candidates {
		scored = append(scored, ScoredRecord{
			Record: record,
			Score:  CosineSimilarity(query, record.Vector),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Record.ID < scored[j].Record.ID
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

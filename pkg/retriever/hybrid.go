// Package retriever answers "give me the best chunks for this query" by
// blending a pure-relevance ranking with a diversity-aware selection and
// merging the two into one deduplicated, size-bounded candidate list. Pure
// top-k by similarity tends to return near-duplicate chunks from the same
// document section once multiple documents are indexed; the diversity pass
// counteracts that.
package retriever

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/reperio/pkg/common"
	"github.com/ternarybob/reperio/pkg/interfaces"
	"github.com/ternarybob/reperio/pkg/models"
	"github.com/ternarybob/reperio/pkg/ranker"
)

// Defaults for the retrieval parameters.
const (
	DefaultFetchMultiplier = 4
	DefaultMinFetch        = 20
	DefaultLambda          = 0.6
	DefaultHardCap         = 12
)

// Option configures the hybrid retriever.
type Option func(*HybridRetriever)

// WithFetchMultiplier sets the candidate pool multiplier over k.
func WithFetchMultiplier(multiplier int) Option {
	return func(r *HybridRetriever) {
		if multiplier > 0 {
			r.fetchMultiplier = multiplier
		}
	}
}

// WithMinFetch sets the minimum candidate pool size.
func WithMinFetch(minFetch int) Option {
	return func(r *HybridRetriever) {
		if minFetch > 0 {
			r.minFetch = minFetch
		}
	}
}

// WithLambda sets the MMR relevance/diversity trade-off in [0, 1].
// Higher values favor relevance.
func WithLambda(lambda float64) Option {
	return func(r *HybridRetriever) {
		if lambda >= 0 && lambda <= 1 {
			r.lambda = lambda
		}
	}
}

// WithHardCap sets the absolute bound on the merged result length.
func WithHardCap(cap int) Option {
	return func(r *HybridRetriever) {
		if cap > 0 {
			r.hardCap = cap
		}
	}
}

// WithFilter restricts retrieval to records matching the scan filter.
func WithFilter(filter *interfaces.ScanFilter) Option {
	return func(r *HybridRetriever) {
		r.filter = filter
	}
}

// HybridRetriever retrieves candidates by combining exact cosine ranking
// with a Maximal-Marginal-Relevance selection over a linear scan of the
// record store.
type HybridRetriever struct {
	storage interfaces.VectorStorage
	logger  arbor.ILogger

	fetchMultiplier int
	minFetch        int
	lambda          float64
	hardCap         int
	filter          *interfaces.ScanFilter
}

// New creates a hybrid retriever over the given store.
func New(storage interfaces.VectorStorage, logger arbor.ILogger, opts ...Option) *HybridRetriever {
	if logger == nil {
		logger = common.GetLogger()
	}
	r := &HybridRetriever{
		storage:         storage,
		logger:          logger,
		fetchMultiplier: DefaultFetchMultiplier,
		minFetch:        DefaultMinFetch,
		lambda:          DefaultLambda,
		hardCap:         DefaultHardCap,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns up to min(2*kFinal, hard cap) deduplicated candidates
// for the query vector, ordered relevance pass first. An empty or fully
// filtered collection yields an empty slice and no error. A diversity-pass
// failure degrades to relevance-only results rather than failing the query.
func (r *HybridRetriever) Retrieve(ctx context.Context, queryVector []float32, kFinal int) ([]models.RetrievalCandidate, error) {
	if kFinal <= 0 {
		return nil, fmt.Errorf("%w: k must be > 0, got %d", models.ErrInvalidConfig, kFinal)
	}

	records, err := r.storage.Scan(ctx, r.filter)
	if err != nil {
		return nil, fmt.Errorf("candidate scan: %w", err)
	}
	if len(records) == 0 {
		// Normal outcome: nothing indexed (or everything filtered out).
		return []models.RetrievalCandidate{}, nil
	}

	fetchK := kFinal * r.fetchMultiplier
	if fetchK < r.minFetch {
		fetchK = r.minFetch
	}
	passK := kFinal * 2

	// The relevance pool doubles as the diversity pool: the MMR pass
	// selects from the top fetchK relevance-ranked candidates.
	pool := ranker.Rank(queryVector, records, fetchK)

	relevance := pool
	if len(relevance) > passK {
		relevance = relevance[:passK]
	}

	diversity, err := selectMMR(queryVector, pool, passK, r.lambda)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Diversity pass failed, degrading to relevance-only results")
		diversity = nil
	}

	bound := passK
	if bound > r.hardCap {
		bound = r.hardCap
	}
	merged := mergeCandidates(relevance, diversity, kFinal, bound)

	r.logger.Debug().
		Int("candidates", len(records)).
		Int("pool", len(pool)).
		Int("results", len(merged)).
		Msg("Hybrid retrieval completed")

	return merged, nil
}

// mergeCandidates combines the two passes into one deduplicated list bounded
// by bound. The relevance list comes first because it is the higher-precision
// signal, but its contribution is capped at kFinal (the bound, when the
// diversity pass produced nothing) so diversity picks always survive the
// bound instead of being truncated off the tail. A candidate from either pass
// is skipped when an already-included candidate carries identical content.
// Identity is a fingerprint of the chunk text, not the record ID, because
// overlapping chunk windows can carry the same text under different IDs.
func mergeCandidates(relevance, diversity []ranker.ScoredRecord, kFinal, bound int) []models.RetrievalCandidate {
	relevanceCap := kFinal
	if len(diversity) == 0 || relevanceCap > bound {
		relevanceCap = bound
	}

	merged := make([]models.RetrievalCandidate, 0, bound)
	seen := make(map[uint64]bool, len(relevance)+len(diversity))

	for _, scored := range relevance {
		if len(merged) >= relevanceCap {
			break
		}
		fp := fingerprint(scored.Record.Text)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		merged = append(merged, models.RetrievalCandidate{
			Record: scored.Record,
			Score:  scored.Score,
			Reason: models.SelectionRelevance,
		})
	}

	for _, scored := range diversity {
		if len(merged) >= bound {
			break
		}
		fp := fingerprint(scored.Record.Text)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		merged = append(merged, models.RetrievalCandidate{
			Record: scored.Record,
			Score:  scored.Score,
			Reason: models.SelectionDiversity,
		})
	}

	return merged
}

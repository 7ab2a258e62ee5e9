// Package matcher ranks catalog records against a free-text goods
// description by embedding-vector similarity.
package matcher

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/marhaven/tariffdesk/internal/catalog"
	"github.com/marhaven/tariffdesk/internal/common"
	"github.com/marhaven/tariffdesk/internal/model"
	"github.com/marhaven/tariffdesk/internal/service"
)

// Matcher scores every catalog record against a query embedding. The scan
// is a single linear pass; catalog cardinality is in the low thousands, so
// no index structure is warranted.
type Matcher struct {
	catalog  *catalog.Catalog
	embedder service.Embedder
}

// New creates a matcher over an already-loaded catalog. The embedder must
// be the same model family the catalog's vectors were built with.
func New(cat *catalog.Catalog, embedder service.Embedder) *Matcher {
	return &Matcher{catalog: cat, embedder: embedder}
}

// Match returns up to topN candidates ordered by descending similarity.
// An empty catalog yields an empty result, never an error; a query vector
// whose dimensionality differs from the catalog's is a configuration
// error and fails hard.
func (m *Matcher) Match(ctx context.Context, query string, topN int) ([]model.MatchCandidate, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be positive, got %d", common.ErrInvalidInput, topN)
	}
	if m.catalog.Len() == 0 {
		return []model.MatchCandidate{}, nil
	}

	vec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vec) != m.catalog.Dimension() {
		return nil, fmt.Errorf("%w: query dim %d, catalog dim %d",
			common.ErrDimensionMismatch, len(vec), m.catalog.Dimension())
	}

	records := m.catalog.Records()
	candidates := make([]model.MatchCandidate, len(records))
	for i, rec := range records {
		candidates[i] = model.MatchCandidate{
			Code:        rec.Code,
			Description: rec.Description,
			BaseRate:    catalog.ExtractRate(rec.BaseRate),
			Score:       cosineSimilarity(vec, rec.Embedding),
		}
	}

	// Stable sort keeps equally-scored records in catalog iteration order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if topN > len(candidates) {
		topN = len(candidates)
	}
	return candidates[:topN], nil
}

// cosineSimilarity computes (a . b) / (|a| * |b|). Zero-norm vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
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
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

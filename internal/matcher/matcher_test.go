package matcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marhaven/tariffdesk/internal/catalog"
	"github.com/marhaven/tariffdesk/internal/common"
	"github.com/marhaven/tariffdesk/internal/model"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]model.TariffRecord{
		{Code: "9401.61.0000", Description: "Upholstered seats with wooden frames", BaseRate: "Free", Embedding: []float32{1, 0, 0}},
		{Code: "3304.10.0000", Description: "Lip make-up preparations", BaseRate: "Free", Embedding: []float32{0, 1, 0}},
		{Code: "4202.22.8100", Description: "Handbags with outer surface of textile materials", BaseRate: "17.6%", Embedding: []float32{0, 0, 1}},
	})
	require.NoError(t, err)
	return c
}

func TestMatchRanksBySimilarity(t *testing.T) {
	embedder := NewStaticEmbedder(map[string][]float32{
		"three-seater sofa": {0.9, 0.1, 0.1},
	})
	m := New(testCatalog(t), embedder)

	results, err := m.Match(context.Background(), "three-seater sofa", 3)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "9401.61.0000", results[0].Code)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score,
			"scores must be non-increasing")
	}
}

func TestMatchTopNTruncates(t *testing.T) {
	embedder := NewStaticEmbedder(map[string][]float32{"lipstick": {0.1, 0.9, 0.1}})
	m := New(testCatalog(t), embedder)

	results, err := m.Match(context.Background(), "lipstick", 1)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "3304.10.0000", results[0].Code)
}

func TestMatchTopNLargerThanCatalog(t *testing.T) {
	embedder := NewStaticEmbedder(map[string][]float32{"handbag": {0, 0, 1}})
	m := New(testCatalog(t), embedder)

	results, err := m.Match(context.Background(), "handbag", 50)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.InDelta(t, 17.6, results[0].BaseRate, 1e-9)
}

func TestMatchEmptyCatalog(t *testing.T) {
	empty, err := catalog.New(nil)
	require.NoError(t, err)
	m := New(empty, NewStaticEmbedder(nil))

	results, err := m.Match(context.Background(), "anything", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMatchDimensionMismatch(t *testing.T) {
	embedder := NewStaticEmbedder(map[string][]float32{"sofa": {1, 0}})
	m := New(testCatalog(t), embedder)

	_, err := m.Match(context.Background(), "sofa", 5)
	assert.ErrorIs(t, err, common.ErrDimensionMismatch)
}

func TestMatchInvalidTopN(t *testing.T) {
	m := New(testCatalog(t), NewStaticEmbedder(nil))

	_, err := m.Match(context.Background(), "sofa", 0)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestMatchEmbedderFailure(t *testing.T) {
	m := New(testCatalog(t), NewStaticEmbedder(nil))

	_, err := m.Match(context.Background(), "unregistered text", 5)
	assert.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
}

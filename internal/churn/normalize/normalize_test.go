package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sdkchurn/internal/gateway/entity"
)

func edge(from, to entity.SdkID, count int) entity.ChurnEdge {
	return entity.ChurnEdge{From: from, To: to, Count: count}
}

func rowSum(t *testing.T, idx Index, from entity.SdkID, ids []entity.SdkID) float64 {
	t.Helper()
	var sum float64
	for _, to := range ids {
		sum += idx.Lookup(from, to).Normal
	}
	return sum
}

func TestNormalizeRowsSumToOne(t *testing.T) {
	ids := []entity.SdkID{1, 2, 3}
	edges := []entity.ChurnEdge{
		edge(1, 1, 6), edge(1, 2, 3), edge(1, 3, 1),
		edge(2, 2, 7), edge(2, 1, 2),
		edge(3, 3, 1),
	}

	idx := NewIndex(Normalize(edges, ids))

	for _, from := range ids {
		assert.InDelta(t, 1.0, rowSum(t, idx, from, ids), 1e-9, "row %d", from)
	}
	assert.InDelta(t, 0.6, idx.Lookup(1, 1).Normal, 1e-9)
	assert.InDelta(t, 0.3, idx.Lookup(1, 2).Normal, 1e-9)
	assert.InDelta(t, 2.0/9.0, idx.Lookup(2, 1).Normal, 1e-9)
}

func TestNormalizeZeroRows(t *testing.T) {
	ids := []entity.SdkID{1, 2}
	edges := []entity.ChurnEdge{edge(1, 1, 4), edge(2, 2, 0), edge(2, 1, 0)}

	idx := NewIndex(Normalize(edges, ids))

	assert.InDelta(t, 1.0, rowSum(t, idx, 1, ids), 1e-9)
	for _, to := range ids {
		assert.Zero(t, idx.Lookup(2, to).Normal)
	}
}

func TestNormalizeExcludesOutOfSetEdgesFromDenominator(t *testing.T) {
	ids := []entity.SdkID{1, 2}
	edges := []entity.ChurnEdge{
		edge(1, 1, 2),
		edge(1, 2, 2),
		// 99 is not requested; it must not shrink row 1.
		edge(1, 99, 100),
		edge(99, 1, 5),
	}

	out := Normalize(edges, ids)
	idx := NewIndex(out)

	assert.Len(t, out, len(edges), "every input edge keeps a normalized value")
	assert.InDelta(t, 0.5, idx.Lookup(1, 1).Normal, 1e-9)
	assert.InDelta(t, 0.5, idx.Lookup(1, 2).Normal, 1e-9)
	assert.InDelta(t, 25.0, idx.Lookup(1, 99).Normal, 1e-9)
	assert.Zero(t, idx.Lookup(99, 1).Normal, "row without a filtered sum is zero")
}

func TestNormalizeMissingPairsDefaultToZero(t *testing.T) {
	idx := NewIndex(Normalize([]entity.ChurnEdge{edge(1, 1, 3)}, []entity.SdkID{1, 2}))

	got := idx.Lookup(2, 1)
	assert.Equal(t, entity.SdkID(2), got.From)
	assert.Equal(t, entity.SdkID(1), got.To)
	assert.Zero(t, got.Count)
	assert.Zero(t, got.Normal)
}

func TestNormalizeEmptyInput(t *testing.T) {
	assert.Empty(t, Normalize(nil, []entity.SdkID{1}))
	assert.Empty(t, Normalize(nil, nil))
}

func TestNormalizePreservesCounts(t *testing.T) {
	edges := []entity.ChurnEdge{edge(3, 3, 10), edge(3, 4, 5)}
	out := Normalize(edges, []entity.SdkID{3, 4})
	for i, e := range out {
		assert.Equal(t, edges[i], e.ChurnEdge)
	}
}

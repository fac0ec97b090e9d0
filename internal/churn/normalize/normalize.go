// Package normalize turns raw churn counts into row-wise proportions.
package normalize

import "sdkchurn/internal/gateway/entity"

// Normalize attaches a row proportion to every input edge.
//
// Row sums only include edges whose both ends are in ids, but every input edge
// gets a value, so callers can look up any (from, to) pair inside the set and
// edges that point outside it do not break anything. A zero count or a
// missing/zero row sum yields 0.
func Normalize(edges []entity.ChurnEdge, ids []entity.SdkID) []entity.NormalizedChurnEdge {
	in := make(map[entity.SdkID]struct{}, len(ids))
	for _, id := range ids {
		in[id] = struct{}{}
	}

	rowSums := make(map[entity.SdkID]int, len(ids))
	for _, e := range edges {
		_, fromOK := in[e.From]
		_, toOK := in[e.To]
		if fromOK && toOK {
			rowSums[e.From] += e.Count
		}
	}

	out := make([]entity.NormalizedChurnEdge, 0, len(edges))
	for _, e := range edges {
		out = append(out, entity.NormalizedChurnEdge{
			ChurnEdge: e,
			Normal:    proportion(e.Count, rowSums[e.From]),
		})
	}
	return out
}

func proportion(count, sum int) float64 {
	if count == 0 || sum == 0 {
		return 0
	}
	return float64(count) / float64(sum)
}

// Index keys normalized edges by their (from, to) pair.
type Index map[entity.Pair]entity.NormalizedChurnEdge

func NewIndex(edges []entity.NormalizedChurnEdge) Index {
	idx := make(Index, len(edges))
	for _, e := range edges {
		idx[entity.Pair{From: e.From, To: e.To}] = e
	}
	return idx
}

// Lookup returns the zero edge for pairs the aggregator did not report.
func (idx Index) Lookup(from, to entity.SdkID) entity.NormalizedChurnEdge {
	if e, ok := idx[entity.Pair{From: from, To: to}]; ok {
		return e
	}
	return entity.NormalizedChurnEdge{ChurnEdge: entity.ChurnEdge{From: from, To: to}}
}

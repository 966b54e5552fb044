package substrate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffWeightsTopK_ReturnsLargestAbsoluteDeltasDescending(t *testing.T) {
	a, err := New(testConfig(40))
	require.NoError(t, err)
	b := a.Clone()

	b.graph.rows[0].weight[0] += 0.9
	if len(b.graph.rows[0].weight) > 1 {
		b.graph.rows[0].weight[1] += 0.3
	}

	delta := a.DiffWeightsTopK(b, 1)
	require.Len(t, delta.WeightDeltas, 1)
	require.InDelta(t, -0.9, delta.WeightDeltas[0].DW, 1e-9)
}

func TestApplyWeightDelta_ClampsPerEdgeAndTotalBounds(t *testing.T) {
	s, err := New(testConfig(41))
	require.NoError(t, err)

	src := uint32(0)
	dst := s.graph.rows[0].to[0]
	s.graph.rows[0].weight[0] = 1.4

	delta := BrainDelta{WeightDeltas: []WeightDelta{{Src: src, Dst: dst, DW: 1.0}}}
	s.ApplyWeightDelta(delta, 0.05)

	require.LessOrEqual(t, s.graph.rows[0].weight[0], edgeMaxWeight)
	require.InDelta(t, 1.45, s.graph.rows[0].weight[0], 1e-9)
}

func TestApplyWeightDelta_SkipsMissingEdges(t *testing.T) {
	s, err := New(testConfig(42))
	require.NoError(t, err)
	before := append([]float64(nil), s.graph.rows[0].weight...)

	delta := BrainDelta{WeightDeltas: []WeightDelta{{Src: 0, Dst: 999999, DW: 1.0}}}
	s.ApplyWeightDelta(delta, 1.0)

	require.Equal(t, before, s.graph.rows[0].weight)
}

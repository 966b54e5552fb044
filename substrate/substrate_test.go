package substrate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(50)
	cfg.UnitCount = 0
	_, err := New(cfg)
	require.Error(t, err)
}

func TestNew_IsDeterministicForFixedSeed(t *testing.T) {
	a, err := New(testConfig(51))
	require.NoError(t, err)
	b, err := New(testConfig(51))
	require.NoError(t, err)

	require.Equal(t, a.graph.connectionCount(), b.graph.connectionCount())
	for i := range a.graph.rows {
		require.Equal(t, a.graph.rows[i].to, b.graph.rows[i].to)
		require.Equal(t, a.graph.rows[i].weight, b.graph.rows[i].weight)
	}
}

func TestClone_IsIndependentOfOriginal(t *testing.T) {
	s, err := New(testConfig(52))
	require.NoError(t, err)
	clone := s.Clone()

	clone.units[0].Amplitude = 1.5
	require.NotEqual(t, s.units[0].Amplitude, clone.units[0].Amplitude)

	clone.graph.rows[0].weight[0] = 1.2
	require.NotEqual(t, s.graph.rows[0].weight[0], clone.graph.rows[0].weight[0])
}

func TestClone_PreservesRNGState(t *testing.T) {
	s, err := New(testConfig(53))
	require.NoError(t, err)
	clone := s.Clone()
	require.Equal(t, s.rng.state, clone.rng.state)
}

func TestAllocUnits_RespectsMaxUnits(t *testing.T) {
	cfg := testConfig(54)
	cfg.UnitCount = 10
	cfg.MaxUnits = 12
	s, err := New(cfg)
	require.NoError(t, err)

	ids := s.allocUnits(5)
	require.Len(t, ids, 2)
	require.Equal(t, 12, len(s.units))

	ids = s.allocUnits(5)
	require.Empty(t, ids)
}

func TestGrowUnits_WiresNewUnitsWithOutEdges(t *testing.T) {
	cfg := testConfig(55)
	cfg.UnitCount = 10
	cfg.MaxUnits = 20
	cfg.ConnectivityPerUnit = 3
	s, err := New(cfg)
	require.NoError(t, err)

	grew := s.GrowUnits(4, 3)
	require.True(t, grew)
	require.Equal(t, 14, len(s.units))
	for i := 10; i < 14; i++ {
		to, w := s.graph.neighbors(i)
		require.Len(t, to, 3)
		require.Len(t, w, 3)
	}
}

func TestGrowUnits_ReturnsFalseAtCapacity(t *testing.T) {
	cfg := testConfig(56)
	cfg.UnitCount = 10
	cfg.MaxUnits = 10
	s, err := New(cfg)
	require.NoError(t, err)

	require.False(t, s.GrowUnits(4, 3))
}

func TestShouldGrowAndMaybeNeurogenesis(t *testing.T) {
	cfg := testConfig(57)
	cfg.UnitCount = 10
	cfg.MaxUnits = 20
	s, err := New(cfg)
	require.NoError(t, err)

	s.diag.AvgAmp = 0
	require.False(t, s.ShouldGrow(1.0))

	s.diag.AvgAmp = 3.0
	require.True(t, s.ShouldGrow(1.0))
	require.True(t, s.MaybeNeurogenesis(1.0, 2))
	require.Equal(t, 12, len(s.units))
}

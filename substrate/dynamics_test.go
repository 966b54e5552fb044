package substrate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig(seed int64) Config {
	cfg := DefaultConfig()
	cfg.UnitCount = 20
	cfg.ConnectivityPerUnit = 4
	cfg.MaxUnits = 200 // headroom so EnsureSensor/EnsureAction can allocate group units
	cfg.Seed = &seed
	return cfg
}

func TestStep_KeepsAmplitudeAndPhaseInBounds(t *testing.T) {
	s, err := New(testConfig(1))
	require.NoError(t, err)

	for step := 0; step < 50; step++ {
		s.Step()
	}
	for _, u := range s.units {
		require.GreaterOrEqual(t, u.Amplitude, -2.0)
		require.LessOrEqual(t, u.Amplitude, 2.0)
		require.Greater(t, u.Phase, -3.1415926535)
		require.LessOrEqual(t, u.Phase, 3.1415926536)
	}
}

func TestStep_KeepsWeightsInBounds(t *testing.T) {
	s, err := New(testConfig(2))
	require.NoError(t, err)

	for step := 0; step < 50; step++ {
		s.Step()
	}
	for _, r := range s.graph.rows {
		for _, w := range r.weight {
			require.GreaterOrEqual(t, w, edgeMinWeight)
			require.LessOrEqual(t, w, edgeMaxWeight)
		}
	}
}

func TestStep_NoPlasticityConservesWeightUnderZeroRates(t *testing.T) {
	cfg := testConfig(3)
	cfg.HebbRate = 0
	cfg.ForgetRate = 0
	cfg.PruneBelow = 0
	cfg.NoiseAmp = 0
	cfg.NoisePhase = 0
	s, err := New(cfg)
	require.NoError(t, err)

	before := s.graph.sumAbsWeight()
	for step := 0; step < 20; step++ {
		s.Step()
	}
	after := s.graph.sumAbsWeight()
	require.InDelta(t, before, after, 1e-9)
}

func TestStep_ForgettingDecaysWeightMagnitudeOverTime(t *testing.T) {
	cfg := testConfig(4)
	cfg.HebbRate = 0
	cfg.ForgetRate = 0.05
	cfg.PruneBelow = 0
	cfg.NoiseAmp = 0
	cfg.NoisePhase = 0
	s, err := New(cfg)
	require.NoError(t, err)
	for i := range s.graph.rows[0].weight {
		s.graph.rows[0].weight[i] = 1.0
	}

	before := s.graph.sumAbsWeight()
	for step := 0; step < 5; step++ {
		s.Step()
	}
	after := s.graph.sumAbsWeight()
	require.Less(t, after, before)
}

func TestStep_SustainedCoactivityAndPhaseLockStrengthensWeight(t *testing.T) {
	cfg := testConfig(5)
	cfg.NoiseAmp = 0
	cfg.NoisePhase = 0
	cfg.GlobalInhibition = 0
	s, err := New(cfg)
	require.NoError(t, err)

	src, dst := -1, -1
	for i, r := range s.graph.rows {
		if len(r.to) > 0 {
			src, dst = i, int(r.to[0])
			break
		}
	}
	require.NotEqual(t, -1, src)

	idx := 0
	before := s.graph.rows[src].weight[idx]

	for step := 0; step < 10; step++ {
		s.units[src].Amplitude = 1.0
		s.units[dst].Amplitude = 1.0
		s.units[src].Phase = 0
		s.units[dst].Phase = 0
		s.Step()
	}
	after := s.graph.rows[src].weight[idx]
	require.Greater(t, after, before)
}

func TestAngleDeltaAndPhaseAlignment(t *testing.T) {
	require.InDelta(t, 0.0, angleDelta(0, 0), 1e-9)
	require.InDelta(t, 1.0, phaseAlignment(0, 0), 1e-9)
	require.InDelta(t, 0.0, phaseAlignment(0, 3.14159265), 1e-6)
}

package substrate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImage_RoundTripsConfigUnitsGraphAndGroups(t *testing.T) {
	s, err := New(testConfig(60))
	require.NoError(t, err)
	_, err = s.EnsureSensor("spot_left", 4)
	require.NoError(t, err)
	_, err = s.EnsureAction("left", 4)
	require.NoError(t, err)
	_, err = s.EnsureAction("right", 4)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		s.Step()
	}

	b, err := s.SaveImageBytes()
	require.NoError(t, err)

	loaded, err := LoadImageBytes(b)
	require.NoError(t, err)

	wantCfg, err := s.encodeConfig()
	require.NoError(t, err)
	gotCfg, err := loaded.encodeConfig()
	require.NoError(t, err)
	require.Equal(t, wantCfg, gotCfg)
	require.Equal(t, s.ageSteps, loaded.ageSteps)
	require.Equal(t, s.rng.state, loaded.rng.state)
	require.Len(t, loaded.units, len(s.units))
	for i := range s.units {
		require.InDelta(t, s.units[i].Amplitude, loaded.units[i].Amplitude, 1e-5)
		require.InDelta(t, s.units[i].Phase, loaded.units[i].Phase, 1e-5)
		require.Equal(t, s.units[i].IsReserved, loaded.units[i].IsReserved)
		require.Equal(t, s.units[i].LearningEnabled, loaded.units[i].LearningEnabled)
	}
	require.Equal(t, s.graph.connectionCount(), loaded.graph.connectionCount())

	name, ok := loaded.ActionName(0)
	require.True(t, ok)
	require.Equal(t, "left", name)
	name, ok = loaded.ActionName(1)
	require.True(t, ok)
	require.Equal(t, "right", name)
}

func TestImage_RoundTripsSymbolsAndCausalMemory(t *testing.T) {
	s, err := New(testConfig(61))
	require.NoError(t, err)
	_, err = s.EnsureSensor("spot_left", 4)
	require.NoError(t, err)
	_, err = s.EnsureAction("left", 4)
	require.NoError(t, err)

	s.ApplyStimulus("spot_left", 1.0)
	s.NoteAction("left")
	s.SetNeuromodulator(1.0)
	s.CommitObservation()

	b, err := s.SaveImageBytes()
	require.NoError(t, err)
	loaded, err := LoadImageBytes(b)
	require.NoError(t, err)

	a := loaded.Symbol("spot_left")
	pos := loaded.symbols.RewardPos()
	require.Equal(t, s.CausalStrength(s.Symbol("spot_left"), s.symbols.RewardPos()), loaded.CausalStrength(a, pos))
}

func TestImage_RejectsGarbageHeader(t *testing.T) {
	_, err := LoadImageBytes([]byte("not a brain image"))
	require.Error(t, err)
}

func TestImage_EngramEdgeTagSurvivesRoundTrip(t *testing.T) {
	s, err := New(testConfig(62))
	require.NoError(t, err)
	_, err = s.EnsureAction("left", 4)
	require.NoError(t, err)

	hasEngram := false
	for _, r := range s.graph.rows {
		for _, e := range r.engram {
			if e {
				hasEngram = true
			}
		}
	}
	require.True(t, hasEngram, "expected at least one engram-tagged edge into the action group")

	b, err := s.SaveImageBytes()
	require.NoError(t, err)
	loaded, err := LoadImageBytes(b)
	require.NoError(t, err)

	foundEngram := false
	for _, r := range loaded.graph.rows {
		for _, e := range r.engram {
			if e {
				foundEngram = true
			}
		}
	}
	require.True(t, foundEngram)
}

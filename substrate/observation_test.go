package substrate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyStimulus_AddsPendingInputToSensorUnitsOnly(t *testing.T) {
	s, err := New(testConfig(20))
	require.NoError(t, err)
	g, err := s.EnsureSensor("spot_left", 4)
	require.NoError(t, err)

	s.ApplyStimulus("spot_left", 1.0)
	for _, id := range g.unitIDs() {
		require.InDelta(t, s.cfg.ImprintRate, s.units[id].PendingInput, 1e-9)
	}
	require.Equal(t, []string{"spot_left"}, s.obs.stimuli)
}

func TestApplyStimulus_UnknownNameIsNoOp(t *testing.T) {
	s, err := New(testConfig(21))
	require.NoError(t, err)
	s.ApplyStimulus("nonexistent", 1.0)
	require.Empty(t, s.obs.stimuli)
}

func TestCommitObservation_ClearsBufferAndRotatesLagHistory(t *testing.T) {
	s, err := New(testConfig(22))
	require.NoError(t, err)
	_, err = s.EnsureSensor("spot_left", 4)
	require.NoError(t, err)

	s.ApplyStimulus("spot_left", 1.0)
	s.CommitObservation()

	require.Empty(t, s.obs.stimuli)
	require.Len(t, s.lagHistory, 1)
	require.Contains(t, s.lagHistory[0], s.Symbol("spot_left"))
}

func TestCommitObservation_StagesRewardSentinelOnStrongNeuromod(t *testing.T) {
	s, err := New(testConfig(23))
	require.NoError(t, err)
	_, err = s.EnsureSensor("spot_left", 4)
	require.NoError(t, err)

	s.SetNeuromodulator(1.0)
	s.ApplyStimulus("spot_left", 1.0)
	s.CommitObservation()

	require.Contains(t, s.lagHistory[0], s.symbols.RewardPos())
}

func TestDiscardObservation_DoesNotWriteCausalMemory(t *testing.T) {
	s, err := New(testConfig(24))
	require.NoError(t, err)
	_, err = s.EnsureSensor("spot_left", 4)
	require.NoError(t, err)

	s.ApplyStimulus("spot_left", 1.0)
	before := s.CausalStats().Edges
	s.DiscardObservation()
	after := s.CausalStats().Edges

	require.Equal(t, before, after)
	require.Empty(t, s.obs.stimuli)
	require.Len(t, s.lagHistory, 1)
	require.Empty(t, s.lagHistory[0])
}

func TestReinforceAction_BumpsAmplitudeAndRecordsReinforcement(t *testing.T) {
	s, err := New(testConfig(25))
	require.NoError(t, err)
	g, err := s.EnsureAction("left", 4)
	require.NoError(t, err)

	before := s.units[g.Start].Amplitude
	s.ReinforceAction("left", 0.5)
	after := s.units[g.Start].Amplitude

	require.Greater(t, after, before)
	require.Equal(t, []ReinforcedAction{{Name: "left", Delta: 0.5}}, s.LastReinforcedActions())
}

func TestLagHistory_CapsAtMaxDepth(t *testing.T) {
	s, err := New(testConfig(26))
	require.NoError(t, err)
	_, err = s.EnsureSensor("spot_left", 4)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		s.ApplyStimulus("spot_left", 1.0)
		s.CommitObservation()
	}
	require.LessOrEqual(t, len(s.lagHistory), 4)
}

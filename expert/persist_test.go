package expert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadState_FullRoundTripsPolicyStatsAndExperts(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxChildren = 2
	m := NewManager(policy)
	parent := testParent(t, 20)

	m.NoteTrialForSpawnTarget("ctx-x", nil, 100, 0.3, parent)
	m.NoteTrialForSpawnTarget("ctx-y", nil, 100, 0.4, parent)
	require.Equal(t, 2, m.ActiveCount())

	blob, err := m.SaveState(true, Full)
	require.NoError(t, err)

	loaded, enabled, mode, err := LoadState(blob)
	require.NoError(t, err)
	require.True(t, enabled)
	require.Equal(t, Full, mode)

	require.Equal(t, policy.MaxChildren, loaded.policy.MaxChildren)
	require.Equal(t, policy.EpisodeTrials, loaded.policy.EpisodeTrials)
	require.InDelta(t, policy.ConsolidateDeltaMax, loaded.policy.ConsolidateDeltaMax, 1e-6)
	require.InDelta(t, policy.RewardShiftEMADeltaThreshold, loaded.policy.RewardShiftEMADeltaThreshold, 1e-6)

	require.Equal(t, 2, loaded.ActiveCount())
	require.Len(t, loaded.stats, 2)
	require.Equal(t, m.nextID, loaded.nextID)

	for ctx := range m.activeByContext {
		_, ok := loaded.activeByContext[ctx]
		require.True(t, ok, "context %q missing after round trip", ctx)
	}
}

func TestSaveLoadState_DropActiveZeroesExpertsButKeepsStats(t *testing.T) {
	m := NewManager(DefaultPolicy())
	parent := testParent(t, 21)

	m.NoteTrialForSpawnTarget("ctx-z", nil, 100, 0.3, parent)
	require.Equal(t, 1, m.ActiveCount())

	blob, err := m.SaveState(true, DropActive)
	require.NoError(t, err)

	loaded, _, mode, err := LoadState(blob)
	require.NoError(t, err)
	require.Equal(t, DropActive, mode)
	require.Equal(t, 0, loaded.ActiveCount())
	require.Len(t, loaded.stats, 1)
}

func TestSaveLoadState_CooldownsRoundTrip(t *testing.T) {
	policy := DefaultPolicy()
	policy.EpisodeTrials = 1
	m := NewManager(policy)
	parent := testParent(t, 22)

	m.NoteTrialForSpawnTarget("ctx-w", nil, 100, 0.0, parent)
	id := m.activeByContext["ctx-w"]
	m.OnTrialCompletedPath([]uint32{id}, 0.0, parent)
	require.Greater(t, m.cooldowns["ctx-w"], 0)

	blob, err := m.SaveState(true, Full)
	require.NoError(t, err)
	loaded, _, _, err := LoadState(blob)
	require.NoError(t, err)

	require.Equal(t, m.cooldowns["ctx-w"], loaded.cooldowns["ctx-w"])
}

func TestLoadState_RejectsGarbage(t *testing.T) {
	_, _, _, err := LoadState([]byte{1, 2, 3})
	require.Error(t, err)
}

package substrate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHabitNorm_IsClampedAndIgnoresNegativeAmplitude(t *testing.T) {
	s, err := New(testConfig(30))
	require.NoError(t, err)
	g, err := s.EnsureAction("left", 4)
	require.NoError(t, err)

	for _, id := range g.unitIDs() {
		s.units[id].Amplitude = -1
	}
	require.Equal(t, 0.0, s.habitNorm(g))

	for _, id := range g.unitIDs() {
		s.units[id].Amplitude = 2
	}
	require.Equal(t, 1.0, s.habitNorm(g))
}

func TestRankedActionsWithMeaning_TieBreaksByDefinitionOrder(t *testing.T) {
	s, err := New(testConfig(31))
	require.NoError(t, err)
	_, err = s.EnsureAction("left", 4)
	require.NoError(t, err)
	_, err = s.EnsureAction("right", 4)
	require.NoError(t, err)

	ranked := s.RankedActionsWithMeaning("ctx", 0.5)
	require.Len(t, ranked, 2)
	require.Equal(t, "left", ranked[0].Name)
	require.Equal(t, "right", ranked[1].Name)
}

func TestSelectActionWithMeaning_PrefersHigherHabitWhenMeaningEqual(t *testing.T) {
	s, err := New(testConfig(32))
	require.NoError(t, err)
	left, err := s.EnsureAction("left", 4)
	require.NoError(t, err)
	_, err = s.EnsureAction("right", 4)
	require.NoError(t, err)

	for _, id := range left.unitIDs() {
		s.units[id].Amplitude = 2
	}

	name, _ := s.SelectActionWithMeaning("ctx", 0.5)
	require.Equal(t, "left", name)
}

func TestSelectActionWithMeaningIndex_MatchesName(t *testing.T) {
	s, err := New(testConfig(33))
	require.NoError(t, err)
	_, err = s.EnsureAction("left", 4)
	require.NoError(t, err)
	_, err = s.EnsureAction("right", 4)
	require.NoError(t, err)

	idx, _ := s.SelectActionWithMeaningIndex("ctx", 0.5)
	name, ok := s.ActionName(idx)
	require.True(t, ok)
	require.Equal(t, "left", name)
}

func TestMeaningHint_FalseForUnobservedContext(t *testing.T) {
	s, err := New(testConfig(34))
	require.NoError(t, err)
	_, _, ok := s.MeaningHint("never_seen")
	require.False(t, ok)
}

func TestMeaning_RewardedPairRaisesScoreOverUnrewardedOne(t *testing.T) {
	s, err := New(testConfig(35))
	require.NoError(t, err)
	left, err := s.EnsureAction("left", 4)
	require.NoError(t, err)
	right, err := s.EnsureAction("right", 4)
	require.NoError(t, err)
	_, err = s.EnsureSensor("spot_left", 4)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		s.ApplyStimulus("spot_left", 1.0)
		s.NoteAction("left")
		s.NotePairIndex("spot_left", 0)
		s.SetNeuromodulator(1.0)
		s.CommitObservation()
	}

	scoreLeft := s.meaning("spot_left", left)
	scoreRight := s.meaning("spot_left", right)
	require.Greater(t, scoreLeft, scoreRight)
}

package substrate

import (
	"testing"

	"github.com/SynapticNetworks/temporal-neuron/types"
	"github.com/stretchr/testify/require"
)

func TestEnsureSensor_IsIdempotent(t *testing.T) {
	s, err := New(testConfig(10))
	require.NoError(t, err)

	g1, err := s.EnsureSensor("spot_left", 4)
	require.NoError(t, err)
	g2, err := s.EnsureSensor("spot_left", 4)
	require.NoError(t, err)
	require.Equal(t, g1.Start, g2.Start)
	require.Equal(t, g1.Width, g2.Width)
}

func TestEnsureSensor_GrowsWidthWhenRequestedWiderLater(t *testing.T) {
	s, err := New(testConfig(11))
	require.NoError(t, err)

	g1, err := s.EnsureSensor("spot_left", 2)
	require.NoError(t, err)
	require.Equal(t, 2, g1.Width)

	g2, err := s.EnsureSensor("spot_left", 6)
	require.NoError(t, err)
	require.Equal(t, 6, g2.Width)
	require.Equal(t, g1.Start, g2.Start)
}

func TestEnsureGroup_ConflictingKindReturnsGroupConflictError(t *testing.T) {
	s, err := New(testConfig(12))
	require.NoError(t, err)

	_, err = s.EnsureSensor("thing", 4)
	require.NoError(t, err)

	_, err = s.EnsureAction("thing", 4)
	require.Error(t, err)
	var conflict *types.GroupConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestEnsureGroup_MarksUnitsReservedAndLearningDisabled(t *testing.T) {
	s, err := New(testConfig(13))
	require.NoError(t, err)

	g, err := s.EnsureAction("left", 4)
	require.NoError(t, err)
	for _, id := range g.unitIDs() {
		require.True(t, s.units[id].IsReserved)
		require.False(t, s.units[id].LearningEnabled)
	}
}

func TestActionName_ReturnsDefinitionOrder(t *testing.T) {
	s, err := New(testConfig(14))
	require.NoError(t, err)

	_, err = s.EnsureAction("left", 2)
	require.NoError(t, err)
	_, err = s.EnsureAction("right", 2)
	require.NoError(t, err)

	name, ok := s.ActionName(0)
	require.True(t, ok)
	require.Equal(t, "left", name)

	name, ok = s.ActionName(1)
	require.True(t, ok)
	require.Equal(t, "right", name)

	_, ok = s.ActionName(2)
	require.False(t, ok)
}

func TestGroupTable_CloneIsIndependentAndOrderPreserving(t *testing.T) {
	s, err := New(testConfig(15))
	require.NoError(t, err)
	_, err = s.EnsureAction("left", 2)
	require.NoError(t, err)
	_, err = s.EnsureAction("right", 2)
	require.NoError(t, err)

	clone := s.groups.clone()
	require.Equal(t, len(s.groups.actionOrder), len(clone.actionOrder))
	for i := range s.groups.actionOrder {
		require.Equal(t, s.groups.actionOrder[i].Name, clone.actionOrder[i].Name)
	}

	clone.actionOrder[0].Width = 999
	require.NotEqual(t, s.groups.actionOrder[0].Width, clone.actionOrder[0].Width)
}

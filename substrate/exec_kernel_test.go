package substrate

import (
	"context"
	"testing"

	"github.com/SynapticNetworks/temporal-neuron/exec"
	"github.com/SynapticNetworks/temporal-neuron/types"
	"github.com/stretchr/testify/require"
)

// Compile-time check that *Substrate satisfies exec.Kernel.
var _ exec.Kernel = (*Substrate)(nil)

func TestStepParallel_MatchesScalarStepForFixedSeed(t *testing.T) {
	a, err := New(testConfig(900))
	require.NoError(t, err)
	b, err := New(testConfig(900))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		a.Step()
		b.StepParallel(4)
	}

	for i := range a.units {
		require.InDelta(t, a.units[i].Amplitude, b.units[i].Amplitude, 1e-12)
		require.InDelta(t, a.units[i].Phase, b.units[i].Phase, 1e-12)
	}
}

func TestStepGPU_AlwaysUnavailableAndDemotable(t *testing.T) {
	s, err := New(testConfig(901))
	require.NoError(t, err)

	gpuErr := s.StepGPU(context.Background())
	require.Error(t, gpuErr)
	var typed *types.GpuError
	require.ErrorAs(t, gpuErr, &typed)
	require.Equal(t, types.GpuUnavailable, typed.Kind)

	done, err := s.StepGPUNonblocking(context.Background())
	require.False(t, done)
	require.Error(t, err)

	require.NotPanics(t, func() { s.CancelPendingGPU() })
}

func TestSession_DrivesSubstrateThroughEveryTier(t *testing.T) {
	s, err := New(testConfig(902))
	require.NoError(t, err)

	sess := exec.NewSession(s, 2)
	sess.Step(context.Background(), exec.Scalar)
	sess.Step(context.Background(), exec.Simd)
	sess.Step(context.Background(), exec.Parallel)
	sess.Step(context.Background(), exec.Gpu)

	require.True(t, sess.GpuDisabled())
	require.Equal(t, uint64(4), s.AgeSteps())
}

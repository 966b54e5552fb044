package exec

import (
	"context"
	"testing"

	"github.com/SynapticNetworks/temporal-neuron/types"
	"github.com/stretchr/testify/require"
)

type fakeKernel struct {
	scalarCalls   int
	simdCalls     int
	parallelCalls int
	parallelArg   int
	gpuErr        error
	gpuCalls      int
	cancelCalls   int
}

func (f *fakeKernel) StepScalar()            { f.scalarCalls++ }
func (f *fakeKernel) StepSimd()              { f.simdCalls++ }
func (f *fakeKernel) StepParallel(workers int) {
	f.parallelCalls++
	f.parallelArg = workers
}
func (f *fakeKernel) StepGPU(ctx context.Context) error {
	f.gpuCalls++
	return f.gpuErr
}
func (f *fakeKernel) StepGPUNonblocking(ctx context.Context) (bool, error) {
	f.gpuCalls++
	if f.gpuErr != nil {
		return false, f.gpuErr
	}
	return true, nil
}
func (f *fakeKernel) CancelPendingGPU() { f.cancelCalls++ }

func TestSession_DispatchesToRequestedTier(t *testing.T) {
	k := &fakeKernel{}
	s := NewSession(k, 4)

	s.Step(context.Background(), Scalar)
	require.Equal(t, 1, k.scalarCalls)

	s.Step(context.Background(), Simd)
	require.Equal(t, 1, k.simdCalls)

	s.Step(context.Background(), Parallel)
	require.Equal(t, 1, k.parallelCalls)
	require.Equal(t, 4, k.parallelArg)
}

func TestSession_GpuFailureDemotesToScalarPermanently(t *testing.T) {
	k := &fakeKernel{gpuErr: &types.GpuError{Kind: types.GpuUnavailable, Reason: "no adapter"}}
	s := NewSession(k, 2)

	s.Step(context.Background(), Gpu)
	require.True(t, s.GpuDisabled())
	require.Equal(t, 1, k.gpuCalls)
	require.Equal(t, 1, k.scalarCalls)
	require.Contains(t, s.LastGpuError(), "no adapter")

	// Second Gpu-tier request never calls StepGPU again; it goes straight
	// to Scalar once the session is tripped.
	s.Step(context.Background(), Gpu)
	require.Equal(t, 1, k.gpuCalls)
	require.Equal(t, 2, k.scalarCalls)
}

func TestSession_NonblockingReturnsDoneOnSuccessAndOnDemotion(t *testing.T) {
	ok := &fakeKernel{}
	s := NewSession(ok, 1)
	require.True(t, s.StepNonblocking(context.Background()))

	failing := &fakeKernel{gpuErr: &types.GpuError{Kind: types.GpuRuntimeError, Reason: "readback failed"}}
	s2 := NewSession(failing, 1)
	require.True(t, s2.StepNonblocking(context.Background()))
	require.True(t, s2.GpuDisabled())
	require.Equal(t, 1, failing.scalarCalls)
}

func TestSession_CancelPendingDelegatesToKernel(t *testing.T) {
	k := &fakeKernel{}
	s := NewSession(k, 1)
	s.CancelPending()
	require.Equal(t, 1, k.cancelCalls)
}

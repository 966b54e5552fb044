// substrate/gpu.go
package substrate

import (
	"context"

	"github.com/SynapticNetworks/temporal-neuron/types"
)

// StepGPU implements exec.Kernel's compute-shader dispatch. This build
// carries no GPU compute backend: every third-party GPU-capable dependency
// in this project's reference corpus is bundled into a 3D visualization
// stack (GoKi/Cogent Core, Vulkan) this substrate has no business linking
// against. StepGPU always reports GpuUnavailable so exec.Session demotes to
// Scalar on first use, exactly the behavior the tier is specified to have
// when no adapter can be initialized.
func (s *Substrate) StepGPU(ctx context.Context) error {
	return &types.GpuError{Kind: types.GpuUnavailable, Reason: "no compute backend linked into this build"}
}

// StepGPUNonblocking implements exec.Kernel's submit/poll protocol. Since
// StepGPU never succeeds in this build, there is never a pending dispatch
// to poll: this returns the same error immediately rather than ever
// reporting done=false.
func (s *Substrate) StepGPUNonblocking(ctx context.Context) (bool, error) {
	return false, s.StepGPU(ctx)
}

// CancelPendingGPU implements exec.Kernel. There is never a pending GPU
// dispatch in this build, so this is a no-op.
func (s *Substrate) CancelPendingGPU() {}

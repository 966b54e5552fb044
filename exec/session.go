package exec

import (
	"context"

	"github.com/SynapticNetworks/temporal-neuron/internal/obslog"
	"github.com/SynapticNetworks/temporal-neuron/types"
)

// Kernel is implemented by a dynamics engine willing to be driven through
// one of the four execution tiers. Substrate implements this by delegating
// StepScalar/StepSimd to its own Step, StepParallel to a range-split
// variant of Step, and the GPU methods to whatever compute backend (if
// any) it has wired up.
type Kernel interface {
	StepScalar()
	StepSimd()
	StepParallel(workers int)
	StepGPU(ctx context.Context) error
	StepGPUNonblocking(ctx context.Context) (done bool, err error)
	CancelPendingGPU()
}

// Session drives a Kernel through a selected Tier, tracking the
// session-wide GPU-disabled flag a failed dispatch sets: once tripped, every
// subsequent Step (at any requested tier) falls back to Scalar for the rest
// of the session's lifetime.
type Session struct {
	kernel      Kernel
	workers     int
	gpuDisabled bool
	lastGpuErr  string
}

// NewSession returns a Session driving kernel with workers goroutines for
// the Parallel tier (DefaultWorkers() if workers <= 0).
func NewSession(kernel Kernel, workers int) *Session {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return &Session{kernel: kernel, workers: workers}
}

// GpuDisabled reports whether a prior GPU failure has demoted this session
// to Scalar permanently.
func (s *Session) GpuDisabled() bool { return s.gpuDisabled }

// LastGpuError returns the diagnostic string recorded for the most recent
// GPU tier demotion, or "" if none has occurred.
func (s *Session) LastGpuError() string { return s.lastGpuErr }

// Step runs one tick on the requested tier. For Gpu it runs Scalar instead
// if the session's GPU flag is already tripped, and demotes to Scalar and
// records a diagnostic if this GPU dispatch itself fails.
func (s *Session) Step(ctx context.Context, tier Tier) {
	switch tier {
	case Scalar:
		s.kernel.StepScalar()
	case Simd:
		s.kernel.StepSimd()
	case Parallel:
		s.kernel.StepParallel(s.workers)
	case Gpu:
		s.stepGpu(ctx)
	default:
		s.kernel.StepScalar()
	}
}

func (s *Session) stepGpu(ctx context.Context) {
	if s.gpuDisabled {
		s.kernel.StepScalar()
		return
	}
	if err := s.kernel.StepGPU(ctx); err != nil {
		s.demote(err)
		s.kernel.StepScalar()
	}
}

// StepNonblocking drives the GPU tier's submit/poll protocol: it returns
// false while a dispatch is still pending readback and true once results
// have been copied back into the kernel's own buffers. Any GPU failure
// demotes the session and completes the tick on Scalar before returning
// true (the step did complete, just on a different backend).
func (s *Session) StepNonblocking(ctx context.Context) bool {
	if s.gpuDisabled {
		s.kernel.StepScalar()
		return true
	}
	done, err := s.kernel.StepGPUNonblocking(ctx)
	if err != nil {
		s.demote(err)
		s.kernel.StepScalar()
		return true
	}
	return done
}

// CancelPending unmaps any in-flight GPU staging buffer, leaving the
// kernel's unit state at its pre-submission values.
func (s *Session) CancelPending() {
	s.kernel.CancelPendingGPU()
}

func (s *Session) demote(err error) {
	s.gpuDisabled = true
	s.lastGpuErr = err.Error()
	kind := types.GpuRuntimeError
	if gerr, ok := err.(*types.GpuError); ok {
		kind = gerr.Kind
	}
	obslog.Warnf("gpu tier demoted to scalar (%s): %s", kind, err)
}

// Package exec selects among the four interchangeable backends for the
// dynamics step kernel: Scalar (reference), Simd (vectorization-friendly
// loop shape), Parallel (work-stealing over disjoint unit ranges), and Gpu
// (compute-shader dispatch with a non-blocking variant). All four must
// produce numerically equivalent results within a tight tolerance for a
// fixed seed on the same host; only Scalar is required to be
// bit-identical across runs.
package exec

// Tier names one of the four step-kernel backends.
type Tier int

const (
	// Scalar is the reference, single-goroutine implementation. It is the
	// only tier the determinism guarantee (bit-identical replay for a fixed
	// seed) applies to.
	Scalar Tier = iota
	// Simd is shaped for the platform's auto-vectorizer: straight-line,
	// branch-free inner loops over contiguous slices. On this build it
	// reuses the Scalar kernel body since Go has no portable SIMD
	// intrinsics; a future build tagged with platform assembly can swap
	// the loop body in without touching callers.
	Simd
	// Parallel splits the influence pass across disjoint unit ranges and
	// joins before the sequential plasticity/pruning pass.
	Parallel
	// Gpu dispatches the kernel as a compute shader. A failed dispatch
	// demotes the session to Scalar for all subsequent steps.
	Gpu
)

// String renders a Tier for diagnostics and CLI flags.
func (t Tier) String() string {
	switch t {
	case Scalar:
		return "scalar"
	case Simd:
		return "simd"
	case Parallel:
		return "parallel"
	case Gpu:
		return "gpu"
	default:
		return "unknown"
	}
}

// ParseTier maps a CLI/config string to a Tier. Unrecognized names return
// Scalar and ok=false.
func ParseTier(name string) (Tier, bool) {
	switch name {
	case "scalar":
		return Scalar, true
	case "simd":
		return Simd, true
	case "parallel":
		return Parallel, true
	case "gpu":
		return Gpu, true
	default:
		return Scalar, false
	}
}

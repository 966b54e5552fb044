// Package expert implements the expert manager: forking a child substrate
// off the parent when a context is struggling or novel, running it in
// isolation for a bounded episode, then consolidating its winning weight
// changes back into the parent (or culling it silently) — all governed by
// an ExpertPolicy and per-context statistics tracked on the parent side.
package expert

// LearningMode names how much the parent substrate itself keeps learning
// while one or more experts are active. The Manager records and persists
// the chosen mode in Policy.ParentLearning; it does not change the parent's
// plasticity itself for any mode.
type LearningMode int

const (
	// Normal names untouched parent plasticity while experts run.
	Normal LearningMode = iota
	// Reduced names a lowered parent Hebbian rate while any expert is
	// active.
	Reduced
	// Holdout names frozen parent plasticity while an expert is active on
	// that context.
	Holdout
)

func (m LearningMode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Reduced:
		return "reduced"
	case Holdout:
		return "holdout"
	default:
		return "unknown"
	}
}

// PersistenceMode selects how much of the expert tree a save operation
// writes out.
type PersistenceMode int

const (
	// Full serializes every active expert's brain image and fork point
	// alongside the policy, cooldowns, and per-context statistics.
	Full PersistenceMode = iota
	// DropActive serializes policy, cooldowns, and per-context statistics
	// but zero experts: a load from this blob starts fresh, with no
	// in-flight exploration resumed.
	DropActive
)

func (m PersistenceMode) String() string {
	if m == Full {
		return "full"
	}
	return "drop_active"
}

// Policy is the expert manager's tunable governance: when to spawn a
// child, how long to let it run, how much of its learning to fold back
// into the parent, and how long to wait before reconsidering a context
// that already had an expert.
type Policy struct {
	ParentLearning LearningMode

	MaxChildren int

	// ChildRewardScale multiplies the reward a routed-to child sees
	// relative to the raw reward signal; compounds once per nesting hop
	// when AllowNested is set.
	ChildRewardScale float64

	EpisodeTrials int

	ConsolidateTopK     int
	ConsolidateDeltaMax float64

	RewardShiftEMADeltaThreshold  float64
	PerformanceCollapseDropThreshold  float64
	PerformanceCollapseBaselineMin    float64

	SpawnMinTrials int
	CooldownTrials int

	PromoteRewardEMA float64

	AllowNested bool
	MaxDepth    int
}

// DefaultPolicy returns the documented default thresholds and bounds.
func DefaultPolicy() Policy {
	return Policy{
		ParentLearning:                   Normal,
		MaxChildren:                      4,
		ChildRewardScale:                 1.0,
		EpisodeTrials:                    50,
		ConsolidateTopK:                  64,
		ConsolidateDeltaMax:              0.3,
		RewardShiftEMADeltaThreshold:     0.55,
		PerformanceCollapseDropThreshold: 0.65,
		PerformanceCollapseBaselineMin:   0.25,
		SpawnMinTrials:                   20,
		CooldownTrials:                   50,
		PromoteRewardEMA:                 0.2,
		AllowNested:                      false,
		MaxDepth:                         1,
	}
}

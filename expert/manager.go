package expert

import (
	"fmt"

	"github.com/SynapticNetworks/temporal-neuron/internal/obslog"
	"github.com/SynapticNetworks/temporal-neuron/substrate"
	"github.com/google/uuid"
)

// Expert is one forked child substrate exploring a single context in
// isolation from the parent, plus the bookkeeping the manager needs to
// decide when to consolidate or cull it.
type Expert struct {
	ID         uint32
	TraceID    string
	ContextKey string

	ChildBrain *substrate.Substrate
	ForkPoint  *substrate.Substrate

	AgeSteps        uint64
	CompletedTrials int
	EpisodeTrials   int
	RewardEMA       float64

	// Nested is non-nil only when the policy allows nesting and this
	// expert's depth still has headroom under MaxDepth; it lets routing
	// recurse one more hop, multiplying ChildRewardScale again.
	Nested *Manager
}

// Manager owns a flat population of at-most-one-active-expert-per-context,
// the per-context statistics that drive spawn decisions, and the cooldowns
// that keep a just-finished context from immediately respawning.
type Manager struct {
	policy Policy
	depth  int

	nextID       uint32
	trialCounter uint64

	cooldowns       map[string]int
	stats           map[string]*ContextStats
	experts         map[uint32]*Expert
	activeByContext map[string]uint32

	lastSpawnReason   string
	lastConsolidation string
}

// NewManager returns a root (depth 0) manager governed by policy.
func NewManager(policy Policy) *Manager {
	return newManagerAtDepth(policy, 0)
}

func newManagerAtDepth(policy Policy, depth int) *Manager {
	return &Manager{
		policy:          policy,
		depth:           depth,
		cooldowns:       make(map[string]int),
		stats:           make(map[string]*ContextStats),
		experts:         make(map[uint32]*Expert),
		activeByContext: make(map[string]uint32),
	}
}

// LastSpawnReason returns the joined signal names of the most recent spawn.
func (m *Manager) LastSpawnReason() string { return m.lastSpawnReason }

// LastConsolidation returns a description of the most recent consolidation.
func (m *Manager) LastConsolidation() string { return m.lastConsolidation }

// ActiveCount returns the number of experts currently running at this
// manager's level (not counting nested sub-managers).
func (m *Manager) ActiveCount() int { return len(m.experts) }

func (m *Manager) statsFor(contextKey string) *ContextStats {
	st, ok := m.stats[contextKey]
	if !ok {
		st = &ContextStats{}
		m.stats[contextKey] = st
	}
	return st
}

// NoteTrialForSpawnTarget folds one trial's outcome into contextKey's
// statistics and, if path is empty (this trial was not already routed
// through an active expert), evaluates every spawn signal and forks a
// child when one fires and the manager has headroom.
func (m *Manager) NoteTrialForSpawnTarget(contextKey string, path []uint32, parentTrials uint64, reward float64, parent *substrate.Substrate) {
	st := m.statsFor(contextKey)
	st.NoteTrial(m.trialCounter, reward)
	m.trialCounter++

	if len(path) > 0 {
		return
	}
	if _, active := m.activeByContext[contextKey]; active {
		return
	}
	if m.cooldowns[contextKey] > 0 {
		return
	}
	if len(m.experts) >= m.policy.MaxChildren {
		return
	}

	signals := st.SpawnSignals(m.policy, parentTrials, parent.ShouldGrow(0.35))
	if len(signals) == 0 {
		return
	}
	m.spawn(contextKey, signals, parent)
}

func (m *Manager) spawn(contextKey string, signals []string, parent *substrate.Substrate) {
	id := m.nextID
	m.nextID++

	e := &Expert{
		ID:         id,
		TraceID:    uuid.NewString(),
		ContextKey: contextKey,
		ChildBrain: parent.Clone(),
		ForkPoint:  parent.Clone(),
	}
	m.experts[id] = e
	m.activeByContext[contextKey] = id

	m.lastSpawnReason = joinSignals(signals)
	obslog.Infof("expert spawn: context=%q id=%d trace=%s reason=%s", contextKey, id, e.TraceID, m.lastSpawnReason)
}

func joinSignals(signals []string) string {
	out := ""
	for i, s := range signals {
		if i > 0 {
			out += "+"
		}
		out += s
	}
	return out
}

// ControllerForContext returns the brain a caller should drive for
// contextKey (the parent itself if no expert is active there), the id
// path taken to reach it (empty if routed to the parent), and the
// cumulative reward scale to apply along that path.
func (m *Manager) ControllerForContext(contextKey string, parent *substrate.Substrate) (*substrate.Substrate, []uint32, float64) {
	id, ok := m.activeByContext[contextKey]
	if !ok {
		return parent, nil, 1.0
	}
	e := m.experts[id]
	path := []uint32{id}
	scale := m.policy.ChildRewardScale
	brain := e.ChildBrain

	if m.policy.AllowNested && m.depth+1 < m.policy.MaxDepth {
		if e.Nested == nil {
			e.Nested = newManagerAtDepth(m.policy, m.depth+1)
		}
		nestedBrain, nestedPath, nestedScale := e.Nested.ControllerForContext(contextKey, brain)
		if len(nestedPath) > 0 {
			return nestedBrain, append(path, nestedPath...), scale * nestedScale
		}
	}

	return brain, path, scale
}

// OnTrialCompletedPath ticks every cooldown in the whole tree down by one,
// then folds reward into every expert along path (deepest first),
// consolidating or culling any expert whose episode just ended. A cooldown
// started by this call therefore holds the full CooldownTrials.
func (m *Manager) OnTrialCompletedPath(path []uint32, reward float64, rootParent *substrate.Substrate) {
	m.tickCooldownsTree()
	m.applyTrial(path, reward, rootParent)
}

func (m *Manager) applyTrial(path []uint32, reward float64, parent *substrate.Substrate) {
	if len(path) == 0 {
		return
	}
	id := path[0]
	e, ok := m.experts[id]
	if !ok {
		return
	}

	if len(path) > 1 && e.Nested != nil {
		e.Nested.applyTrial(path[1:], reward, e.ChildBrain)
	}

	e.RewardEMA = 0.85*e.RewardEMA + 0.15*reward
	e.CompletedTrials++
	e.EpisodeTrials++
	e.AgeSteps = e.ChildBrain.AgeSteps()

	if e.EpisodeTrials >= m.policy.EpisodeTrials {
		m.finishEpisode(e, parent)
	}
}

func (m *Manager) finishEpisode(e *Expert, parent *substrate.Substrate) {
	if e.RewardEMA >= m.policy.PromoteRewardEMA {
		delta := e.ChildBrain.DiffWeightsTopK(e.ForkPoint, m.policy.ConsolidateTopK)
		parent.ApplyWeightDelta(delta, m.policy.ConsolidateDeltaMax)
		m.lastConsolidation = fmt.Sprintf("context=%s id=%d reward_ema=%.3f edges=%d",
			e.ContextKey, e.ID, e.RewardEMA, len(delta.WeightDeltas))
		obslog.Infof("expert consolidate: %s", m.lastConsolidation)
	} else {
		obslog.Infof("expert cull: context=%s id=%d reward_ema=%.3f trials=%d",
			e.ContextKey, e.ID, e.RewardEMA, e.CompletedTrials)
	}

	delete(m.experts, e.ID)
	delete(m.activeByContext, e.ContextKey)
	m.cooldowns[e.ContextKey] = m.policy.CooldownTrials
}

func (m *Manager) tickCooldownsTree() {
	for k, v := range m.cooldowns {
		if v <= 1 {
			delete(m.cooldowns, k)
		} else {
			m.cooldowns[k] = v - 1
		}
	}
	for _, e := range m.experts {
		if e.Nested != nil {
			e.Nested.tickCooldownsTree()
		}
	}
}

// Package substrate implements the sparse recurrent oscillator network: its
// units, its CSR-like weighted graph, local Hebbian plasticity, forgetting
// and pruning, homeostatic growth, sensor/action groups, and the habit+
// meaning action-scoring fusion — the full single-owner, synchronous,
// tick-driven engine a host application drives via apply_stimulus/step/
// select/commit.
package substrate

import (
	"github.com/SynapticNetworks/temporal-neuron/causal"
	"github.com/SynapticNetworks/temporal-neuron/internal/obslog"
	"github.com/SynapticNetworks/temporal-neuron/types"
	"github.com/google/uuid"
)

// Substrate is a single-owner, non-thread-safe oscillator network plus its
// symbol table and causal memory. Every method requires exclusive access;
// nothing here is safe for concurrent use from multiple goroutines (the
// exec package's Parallel tier parallelizes only within one step() call).
type Substrate struct {
	cfg Config

	units []Unit
	graph *Graph

	groups *groupTable

	symbols *causal.SymbolTable
	causal  *causal.Memory

	rng *prng

	ageSteps uint64

	neuromod float64

	obs observationBuffer

	diag Diagnostics

	lagHistory [][]types.SymbolID
	lagDecay   float64

	// InstanceID is a random id assigned at construction/clone time purely
	// for cross-process log correlation; it is not persisted in a brain
	// image and carries no semantic weight (unlike Expert.ID, which is a
	// small sequential u32 the expert manager actually routes on).
	InstanceID string
}

// New constructs a Substrate from cfg, validating it first.
func New(cfg Config) (*Substrate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var seed int64
	if cfg.Seed != nil {
		seed = *cfg.Seed
	} else {
		seed = 1
	}

	s := &Substrate{
		cfg:      cfg,
		units:    make([]Unit, cfg.UnitCount),
		graph:    newGraph(cfg.UnitCount, cfg.ConnectivityPerUnit, newPRNG(seed)),
		groups:   newGroupTable(),
		symbols:  causal.NewSymbolTable(),
		causal:   causal.NewMemory(cfg.CausalDecay),
		rng:        newPRNG(seed + 1),
		lagDecay:   0.5,
		InstanceID: uuid.NewString(),
	}
	for i := range s.units {
		s.units[i] = newUnit(0)
	}
	return s, nil
}

// Config returns the configuration the substrate was constructed with.
func (s *Substrate) Config() Config { return s.cfg }

// AgeSteps returns the total number of step() calls completed.
func (s *Substrate) AgeSteps() uint64 { return s.ageSteps }

// Neuromodulator returns the currently staged reward scalar.
func (s *Substrate) Neuromodulator() float64 { return s.neuromod }

// SetNeuromodulator stages r for the next step's plasticity multiplier and
// for reward-symbol staging on commit.
func (s *Substrate) SetNeuromodulator(r float64) { s.neuromod = r }

// Clone returns a deep, independent copy of the substrate: units, graph,
// groups, symbol table, causal memory, RNG state, and age all copied so the
// clone can evolve independently (used for expert forking and
// fork-point snapshots).
func (s *Substrate) Clone() *Substrate {
	out := &Substrate{
		cfg:        s.cfg,
		units:      append([]Unit(nil), s.units...),
		graph:      s.graph.clone(),
		groups:     s.groups.clone(),
		symbols:    s.symbols.Clone(),
		causal:     cloneMemory(s.causal, s.cfg.CausalDecay),
		rng:        loadPRNG(s.rng.state),
		ageSteps:   s.ageSteps,
		neuromod:   s.neuromod,
		lagDecay:   s.lagDecay,
		InstanceID: uuid.NewString(),
		lagHistory: cloneLagHistory(s.lagHistory),
	}
	out.obs = s.obs.clone()
	out.diag = s.diag
	return out
}

func cloneMemory(m *causal.Memory, decay float64) *causal.Memory {
	fresh := causal.NewMemory(decay)
	fresh.MergeFrom(m, 1)
	return fresh
}

func cloneLagHistory(h [][]types.SymbolID) [][]types.SymbolID {
	out := make([][]types.SymbolID, len(h))
	for i, s := range h {
		out[i] = append([]types.SymbolID(nil), s...)
	}
	return out
}

// EnsureSensor idempotently binds name to a sensor group with at least
// minWidth units.
func (s *Substrate) EnsureSensor(name string, minWidth int) (*Group, error) {
	return s.ensureGroup(name, sensorGroupKind, minWidth)
}

// EnsureAction idempotently binds name to an action group with at least
// minWidth units.
func (s *Substrate) EnsureAction(name string, minWidth int) (*Group, error) {
	return s.ensureGroup(name, actionGroupKind, minWidth)
}

// DefineSensor is an alias for EnsureSensor, kept for API symmetry with the
// host-facing define_sensor/define_action naming.
func (s *Substrate) DefineSensor(name string, width int) (*Group, error) {
	return s.EnsureSensor(name, width)
}

// DefineAction is an alias for EnsureAction.
func (s *Substrate) DefineAction(name string, width int) (*Group, error) {
	return s.EnsureAction(name, width)
}

func (s *Substrate) ensureGroup(name string, kind groupKind, minWidth int) (*Group, error) {
	g, err := s.groups.ensure(name, kind, minWidth, func(n int) []uint32 {
		return s.allocGroupUnits(n)
	})
	if err != nil {
		return nil, err
	}
	targets := make(map[uint32]bool, g.Width)
	for _, id := range g.unitIDs() {
		targets[id] = true
	}
	s.graph.markEngramEdgesTo(targets)
	return g, nil
}

// allocGroupUnits allocates n new units for a sensor/action group: each one
// is reserved, has learning disabled, and is wired with connectivity_per_unit
// engram edges to and from the existing population (a freshly grown group
// member otherwise starts completely disconnected from the network it is
// meant to sense for or drive).
func (s *Substrate) allocGroupUnits(n int) []uint32 {
	existing := len(s.units)
	ids := s.allocUnits(n)
	for _, id := range ids {
		s.units[id].IsReserved = true
		s.units[id].LearningEnabled = false
		s.graph.wireEngramEdges(id, existing, s.cfg.ConnectivityPerUnit, s.rng)
	}
	return ids
}

// allocUnits grows the unit population by n (subject to max_units),
// returning the ids of the newly created units. Returns fewer than n ids if
// the growth bound is reached (CapacityExhausted is not an error here, it's
// a zero/partial-growth result, not fatal).
func (s *Substrate) allocUnits(n int) []uint32 {
	maxUnits := s.cfg.effectiveMaxUnits()
	available := maxUnits - len(s.units)
	if available <= 0 {
		return nil
	}
	if n > available {
		n = available
	}
	ids := make([]uint32, n)
	for i := 0; i < n; i++ {
		id := uint32(len(s.units))
		s.units = append(s.units, newUnit(s.ageSteps))
		s.graph.addUnit()
		ids[i] = id
	}
	return ids
}

// ActionName returns the name of the nth defined action group, in
// definition order, or ("", false) if index is out of range.
func (s *Substrate) ActionName(index int) (string, bool) {
	g, ok := s.groups.actionAt(index)
	if !ok {
		return "", false
	}
	return g.Name, true
}

// ShouldGrow reports whether the mean unit amplitude recorded by the last
// step is at least threshold*2, a signal the substrate is under-provisioned.
// It reads that one step's signed mean only; it does not average absolute
// values or track saturation over several steps.
func (s *Substrate) ShouldGrow(threshold float64) bool {
	return s.diag.AvgAmp >= threshold*2
}

// MaybeNeurogenesis grows the substrate by up to stepUnits new units (each
// wired with connectivity out-edges, since allocUnits alone leaves new
// units edge-less) when ShouldGrow(threshold) holds. Returns whether any
// growth happened.
func (s *Substrate) MaybeNeurogenesis(threshold float64, stepUnits int) bool {
	if !s.ShouldGrow(threshold) {
		return false
	}
	return s.GrowUnits(stepUnits, s.cfg.ConnectivityPerUnit)
}

// GrowUnits adds n units (subject to max_units) wired with connectivity
// out-edges drawn from the substrate's RNG, and returns whether at least
// one unit was actually added.
func (s *Substrate) GrowUnits(n, connectivity int) bool {
	before := len(s.units)
	ids := s.allocUnits(n)
	if len(ids) == 0 {
		return false
	}
	existing := before
	for _, id := range ids {
		k := connectivity
		if k > existing {
			k = existing
		}
		seen := make(map[uint32]bool, k)
		r := row{to: make([]uint32, 0, k), weight: make([]float64, 0, k), engram: make([]bool, 0, k)}
		for len(r.to) < k && existing > 0 {
			j := uint32(s.rng.Intn(existing))
			if seen[j] {
				continue
			}
			seen[j] = true
			r.to = append(r.to, j)
			r.weight = append(r.weight, (s.rng.Float64()*2-1)*0.5)
			r.engram = append(r.engram, false)
		}
		s.graph.rows[id] = r
	}
	s.diag.BirthsLastStep = len(ids)
	obslog.Infof("neurogenesis: grew %d units (unit_count now %d)", len(ids), len(s.units))
	return true
}

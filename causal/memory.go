// causal/memory.go
package causal

import (
	"sort"
	"sync"

	"github.com/SynapticNetworks/temporal-neuron/types"
)

// pruneEveryN governs how often negligible base counts and edges are swept
// out; reanchorEveryN governs how often base_total is recomputed from
// scratch to correct floating-point drift from repeated decay.
const (
	pruneEveryN    = 256
	reanchorEveryN = 8192
	pruneFloor     = 0.001
)

// Memory holds per-symbol decayed base counts and decayed directed edge
// counts keyed by a packed (from_id, to_id) pair.
//
// Uses an exponential multiplicative decay applied on every observation
// before new evidence is folded in, over a mutex-guarded adjacency map
// keyed by a packed id pair.
type Memory struct {
	mu sync.RWMutex

	decay float64

	base      map[types.SymbolID]float64
	baseTotal float64

	edges map[uint64]float64

	prev []types.SymbolID

	observeCount       uint64
	lastDirectedUpdates int
	lastCooccurUpdates  int
}

// NewMemory constructs an empty causal memory with the given per-tick
// multiplicative decay.
func NewMemory(decay float64) *Memory {
	return &Memory{
		decay: decay,
		base:  make(map[types.SymbolID]float64),
		edges: make(map[uint64]float64),
	}
}

// Observe folds one tick's flat symbol set into causal memory: decay, then
// base-count increment, then lag-1 directed edges against prev, then
// symmetric co-occurrence edges among current, then prev <- current.
func (m *Memory) Observe(current []types.SymbolID) {
	m.ObserveLagged(current, nil, 0)
}

// ObserveLagged is Observe plus lag-2-and-beyond directed edges sourced from
// lag2plus, weighted by lagDecay^(k+1) and stopped once the weight is zero
// or below.
func (m *Memory) ObserveLagged(current []types.SymbolID, lag2plus [][]types.SymbolID, lagDecay float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.decayLocked()
	m.observeCount++
	if m.observeCount%pruneEveryN == 0 {
		m.pruneLocked(pruneFloor)
	}
	if m.observeCount%reanchorEveryN == 0 {
		m.reanchorLocked()
	}

	for _, s := range current {
		m.base[s] += 1
		m.baseTotal += 1
	}

	directed, cooccur := 0, 0
	for _, a := range m.prev {
		for _, b := range current {
			m.edges[types.PackPair(a, b)] += 1
			directed++
		}
	}

	for i := 0; i < len(current); i++ {
		for j := i + 1; j < len(current); j++ {
			a, b := current[i], current[j]
			if a == b {
				continue
			}
			m.edges[types.PackPair(a, b)] += 0.5
			m.edges[types.PackPair(b, a)] += 0.5
			cooccur++
		}
	}

	weight := lagDecay
	for k, slice := range lag2plus {
		if weight <= 0 {
			break
		}
		for _, a := range slice {
			for _, b := range current {
				m.edges[types.PackPair(a, b)] += weight
				directed++
			}
		}
		_ = k
		weight *= lagDecay
	}

	m.lastDirectedUpdates = directed
	m.lastCooccurUpdates = cooccur

	m.prev = append(m.prev[:0:0], current...)
}

func (m *Memory) decayLocked() {
	if m.decay <= 0 {
		return
	}
	factor := 1 - m.decay
	m.baseTotal *= factor
	for k, v := range m.base {
		m.base[k] = v * factor
	}
	for k, v := range m.edges {
		m.edges[k] = v * factor
	}
}

func (m *Memory) pruneLocked(floor float64) {
	for k, v := range m.base {
		if v <= floor {
			delete(m.base, k)
		}
	}
	for k, v := range m.edges {
		if v <= floor {
			delete(m.edges, k)
		}
	}
}

func (m *Memory) reanchorLocked() {
	total := 0.0
	for _, v := range m.base {
		total += v
	}
	m.baseTotal = total
}

// PrevSymbols returns the symbols observed on the most recent tick, used to
// align lag history rotation.
func (m *Memory) PrevSymbols() []types.SymbolID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.SymbolID, len(m.prev))
	copy(out, m.prev)
	return out
}

// CausalStrength computes clamp(P(b|a) - P(b), -1, 1). Returns 0 if a has
// never been observed (base[a] <= 0.001).
func (m *Memory) CausalStrength(a, b types.SymbolID) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.causalStrengthLocked(a, b)
}

func (m *Memory) causalStrengthLocked(a, b types.SymbolID) float64 {
	baseA, ok := m.base[a]
	if !ok || baseA <= 0.001 {
		return 0
	}
	pBGivenA := clamp01(m.edges[types.PackPair(a, b)] / baseA)
	denom := m.baseTotal
	if denom < 1 {
		denom = 1
	}
	pB := clamp01(m.base[b] / denom)
	return clamp(pBGivenA-pB, -1, 1)
}

// BaseCount returns the decayed base count for sym, or 0 if never observed.
func (m *Memory) BaseCount(sym types.SymbolID) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.base[sym]
}

// BaseTotal returns the running sum of all base counts.
func (m *Memory) BaseTotal() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.baseTotal
}

// TopOutgoing scans edges whose source is a, computes strength against
// every distinct target seen, and returns the top k by strength descending.
func (m *Memory) TopOutgoing(a types.SymbolID, k int) []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Edge
	for key := range m.edges {
		from, to := types.UnpackPair(key)
		if from != a {
			continue
		}
		out = append(out, Edge{From: a, To: to, Strength: m.causalStrengthLocked(a, to)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strength > out[j].Strength })
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// TopOutgoingFiltered avoids the full scan TopOutgoing performs by only
// evaluating the given candidate targets.
func (m *Memory) TopOutgoingFiltered(a types.SymbolID, candidates []types.SymbolID, k int) []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, 0, len(candidates))
	for _, to := range candidates {
		out = append(out, Edge{From: a, To: to, Strength: m.causalStrengthLocked(a, to)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strength > out[j].Strength })
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// TopEdges returns the k strongest edges by |strength| over the whole
// memory, via a bounded min-heap.
func (m *Memory) TopEdges(k int) []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 {
		return nil
	}
	h := &edgeHeap{}
	for key := range m.edges {
		from, to := types.UnpackPair(key)
		s := m.causalStrengthLocked(from, to)
		e := Edge{From: from, To: to, Strength: s}
		if h.Len() < k {
			h.push(e)
		} else if absf(s) > absf((*h)[0].Strength) {
			h.popMin()
			h.push(e)
		}
	}
	out := h.drainSortedDesc()
	return out
}

// TopSymbols returns the top-n symbols by decayed base count, descending.
func (m *Memory) TopSymbols(n int) []types.SymbolID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type kv struct {
		id    types.SymbolID
		count float64
	}
	all := make([]kv, 0, len(m.base))
	for id, c := range m.base {
		all = append(all, kv{id, c})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].count > all[j].count })
	if len(all) > n {
		all = all[:n]
	}
	out := make([]types.SymbolID, len(all))
	for i, e := range all {
		out[i] = e.id
	}
	return out
}

// MergeFrom blends other into m at the given rate: self = (1-rate)*self +
// rate*other, applied independently to base counts and edges, then
// recomputes base_total.
func (m *Memory) MergeFrom(other *Memory, rate float64) {
	other.mu.RLock()
	otherBase := make(map[types.SymbolID]float64, len(other.base))
	for k, v := range other.base {
		otherBase[k] = v
	}
	otherEdges := make(map[uint64]float64, len(other.edges))
	for k, v := range other.edges {
		otherEdges[k] = v
	}
	other.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[types.SymbolID]bool, len(m.base)+len(otherBase))
	for k := range m.base {
		seen[k] = true
	}
	for k := range otherBase {
		seen[k] = true
	}
	for k := range seen {
		m.base[k] = (1-rate)*m.base[k] + rate*otherBase[k]
	}

	seenE := make(map[uint64]bool, len(m.edges)+len(otherEdges))
	for k := range m.edges {
		seenE[k] = true
	}
	for k := range otherEdges {
		seenE[k] = true
	}
	for k := range seenE {
		m.edges[k] = (1-rate)*m.edges[k] + rate*otherEdges[k]
	}

	m.reanchorLocked()
}

// Stats is a snapshot of memory-wide counters: symbol count, edge count,
// and the directed/co-occurrence edge update counts from the most recent
// observation.
type Stats struct {
	BaseSymbols           int
	Edges                 int
	LastDirectedEdgeUpdates int
	LastCooccurEdgeUpdates  int
}

func (m *Memory) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		BaseSymbols:             len(m.base),
		Edges:                   len(m.edges),
		LastDirectedEdgeUpdates: m.lastDirectedUpdates,
		LastCooccurEdgeUpdates:  m.lastCooccurUpdates,
	}
}

// Edge is a resolved (from, to, strength) triple returned by the top-k
// query family.
type Edge struct {
	From     types.SymbolID
	To       types.SymbolID
	Strength float64
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

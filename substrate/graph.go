// substrate/graph.go
package substrate

import "gonum.org/v1/gonum/stat"

// edgeMinWeight and edgeMaxWeight bound every edge weight.
const (
	edgeMinWeight = -1.5
	edgeMaxWeight = 1.5
)

// row holds one unit's outgoing edges as parallel slices: to[k] is the
// target unit, weight[k] its weight, engram[k] whether pruning must keep it
// above the engram floor instead of the ordinary prune threshold.
//
// Stored as per-row parallel slices rather than flat CSR arrays so pruning
// (which removes entries mid-row) is a simple slice compaction; WriteTo
// flattens to the row_ptr/col_idx/weights layout a reader expects.
type row struct {
	to     []uint32
	weight []float64
	engram []bool
}

// Graph is the substrate's sparse directed adjacency: at most
// connectivity_per_unit out-edges per unit at genesis. Plasticity never adds
// edges; edges are added only when units are added (GrowUnits wires the new
// unit's out-edges, wireEngramEdges wires a group member in both
// directions), and are otherwise only lost to pruning.
type Graph struct {
	rows []row
}

// newGraph builds a random out-degree-k directed graph over n units using
// rng, skipping self-loops and duplicate targets within a row.
func newGraph(n, connectivityPerUnit int, rng *prng) *Graph {
	g := &Graph{rows: make([]row, n)}
	if n <= 1 {
		return g
	}
	for i := 0; i < n; i++ {
		k := connectivityPerUnit
		if k > n-1 {
			k = n - 1
		}
		seen := make(map[uint32]bool, k)
		r := row{to: make([]uint32, 0, k), weight: make([]float64, 0, k), engram: make([]bool, 0, k)}
		for len(r.to) < k {
			j := uint32(rng.Intn(n))
			if int(j) == i || seen[j] {
				continue
			}
			seen[j] = true
			r.to = append(r.to, j)
			r.weight = append(r.weight, (rng.Float64()*2-1)*0.5)
			r.engram = append(r.engram, false)
		}
		g.rows[i] = r
	}
	return g
}

// addUnit appends an empty row for a newly grown unit. Wiring is the
// caller's job: GrowUnits gives the unit out-edges only, allocGroupUnits
// gives a group member both directions tagged as engram edges.
func (g *Graph) addUnit() {
	g.rows = append(g.rows, row{})
}

// unitCount reports the number of rows (units) in the graph.
func (g *Graph) unitCount() int { return len(g.rows) }

// neighbors returns the (target, weight) pairs for unit i's outgoing edges.
// The returned slices alias internal storage and must not be mutated.
func (g *Graph) neighbors(i int) ([]uint32, []float64) {
	if i < 0 || i >= len(g.rows) {
		return nil, nil
	}
	return g.rows[i].to, g.rows[i].weight
}

// connectionCount sums the out-degree of every row.
func (g *Graph) connectionCount() int {
	n := 0
	for _, r := range g.rows {
		n += len(r.to)
	}
	return n
}

// markEngramEdgesTo tags every existing edge whose target is one of the
// given unit ids as an engram edge, done once at group creation time for a
// sensor/action group's incoming edges.
func (g *Graph) markEngramEdgesTo(targets map[uint32]bool) {
	for i := range g.rows {
		r := &g.rows[i]
		for k, to := range r.to {
			if targets[to] {
				r.engram[k] = true
			}
		}
	}
}

// wireEngramEdges gives a freshly allocated unit id its initial connectivity
// to the rest of the network: k out-edges to random units in [0, existing)
// and k in-edges from random units in [0, existing), all tagged as engram
// edges since they are exactly the sensor/concept edges a group carries for
// its lifetime. Without this, a newly reserved sensor or action unit would
// start completely disconnected from the oscillator network it needs to
// drive or be driven by.
func (g *Graph) wireEngramEdges(id uint32, existing, k int, rng *prng) {
	if existing <= 0 || k <= 0 {
		return
	}
	if k > existing {
		k = existing
	}

	out := &g.rows[id]
	seen := make(map[uint32]bool, k)
	for len(seen) < k {
		j := uint32(rng.Intn(existing))
		if int(j) == int(id) || seen[j] {
			continue
		}
		seen[j] = true
		out.to = append(out.to, j)
		out.weight = append(out.weight, (rng.Float64()*2-1)*0.5)
		out.engram = append(out.engram, true)
	}

	seenSrc := make(map[uint32]bool, k)
	for len(seenSrc) < k {
		src := uint32(rng.Intn(existing))
		if src == id || seenSrc[src] {
			continue
		}
		seenSrc[src] = true
		r := &g.rows[src]
		r.to = append(r.to, id)
		r.weight = append(r.weight, (rng.Float64()*2-1)*0.5)
		r.engram = append(r.engram, true)
	}
}

// applyPlasticityAndPrune walks every edge once: applies delta(i, j, w) to
// compute a new weight, then forgetting, then prunes below floor unless the
// edge is an engram edge (which floors at engramFloor instead). Returns the
// number of edges pruned this call. targetLearningEnabled reports whether
// plasticity updates may apply to a given target unit (false suppresses the
// delta step but forgetting/pruning still run).
func (g *Graph) applyPlasticityAndPrune(
	forgetRate, pruneBelow, engramFloor float64,
	targetLearningEnabled func(unit uint32) bool,
	delta func(i int, j uint32, w float64) float64,
) (pruned int) {
	for i := range g.rows {
		r := &g.rows[i]
		keepTo := r.to[:0]
		keepW := r.weight[:0]
		keepE := r.engram[:0]
		for k, j := range r.to {
			w := r.weight[k]
			if targetLearningEnabled == nil || targetLearningEnabled(j) {
				w = clamp(w+delta(i, j, w), edgeMinWeight, edgeMaxWeight)
			}
			w *= 1 - forgetRate
			floor := pruneBelow
			if r.engram[k] {
				floor = engramFloor
				if absf(w) < floor {
					w = copysignFloor(w, floor)
				}
			} else if absf(w) < pruneBelow {
				pruned++
				continue
			}
			keepTo = append(keepTo, j)
			keepW = append(keepW, w)
			keepE = append(keepE, r.engram[k])
		}
		r.to, r.weight, r.engram = keepTo, keepW, keepE
	}
	return pruned
}

func copysignFloor(w, floor float64) float64 {
	if w < 0 {
		return -floor
	}
	return floor
}

// sumAbsWeight returns the sum of |w| over every edge, used by the
// conservation-under-zero-plasticity dynamics test.
func (g *Graph) sumAbsWeight() float64 {
	sum := 0.0
	for _, r := range g.rows {
		for _, w := range r.weight {
			sum += absf(w)
		}
	}
	return sum
}

// avgWeight returns the mean edge weight, or 0 for an empty graph.
func (g *Graph) avgWeight() float64 {
	weights := make([]float64, 0, g.connectionCount())
	for _, r := range g.rows {
		weights = append(weights, r.weight...)
	}
	if len(weights) == 0 {
		return 0
	}
	return stat.Mean(weights, nil)
}

// clone deep-copies the graph for Substrate.Clone / expert forking.
func (g *Graph) clone() *Graph {
	out := &Graph{rows: make([]row, len(g.rows))}
	for i, r := range g.rows {
		out.rows[i] = row{
			to:     append([]uint32(nil), r.to...),
			weight: append([]float64(nil), r.weight...),
			engram: append([]bool(nil), r.engram...),
		}
	}
	return out
}

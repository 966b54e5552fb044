// substrate/delta.go
package substrate

import "sort"

// WeightDelta is one edge's signed weight change between two substrates.
type WeightDelta struct {
	Src uint32
	Dst uint32
	DW  float64
}

// BrainDelta is a bounded set of weight changes, produced by
// DiffWeightsTopK and consumed by ApplyWeightDelta.
type BrainDelta struct {
	WeightDeltas []WeightDelta
}

// DiffWeightsTopK returns the k edges with the largest |w_self - w_other|,
// matched by (src, dst) identity, with their signed deltas self-minus-other.
// Edges present in only one of the two graphs are treated as a comparison
// against a zero weight on the missing side.
func (s *Substrate) DiffWeightsTopK(other *Substrate, k int) BrainDelta {
	selfW := flattenWeights(s.graph)
	otherW := flattenWeights(other.graph)

	seen := make(map[uint64]bool, len(selfW)+len(otherW))
	keys := make([]uint64, 0, len(selfW)+len(otherW))
	for key := range selfW {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	for key := range otherW {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	deltas := make([]WeightDelta, 0, len(keys))
	for _, key := range keys {
		dw := selfW[key] - otherW[key]
		if dw == 0 {
			continue
		}
		src, dst := unpackEdgeKey(key)
		deltas = append(deltas, WeightDelta{Src: src, Dst: dst, DW: dw})
	}

	sort.Slice(deltas, func(i, j int) bool { return absf(deltas[i].DW) > absf(deltas[j].DW) })
	if len(deltas) > k {
		deltas = deltas[:k]
	}
	return BrainDelta{WeightDeltas: deltas}
}

// ApplyWeightDelta adds each delta's weight change to the matching edge in
// s, clamping the applied change to [-perEdgeClamp, +perEdgeClamp] before
// adding, and clamping the resulting weight to its normal bounds. Deltas
// whose (src, dst) edge no longer exists in s are silently skipped.
func (s *Substrate) ApplyWeightDelta(delta BrainDelta, perEdgeClamp float64) {
	for _, d := range delta.WeightDeltas {
		if int(d.Src) >= len(s.graph.rows) {
			continue
		}
		r := &s.graph.rows[d.Src]
		for k, to := range r.to {
			if to != d.Dst {
				continue
			}
			applied := clamp(d.DW, -perEdgeClamp, perEdgeClamp)
			r.weight[k] = clamp(r.weight[k]+applied, edgeMinWeight, edgeMaxWeight)
			break
		}
	}
}

func flattenWeights(g *Graph) map[uint64]float64 {
	out := make(map[uint64]float64, g.connectionCount())
	for i, r := range g.rows {
		for k, to := range r.to {
			out[packEdgeKey(uint32(i), to)] = r.weight[k]
		}
	}
	return out
}

func packEdgeKey(src, dst uint32) uint64 { return uint64(src)<<32 | uint64(dst) }

func unpackEdgeKey(key uint64) (src, dst uint32) {
	return uint32(key >> 32), uint32(key & 0xFFFFFFFF)
}

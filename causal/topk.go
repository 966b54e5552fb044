// causal/topk.go
package causal

import (
	"container/heap"
	"sort"
)

// edgeHeap is a bounded min-heap over |Strength|, used by Memory.TopEdges to
// find the k strongest edges without sorting the entire edge map.
type edgeHeap []Edge

func (h edgeHeap) Len() int { return len(h) }
func (h edgeHeap) Less(i, j int) bool {
	return absf(h[i].Strength) < absf(h[j].Strength)
}
func (h edgeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *edgeHeap) Push(x any) { *h = append(*h, x.(Edge)) }

func (h *edgeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (h *edgeHeap) push(e Edge) { heap.Push(h, e) }

func (h *edgeHeap) popMin() Edge { return heap.Pop(h).(Edge) }

// drainSortedDesc empties the heap and returns its contents sorted by
// |Strength| descending.
func (h *edgeHeap) drainSortedDesc() []Edge {
	out := make([]Edge, len(*h))
	copy(out, *h)
	sort.Slice(out, func(i, j int) bool { return absf(out[i].Strength) > absf(out[j].Strength) })
	return out
}

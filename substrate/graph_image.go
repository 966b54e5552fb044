// substrate/graph_image.go
package substrate

import (
	"io"

	"github.com/SynapticNetworks/temporal-neuron/internal/wire"
)

// writeCSR flattens the graph into row_ptr/col_idx/weights/engram arrays
// and writes them in that order, matching the UNIT chunk's trailing CSR
// section (plus the engram extension — see SPEC_FULL.md).
func (g *Graph) writeCSR(w io.Writer) error {
	n := len(g.rows)
	rowPtr := make([]uint32, n+1)
	nnz := uint32(0)
	for i, r := range g.rows {
		rowPtr[i] = nnz
		nnz += uint32(len(r.to))
	}
	rowPtr[n] = nnz

	for _, v := range rowPtr {
		if err := wire.WriteU32(w, v); err != nil {
			return err
		}
	}
	for _, r := range g.rows {
		for _, to := range r.to {
			if err := wire.WriteU32(w, to); err != nil {
				return err
			}
		}
	}
	for _, r := range g.rows {
		for _, wt := range r.weight {
			if err := wire.WriteF32(w, float32(wt)); err != nil {
				return err
			}
		}
	}
	for _, r := range g.rows {
		for _, e := range r.engram {
			b := byte(0)
			if e {
				b = 1
			}
			if _, err := w.Write([]byte{b}); err != nil {
				return err
			}
		}
	}
	return nil
}

// readCSR reconstructs a Graph's rows from a stream written by writeCSR,
// given the unit count n.
func readCSR(r io.Reader, n int) (*Graph, error) {
	rowPtr := make([]uint32, n+1)
	for i := range rowPtr {
		v, err := wire.ReadU32(r)
		if err != nil {
			return nil, err
		}
		rowPtr[i] = v
	}
	nnz := int(rowPtr[n])

	colIdx := make([]uint32, nnz)
	for i := range colIdx {
		v, err := wire.ReadU32(r)
		if err != nil {
			return nil, err
		}
		colIdx[i] = v
	}
	weights := make([]float32, nnz)
	for i := range weights {
		v, err := wire.ReadF32(r)
		if err != nil {
			return nil, err
		}
		weights[i] = v
	}
	engram := make([]bool, nnz)
	for i := range engram {
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		engram[i] = b[0] != 0
	}

	g := &Graph{rows: make([]row, n)}
	for i := 0; i < n; i++ {
		start, end := rowPtr[i], rowPtr[i+1]
		count := int(end - start)
		rw := row{
			to:     make([]uint32, count),
			weight: make([]float64, count),
			engram: make([]bool, count),
		}
		copy(rw.to, colIdx[start:end])
		for k := range rw.weight {
			rw.weight[k] = float64(weights[int(start)+k])
		}
		copy(rw.engram, engram[start:end])
		g.rows[i] = rw
	}
	return g, nil
}

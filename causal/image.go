// causal/image.go
package causal

import (
	"bufio"
	"io"

	"github.com/SynapticNetworks/temporal-neuron/internal/wire"
	"github.com/SynapticNetworks/temporal-neuron/types"
)

// WriteTo serializes the memory as a CAUS chunk payload:
// decay:f32, base_n:u32, [(id:u32, count:f32); base_n], edge_n:u32,
// [(packed:u64, count:f32); edge_n], prev_n:u32, [id:u32; prev_n].
//
// Keys are written in sorted order so two observationally-equal memories
// serialize to byte-identical chunks.
func (m *Memory) WriteTo(w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bw := bufio.NewWriter(w)

	if err := wire.WriteF32(bw, float32(m.decay)); err != nil {
		return err
	}

	baseIDs := make([]types.SymbolID, 0, len(m.base))
	for id := range m.base {
		baseIDs = append(baseIDs, id)
	}
	wire.SortSymbolIDs(baseIDs)
	if err := wire.WriteU32(bw, uint32(len(baseIDs))); err != nil {
		return err
	}
	for _, id := range baseIDs {
		if err := wire.WriteU32(bw, uint32(id)); err != nil {
			return err
		}
		if err := wire.WriteF32(bw, float32(m.base[id])); err != nil {
			return err
		}
	}

	edgeKeys := make([]uint64, 0, len(m.edges))
	for k := range m.edges {
		edgeKeys = append(edgeKeys, k)
	}
	wire.SortU64(edgeKeys)
	if err := wire.WriteU32(bw, uint32(len(edgeKeys))); err != nil {
		return err
	}
	for _, k := range edgeKeys {
		if err := wire.WriteU64(bw, k); err != nil {
			return err
		}
		if err := wire.WriteF32(bw, float32(m.edges[k])); err != nil {
			return err
		}
	}

	if err := wire.WriteU32(bw, uint32(len(m.prev))); err != nil {
		return err
	}
	for _, id := range m.prev {
		if err := wire.WriteU32(bw, uint32(id)); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ReadMemory deserializes a CAUS chunk payload written by WriteTo.
func ReadMemory(r io.Reader) (*Memory, error) {
	br := bufio.NewReader(r)

	decay, err := wire.ReadF32(br)
	if err != nil {
		return nil, err
	}
	m := NewMemory(float64(decay))

	baseN, err := wire.ReadU32(br)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < baseN; i++ {
		id, err := wire.ReadU32(br)
		if err != nil {
			return nil, err
		}
		count, err := wire.ReadF32(br)
		if err != nil {
			return nil, err
		}
		m.base[types.SymbolID(id)] = float64(count)
	}

	edgeN, err := wire.ReadU32(br)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < edgeN; i++ {
		key, err := wire.ReadU64(br)
		if err != nil {
			return nil, err
		}
		count, err := wire.ReadF32(br)
		if err != nil {
			return nil, err
		}
		m.edges[key] = float64(count)
	}

	prevN, err := wire.ReadU32(br)
	if err != nil {
		return nil, err
	}
	prev := make([]types.SymbolID, prevN)
	for i := uint32(0); i < prevN; i++ {
		id, err := wire.ReadU32(br)
		if err != nil {
			return nil, err
		}
		prev[i] = types.SymbolID(id)
	}
	m.prev = prev
	m.reanchorLocked()

	return m, nil
}

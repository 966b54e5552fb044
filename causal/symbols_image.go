// causal/symbols_image.go
package causal

import (
	"bufio"
	"io"

	"github.com/SynapticNetworks/temporal-neuron/internal/wire"
)

// WriteTo serializes the table as a SYMB chunk payload:
// u32 m, then per symbol len:u32, utf8 (id = position).
func (t *SymbolTable) WriteTo(w io.Writer) error {
	names := t.Snapshot()
	bw := bufio.NewWriter(w)
	if err := wire.WriteU32(bw, uint32(len(names))); err != nil {
		return err
	}
	for _, name := range names {
		if err := wire.WriteString(bw, name); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadSymbolTable deserializes a SYMB chunk payload written by WriteTo.
func ReadSymbolTable(r io.Reader) (*SymbolTable, error) {
	br := bufio.NewReader(r)
	m, err := wire.ReadU32(br)
	if err != nil {
		return nil, err
	}
	names := make([]string, m)
	for i := uint32(0); i < m; i++ {
		s, err := wire.ReadString(br)
		if err != nil {
			return nil, err
		}
		names[i] = s
	}
	return LoadSymbolTable(names), nil
}

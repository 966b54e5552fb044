// Package wire provides the little-endian integer/float primitives shared by
// the BBI chunk codec (persist) and causal memory's chunk payload (causal).
// Kept dependency-free and leaf-level so both packages can import it without
// creating a cycle.
//
// Generalizes a fixed per-message-type wire layout into a general
// read/write-primitive toolkit for a chunked image format: all integers
// little-endian, all floats IEEE-754 binary32 little-endian, strings are
// UTF-8 and length-prefixed, never NUL-terminated.
package wire

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sort"

	"github.com/SynapticNetworks/temporal-neuron/types"
)

var ErrTruncated = errors.New("wire: truncated read")

func WriteU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func WriteU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func WriteF32(w io.Writer, v float32) error {
	return WriteU32(w, math.Float32bits(v))
}

func WriteString(w io.Writer, s string) error {
	if err := WriteU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func ReadU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return 0, ErrTruncated
		}
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func ReadU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return 0, ErrTruncated
		}
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func ReadF32(r io.Reader) (float32, error) {
	u, err := ReadU32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

func ReadString(r io.Reader) (string, error) {
	n, err := ReadU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", ErrTruncated
	}
	return string(buf), nil
}

// SortSymbolIDs sorts a slice of symbol ids ascending, for deterministic
// chunk serialization.
func SortSymbolIDs(ids []types.SymbolID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// SortU64 sorts a slice of uint64 keys ascending.
func SortU64(keys []uint64) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}

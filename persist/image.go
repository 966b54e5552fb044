// Package persist implements the BBI (Brain Binary Image) chunked binary
// container: an 8-byte magic, a u32 version, then a sequence of
// {tag, len, uncompressed_len, payload} chunks. It knows nothing about
// substrate/causal-memory semantics — it only frames and compresses opaque
// payloads, so substrate.Substrate (which does know the semantics) is the
// package that assembles/parses a full image out of Writer/Reader.
//
// Chunks are framed with a fixed little-endian header layout, generalized
// into a self-describing container, with github.com/pierrec/lz4/v4 for
// payload compression (see DESIGN.md).
package persist

import (
	"io"

	"github.com/SynapticNetworks/temporal-neuron/internal/wire"
	"github.com/SynapticNetworks/temporal-neuron/types"
)

// Magic is the 8-byte BBI file signature.
const Magic = "BRAINE01"

// CurrentVersion is the top-level image format version this package writes.
// Version 2 introduced LZ4 chunk compression.
const CurrentVersion = 2

// WriteHeader writes the 8-byte magic and the u32 version.
func WriteHeader(w io.Writer, version uint32) error {
	if _, err := io.WriteString(w, Magic); err != nil {
		return err
	}
	return wire.WriteU32(w, version)
}

// ReadHeader reads and validates the magic, returning the version found.
// Callers that want to tolerate a newer writer should check the returned
// version against the versions they know how to parse.
func ReadHeader(r io.Reader) (version uint32, err error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return 0, &types.ImageError{Stage: "magic", Reason: "truncated or unreadable"}
	}
	if string(magic) != Magic {
		return 0, &types.ImageError{Stage: "magic", Reason: "magic mismatch"}
	}
	version, err = wire.ReadU32(r)
	if err != nil {
		return 0, &types.ImageError{Stage: "version", Reason: err.Error()}
	}
	return version, nil
}

// persist/chunks.go
package persist

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/SynapticNetworks/temporal-neuron/internal/wire"
	"github.com/SynapticNetworks/temporal-neuron/types"
)

// Tag is the 4-byte ASCII chunk identifier.
type Tag [4]byte

func NewTag(s string) Tag {
	var t Tag
	copy(t[:], s)
	return t
}

func (t Tag) String() string { return string(bytes.TrimRight(t[:], "\x00")) }

// Chunk is one decoded chunk: a tag and its decompressed payload bytes.
type Chunk struct {
	Tag     Tag
	Payload []byte
}

// Writer appends chunks to an underlying io.Writer, compressing each
// payload with LZ4.
//
// Generalizes a fixed-layout wire encoding into a self-describing chunk
// container, using github.com/pierrec/lz4/v4 for compression (see
// DESIGN.md for the adoption rationale).
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// WriteChunk writes tag, len, uncompressed_len, then the LZ4-compressed
// payload.
func (cw *Writer) WriteChunk(tag Tag, payload []byte) error {
	var compressed bytes.Buffer
	lzw := lz4.NewWriter(&compressed)
	if _, err := lzw.Write(payload); err != nil {
		return err
	}
	if err := lzw.Close(); err != nil {
		return err
	}

	// len is "bytes following this header (including uncompressed_len)":
	// the 4-byte uncompressed_len field plus the compressed payload bytes.
	length := uint32(4 + compressed.Len())

	if _, err := cw.w.Write(tag[:]); err != nil {
		return err
	}
	if err := wire.WriteU32(cw.w, length); err != nil {
		return err
	}
	if err := wire.WriteU32(cw.w, uint32(len(payload))); err != nil {
		return err
	}
	_, err := cw.w.Write(compressed.Bytes())
	return err
}

// Reader walks a sequence of chunks from an underlying io.Reader. An unknown
// tag is still returned to the caller as a Chunk (with its payload
// decompressed) — it is the caller's responsibility to skip tags it does
// not recognize, which it can do for free by simply not switching on them;
// no seeking is required because NextChunk always consumes exactly one
// chunk's bytes regardless of tag.
type Reader struct {
	r io.Reader
}

func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// NextChunk reads one chunk, or returns io.EOF when the stream is exhausted.
func (cr *Reader) NextChunk() (Chunk, error) {
	var tag Tag
	if _, err := io.ReadFull(cr.r, tag[:]); err != nil {
		if err == io.EOF {
			return Chunk{}, io.EOF
		}
		return Chunk{}, &types.ImageError{Stage: "chunk tag", Reason: err.Error()}
	}

	length, err := wire.ReadU32(cr.r)
	if err != nil {
		return Chunk{}, &types.ImageError{Stage: "chunk " + tag.String() + " length", Reason: err.Error()}
	}
	if length < 4 {
		return Chunk{}, &types.ImageError{Stage: "chunk " + tag.String(), Reason: "length shorter than uncompressed_len field"}
	}

	uncompressedLen, err := wire.ReadU32(cr.r)
	if err != nil {
		return Chunk{}, &types.ImageError{Stage: "chunk " + tag.String() + " uncompressed_len", Reason: err.Error()}
	}

	compressed := make([]byte, length-4)
	if _, err := io.ReadFull(cr.r, compressed); err != nil {
		return Chunk{}, &types.ImageError{Stage: "chunk " + tag.String() + " payload", Reason: "truncated"}
	}

	payload := make([]byte, uncompressedLen)
	lzr := lz4.NewReader(bytes.NewReader(compressed))
	if _, err := io.ReadFull(lzr, payload); err != nil {
		return Chunk{}, &types.ImageError{Stage: "chunk " + tag.String() + " lz4 decode", Reason: err.Error()}
	}

	return Chunk{Tag: tag, Payload: payload}, nil
}

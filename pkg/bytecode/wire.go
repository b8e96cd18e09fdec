package bytecode

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/fern/pkg/value"
)

// WireVersion is the current chunk file format version. Increment on any
// incompatible change.
const WireVersion uint16 = 1

// ChunkMagic identifies a serialized chunk: "FNBC" (FerN ByteCode).
var ChunkMagic = []byte{'F', 'N', 'B', 'C'}

// Canonical mode keeps the encoding deterministic.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireValue is the heap-independent form of a constant. String payloads are
// materialized from the source heap on encode and re-allocated into the
// destination heap on decode.
type wireValue struct {
	Kind uint8   `cbor:"k"`
	Num  float64 `cbor:"n,omitempty"`
	Bool bool    `cbor:"b,omitempty"`
	Str  string  `cbor:"s,omitempty"`
}

type wireChunk struct {
	Version   uint16      `cbor:"v"`
	Code      []byte      `cbor:"c"`
	Lines     []int       `cbor:"l"`
	Constants []wireValue `cbor:"k"`
}

// MarshalChunk serializes a chunk to the FNBC wire format: the 4-byte magic
// followed by a canonical CBOR body.
func MarshalChunk(c *Chunk, heap *value.Heap) ([]byte, error) {
	wc := wireChunk{
		Version:   WireVersion,
		Code:      c.Code,
		Lines:     c.Lines,
		Constants: make([]wireValue, 0, len(c.Constants)),
	}
	for i, v := range c.Constants {
		switch v.Kind() {
		case value.KindNil:
			wc.Constants = append(wc.Constants, wireValue{Kind: uint8(value.KindNil)})
		case value.KindBool:
			wc.Constants = append(wc.Constants, wireValue{Kind: uint8(value.KindBool), Bool: v.AsBool()})
		case value.KindNumber:
			wc.Constants = append(wc.Constants, wireValue{Kind: uint8(value.KindNumber), Num: v.AsNumber()})
		case value.KindObject:
			s, ok := heap.StringValue(v)
			if !ok {
				return nil, fmt.Errorf("bytecode: constant %d is not resolvable in the heap", i)
			}
			wc.Constants = append(wc.Constants, wireValue{Kind: uint8(value.KindObject), Str: s})
		default:
			return nil, fmt.Errorf("bytecode: constant %d has unknown kind %d", i, v.Kind())
		}
	}

	body, err := cborEncMode.Marshal(&wc)
	if err != nil {
		return nil, fmt.Errorf("bytecode: marshal chunk: %w", err)
	}
	return append(append([]byte{}, ChunkMagic...), body...), nil
}

// UnmarshalChunk decodes FNBC data, re-allocating string constants into
// heap, and validates the chunk invariants before handing it back.
func UnmarshalChunk(data []byte, heap *value.Heap) (*Chunk, error) {
	if len(data) < len(ChunkMagic) || !bytes.Equal(data[:len(ChunkMagic)], ChunkMagic) {
		return nil, fmt.Errorf("bytecode: not a chunk file (bad magic)")
	}
	var wc wireChunk
	if err := cbor.Unmarshal(data[len(ChunkMagic):], &wc); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal chunk: %w", err)
	}
	if wc.Version != WireVersion {
		return nil, fmt.Errorf("bytecode: unsupported chunk version %d (want %d)", wc.Version, WireVersion)
	}

	c := &Chunk{
		Code:      wc.Code,
		Lines:     wc.Lines,
		Constants: make([]value.Value, 0, len(wc.Constants)),
	}
	for i, w := range wc.Constants {
		switch value.Kind(w.Kind) {
		case value.KindNil:
			c.Constants = append(c.Constants, value.Nil())
		case value.KindBool:
			c.Constants = append(c.Constants, value.Bool(w.Bool))
		case value.KindNumber:
			c.Constants = append(c.Constants, value.Number(w.Num))
		case value.KindObject:
			c.Constants = append(c.Constants, heap.AllocString(w.Str))
		default:
			return nil, fmt.Errorf("bytecode: constant %d has unknown kind %d", i, w.Kind)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("bytecode: invalid chunk: %w", err)
	}
	return c, nil
}

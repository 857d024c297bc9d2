package embedding

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// binarySize is the encoded length: Dim little-endian IEEE-754 float32 values.
const binarySize = Dim * 4

// MarshalBinary encodes the embedding as Dim little-endian float32 values.
// The encoding keeps every bit, so decoding reproduces the vector exactly.
func (e Embedding) MarshalBinary() ([]byte, error) {
	if len(e) != Dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidDimension, len(e), Dim)
	}
	buf := make([]byte, binarySize)
	for i, v := range e {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (e *Embedding) UnmarshalBinary(data []byte) error {
	if len(data) != binarySize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidDimension, len(data), binarySize)
	}
	out := make(Embedding, Dim)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	*e = out
	return nil
}

// UnmarshalJSON accepts a JSON number array and enforces the fixed length.
// Numbers are parsed at float32 precision, which round-trips encoding/json's float32 output.
func (e *Embedding) UnmarshalJSON(data []byte) error {
	var values []float32
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("decoding embedding: %w", err)
	}
	if len(values) != Dim {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidDimension, len(values), Dim)
	}
	*e = values
	return nil
}

// FromSlice checks the length of a raw vector read from storage.
func FromSlice(v []float32) (Embedding, error) {
	if len(v) != Dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidDimension, len(v), Dim)
	}
	return Embedding(v), nil
}

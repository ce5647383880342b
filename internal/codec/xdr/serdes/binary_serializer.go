// Package serdes implements the primitive layer of the XDR wire format:
// big-endian fixed-width integers and opaque byte regions padded to a
// 4-byte boundary, written to and read from flat byte buffers.
package serdes

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrValueTooLong is returned when a variable-length value exceeds its
	// declared maximum before any bytes are written.
	ErrValueTooLong = errors.New("value exceeds maximum declared length")
)

// BinarySerializer accumulates XDR-encoded primitives in an append-only
// byte sink. Write methods never fail once their length checks pass, so a
// partially written buffer only ever contains complete fields.
type BinarySerializer struct {
	sink []byte
}

// NewBinarySerializer creates an empty serializer.
func NewBinarySerializer() *BinarySerializer {
	return &BinarySerializer{sink: make([]byte, 0, 256)}
}

// WriteUint32 appends a 32-bit unsigned integer in big-endian order.
func (s *BinarySerializer) WriteUint32(v uint32) {
	s.sink = binary.BigEndian.AppendUint32(s.sink, v)
}

// WriteInt32 appends a 32-bit signed integer in big-endian order.
func (s *BinarySerializer) WriteInt32(v int32) {
	s.WriteUint32(uint32(v))
}

// WriteUint64 appends a 64-bit unsigned integer in big-endian order.
func (s *BinarySerializer) WriteUint64(v uint64) {
	s.sink = binary.BigEndian.AppendUint64(s.sink, v)
}

// WriteInt64 appends a 64-bit signed integer in big-endian order.
func (s *BinarySerializer) WriteInt64(v int64) {
	s.WriteUint64(uint64(v))
}

// WriteBool appends an XDR boolean (a full 4-byte word holding 0 or 1).
func (s *BinarySerializer) WriteBool(v bool) {
	if v {
		s.WriteUint32(1)
	} else {
		s.WriteUint32(0)
	}
}

// WriteFixedOpaque appends raw bytes without a length prefix, followed by
// zero padding to the next 4-byte boundary.
func (s *BinarySerializer) WriteFixedOpaque(b []byte) {
	s.sink = append(s.sink, b...)
	s.pad(len(b))
}

// WriteVarOpaque appends a 4-byte length prefix, the raw bytes, and zero
// padding to the next 4-byte boundary. The length check runs before any
// byte reaches the sink.
func (s *BinarySerializer) WriteVarOpaque(b []byte, max uint32) error {
	if uint64(len(b)) > uint64(max) {
		return fmt.Errorf("%w: %d > %d", ErrValueTooLong, len(b), max)
	}
	s.WriteUint32(uint32(len(b)))
	s.WriteFixedOpaque(b)
	return nil
}

// WriteString appends a string using the variable-length opaque layout.
func (s *BinarySerializer) WriteString(v string, max uint32) error {
	return s.WriteVarOpaque([]byte(v), max)
}

// pad appends zero bytes so that a region of n bytes ends on a 4-byte
// boundary.
func (s *BinarySerializer) pad(n int) {
	for i := n % 4; i != 0 && i < 4; i++ {
		s.sink = append(s.sink, 0)
	}
}

// Bytes returns the accumulated sink. The slice aliases the serializer's
// internal buffer; callers that keep writing must copy it first.
func (s *BinarySerializer) Bytes() []byte {
	return s.sink
}

// Len returns the number of bytes written so far.
func (s *BinarySerializer) Len() int {
	return len(s.sink)
}

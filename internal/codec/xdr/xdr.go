// Package xdr implements the binary wire format for ledger, transaction and
// smart-contract values: structs, optionals, variable and fixed arrays, and
// discriminated unions, encoded byte-for-byte as the network expects.
//
// Every type pairs EncodeTo with DecodeFrom over the serdes primitives.
// Decoding is strict: unknown union discriminants, bad padding and short
// buffers are fatal to the call. Encoding a value then decoding it yields a
// deeply equal value, and re-encoding a decoded envelope reproduces the
// input bytes exactly.
package xdr

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/LeJamon/gostellar/internal/codec/xdr/serdes"
)

var (
	// ErrUnknownDiscriminant is returned when a union discriminant is not a
	// value the protocol defines.
	ErrUnknownDiscriminant = errors.New("xdr: unknown union discriminant")

	// ErrUnsupported is returned when a discriminant is valid in the
	// protocol but outside the subset this library implements.
	ErrUnsupported = errors.New("xdr: unsupported discriminant")

	// ErrTrailingBytes is returned when a whole-value decode leaves unread
	// bytes behind.
	ErrTrailingBytes = errors.New("xdr: trailing bytes after value")

	// ErrRange is returned when an arbitrary-precision integer does not fit
	// the target width and signedness. Raised before any bytes are written.
	ErrRange = errors.New("xdr: integer out of range")

	// ErrNestingTooDeep is returned when a recursive value exceeds the
	// decode depth limit.
	ErrNestingTooDeep = errors.New("xdr: nesting too deep")
)

// maxNestingDepth caps recursion while decoding self-referential shapes
// (contract values, authorized invocation trees), so a hostile payload
// cannot exhaust the stack.
const maxNestingDepth = 500

// Encoder is implemented by every wire type that can serialize itself.
type Encoder interface {
	EncodeTo(s *serdes.BinarySerializer) error
}

// Decoder is implemented by every wire type that can parse itself.
type Decoder interface {
	DecodeFrom(p *serdes.BinaryParser) error
}

// Marshal encodes v into a fresh byte slice.
func Marshal(v Encoder) ([]byte, error) {
	s := serdes.NewBinarySerializer()
	if err := v.EncodeTo(s); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

// Unmarshal decodes v from the front of data and returns the number of
// bytes consumed.
func Unmarshal(data []byte, v Decoder) (int, error) {
	p := serdes.NewBinaryParser(data)
	if err := v.DecodeFrom(p); err != nil {
		return p.Pos(), err
	}
	return p.Pos(), nil
}

// MarshalBase64 encodes v and wraps the bytes in standard base64.
func MarshalBase64(v Encoder) (string, error) {
	raw, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// UnmarshalBase64 decodes a base64 string into v and requires the value to
// span the whole payload.
func UnmarshalBase64(text string, v Decoder) error {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return fmt.Errorf("xdr: invalid base64: %w", err)
	}
	n, err := Unmarshal(raw, v)
	if err != nil {
		return err
	}
	if n != len(raw) {
		return fmt.Errorf("%w: %d of %d bytes consumed", ErrTrailingBytes, n, len(raw))
	}
	return nil
}

// encodeOptional writes the 4-byte presence flag and, when present, the
// value produced by enc.
func encodeOptional(s *serdes.BinarySerializer, present bool, enc func() error) error {
	s.WriteBool(present)
	if !present {
		return nil
	}
	return enc()
}

// decodeOptional reads the presence flag and, when set, invokes dec.
// It returns whether the value was present.
func decodeOptional(p *serdes.BinaryParser, dec func() error) (bool, error) {
	present, err := p.ReadBool()
	if err != nil {
		return false, err
	}
	if !present {
		return false, nil
	}
	return true, dec()
}

// encodeVecLen writes the element count of a variable-length array after
// validating it against the array's declared maximum.
func encodeVecLen(s *serdes.BinarySerializer, n int, max uint32) error {
	if uint64(n) > uint64(max) {
		return fmt.Errorf("%w: %d elements, max %d", serdes.ErrValueTooLong, n, max)
	}
	s.WriteUint32(uint32(n))
	return nil
}

// decodeVecLen reads and validates the element count of a variable-length
// array.
func decodeVecLen(p *serdes.BinaryParser, max uint32) (int, error) {
	n, err := p.ReadUint32()
	if err != nil {
		return 0, err
	}
	if n > max {
		return 0, fmt.Errorf("%w: declared %d elements, max %d", serdes.ErrLengthPrefix, n, max)
	}
	// Every element occupies at least one 4-byte word, so a count that
	// cannot fit in the remaining buffer is malformed. This bounds
	// allocations before any element is read.
	if uint64(n)*4 > uint64(p.Remaining()) {
		return 0, fmt.Errorf("%w: declared %d elements, remaining %d bytes", serdes.ErrLengthPrefix, n, p.Remaining())
	}
	return int(n), nil
}

package serdes

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEOF is returned when a read runs past the end of the
	// buffer.
	ErrUnexpectedEOF = errors.New("unexpected end of buffer")

	// ErrLengthPrefix is returned when a declared length exceeds the bytes
	// remaining in the buffer.
	ErrLengthPrefix = errors.New("length prefix exceeds remaining buffer")

	// ErrPadding is returned when an alignment pad byte is not zero.
	ErrPadding = errors.New("non-zero padding byte")

	// ErrBoolEncoding is returned when a boolean word is neither 0 nor 1.
	ErrBoolEncoding = errors.New("boolean must be encoded as 0 or 1")
)

// BinaryParser is a read cursor over an XDR-encoded byte buffer. Every read
// advances the cursor; a read past the end fails with ErrUnexpectedEOF and
// leaves the cursor where it was.
type BinaryParser struct {
	data []byte
	pos  int
}

// NewBinaryParser creates a parser positioned at the start of data.
func NewBinaryParser(data []byte) *BinaryParser {
	return &BinaryParser{data: data}
}

// ReadBytes returns the next n bytes and advances the cursor.
func (p *BinaryParser) ReadBytes(n int) ([]byte, error) {
	if n < 0 || p.pos+n > len(p.data) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEOF, n, len(p.data)-p.pos)
	}
	b := p.data[p.pos : p.pos+n]
	p.pos += n
	return b, nil
}

// ReadUint32 reads a big-endian 32-bit unsigned integer.
func (p *BinaryParser) ReadUint32() (uint32, error) {
	b, err := p.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadInt32 reads a big-endian 32-bit signed integer.
func (p *BinaryParser) ReadInt32() (int32, error) {
	v, err := p.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a big-endian 64-bit unsigned integer.
func (p *BinaryParser) ReadUint64() (uint64, error) {
	b, err := p.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadInt64 reads a big-endian 64-bit signed integer.
func (p *BinaryParser) ReadInt64() (int64, error) {
	v, err := p.ReadUint64()
	return int64(v), err
}

// ReadBool reads an XDR boolean word and rejects anything but 0 or 1.
func (p *BinaryParser) ReadBool() (bool, error) {
	v, err := p.ReadUint32()
	if err != nil {
		return false, err
	}
	if v > 1 {
		return false, fmt.Errorf("%w: got %d", ErrBoolEncoding, v)
	}
	return v == 1, nil
}

// ReadFixedOpaque reads n raw bytes plus alignment padding, verifying every
// pad byte is zero. The returned slice is a copy.
func (p *BinaryParser) ReadFixedOpaque(n int) ([]byte, error) {
	b, err := p.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	if err := p.readPadding(n); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadVarOpaque reads a 4-byte length prefix, then that many bytes plus
// padding. The declared length is validated against both the caller's
// maximum and the bytes remaining before anything is consumed from the
// payload region.
func (p *BinaryParser) ReadVarOpaque(max uint32) ([]byte, error) {
	n, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	if n > max {
		return nil, fmt.Errorf("%w: declared %d, max %d", ErrLengthPrefix, n, max)
	}
	if int(n) > len(p.data)-p.pos {
		return nil, fmt.Errorf("%w: declared %d, remaining %d", ErrLengthPrefix, n, len(p.data)-p.pos)
	}
	return p.ReadFixedOpaque(int(n))
}

// ReadString reads a variable-length opaque region as a string.
func (p *BinaryParser) ReadString(max uint32) (string, error) {
	b, err := p.ReadVarOpaque(max)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readPadding consumes the pad bytes that align a region of n bytes to a
// 4-byte boundary.
func (p *BinaryParser) readPadding(n int) error {
	rem := n % 4
	if rem == 0 {
		return nil
	}
	pad, err := p.ReadBytes(4 - rem)
	if err != nil {
		return err
	}
	for _, b := range pad {
		if b != 0 {
			return ErrPadding
		}
	}
	return nil
}

// HasMore reports whether unread bytes remain.
func (p *BinaryParser) HasMore() bool {
	return p.pos < len(p.data)
}

// Pos returns the number of bytes consumed so far.
func (p *BinaryParser) Pos() int {
	return p.pos
}

// Remaining returns the number of unread bytes.
func (p *BinaryParser) Remaining() int {
	return len(p.data) - p.pos
}

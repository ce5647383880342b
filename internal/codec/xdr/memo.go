package xdr

import (
	"fmt"

	"github.com/LeJamon/gostellar/internal/codec/xdr/serdes"
)

// MemoType discriminates the Memo union.
type MemoType int32

const (
	MemoTypeNone   MemoType = 0
	MemoTypeText   MemoType = 1
	MemoTypeID     MemoType = 2
	MemoTypeHash   MemoType = 3
	MemoTypeReturn MemoType = 4
)

// MaxMemoTextLength bounds a text memo.
const MaxMemoTextLength = 28

// Memo is an optional note attached to a transaction.
type Memo struct {
	Type MemoType
	Text string
	ID   uint64
	Hash Hash
	// RetHash names the hash of the transaction being refunded.
	RetHash Hash
}

// MemoNone returns the empty memo.
func MemoNone() Memo { return Memo{Type: MemoTypeNone} }

// MemoText builds a text memo of at most 28 bytes.
func MemoText(text string) (Memo, error) {
	if len(text) > MaxMemoTextLength {
		return Memo{}, fmt.Errorf("memo text %d bytes exceeds maximum %d", len(text), MaxMemoTextLength)
	}
	return Memo{Type: MemoTypeText, Text: text}, nil
}

// MemoID builds a 64-bit id memo.
func MemoID(id uint64) Memo { return Memo{Type: MemoTypeID, ID: id} }

// MemoHash builds a 32-byte hash memo.
func MemoHash(h Hash) Memo { return Memo{Type: MemoTypeHash, Hash: h} }

// MemoReturn builds a return-hash memo.
func MemoReturn(h Hash) Memo { return Memo{Type: MemoTypeReturn, RetHash: h} }

// EncodeTo writes the discriminant and the active arm.
func (m Memo) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(int32(m.Type))
	switch m.Type {
	case MemoTypeNone:
		return nil
	case MemoTypeText:
		return s.WriteString(m.Text, MaxMemoTextLength)
	case MemoTypeID:
		s.WriteUint64(m.ID)
		return nil
	case MemoTypeHash:
		return m.Hash.EncodeTo(s)
	case MemoTypeReturn:
		return m.RetHash.EncodeTo(s)
	default:
		return fmt.Errorf("%w: memo type %d", ErrUnknownDiscriminant, m.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (m *Memo) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	*m = Memo{Type: MemoType(d)}
	switch m.Type {
	case MemoTypeNone:
		return nil
	case MemoTypeText:
		m.Text, err = p.ReadString(MaxMemoTextLength)
		return err
	case MemoTypeID:
		m.ID, err = p.ReadUint64()
		return err
	case MemoTypeHash:
		return m.Hash.DecodeFrom(p)
	case MemoTypeReturn:
		return m.RetHash.DecodeFrom(p)
	default:
		return fmt.Errorf("%w: memo type %d", ErrUnknownDiscriminant, d)
	}
}

package xdr

import (
	"fmt"

	"github.com/LeJamon/gostellar/internal/codec/xdr/serdes"
)

// SequenceNumber is a transaction sequence number.
type SequenceNumber int64

// TimePoint is a Unix timestamp in seconds.
type TimePoint uint64

// Duration is a span in seconds.
type Duration uint64

// TimeBounds restricts the wall-clock window a transaction is valid in.
// A zero MaxTime means no upper bound.
type TimeBounds struct {
	MinTime TimePoint
	MaxTime TimePoint
}

// EncodeTo writes both bounds.
func (tb TimeBounds) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteUint64(uint64(tb.MinTime))
	s.WriteUint64(uint64(tb.MaxTime))
	return nil
}

// DecodeFrom reads both bounds.
func (tb *TimeBounds) DecodeFrom(p *serdes.BinaryParser) error {
	min, err := p.ReadUint64()
	if err != nil {
		return err
	}
	max, err := p.ReadUint64()
	if err != nil {
		return err
	}
	tb.MinTime, tb.MaxTime = TimePoint(min), TimePoint(max)
	return nil
}

// LedgerBounds restricts the ledger-sequence window a transaction is valid
// in. A zero MaxLedger means no upper bound.
type LedgerBounds struct {
	MinLedger uint32
	MaxLedger uint32
}

// EncodeTo writes both bounds.
func (lb LedgerBounds) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteUint32(lb.MinLedger)
	s.WriteUint32(lb.MaxLedger)
	return nil
}

// DecodeFrom reads both bounds.
func (lb *LedgerBounds) DecodeFrom(p *serdes.BinaryParser) error {
	var err error
	if lb.MinLedger, err = p.ReadUint32(); err != nil {
		return err
	}
	lb.MaxLedger, err = p.ReadUint32()
	return err
}

// PreconditionType discriminates the Preconditions union.
type PreconditionType int32

const (
	PrecondNone PreconditionType = 0
	PrecondTime PreconditionType = 1
	PrecondV2   PreconditionType = 2
)

// MaxExtraSigners bounds the extra-signer list of v2 preconditions.
const MaxExtraSigners = 2

// PreconditionsV2 carries the full set of validity preconditions.
type PreconditionsV2 struct {
	TimeBounds      *TimeBounds
	LedgerBounds    *LedgerBounds
	MinSeqNum       *SequenceNumber
	MinSeqAge       Duration
	MinSeqLedgerGap uint32
	ExtraSigners    []SignerKey
}

// EncodeTo writes every field, optionals first.
func (pc PreconditionsV2) EncodeTo(s *serdes.BinarySerializer) error {
	err := encodeOptional(s, pc.TimeBounds != nil, func() error { return pc.TimeBounds.EncodeTo(s) })
	if err != nil {
		return err
	}
	err = encodeOptional(s, pc.LedgerBounds != nil, func() error { return pc.LedgerBounds.EncodeTo(s) })
	if err != nil {
		return err
	}
	err = encodeOptional(s, pc.MinSeqNum != nil, func() error {
		s.WriteInt64(int64(*pc.MinSeqNum))
		return nil
	})
	if err != nil {
		return err
	}
	s.WriteUint64(uint64(pc.MinSeqAge))
	s.WriteUint32(pc.MinSeqLedgerGap)
	if err := encodeVecLen(s, len(pc.ExtraSigners), MaxExtraSigners); err != nil {
		return err
	}
	for _, sk := range pc.ExtraSigners {
		if err := sk.EncodeTo(s); err != nil {
			return err
		}
	}
	return nil
}

// DecodeFrom reads every field.
func (pc *PreconditionsV2) DecodeFrom(p *serdes.BinaryParser) error {
	*pc = PreconditionsV2{}
	_, err := decodeOptional(p, func() error {
		pc.TimeBounds = new(TimeBounds)
		return pc.TimeBounds.DecodeFrom(p)
	})
	if err != nil {
		return err
	}
	_, err = decodeOptional(p, func() error {
		pc.LedgerBounds = new(LedgerBounds)
		return pc.LedgerBounds.DecodeFrom(p)
	})
	if err != nil {
		return err
	}
	_, err = decodeOptional(p, func() error {
		v, err := p.ReadInt64()
		if err != nil {
			return err
		}
		seq := SequenceNumber(v)
		pc.MinSeqNum = &seq
		return nil
	})
	if err != nil {
		return err
	}
	age, err := p.ReadUint64()
	if err != nil {
		return err
	}
	pc.MinSeqAge = Duration(age)
	if pc.MinSeqLedgerGap, err = p.ReadUint32(); err != nil {
		return err
	}
	n, err := decodeVecLen(p, MaxExtraSigners)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		var sk SignerKey
		if err := sk.DecodeFrom(p); err != nil {
			return err
		}
		pc.ExtraSigners = append(pc.ExtraSigners, sk)
	}
	return nil
}

// Preconditions is the union of precondition forms a transaction may carry.
type Preconditions struct {
	Type       PreconditionType
	TimeBounds *TimeBounds
	V2         *PreconditionsV2
}

// EncodeTo writes the discriminant and the active arm.
func (pc Preconditions) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(int32(pc.Type))
	switch pc.Type {
	case PrecondNone:
		return nil
	case PrecondTime:
		if pc.TimeBounds == nil {
			return fmt.Errorf("preconditions: nil time bounds arm")
		}
		return pc.TimeBounds.EncodeTo(s)
	case PrecondV2:
		if pc.V2 == nil {
			return fmt.Errorf("preconditions: nil v2 arm")
		}
		return pc.V2.EncodeTo(s)
	default:
		return fmt.Errorf("%w: precondition type %d", ErrUnknownDiscriminant, pc.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (pc *Preconditions) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	*pc = Preconditions{Type: PreconditionType(d)}
	switch pc.Type {
	case PrecondNone:
		return nil
	case PrecondTime:
		pc.TimeBounds = new(TimeBounds)
		return pc.TimeBounds.DecodeFrom(p)
	case PrecondV2:
		pc.V2 = new(PreconditionsV2)
		return pc.V2.DecodeFrom(p)
	default:
		return fmt.Errorf("%w: precondition type %d", ErrUnknownDiscriminant, d)
	}
}

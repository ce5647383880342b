package xdr

import (
	"fmt"
	"math/big"

	"github.com/LeJamon/gostellar/internal/codec/xdr/serdes"
)

// The fixed-width contract integers travel as 64-bit words, most
// significant first. Signed variants use two's complement over the full
// width: a negative value is materialized as value + 2^width before
// slicing, and the top bit of the most significant word recovers the sign
// on the way back.

var (
	two64  = new(big.Int).Lsh(big.NewInt(1), 64)
	two127 = new(big.Int).Lsh(big.NewInt(1), 127)
	two128 = new(big.Int).Lsh(big.NewInt(1), 128)
	two255 = new(big.Int).Lsh(big.NewInt(1), 255)
	two256 = new(big.Int).Lsh(big.NewInt(1), 256)
)

// splitWords materializes x in two's-complement form over bits and slices
// it into 64-bit words, most significant first.
func splitWords(x *big.Int, bits int, modulus *big.Int) []uint64 {
	v := new(big.Int).Set(x)
	if v.Sign() < 0 {
		v.Add(v, modulus)
	}
	words := make([]uint64, bits/64)
	rem := new(big.Int)
	for i := len(words) - 1; i >= 0; i-- {
		v.QuoRem(v, two64, rem)
		words[i] = rem.Uint64()
	}
	return words
}

// joinWords reassembles most-significant-first words into an unsigned
// integer.
func joinWords(words []uint64) *big.Int {
	v := new(big.Int)
	for _, w := range words {
		v.Lsh(v, 64)
		v.Or(v, new(big.Int).SetUint64(w))
	}
	return v
}

// UInt128Parts is an unsigned 128-bit integer as (hi, lo) words.
type UInt128Parts struct {
	Hi uint64
	Lo uint64
}

// UInt128PartsFromBig converts x, requiring 0 <= x < 2^128.
func UInt128PartsFromBig(x *big.Int) (UInt128Parts, error) {
	if x.Sign() < 0 || x.Cmp(two128) >= 0 {
		return UInt128Parts{}, fmt.Errorf("%w: %s does not fit u128", ErrRange, x)
	}
	w := splitWords(x, 128, two128)
	return UInt128Parts{Hi: w[0], Lo: w[1]}, nil
}

// Big returns the arbitrary-precision value.
func (u UInt128Parts) Big() *big.Int {
	return joinWords([]uint64{u.Hi, u.Lo})
}

// EncodeTo writes both words.
func (u UInt128Parts) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteUint64(u.Hi)
	s.WriteUint64(u.Lo)
	return nil
}

// DecodeFrom reads both words.
func (u *UInt128Parts) DecodeFrom(p *serdes.BinaryParser) error {
	var err error
	if u.Hi, err = p.ReadUint64(); err != nil {
		return err
	}
	u.Lo, err = p.ReadUint64()
	return err
}

// Int128Parts is a signed 128-bit integer in two's complement.
type Int128Parts struct {
	Hi int64
	Lo uint64
}

// Int128PartsFromBig converts x, requiring -2^127 <= x < 2^127.
func Int128PartsFromBig(x *big.Int) (Int128Parts, error) {
	if x.Cmp(new(big.Int).Neg(two127)) < 0 || x.Cmp(two127) >= 0 {
		return Int128Parts{}, fmt.Errorf("%w: %s does not fit i128", ErrRange, x)
	}
	w := splitWords(x, 128, two128)
	return Int128Parts{Hi: int64(w[0]), Lo: w[1]}, nil
}

// Big returns the arbitrary-precision value, interpreting the top bit of
// the high word as the sign.
func (i Int128Parts) Big() *big.Int {
	v := joinWords([]uint64{uint64(i.Hi), i.Lo})
	if i.Hi < 0 {
		v.Sub(v, two128)
	}
	return v
}

// EncodeTo writes both words.
func (i Int128Parts) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt64(i.Hi)
	s.WriteUint64(i.Lo)
	return nil
}

// DecodeFrom reads both words.
func (i *Int128Parts) DecodeFrom(p *serdes.BinaryParser) error {
	var err error
	if i.Hi, err = p.ReadInt64(); err != nil {
		return err
	}
	i.Lo, err = p.ReadUint64()
	return err
}

// UInt256Parts is an unsigned 256-bit integer as four words, most
// significant first.
type UInt256Parts struct {
	HiHi uint64
	HiLo uint64
	LoHi uint64
	LoLo uint64
}

// UInt256PartsFromBig converts x, requiring 0 <= x < 2^256.
func UInt256PartsFromBig(x *big.Int) (UInt256Parts, error) {
	if x.Sign() < 0 || x.Cmp(two256) >= 0 {
		return UInt256Parts{}, fmt.Errorf("%w: %s does not fit u256", ErrRange, x)
	}
	w := splitWords(x, 256, two256)
	return UInt256Parts{HiHi: w[0], HiLo: w[1], LoHi: w[2], LoLo: w[3]}, nil
}

// Big returns the arbitrary-precision value.
func (u UInt256Parts) Big() *big.Int {
	return joinWords([]uint64{u.HiHi, u.HiLo, u.LoHi, u.LoLo})
}

// EncodeTo writes all four words.
func (u UInt256Parts) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteUint64(u.HiHi)
	s.WriteUint64(u.HiLo)
	s.WriteUint64(u.LoHi)
	s.WriteUint64(u.LoLo)
	return nil
}

// DecodeFrom reads all four words.
func (u *UInt256Parts) DecodeFrom(p *serdes.BinaryParser) error {
	var err error
	if u.HiHi, err = p.ReadUint64(); err != nil {
		return err
	}
	if u.HiLo, err = p.ReadUint64(); err != nil {
		return err
	}
	if u.LoHi, err = p.ReadUint64(); err != nil {
		return err
	}
	u.LoLo, err = p.ReadUint64()
	return err
}

// Int256Parts is a signed 256-bit integer in two's complement.
type Int256Parts struct {
	HiHi int64
	HiLo uint64
	LoHi uint64
	LoLo uint64
}

// Int256PartsFromBig converts x, requiring -2^255 <= x < 2^255.
func Int256PartsFromBig(x *big.Int) (Int256Parts, error) {
	if x.Cmp(new(big.Int).Neg(two255)) < 0 || x.Cmp(two255) >= 0 {
		return Int256Parts{}, fmt.Errorf("%w: %s does not fit i256", ErrRange, x)
	}
	w := splitWords(x, 256, two256)
	return Int256Parts{HiHi: int64(w[0]), HiLo: w[1], LoHi: w[2], LoLo: w[3]}, nil
}

// Big returns the arbitrary-precision value, interpreting the top bit of
// the highest word as the sign.
func (i Int256Parts) Big() *big.Int {
	v := joinWords([]uint64{uint64(i.HiHi), i.HiLo, i.LoHi, i.LoLo})
	if i.HiHi < 0 {
		v.Sub(v, two256)
	}
	return v
}

// EncodeTo writes all four words.
func (i Int256Parts) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt64(i.HiHi)
	s.WriteUint64(i.HiLo)
	s.WriteUint64(i.LoHi)
	s.WriteUint64(i.LoLo)
	return nil
}

// DecodeFrom reads all four words.
func (i *Int256Parts) DecodeFrom(p *serdes.BinaryParser) error {
	var err error
	var hihi int64
	if hihi, err = p.ReadInt64(); err != nil {
		return err
	}
	i.HiHi = hihi
	if i.HiLo, err = p.ReadUint64(); err != nil {
		return err
	}
	if i.LoHi, err = p.ReadUint64(); err != nil {
		return err
	}
	i.LoLo, err = p.ReadUint64()
	return err
}

package xdr

import (
	"fmt"
	"math"
	"math/big"

	"github.com/LeJamon/gostellar/internal/codec/xdr/serdes"
)

// SCValType discriminates the smart-contract value union.
type SCValType int32

const (
	SCValTypeBool      SCValType = 0
	SCValTypeVoid      SCValType = 1
	SCValTypeError     SCValType = 2
	SCValTypeU32       SCValType = 3
	SCValTypeI32       SCValType = 4
	SCValTypeU64       SCValType = 5
	SCValTypeI64       SCValType = 6
	SCValTypeTimepoint SCValType = 7
	SCValTypeDuration  SCValType = 8
	SCValTypeU128      SCValType = 9
	SCValTypeI128      SCValType = 10
	SCValTypeU256      SCValType = 11
	SCValTypeI256      SCValType = 12
	SCValTypeBytes     SCValType = 13
	SCValTypeString    SCValType = 14
	SCValTypeSymbol    SCValType = 15
	SCValTypeVec       SCValType = 16
	SCValTypeMap       SCValType = 17
	SCValTypeAddress   SCValType = 18
)

// MaxSymbolLength bounds a contract symbol.
const MaxSymbolLength = 32

// SCAddressType discriminates the SCAddress union.
type SCAddressType int32

const (
	// SCAddressTypeAccount addresses a classic account.
	SCAddressTypeAccount SCAddressType = 0
	// SCAddressTypeContract addresses a deployed contract.
	SCAddressTypeContract SCAddressType = 1
)

// SCAddress identifies an account or contract inside contract values.
type SCAddress struct {
	Type       SCAddressType
	AccountID  *AccountID
	ContractID *Hash
}

// EncodeTo writes the discriminant and the active arm.
func (a SCAddress) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(int32(a.Type))
	switch a.Type {
	case SCAddressTypeAccount:
		if a.AccountID == nil {
			return fmt.Errorf("sc address: nil account arm")
		}
		return a.AccountID.EncodeTo(s)
	case SCAddressTypeContract:
		if a.ContractID == nil {
			return fmt.Errorf("sc address: nil contract arm")
		}
		return a.ContractID.EncodeTo(s)
	default:
		return fmt.Errorf("%w: sc address type %d", ErrUnknownDiscriminant, a.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (a *SCAddress) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	*a = SCAddress{Type: SCAddressType(d)}
	switch a.Type {
	case SCAddressTypeAccount:
		a.AccountID = new(AccountID)
		return a.AccountID.DecodeFrom(p)
	case SCAddressTypeContract:
		a.ContractID = new(Hash)
		return a.ContractID.DecodeFrom(p)
	default:
		return fmt.Errorf("%w: sc address type %d", ErrUnknownDiscriminant, d)
	}
}

// SCVec is an ordered list of contract values.
type SCVec []SCVal

// SCMapEntry is one key/value pair of a contract map.
type SCMapEntry struct {
	Key SCVal
	Val SCVal
}

// SCMap is an ordered list of key/value pairs.
type SCMap []SCMapEntry

// SCVal is the tagged smart-contract value. Exactly one arm is active,
// selected by Type.
type SCVal struct {
	Type    SCValType
	B       bool
	U32     uint32
	I32     int32
	U64     uint64
	I64     int64
	Time    TimePoint
	Dur     Duration
	U128    *UInt128Parts
	I128    *Int128Parts
	U256    *UInt256Parts
	I256    *Int256Parts
	Bytes   []byte
	Str     string
	Sym     string
	Vec     *SCVec
	Map     *SCMap
	Address *SCAddress
}

// ScvBool, ScvVoid and friends build values with the matching arm set.
func ScvBool(b bool) SCVal      { return SCVal{Type: SCValTypeBool, B: b} }
func ScvVoid() SCVal            { return SCVal{Type: SCValTypeVoid} }
func ScvU32(v uint32) SCVal     { return SCVal{Type: SCValTypeU32, U32: v} }
func ScvI32(v int32) SCVal      { return SCVal{Type: SCValTypeI32, I32: v} }
func ScvU64(v uint64) SCVal     { return SCVal{Type: SCValTypeU64, U64: v} }
func ScvI64(v int64) SCVal      { return SCVal{Type: SCValTypeI64, I64: v} }
func ScvBytes(b []byte) SCVal   { return SCVal{Type: SCValTypeBytes, Bytes: b} }
func ScvString(v string) SCVal  { return SCVal{Type: SCValTypeString, Str: v} }
func ScvSymbol(v string) SCVal  { return SCVal{Type: SCValTypeSymbol, Sym: v} }
func ScvVec(vec SCVec) SCVal    { return SCVal{Type: SCValTypeVec, Vec: &vec} }
func ScvMap(m SCMap) SCVal      { return SCVal{Type: SCValTypeMap, Map: &m} }
func ScvAddress(a SCAddress) SCVal {
	return SCVal{Type: SCValTypeAddress, Address: &a}
}

// ForU128 converts an arbitrary-precision integer to a u128 contract
// value. The range check runs before any conversion work.
func ForU128(x *big.Int) (SCVal, error) {
	parts, err := UInt128PartsFromBig(x)
	if err != nil {
		return SCVal{}, err
	}
	return SCVal{Type: SCValTypeU128, U128: &parts}, nil
}

// ForI128 converts an arbitrary-precision integer to an i128 contract
// value.
func ForI128(x *big.Int) (SCVal, error) {
	parts, err := Int128PartsFromBig(x)
	if err != nil {
		return SCVal{}, err
	}
	return SCVal{Type: SCValTypeI128, I128: &parts}, nil
}

// ForU256 converts an arbitrary-precision integer to a u256 contract
// value.
func ForU256(x *big.Int) (SCVal, error) {
	parts, err := UInt256PartsFromBig(x)
	if err != nil {
		return SCVal{}, err
	}
	return SCVal{Type: SCValTypeU256, U256: &parts}, nil
}

// ForI256 converts an arbitrary-precision integer to an i256 contract
// value.
func ForI256(x *big.Int) (SCVal, error) {
	parts, err := Int256PartsFromBig(x)
	if err != nil {
		return SCVal{}, err
	}
	return SCVal{Type: SCValTypeI256, I256: &parts}, nil
}

// BigInt returns the arbitrary-precision value of an integer-kind SCVal,
// or nil for every non-integer kind.
func (v SCVal) BigInt() *big.Int {
	switch v.Type {
	case SCValTypeU32:
		return new(big.Int).SetUint64(uint64(v.U32))
	case SCValTypeI32:
		return big.NewInt(int64(v.I32))
	case SCValTypeU64:
		return new(big.Int).SetUint64(v.U64)
	case SCValTypeI64:
		return big.NewInt(v.I64)
	case SCValTypeTimepoint:
		return new(big.Int).SetUint64(uint64(v.Time))
	case SCValTypeDuration:
		return new(big.Int).SetUint64(uint64(v.Dur))
	case SCValTypeU128:
		return v.U128.Big()
	case SCValTypeI128:
		return v.I128.Big()
	case SCValTypeU256:
		return v.U256.Big()
	case SCValTypeI256:
		return v.I256.Big()
	default:
		return nil
	}
}

// EncodeTo writes the discriminant and the active arm.
func (v SCVal) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(int32(v.Type))
	switch v.Type {
	case SCValTypeBool:
		s.WriteBool(v.B)
		return nil
	case SCValTypeVoid:
		return nil
	case SCValTypeU32:
		s.WriteUint32(v.U32)
		return nil
	case SCValTypeI32:
		s.WriteInt32(v.I32)
		return nil
	case SCValTypeU64:
		s.WriteUint64(v.U64)
		return nil
	case SCValTypeI64:
		s.WriteInt64(v.I64)
		return nil
	case SCValTypeTimepoint:
		s.WriteUint64(uint64(v.Time))
		return nil
	case SCValTypeDuration:
		s.WriteUint64(uint64(v.Dur))
		return nil
	case SCValTypeU128:
		return v.U128.EncodeTo(s)
	case SCValTypeI128:
		return v.I128.EncodeTo(s)
	case SCValTypeU256:
		return v.U256.EncodeTo(s)
	case SCValTypeI256:
		return v.I256.EncodeTo(s)
	case SCValTypeBytes:
		return s.WriteVarOpaque(v.Bytes, math.MaxUint32)
	case SCValTypeString:
		return s.WriteString(v.Str, math.MaxUint32)
	case SCValTypeSymbol:
		return s.WriteString(v.Sym, MaxSymbolLength)
	case SCValTypeVec:
		return encodeOptional(s, v.Vec != nil, func() error {
			if err := encodeVecLen(s, len(*v.Vec), math.MaxUint32); err != nil {
				return err
			}
			for i := range *v.Vec {
				if err := (*v.Vec)[i].EncodeTo(s); err != nil {
					return err
				}
			}
			return nil
		})
	case SCValTypeMap:
		return encodeOptional(s, v.Map != nil, func() error {
			if err := encodeVecLen(s, len(*v.Map), math.MaxUint32); err != nil {
				return err
			}
			for i := range *v.Map {
				if err := (*v.Map)[i].Key.EncodeTo(s); err != nil {
					return err
				}
				if err := (*v.Map)[i].Val.EncodeTo(s); err != nil {
					return err
				}
			}
			return nil
		})
	case SCValTypeAddress:
		if v.Address == nil {
			return fmt.Errorf("sc val: nil address arm")
		}
		return v.Address.EncodeTo(s)
	case SCValTypeError:
		return fmt.Errorf("%w: sc val type %d", ErrUnsupported, v.Type)
	default:
		return fmt.Errorf("%w: sc val type %d", ErrUnknownDiscriminant, v.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (v *SCVal) DecodeFrom(p *serdes.BinaryParser) error {
	return v.decodeFrom(p, 0)
}

func (v *SCVal) decodeFrom(p *serdes.BinaryParser, depth int) error {
	if depth >= maxNestingDepth {
		return fmt.Errorf("%w: sc val", ErrNestingTooDeep)
	}
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	*v = SCVal{Type: SCValType(d)}
	switch v.Type {
	case SCValTypeBool:
		v.B, err = p.ReadBool()
		return err
	case SCValTypeVoid:
		return nil
	case SCValTypeU32:
		v.U32, err = p.ReadUint32()
		return err
	case SCValTypeI32:
		v.I32, err = p.ReadInt32()
		return err
	case SCValTypeU64:
		v.U64, err = p.ReadUint64()
		return err
	case SCValTypeI64:
		v.I64, err = p.ReadInt64()
		return err
	case SCValTypeTimepoint:
		t, err := p.ReadUint64()
		v.Time = TimePoint(t)
		return err
	case SCValTypeDuration:
		t, err := p.ReadUint64()
		v.Dur = Duration(t)
		return err
	case SCValTypeU128:
		v.U128 = new(UInt128Parts)
		return v.U128.DecodeFrom(p)
	case SCValTypeI128:
		v.I128 = new(Int128Parts)
		return v.I128.DecodeFrom(p)
	case SCValTypeU256:
		v.U256 = new(UInt256Parts)
		return v.U256.DecodeFrom(p)
	case SCValTypeI256:
		v.I256 = new(Int256Parts)
		return v.I256.DecodeFrom(p)
	case SCValTypeBytes:
		v.Bytes, err = p.ReadVarOpaque(math.MaxUint32)
		return err
	case SCValTypeString:
		v.Str, err = p.ReadString(math.MaxUint32)
		return err
	case SCValTypeSymbol:
		v.Sym, err = p.ReadString(MaxSymbolLength)
		return err
	case SCValTypeVec:
		_, err = decodeOptional(p, func() error {
			n, err := decodeVecLen(p, math.MaxUint32)
			if err != nil {
				return err
			}
			vec := make(SCVec, n)
			for i := 0; i < n; i++ {
				if err := vec[i].decodeFrom(p, depth+1); err != nil {
					return err
				}
			}
			v.Vec = &vec
			return nil
		})
		return err
	case SCValTypeMap:
		_, err = decodeOptional(p, func() error {
			n, err := decodeVecLen(p, math.MaxUint32)
			if err != nil {
				return err
			}
			m := make(SCMap, n)
			for i := 0; i < n; i++ {
				if err := m[i].Key.decodeFrom(p, depth+1); err != nil {
					return err
				}
				if err := m[i].Val.decodeFrom(p, depth+1); err != nil {
					return err
				}
			}
			v.Map = &m
			return nil
		})
		return err
	case SCValTypeAddress:
		v.Address = new(SCAddress)
		return v.Address.DecodeFrom(p)
	case SCValTypeError:
		return fmt.Errorf("%w: sc val type %d", ErrUnsupported, d)
	default:
		return fmt.Errorf("%w: sc val type %d", ErrUnknownDiscriminant, d)
	}
}

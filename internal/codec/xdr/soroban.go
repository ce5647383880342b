package xdr

import (
	"fmt"
	"math"

	"github.com/LeJamon/gostellar/internal/codec/xdr/serdes"
)

// ExtensionPoint is the reserved extension slot many wire structs end
// with. Only the empty (v0) form exists.
type ExtensionPoint struct{}

// EncodeTo writes the zero discriminant.
func (ExtensionPoint) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(0)
	return nil
}

// DecodeFrom reads the discriminant and rejects anything but zero.
func (*ExtensionPoint) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	if d != 0 {
		return fmt.Errorf("%w: extension point %d", ErrUnknownDiscriminant, d)
	}
	return nil
}

// LedgerEntryType discriminates ledger keys and entries.
type LedgerEntryType int32

const (
	LedgerEntryTypeAccount          LedgerEntryType = 0
	LedgerEntryTypeTrustline        LedgerEntryType = 1
	LedgerEntryTypeOffer            LedgerEntryType = 2
	LedgerEntryTypeData             LedgerEntryType = 3
	LedgerEntryTypeClaimableBalance LedgerEntryType = 4
	LedgerEntryTypeLiquidityPool    LedgerEntryType = 5
	LedgerEntryTypeContractData     LedgerEntryType = 6
	LedgerEntryTypeContractCode     LedgerEntryType = 7
	LedgerEntryTypeConfigSetting    LedgerEntryType = 8
	LedgerEntryTypeTtl              LedgerEntryType = 9
)

// ContractDataDurability selects the storage class of contract data.
type ContractDataDurability int32

const (
	ContractDataTemporary  ContractDataDurability = 0
	ContractDataPersistent ContractDataDurability = 1
)

// LedgerKeyAccount addresses an account entry.
type LedgerKeyAccount struct {
	AccountID AccountID
}

// LedgerKeyTrustline addresses a trustline entry.
type LedgerKeyTrustline struct {
	AccountID AccountID
	Asset     Asset
}

// LedgerKeyContractData addresses one contract storage slot.
type LedgerKeyContractData struct {
	Contract   SCAddress
	Key        SCVal
	Durability ContractDataDurability
}

// LedgerKeyContractCode addresses an uploaded contract binary.
type LedgerKeyContractCode struct {
	Hash Hash
}

// LedgerKeyTtl addresses the time-to-live entry of a contract key.
type LedgerKeyTtl struct {
	KeyHash Hash
}

// LedgerKey is the union of addressable ledger entries. The footprint of a
// contract invocation is a pair of LedgerKey lists.
type LedgerKey struct {
	Type         LedgerEntryType
	Account      *LedgerKeyAccount
	Trustline    *LedgerKeyTrustline
	ContractData *LedgerKeyContractData
	ContractCode *LedgerKeyContractCode
	Ttl          *LedgerKeyTtl
}

// EncodeTo writes the discriminant and the active arm.
func (k LedgerKey) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(int32(k.Type))
	switch k.Type {
	case LedgerEntryTypeAccount:
		if k.Account == nil {
			return fmt.Errorf("ledger key: nil account arm")
		}
		return k.Account.AccountID.EncodeTo(s)
	case LedgerEntryTypeTrustline:
		if k.Trustline == nil {
			return fmt.Errorf("ledger key: nil trustline arm")
		}
		if err := k.Trustline.AccountID.EncodeTo(s); err != nil {
			return err
		}
		return k.Trustline.Asset.EncodeTo(s)
	case LedgerEntryTypeContractData:
		if k.ContractData == nil {
			return fmt.Errorf("ledger key: nil contract data arm")
		}
		if err := k.ContractData.Contract.EncodeTo(s); err != nil {
			return err
		}
		if err := k.ContractData.Key.EncodeTo(s); err != nil {
			return err
		}
		s.WriteInt32(int32(k.ContractData.Durability))
		return nil
	case LedgerEntryTypeContractCode:
		if k.ContractCode == nil {
			return fmt.Errorf("ledger key: nil contract code arm")
		}
		return k.ContractCode.Hash.EncodeTo(s)
	case LedgerEntryTypeTtl:
		if k.Ttl == nil {
			return fmt.Errorf("ledger key: nil ttl arm")
		}
		return k.Ttl.KeyHash.EncodeTo(s)
	case LedgerEntryTypeOffer, LedgerEntryTypeData, LedgerEntryTypeClaimableBalance,
		LedgerEntryTypeLiquidityPool, LedgerEntryTypeConfigSetting:
		return fmt.Errorf("%w: ledger key type %d", ErrUnsupported, k.Type)
	default:
		return fmt.Errorf("%w: ledger key type %d", ErrUnknownDiscriminant, k.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (k *LedgerKey) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	*k = LedgerKey{Type: LedgerEntryType(d)}
	switch k.Type {
	case LedgerEntryTypeAccount:
		k.Account = new(LedgerKeyAccount)
		return k.Account.AccountID.DecodeFrom(p)
	case LedgerEntryTypeTrustline:
		k.Trustline = new(LedgerKeyTrustline)
		if err := k.Trustline.AccountID.DecodeFrom(p); err != nil {
			return err
		}
		return k.Trustline.Asset.DecodeFrom(p)
	case LedgerEntryTypeContractData:
		k.ContractData = new(LedgerKeyContractData)
		if err := k.ContractData.Contract.DecodeFrom(p); err != nil {
			return err
		}
		if err := k.ContractData.Key.DecodeFrom(p); err != nil {
			return err
		}
		dur, err := p.ReadInt32()
		if err != nil {
			return err
		}
		k.ContractData.Durability = ContractDataDurability(dur)
		return nil
	case LedgerEntryTypeContractCode:
		k.ContractCode = new(LedgerKeyContractCode)
		return k.ContractCode.Hash.DecodeFrom(p)
	case LedgerEntryTypeTtl:
		k.Ttl = new(LedgerKeyTtl)
		return k.Ttl.KeyHash.DecodeFrom(p)
	case LedgerEntryTypeOffer, LedgerEntryTypeData, LedgerEntryTypeClaimableBalance,
		LedgerEntryTypeLiquidityPool, LedgerEntryTypeConfigSetting:
		return fmt.Errorf("%w: ledger key type %d", ErrUnsupported, d)
	default:
		return fmt.Errorf("%w: ledger key type %d", ErrUnknownDiscriminant, d)
	}
}

// LedgerFootprint lists the ledger entries a contract invocation may read
// and write.
type LedgerFootprint struct {
	ReadOnly  []LedgerKey
	ReadWrite []LedgerKey
}

// EncodeTo writes both key lists.
func (f LedgerFootprint) EncodeTo(s *serdes.BinarySerializer) error {
	for _, keys := range [][]LedgerKey{f.ReadOnly, f.ReadWrite} {
		if err := encodeVecLen(s, len(keys), math.MaxUint32); err != nil {
			return err
		}
		for _, k := range keys {
			if err := k.EncodeTo(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeFrom reads both key lists.
func (f *LedgerFootprint) DecodeFrom(p *serdes.BinaryParser) error {
	*f = LedgerFootprint{}
	for _, dst := range []*[]LedgerKey{&f.ReadOnly, &f.ReadWrite} {
		n, err := decodeVecLen(p, math.MaxUint32)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			var k LedgerKey
			if err := k.DecodeFrom(p); err != nil {
				return err
			}
			*dst = append(*dst, k)
		}
	}
	return nil
}

// SorobanResources declares the footprint and resource limits of a
// contract transaction.
type SorobanResources struct {
	Footprint     LedgerFootprint
	Instructions  uint32
	DiskReadBytes uint32
	WriteBytes    uint32
}

// EncodeTo writes the footprint then the three limits.
func (r SorobanResources) EncodeTo(s *serdes.BinarySerializer) error {
	if err := r.Footprint.EncodeTo(s); err != nil {
		return err
	}
	s.WriteUint32(r.Instructions)
	s.WriteUint32(r.DiskReadBytes)
	s.WriteUint32(r.WriteBytes)
	return nil
}

// DecodeFrom reads the footprint then the three limits.
func (r *SorobanResources) DecodeFrom(p *serdes.BinaryParser) error {
	if err := r.Footprint.DecodeFrom(p); err != nil {
		return err
	}
	var err error
	if r.Instructions, err = p.ReadUint32(); err != nil {
		return err
	}
	if r.DiskReadBytes, err = p.ReadUint32(); err != nil {
		return err
	}
	r.WriteBytes, err = p.ReadUint32()
	return err
}

// SorobanTransactionData is the resource side-car a contract transaction
// carries in its extension slot.
type SorobanTransactionData struct {
	Ext         ExtensionPoint
	Resources   SorobanResources
	ResourceFee int64
}

// EncodeTo writes the extension slot, resources and fee.
func (d SorobanTransactionData) EncodeTo(s *serdes.BinarySerializer) error {
	if err := d.Ext.EncodeTo(s); err != nil {
		return err
	}
	if err := d.Resources.EncodeTo(s); err != nil {
		return err
	}
	s.WriteInt64(d.ResourceFee)
	return nil
}

// DecodeFrom reads the extension slot, resources and fee.
func (d *SorobanTransactionData) DecodeFrom(p *serdes.BinaryParser) error {
	if err := d.Ext.DecodeFrom(p); err != nil {
		return err
	}
	if err := d.Resources.DecodeFrom(p); err != nil {
		return err
	}
	var err error
	d.ResourceFee, err = p.ReadInt64()
	return err
}

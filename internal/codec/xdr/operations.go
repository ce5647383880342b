package xdr

import (
	"fmt"
	"math"

	"github.com/LeJamon/gostellar/internal/codec/xdr/serdes"
)

// OperationType discriminates the operation body union. The values are the
// protocol's; gaps in this library's coverage decode as ErrUnsupported.
type OperationType int32

const (
	OperationTypeCreateAccount            OperationType = 0
	OperationTypePayment                  OperationType = 1
	OperationTypePathPaymentStrictReceive OperationType = 2
	OperationTypeManageSellOffer          OperationType = 3
	OperationTypeCreatePassiveSellOffer   OperationType = 4
	OperationTypeSetOptions               OperationType = 5
	OperationTypeChangeTrust              OperationType = 6
	OperationTypeAllowTrust               OperationType = 7
	OperationTypeAccountMerge             OperationType = 8
	OperationTypeInflation                OperationType = 9
	OperationTypeManageData               OperationType = 10
	OperationTypeBumpSequence             OperationType = 11
	OperationTypeManageBuyOffer           OperationType = 12
	OperationTypePathPaymentStrictSend    OperationType = 13
	OperationTypeCreateClaimableBalance   OperationType = 14
	OperationTypeClaimClaimableBalance    OperationType = 15
	OperationTypeBeginSponsoring          OperationType = 16
	OperationTypeEndSponsoring            OperationType = 17
	OperationTypeRevokeSponsorship        OperationType = 18
	OperationTypeClawback                 OperationType = 19
	OperationTypeClawbackClaimableBalance OperationType = 20
	OperationTypeSetTrustLineFlags        OperationType = 21
	OperationTypeLiquidityPoolDeposit     OperationType = 22
	OperationTypeLiquidityPoolWithdraw    OperationType = 23
	OperationTypeInvokeHostFunction       OperationType = 24
	OperationTypeExtendFootprintTtl       OperationType = 25
	OperationTypeRestoreFootprint         OperationType = 26
)

// MaxDataEntryLength bounds manage-data names and values.
const MaxDataEntryLength = 64

// MaxHomeDomainLength bounds an account's home domain.
const MaxHomeDomainLength = 32

// CreateAccountOp funds a new account.
type CreateAccountOp struct {
	Destination     AccountID
	StartingBalance int64
}

// PaymentOp moves an amount of one asset to a destination.
type PaymentOp struct {
	Destination MuxedAccount
	Asset       Asset
	Amount      int64
}

// ChangeTrustOp creates, updates or deletes a trustline.
type ChangeTrustOp struct {
	Line Asset
	// Limit of zero deletes the trustline.
	Limit int64
}

// ManageDataOp sets or (with a nil value) removes a named data entry.
type ManageDataOp struct {
	DataName  string
	DataValue []byte
}

// BumpSequenceOp jumps the source account's sequence number forward.
type BumpSequenceOp struct {
	BumpTo SequenceNumber
}

// SetOptionsOp adjusts account settings. Every field is optional;
// absent fields are untouched.
type SetOptionsOp struct {
	InflationDest *AccountID
	ClearFlags    *uint32
	SetFlags      *uint32
	MasterWeight  *uint32
	LowThreshold  *uint32
	MedThreshold  *uint32
	HighThreshold *uint32
	HomeDomain    *string
	Signer        *Signer
}

// InvokeHostFunctionOp invokes a smart-contract host function with its
// authorization entries.
type InvokeHostFunctionOp struct {
	HostFunction HostFunction
	Auth         []SorobanAuthorizationEntry
}

// ExtendFootprintTtlOp extends the time-to-live of the footprint's
// entries.
type ExtendFootprintTtlOp struct {
	Ext      ExtensionPoint
	ExtendTo uint32
}

// RestoreFootprintOp restores archived entries named in the footprint.
type RestoreFootprintOp struct {
	Ext ExtensionPoint
}

// OperationBody is the union of operation payloads.
type OperationBody struct {
	Type               OperationType
	CreateAccount      *CreateAccountOp
	Payment            *PaymentOp
	SetOptions         *SetOptionsOp
	ChangeTrust        *ChangeTrustOp
	Destination        *MuxedAccount // account merge
	ManageData         *ManageDataOp
	BumpSequence       *BumpSequenceOp
	InvokeHostFunction *InvokeHostFunctionOp
	ExtendFootprintTtl *ExtendFootprintTtlOp
	RestoreFootprint   *RestoreFootprintOp
}

// Operation pairs an optional per-operation source account with its body.
type Operation struct {
	SourceAccount *MuxedAccount
	Body          OperationBody
}

// EncodeTo writes the optional source then the body.
func (o Operation) EncodeTo(s *serdes.BinarySerializer) error {
	err := encodeOptional(s, o.SourceAccount != nil, func() error {
		return o.SourceAccount.EncodeTo(s)
	})
	if err != nil {
		return err
	}
	return o.Body.EncodeTo(s)
}

// DecodeFrom reads the optional source then the body.
func (o *Operation) DecodeFrom(p *serdes.BinaryParser) error {
	*o = Operation{}
	_, err := decodeOptional(p, func() error {
		o.SourceAccount = new(MuxedAccount)
		return o.SourceAccount.DecodeFrom(p)
	})
	if err != nil {
		return err
	}
	return o.Body.DecodeFrom(p)
}

// EncodeTo writes the operation-type discriminant and the active arm.
func (b OperationBody) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(int32(b.Type))
	switch b.Type {
	case OperationTypeCreateAccount:
		if b.CreateAccount == nil {
			return fmt.Errorf("operation: nil create account arm")
		}
		if err := b.CreateAccount.Destination.EncodeTo(s); err != nil {
			return err
		}
		s.WriteInt64(b.CreateAccount.StartingBalance)
		return nil
	case OperationTypePayment:
		if b.Payment == nil {
			return fmt.Errorf("operation: nil payment arm")
		}
		if err := b.Payment.Destination.EncodeTo(s); err != nil {
			return err
		}
		if err := b.Payment.Asset.EncodeTo(s); err != nil {
			return err
		}
		s.WriteInt64(b.Payment.Amount)
		return nil
	case OperationTypeSetOptions:
		if b.SetOptions == nil {
			return fmt.Errorf("operation: nil set options arm")
		}
		return b.SetOptions.encodeTo(s)
	case OperationTypeChangeTrust:
		if b.ChangeTrust == nil {
			return fmt.Errorf("operation: nil change trust arm")
		}
		if err := b.ChangeTrust.Line.EncodeTo(s); err != nil {
			return err
		}
		s.WriteInt64(b.ChangeTrust.Limit)
		return nil
	case OperationTypeAccountMerge:
		if b.Destination == nil {
			return fmt.Errorf("operation: nil account merge arm")
		}
		return b.Destination.EncodeTo(s)
	case OperationTypeManageData:
		if b.ManageData == nil {
			return fmt.Errorf("operation: nil manage data arm")
		}
		if err := s.WriteString(b.ManageData.DataName, MaxDataEntryLength); err != nil {
			return err
		}
		return encodeOptional(s, b.ManageData.DataValue != nil, func() error {
			return s.WriteVarOpaque(b.ManageData.DataValue, MaxDataEntryLength)
		})
	case OperationTypeBumpSequence:
		if b.BumpSequence == nil {
			return fmt.Errorf("operation: nil bump sequence arm")
		}
		s.WriteInt64(int64(b.BumpSequence.BumpTo))
		return nil
	case OperationTypeInvokeHostFunction:
		if b.InvokeHostFunction == nil {
			return fmt.Errorf("operation: nil invoke host function arm")
		}
		if err := b.InvokeHostFunction.HostFunction.EncodeTo(s); err != nil {
			return err
		}
		if err := encodeVecLen(s, len(b.InvokeHostFunction.Auth), math.MaxUint32); err != nil {
			return err
		}
		for i := range b.InvokeHostFunction.Auth {
			if err := b.InvokeHostFunction.Auth[i].EncodeTo(s); err != nil {
				return err
			}
		}
		return nil
	case OperationTypeExtendFootprintTtl:
		if b.ExtendFootprintTtl == nil {
			return fmt.Errorf("operation: nil extend footprint ttl arm")
		}
		if err := b.ExtendFootprintTtl.Ext.EncodeTo(s); err != nil {
			return err
		}
		s.WriteUint32(b.ExtendFootprintTtl.ExtendTo)
		return nil
	case OperationTypeRestoreFootprint:
		if b.RestoreFootprint == nil {
			return fmt.Errorf("operation: nil restore footprint arm")
		}
		return b.RestoreFootprint.Ext.EncodeTo(s)
	case OperationTypePathPaymentStrictReceive, OperationTypeManageSellOffer,
		OperationTypeCreatePassiveSellOffer, OperationTypeAllowTrust,
		OperationTypeInflation, OperationTypeManageBuyOffer,
		OperationTypePathPaymentStrictSend, OperationTypeCreateClaimableBalance,
		OperationTypeClaimClaimableBalance, OperationTypeBeginSponsoring,
		OperationTypeEndSponsoring, OperationTypeRevokeSponsorship,
		OperationTypeClawback, OperationTypeClawbackClaimableBalance,
		OperationTypeSetTrustLineFlags, OperationTypeLiquidityPoolDeposit,
		OperationTypeLiquidityPoolWithdraw:
		return fmt.Errorf("%w: operation type %d", ErrUnsupported, b.Type)
	default:
		return fmt.Errorf("%w: operation type %d", ErrUnknownDiscriminant, b.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (b *OperationBody) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	*b = OperationBody{Type: OperationType(d)}
	switch b.Type {
	case OperationTypeCreateAccount:
		b.CreateAccount = new(CreateAccountOp)
		if err := b.CreateAccount.Destination.DecodeFrom(p); err != nil {
			return err
		}
		b.CreateAccount.StartingBalance, err = p.ReadInt64()
		return err
	case OperationTypePayment:
		b.Payment = new(PaymentOp)
		if err := b.Payment.Destination.DecodeFrom(p); err != nil {
			return err
		}
		if err := b.Payment.Asset.DecodeFrom(p); err != nil {
			return err
		}
		b.Payment.Amount, err = p.ReadInt64()
		return err
	case OperationTypeSetOptions:
		b.SetOptions = new(SetOptionsOp)
		return b.SetOptions.decodeFrom(p)
	case OperationTypeChangeTrust:
		b.ChangeTrust = new(ChangeTrustOp)
		if err := b.ChangeTrust.Line.DecodeFrom(p); err != nil {
			return err
		}
		b.ChangeTrust.Limit, err = p.ReadInt64()
		return err
	case OperationTypeAccountMerge:
		b.Destination = new(MuxedAccount)
		return b.Destination.DecodeFrom(p)
	case OperationTypeManageData:
		b.ManageData = new(ManageDataOp)
		if b.ManageData.DataName, err = p.ReadString(MaxDataEntryLength); err != nil {
			return err
		}
		_, err = decodeOptional(p, func() error {
			b.ManageData.DataValue, err = p.ReadVarOpaque(MaxDataEntryLength)
			return err
		})
		return err
	case OperationTypeBumpSequence:
		b.BumpSequence = new(BumpSequenceOp)
		v, err := p.ReadInt64()
		if err != nil {
			return err
		}
		b.BumpSequence.BumpTo = SequenceNumber(v)
		return nil
	case OperationTypeInvokeHostFunction:
		b.InvokeHostFunction = new(InvokeHostFunctionOp)
		if err := b.InvokeHostFunction.HostFunction.DecodeFrom(p); err != nil {
			return err
		}
		n, err := decodeVecLen(p, math.MaxUint32)
		if err != nil {
			return err
		}
		b.InvokeHostFunction.Auth = make([]SorobanAuthorizationEntry, n)
		for i := 0; i < n; i++ {
			if err := b.InvokeHostFunction.Auth[i].DecodeFrom(p); err != nil {
				return err
			}
		}
		return nil
	case OperationTypeExtendFootprintTtl:
		b.ExtendFootprintTtl = new(ExtendFootprintTtlOp)
		if err := b.ExtendFootprintTtl.Ext.DecodeFrom(p); err != nil {
			return err
		}
		b.ExtendFootprintTtl.ExtendTo, err = p.ReadUint32()
		return err
	case OperationTypeRestoreFootprint:
		b.RestoreFootprint = new(RestoreFootprintOp)
		return b.RestoreFootprint.Ext.DecodeFrom(p)
	case OperationTypePathPaymentStrictReceive, OperationTypeManageSellOffer,
		OperationTypeCreatePassiveSellOffer, OperationTypeAllowTrust,
		OperationTypeInflation, OperationTypeManageBuyOffer,
		OperationTypePathPaymentStrictSend, OperationTypeCreateClaimableBalance,
		OperationTypeClaimClaimableBalance, OperationTypeBeginSponsoring,
		OperationTypeEndSponsoring, OperationTypeRevokeSponsorship,
		OperationTypeClawback, OperationTypeClawbackClaimableBalance,
		OperationTypeSetTrustLineFlags, OperationTypeLiquidityPoolDeposit,
		OperationTypeLiquidityPoolWithdraw:
		return fmt.Errorf("%w: operation type %d", ErrUnsupported, d)
	default:
		return fmt.Errorf("%w: operation type %d", ErrUnknownDiscriminant, d)
	}
}

func (op SetOptionsOp) encodeTo(s *serdes.BinarySerializer) error {
	err := encodeOptional(s, op.InflationDest != nil, func() error {
		return op.InflationDest.EncodeTo(s)
	})
	if err != nil {
		return err
	}
	for _, f := range []*uint32{op.ClearFlags, op.SetFlags, op.MasterWeight,
		op.LowThreshold, op.MedThreshold, op.HighThreshold} {
		f := f
		err := encodeOptional(s, f != nil, func() error {
			s.WriteUint32(*f)
			return nil
		})
		if err != nil {
			return err
		}
	}
	err = encodeOptional(s, op.HomeDomain != nil, func() error {
		return s.WriteString(*op.HomeDomain, MaxHomeDomainLength)
	})
	if err != nil {
		return err
	}
	return encodeOptional(s, op.Signer != nil, func() error {
		return op.Signer.EncodeTo(s)
	})
}

func (op *SetOptionsOp) decodeFrom(p *serdes.BinaryParser) error {
	_, err := decodeOptional(p, func() error {
		op.InflationDest = new(AccountID)
		return op.InflationDest.DecodeFrom(p)
	})
	if err != nil {
		return err
	}
	for _, dst := range []**uint32{&op.ClearFlags, &op.SetFlags, &op.MasterWeight,
		&op.LowThreshold, &op.MedThreshold, &op.HighThreshold} {
		dst := dst
		_, err := decodeOptional(p, func() error {
			v, err := p.ReadUint32()
			if err != nil {
				return err
			}
			*dst = &v
			return nil
		})
		if err != nil {
			return err
		}
	}
	_, err = decodeOptional(p, func() error {
		v, err := p.ReadString(MaxHomeDomainLength)
		if err != nil {
			return err
		}
		op.HomeDomain = &v
		return nil
	})
	if err != nil {
		return err
	}
	_, err = decodeOptional(p, func() error {
		op.Signer = new(Signer)
		return op.Signer.DecodeFrom(p)
	})
	return err
}

package xdr

import (
	"fmt"

	"github.com/LeJamon/gostellar/internal/codec/xdr/serdes"
)

// EnvelopeType tags hash domains and envelope unions. Binding the tag into
// every signature payload keeps the domains disjoint.
type EnvelopeType int32

const (
	EnvelopeTypeTxV0                 EnvelopeType = 0
	EnvelopeTypeSCP                  EnvelopeType = 1
	EnvelopeTypeTx                   EnvelopeType = 2
	EnvelopeTypeAuth                 EnvelopeType = 3
	EnvelopeTypeSCPValue             EnvelopeType = 4
	EnvelopeTypeTxFeeBump            EnvelopeType = 5
	EnvelopeTypeOpID                 EnvelopeType = 6
	EnvelopeTypePoolRevokeOpID       EnvelopeType = 7
	EnvelopeTypeContractID           EnvelopeType = 8
	EnvelopeTypeSorobanAuthorization EnvelopeType = 9
)

// MaxOperationsPerTransaction bounds a transaction's operation list.
const MaxOperationsPerTransaction = 100

// MaxSignaturesPerEnvelope bounds an envelope's signature list.
const MaxSignaturesPerEnvelope = 20

// MaxSignatureLength bounds a raw signature.
const MaxSignatureLength = 64

// SignatureHint is the last four bytes of the signer's public key,
// identifying which key likely produced a signature.
type SignatureHint [4]byte

// DecoratedSignature pairs a raw signature with its hint.
type DecoratedSignature struct {
	Hint      SignatureHint
	Signature []byte
}

// EncodeTo writes the hint then the length-prefixed signature.
func (ds DecoratedSignature) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteFixedOpaque(ds.Hint[:])
	return s.WriteVarOpaque(ds.Signature, MaxSignatureLength)
}

// DecodeFrom reads the hint then the signature.
func (ds *DecoratedSignature) DecodeFrom(p *serdes.BinaryParser) error {
	hint, err := p.ReadFixedOpaque(4)
	if err != nil {
		return err
	}
	copy(ds.Hint[:], hint)
	ds.Signature, err = p.ReadVarOpaque(MaxSignatureLength)
	return err
}

// TransactionExt is the transaction's extension slot: empty, or a Soroban
// resource side-car.
type TransactionExt struct {
	V           int32
	SorobanData *SorobanTransactionData
}

// EncodeTo writes the version discriminant and, for v1, the side-car.
func (e TransactionExt) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(e.V)
	switch e.V {
	case 0:
		return nil
	case 1:
		if e.SorobanData == nil {
			return fmt.Errorf("transaction ext: nil soroban data arm")
		}
		return e.SorobanData.EncodeTo(s)
	default:
		return fmt.Errorf("%w: transaction ext %d", ErrUnknownDiscriminant, e.V)
	}
}

// DecodeFrom reads the version discriminant and dispatches.
func (e *TransactionExt) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	*e = TransactionExt{V: d}
	switch d {
	case 0:
		return nil
	case 1:
		e.SorobanData = new(SorobanTransactionData)
		return e.SorobanData.DecodeFrom(p)
	default:
		return fmt.Errorf("%w: transaction ext %d", ErrUnknownDiscriminant, d)
	}
}

// Transaction is the canonical transaction value: who, in what order,
// under which conditions, doing what.
type Transaction struct {
	SourceAccount MuxedAccount
	Fee           uint32
	SeqNum        SequenceNumber
	Cond          Preconditions
	Memo          Memo
	Operations    []Operation
	Ext           TransactionExt
}

// EncodeTo writes every field in wire order.
func (tx Transaction) EncodeTo(s *serdes.BinarySerializer) error {
	if err := tx.SourceAccount.EncodeTo(s); err != nil {
		return err
	}
	s.WriteUint32(tx.Fee)
	s.WriteInt64(int64(tx.SeqNum))
	if err := tx.Cond.EncodeTo(s); err != nil {
		return err
	}
	if err := tx.Memo.EncodeTo(s); err != nil {
		return err
	}
	if err := encodeVecLen(s, len(tx.Operations), MaxOperationsPerTransaction); err != nil {
		return err
	}
	for i := range tx.Operations {
		if err := tx.Operations[i].EncodeTo(s); err != nil {
			return err
		}
	}
	return tx.Ext.EncodeTo(s)
}

// DecodeFrom reads every field in wire order.
func (tx *Transaction) DecodeFrom(p *serdes.BinaryParser) error {
	*tx = Transaction{}
	if err := tx.SourceAccount.DecodeFrom(p); err != nil {
		return err
	}
	var err error
	if tx.Fee, err = p.ReadUint32(); err != nil {
		return err
	}
	seq, err := p.ReadInt64()
	if err != nil {
		return err
	}
	tx.SeqNum = SequenceNumber(seq)
	if err := tx.Cond.DecodeFrom(p); err != nil {
		return err
	}
	if err := tx.Memo.DecodeFrom(p); err != nil {
		return err
	}
	n, err := decodeVecLen(p, MaxOperationsPerTransaction)
	if err != nil {
		return err
	}
	tx.Operations = make([]Operation, n)
	for i := 0; i < n; i++ {
		if err := tx.Operations[i].DecodeFrom(p); err != nil {
			return err
		}
	}
	return tx.Ext.DecodeFrom(p)
}

// TransactionV1Envelope is a transaction with its signatures.
type TransactionV1Envelope struct {
	Tx         Transaction
	Signatures []DecoratedSignature
}

// EncodeTo writes the transaction then the signature list.
func (e TransactionV1Envelope) EncodeTo(s *serdes.BinarySerializer) error {
	if err := e.Tx.EncodeTo(s); err != nil {
		return err
	}
	if err := encodeVecLen(s, len(e.Signatures), MaxSignaturesPerEnvelope); err != nil {
		return err
	}
	for i := range e.Signatures {
		if err := e.Signatures[i].EncodeTo(s); err != nil {
			return err
		}
	}
	return nil
}

// DecodeFrom reads the transaction then the signature list.
func (e *TransactionV1Envelope) DecodeFrom(p *serdes.BinaryParser) error {
	if err := e.Tx.DecodeFrom(p); err != nil {
		return err
	}
	n, err := decodeVecLen(p, MaxSignaturesPerEnvelope)
	if err != nil {
		return err
	}
	e.Signatures = make([]DecoratedSignature, n)
	for i := 0; i < n; i++ {
		if err := e.Signatures[i].DecodeFrom(p); err != nil {
			return err
		}
	}
	return nil
}

// FeeBumpTransaction wraps an already-signed transaction under a new fee
// and fee-paying source. The inner envelope travels untouched.
type FeeBumpTransaction struct {
	FeeSource MuxedAccount
	Fee       int64
	InnerTx   TransactionV1Envelope
	Ext       ExtensionPoint
}

// EncodeTo writes the fee source, fee, tagged inner envelope and
// extension slot.
func (tx FeeBumpTransaction) EncodeTo(s *serdes.BinarySerializer) error {
	if err := tx.FeeSource.EncodeTo(s); err != nil {
		return err
	}
	s.WriteInt64(tx.Fee)
	// The inner transaction is a single-arm union tagged ENVELOPE_TYPE_TX.
	s.WriteInt32(int32(EnvelopeTypeTx))
	if err := tx.InnerTx.EncodeTo(s); err != nil {
		return err
	}
	return tx.Ext.EncodeTo(s)
}

// DecodeFrom reads the fee source, fee, tagged inner envelope and
// extension slot.
func (tx *FeeBumpTransaction) DecodeFrom(p *serdes.BinaryParser) error {
	*tx = FeeBumpTransaction{}
	if err := tx.FeeSource.DecodeFrom(p); err != nil {
		return err
	}
	var err error
	if tx.Fee, err = p.ReadInt64(); err != nil {
		return err
	}
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	if EnvelopeType(d) != EnvelopeTypeTx {
		return fmt.Errorf("%w: fee bump inner envelope type %d", ErrUnknownDiscriminant, d)
	}
	if err := tx.InnerTx.DecodeFrom(p); err != nil {
		return err
	}
	return tx.Ext.DecodeFrom(p)
}

// FeeBumpTransactionEnvelope is a fee-bump transaction with the outer
// signatures.
type FeeBumpTransactionEnvelope struct {
	Tx         FeeBumpTransaction
	Signatures []DecoratedSignature
}

// EncodeTo writes the fee-bump transaction then the signature list.
func (e FeeBumpTransactionEnvelope) EncodeTo(s *serdes.BinarySerializer) error {
	if err := e.Tx.EncodeTo(s); err != nil {
		return err
	}
	if err := encodeVecLen(s, len(e.Signatures), MaxSignaturesPerEnvelope); err != nil {
		return err
	}
	for i := range e.Signatures {
		if err := e.Signatures[i].EncodeTo(s); err != nil {
			return err
		}
	}
	return nil
}

// DecodeFrom reads the fee-bump transaction then the signature list.
func (e *FeeBumpTransactionEnvelope) DecodeFrom(p *serdes.BinaryParser) error {
	if err := e.Tx.DecodeFrom(p); err != nil {
		return err
	}
	n, err := decodeVecLen(p, MaxSignaturesPerEnvelope)
	if err != nil {
		return err
	}
	e.Signatures = make([]DecoratedSignature, n)
	for i := 0; i < n; i++ {
		if err := e.Signatures[i].DecodeFrom(p); err != nil {
			return err
		}
	}
	return nil
}

// TransactionEnvelope is the union of envelope forms that travel over the
// wire in base64.
type TransactionEnvelope struct {
	Type    EnvelopeType
	V1      *TransactionV1Envelope
	FeeBump *FeeBumpTransactionEnvelope
}

// EncodeTo writes the discriminant and the active arm.
func (e TransactionEnvelope) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(int32(e.Type))
	switch e.Type {
	case EnvelopeTypeTx:
		if e.V1 == nil {
			return fmt.Errorf("envelope: nil v1 arm")
		}
		return e.V1.EncodeTo(s)
	case EnvelopeTypeTxFeeBump:
		if e.FeeBump == nil {
			return fmt.Errorf("envelope: nil fee bump arm")
		}
		return e.FeeBump.EncodeTo(s)
	case EnvelopeTypeTxV0:
		return fmt.Errorf("%w: envelope type %d", ErrUnsupported, e.Type)
	default:
		return fmt.Errorf("%w: envelope type %d", ErrUnknownDiscriminant, e.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (e *TransactionEnvelope) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	*e = TransactionEnvelope{Type: EnvelopeType(d)}
	switch e.Type {
	case EnvelopeTypeTx:
		e.V1 = new(TransactionV1Envelope)
		return e.V1.DecodeFrom(p)
	case EnvelopeTypeTxFeeBump:
		e.FeeBump = new(FeeBumpTransactionEnvelope)
		return e.FeeBump.DecodeFrom(p)
	case EnvelopeTypeTxV0:
		return fmt.Errorf("%w: envelope type %d", ErrUnsupported, d)
	default:
		return fmt.Errorf("%w: envelope type %d", ErrUnknownDiscriminant, d)
	}
}

// TransactionSignaturePayload is the value that is hashed and signed: the
// network id binds the signature to one network, the envelope tag binds it
// to one hash domain.
type TransactionSignaturePayload struct {
	NetworkID Hash
	// TaggedType selects the arm: EnvelopeTypeTx or EnvelopeTypeTxFeeBump.
	TaggedType EnvelopeType
	Tx         *Transaction
	FeeBump    *FeeBumpTransaction
}

// EncodeTo writes the network id, tag and transaction.
func (sp TransactionSignaturePayload) EncodeTo(s *serdes.BinarySerializer) error {
	if err := sp.NetworkID.EncodeTo(s); err != nil {
		return err
	}
	s.WriteInt32(int32(sp.TaggedType))
	switch sp.TaggedType {
	case EnvelopeTypeTx:
		if sp.Tx == nil {
			return fmt.Errorf("signature payload: nil tx arm")
		}
		return sp.Tx.EncodeTo(s)
	case EnvelopeTypeTxFeeBump:
		if sp.FeeBump == nil {
			return fmt.Errorf("signature payload: nil fee bump arm")
		}
		return sp.FeeBump.EncodeTo(s)
	default:
		return fmt.Errorf("%w: signature payload tag %d", ErrUnknownDiscriminant, sp.TaggedType)
	}
}

// DecodeFrom reads the network id, tag and transaction.
func (sp *TransactionSignaturePayload) DecodeFrom(p *serdes.BinaryParser) error {
	if err := sp.NetworkID.DecodeFrom(p); err != nil {
		return err
	}
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	sp.TaggedType = EnvelopeType(d)
	switch sp.TaggedType {
	case EnvelopeTypeTx:
		sp.Tx = new(Transaction)
		return sp.Tx.DecodeFrom(p)
	case EnvelopeTypeTxFeeBump:
		sp.FeeBump = new(FeeBumpTransaction)
		return sp.FeeBump.DecodeFrom(p)
	default:
		return fmt.Errorf("%w: signature payload tag %d", ErrUnknownDiscriminant, d)
	}
}

package tx

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math"

	"github.com/LeJamon/gostellar/internal/codec/xdr"
	"github.com/LeJamon/gostellar/internal/crypto"
	"github.com/LeJamon/gostellar/internal/protocol"
)

// ErrFeeBumpFeeTooLow is returned when the outer fee does not cover the
// inner fee plus the fee-bump surcharge.
var ErrFeeBumpFeeTooLow = errors.New("fee bump fee too low")

// FeeBumpTransaction wraps a signed inner transaction under a new fee and
// fee-paying source. The inner envelope's bytes and signatures are carried
// untouched; the outer envelope is signed over its own hash domain.
type FeeBumpTransaction struct {
	tx   xdr.FeeBumpTransaction
	sigs []xdr.DecoratedSignature
}

// BuildFeeBump wraps inner in a fee-bump transaction paid for by feeSource.
// The outer fee is baseFee stroops per operation, counting the fee bump
// itself as one operation, and must also cover the inner transaction's fee
// at the same rate.
func BuildFeeBump(feeSource xdr.MuxedAccount, inner *Transaction, baseFee int64) (*FeeBumpTransaction, error) {
	if len(inner.sigs) == 0 {
		return nil, fmt.Errorf("inner transaction: %w", ErrNotSigned)
	}
	if baseFee < MinBaseFee {
		return nil, fmt.Errorf("%w: %d < %d", ErrBaseFeeTooLow, baseFee, MinBaseFee)
	}

	innerOps := int64(len(inner.tx.Operations))
	innerBaseFee := int64(inner.tx.Fee)
	if innerOps > 0 {
		innerBaseFee = (innerBaseFee + innerOps - 1) / innerOps
	}
	if baseFee < innerBaseFee {
		return nil, fmt.Errorf("%w: base fee %d below inner base fee %d", ErrFeeBumpFeeTooLow, baseFee, innerBaseFee)
	}
	if baseFee > math.MaxInt64/(innerOps+1) {
		return nil, fmt.Errorf("%w: %d x %d operations", ErrFeeOverflow, baseFee, innerOps+1)
	}

	return &FeeBumpTransaction{
		tx: xdr.FeeBumpTransaction{
			FeeSource: feeSource,
			Fee:       baseFee * (innerOps + 1),
			InnerTx: xdr.TransactionV1Envelope{
				Tx:         inner.tx,
				Signatures: inner.Signatures(),
			},
		},
	}, nil
}

// Tx returns a copy of the underlying fee-bump transaction value with its
// own inner operation and signature lists. Operation bodies hold pointer
// arms, so their pointees are still shared.
func (t *FeeBumpTransaction) Tx() xdr.FeeBumpTransaction {
	out := t.tx
	out.InnerTx.Tx.Operations = make([]xdr.Operation, len(t.tx.InnerTx.Tx.Operations))
	copy(out.InnerTx.Tx.Operations, t.tx.InnerTx.Tx.Operations)
	out.InnerTx.Signatures = make([]xdr.DecoratedSignature, len(t.tx.InnerTx.Signatures))
	copy(out.InnerTx.Signatures, t.tx.InnerTx.Signatures)
	return out
}

// Signatures returns the outer decorated signatures in the order they were
// attached.
func (t *FeeBumpTransaction) Signatures() []xdr.DecoratedSignature {
	out := make([]xdr.DecoratedSignature, len(t.sigs))
	copy(out, t.sigs)
	return out
}

// InnerTransaction returns the wrapped transaction with its signatures.
func (t *FeeBumpTransaction) InnerTransaction() *Transaction {
	inner := &Transaction{tx: t.tx.InnerTx.Tx}
	inner.sigs = make([]xdr.DecoratedSignature, len(t.tx.InnerTx.Signatures))
	copy(inner.sigs, t.tx.InnerTx.Signatures)
	return inner
}

// SignatureBase returns the byte string hashed and signed for the outer
// envelope. The fee-bump tag keeps this domain disjoint from plain
// transaction hashes.
func (t *FeeBumpTransaction) SignatureBase(network protocol.Network) ([]byte, error) {
	payload := xdr.TransactionSignaturePayload{
		NetworkID:  xdr.Hash(network.ID()),
		TaggedType: xdr.EnvelopeTypeTxFeeBump,
		FeeBump:    &t.tx,
	}
	return xdr.Marshal(payload)
}

// Hash returns the outer transaction hash for the given network.
func (t *FeeBumpTransaction) Hash(network protocol.Network) ([32]byte, error) {
	base, err := t.SignatureBase(network)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(base), nil
}

// Sign signs the outer hash with each keypair and appends the decorated
// signatures in call order.
func (t *FeeBumpTransaction) Sign(network protocol.Network, signers ...*crypto.KeyPair) error {
	h, err := t.Hash(network)
	if err != nil {
		return err
	}
	for _, kp := range signers {
		if len(t.sigs) >= xdr.MaxSignaturesPerEnvelope {
			return ErrTooManySignatures
		}
		ds, err := kp.SignDecorated(h[:])
		if err != nil {
			return err
		}
		t.sigs = append(t.sigs, ds)
	}
	return nil
}

// Envelope wraps the fee-bump transaction and its outer signatures into an
// envelope union value.
func (t *FeeBumpTransaction) Envelope() xdr.TransactionEnvelope {
	return xdr.TransactionEnvelope{
		Type: xdr.EnvelopeTypeTxFeeBump,
		FeeBump: &xdr.FeeBumpTransactionEnvelope{
			Tx:         t.tx,
			Signatures: t.Signatures(),
		},
	}
}

// Base64 serializes the envelope to its base64 wire form.
func (t *FeeBumpTransaction) Base64() (string, error) {
	return xdr.MarshalBase64(t.Envelope())
}

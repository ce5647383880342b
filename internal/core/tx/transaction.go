// Package tx assembles, hashes and signs transaction envelopes.
//
// A Transaction moves through three stages: building (structure mutable),
// signed (one or more decorated signatures attached) and serialized (base64
// text). Structural mutation after signing clears the signature list, since
// the existing signatures no longer cover the transaction bytes.
package tx

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/LeJamon/gostellar/internal/codec/xdr"
	"github.com/LeJamon/gostellar/internal/crypto"
	"github.com/LeJamon/gostellar/internal/protocol"
)

var (
	// ErrTooManySignatures is returned when signing would exceed the
	// envelope signature limit.
	ErrTooManySignatures = errors.New("envelope already carries the maximum number of signatures")
	// ErrNotSigned is returned when an unsigned transaction is used where
	// at least one signature is required.
	ErrNotSigned = errors.New("transaction has no signatures")
	// ErrUnexpectedEnvelope is returned when a parsed envelope is not of
	// the form the caller asked for.
	ErrUnexpectedEnvelope = errors.New("unexpected envelope form")
)

// Transaction is a v1 transaction together with the signatures collected so
// far. Obtain one from a Builder or by parsing an envelope.
type Transaction struct {
	tx   xdr.Transaction
	sigs []xdr.DecoratedSignature
}

// Tx returns a copy of the underlying transaction value with its own
// operation list. Operation bodies hold pointer arms, so their pointees are
// still shared with the transaction; mutate a held transaction only through
// its setters, which clear stale signatures.
func (t *Transaction) Tx() xdr.Transaction {
	out := t.tx
	out.Operations = make([]xdr.Operation, len(t.tx.Operations))
	copy(out.Operations, t.tx.Operations)
	return out
}

// Signatures returns the decorated signatures in the order they were
// attached.
func (t *Transaction) Signatures() []xdr.DecoratedSignature {
	out := make([]xdr.DecoratedSignature, len(t.sigs))
	copy(out, t.sigs)
	return out
}

// SignatureBase returns the byte string that is hashed and signed for the
// given network: the network id, the v1 envelope tag and the encoded
// transaction.
func (t *Transaction) SignatureBase(network protocol.Network) ([]byte, error) {
	payload := xdr.TransactionSignaturePayload{
		NetworkID:  xdr.Hash(network.ID()),
		TaggedType: xdr.EnvelopeTypeTx,
		Tx:         &t.tx,
	}
	return xdr.Marshal(payload)
}

// Hash returns the transaction hash for the given network. Signatures are
// made over this hash, and it is the id the network knows the transaction by.
func (t *Transaction) Hash(network protocol.Network) ([32]byte, error) {
	base, err := t.SignatureBase(network)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(base), nil
}

// Sign hashes the transaction for the network, signs the hash with each
// keypair in turn and appends the decorated signatures in call order. Call
// repeatedly to collect a multisig set.
func (t *Transaction) Sign(network protocol.Network, signers ...*crypto.KeyPair) error {
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

// SignPayload signs the transaction hash with a signed-payload style
// decoration, for satisfying an ed25519 signed-payload signer.
func (t *Transaction) SignPayload(network protocol.Network, kp *crypto.KeyPair, payload []byte) error {
	if len(t.sigs) >= xdr.MaxSignaturesPerEnvelope {
		return ErrTooManySignatures
	}
	h, err := t.Hash(network)
	if err != nil {
		return err
	}
	ds, err := kp.SignPayloadDecorated(h[:], payload)
	if err != nil {
		return err
	}
	t.sigs = append(t.sigs, ds)
	return nil
}

// AddSignature appends an externally produced decorated signature, preserving
// call order.
func (t *Transaction) AddSignature(ds xdr.DecoratedSignature) error {
	if len(t.sigs) >= xdr.MaxSignaturesPerEnvelope {
		return ErrTooManySignatures
	}
	t.sigs = append(t.sigs, ds)
	return nil
}

// SetSorobanData attaches or replaces the Soroban resource side-car. Any
// signatures already collected are cleared: they covered different bytes.
func (t *Transaction) SetSorobanData(data *xdr.SorobanTransactionData) {
	if data == nil {
		t.tx.Ext = xdr.TransactionExt{V: 0}
	} else {
		t.tx.Ext = xdr.TransactionExt{V: 1, SorobanData: data}
	}
	t.sigs = nil
}

// SetMemo replaces the memo, clearing any collected signatures.
func (t *Transaction) SetMemo(memo xdr.Memo) {
	t.tx.Memo = memo
	t.sigs = nil
}

// SetPreconditions replaces the preconditions, clearing any collected
// signatures.
func (t *Transaction) SetPreconditions(cond xdr.Preconditions) {
	t.tx.Cond = cond
	t.sigs = nil
}

// Envelope wraps the transaction and its signatures into a v1 envelope
// union value.
func (t *Transaction) Envelope() xdr.TransactionEnvelope {
	return xdr.TransactionEnvelope{
		Type: xdr.EnvelopeTypeTx,
		V1: &xdr.TransactionV1Envelope{
			Tx:         t.tx,
			Signatures: t.Signatures(),
		},
	}
}

// Base64 serializes the envelope to its base64 wire form.
func (t *Transaction) Base64() (string, error) {
	return xdr.MarshalBase64(t.Envelope())
}

// ParseBase64 decodes a base64 envelope into the matching assembler value.
// Exactly one of the two results is non-nil on success.
func ParseBase64(s string) (*Transaction, *FeeBumpTransaction, error) {
	var env xdr.TransactionEnvelope
	if err := xdr.UnmarshalBase64(s, &env); err != nil {
		return nil, nil, fmt.Errorf("parsing envelope: %w", err)
	}
	switch env.Type {
	case xdr.EnvelopeTypeTx:
		return &Transaction{tx: env.V1.Tx, sigs: env.V1.Signatures}, nil, nil
	case xdr.EnvelopeTypeTxFeeBump:
		return nil, &FeeBumpTransaction{tx: env.FeeBump.Tx, sigs: env.FeeBump.Signatures}, nil
	default:
		return nil, nil, fmt.Errorf("%w: envelope type %d", ErrUnexpectedEnvelope, env.Type)
	}
}

// ParseTransactionBase64 decodes a base64 envelope that must hold a plain v1
// transaction.
func ParseTransactionBase64(s string) (*Transaction, error) {
	t, fb, err := ParseBase64(s)
	if err != nil {
		return nil, err
	}
	if fb != nil {
		return nil, fmt.Errorf("%w: got a fee bump envelope", ErrUnexpectedEnvelope)
	}
	return t, nil
}

package xdr

import (
	"fmt"

	"github.com/LeJamon/gostellar/internal/codec/xdr/serdes"
)

// SignerKeyType discriminates the SignerKey union.
type SignerKeyType int32

const (
	// SignerKeyTypeEd25519 is a plain public key signer.
	SignerKeyTypeEd25519 SignerKeyType = 0
	// SignerKeyTypePreAuthTx authorizes one specific transaction hash.
	SignerKeyTypePreAuthTx SignerKeyType = 1
	// SignerKeyTypeHashX authorizes whoever can produce the hash preimage.
	SignerKeyTypeHashX SignerKeyType = 2
	// SignerKeyTypeEd25519SignedPayload scopes a key to a fixed payload.
	SignerKeyTypeEd25519SignedPayload SignerKeyType = 3
)

// MaxSignedPayloadSize bounds the payload of a signed-payload signer.
const MaxSignedPayloadSize = 64

// SignerKeyEd25519SignedPayload is an identity built from an account key
// plus an arbitrary payload of at most 64 bytes.
type SignerKeyEd25519SignedPayload struct {
	Ed25519 Uint256
	Payload []byte
}

// EncodeTo writes the key and the length-prefixed payload.
func (sp SignerKeyEd25519SignedPayload) EncodeTo(s *serdes.BinarySerializer) error {
	if err := sp.Ed25519.EncodeTo(s); err != nil {
		return err
	}
	return s.WriteVarOpaque(sp.Payload, MaxSignedPayloadSize)
}

// DecodeFrom reads the key and the payload.
func (sp *SignerKeyEd25519SignedPayload) DecodeFrom(p *serdes.BinaryParser) error {
	if err := sp.Ed25519.DecodeFrom(p); err != nil {
		return err
	}
	payload, err := p.ReadVarOpaque(MaxSignedPayloadSize)
	if err != nil {
		return err
	}
	sp.Payload = payload
	return nil
}

// SignerKey is the union of identities that may authorize an account's
// transactions.
type SignerKey struct {
	Type          SignerKeyType
	Ed25519       Uint256
	PreAuthTx     Uint256
	HashX         Uint256
	SignedPayload *SignerKeyEd25519SignedPayload
}

// EncodeTo writes the discriminant and the active arm.
func (k SignerKey) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(int32(k.Type))
	switch k.Type {
	case SignerKeyTypeEd25519:
		return k.Ed25519.EncodeTo(s)
	case SignerKeyTypePreAuthTx:
		return k.PreAuthTx.EncodeTo(s)
	case SignerKeyTypeHashX:
		return k.HashX.EncodeTo(s)
	case SignerKeyTypeEd25519SignedPayload:
		if k.SignedPayload == nil {
			return fmt.Errorf("signer key: nil signed payload arm")
		}
		return k.SignedPayload.EncodeTo(s)
	default:
		return fmt.Errorf("%w: signer key type %d", ErrUnknownDiscriminant, k.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (k *SignerKey) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	*k = SignerKey{Type: SignerKeyType(d)}
	switch k.Type {
	case SignerKeyTypeEd25519:
		return k.Ed25519.DecodeFrom(p)
	case SignerKeyTypePreAuthTx:
		return k.PreAuthTx.DecodeFrom(p)
	case SignerKeyTypeHashX:
		return k.HashX.DecodeFrom(p)
	case SignerKeyTypeEd25519SignedPayload:
		k.SignedPayload = new(SignerKeyEd25519SignedPayload)
		return k.SignedPayload.DecodeFrom(p)
	default:
		return fmt.Errorf("%w: signer key type %d", ErrUnknownDiscriminant, d)
	}
}

// Signer pairs a signer key with its voting weight.
type Signer struct {
	Key    SignerKey
	Weight uint32
}

// EncodeTo writes the key then the weight.
func (sg Signer) EncodeTo(s *serdes.BinarySerializer) error {
	if err := sg.Key.EncodeTo(s); err != nil {
		return err
	}
	s.WriteUint32(sg.Weight)
	return nil
}

// DecodeFrom reads the key then the weight.
func (sg *Signer) DecodeFrom(p *serdes.BinaryParser) error {
	if err := sg.Key.DecodeFrom(p); err != nil {
		return err
	}
	var err error
	sg.Weight, err = p.ReadUint32()
	return err
}

package xdr

import (
	"fmt"

	"github.com/LeJamon/gostellar/internal/codec/strkey"
	"github.com/LeJamon/gostellar/internal/codec/xdr/serdes"
)

// Hash is a 32-byte SHA-256 digest.
type Hash [32]byte

// EncodeTo writes the hash as fixed opaque bytes.
func (h Hash) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteFixedOpaque(h[:])
	return nil
}

// DecodeFrom reads 32 fixed opaque bytes.
func (h *Hash) DecodeFrom(p *serdes.BinaryParser) error {
	b, err := p.ReadFixedOpaque(32)
	if err != nil {
		return err
	}
	copy(h[:], b)
	return nil
}

// Uint256 is a raw 32-byte value, most commonly an Ed25519 public key.
type Uint256 [32]byte

// EncodeTo writes the value as fixed opaque bytes.
func (u Uint256) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteFixedOpaque(u[:])
	return nil
}

// DecodeFrom reads 32 fixed opaque bytes.
func (u *Uint256) DecodeFrom(p *serdes.BinaryParser) error {
	b, err := p.ReadFixedOpaque(32)
	if err != nil {
		return err
	}
	copy(u[:], b)
	return nil
}

// PublicKeyType discriminates the PublicKey union. Ed25519 is the only key
// type the protocol defines.
type PublicKeyType int32

// PublicKeyTypeEd25519 is the sole PublicKey arm.
const PublicKeyTypeEd25519 PublicKeyType = 0

// AccountID identifies an account by its public key.
type AccountID struct {
	Type    PublicKeyType
	Ed25519 Uint256
}

// AccountIDFromEd25519 wraps a raw public key in an AccountID.
func AccountIDFromEd25519(pub [32]byte) AccountID {
	return AccountID{Type: PublicKeyTypeEd25519, Ed25519: pub}
}

// AccountIDFromAddress parses a "G..." address.
func AccountIDFromAddress(address string) (AccountID, error) {
	raw, err := strkey.Decode(strkey.VersionByteAccountID, address)
	if err != nil {
		return AccountID{}, err
	}
	var pub Uint256
	copy(pub[:], raw)
	return AccountID{Type: PublicKeyTypeEd25519, Ed25519: pub}, nil
}

// Address returns the "G..." text form.
func (a AccountID) Address() string {
	text, err := strkey.Encode(strkey.VersionByteAccountID, a.Ed25519[:])
	if err != nil {
		// A 32-byte payload can always be encoded.
		panic(err)
	}
	return text
}

// Equals reports key equality.
func (a AccountID) Equals(other AccountID) bool {
	return a.Type == other.Type && a.Ed25519 == other.Ed25519
}

// EncodeTo writes the key-type discriminant and the key bytes.
func (a AccountID) EncodeTo(s *serdes.BinarySerializer) error {
	switch a.Type {
	case PublicKeyTypeEd25519:
		s.WriteInt32(int32(a.Type))
		return a.Ed25519.EncodeTo(s)
	default:
		return fmt.Errorf("%w: public key type %d", ErrUnknownDiscriminant, a.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (a *AccountID) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	switch PublicKeyType(d) {
	case PublicKeyTypeEd25519:
		a.Type = PublicKeyTypeEd25519
		return a.Ed25519.DecodeFrom(p)
	default:
		return fmt.Errorf("%w: public key type %d", ErrUnknownDiscriminant, d)
	}
}

// CryptoKeyType discriminates the MuxedAccount union.
type CryptoKeyType int32

const (
	// KeyTypeEd25519 is a plain account.
	KeyTypeEd25519 CryptoKeyType = 0
	// KeyTypeMuxedEd25519 is an account with a 64-bit multiplexing id.
	KeyTypeMuxedEd25519 CryptoKeyType = 0x100
)

// MuxedAccount is a transaction source or payment destination: either a
// plain Ed25519 account or the same key multiplexed by a 64-bit id.
type MuxedAccount struct {
	Type    CryptoKeyType
	Ed25519 Uint256
	// ID is only meaningful for KeyTypeMuxedEd25519.
	ID uint64
}

// MuxedFromAccountID lifts a plain account id into a MuxedAccount.
func MuxedFromAccountID(a AccountID) MuxedAccount {
	return MuxedAccount{Type: KeyTypeEd25519, Ed25519: a.Ed25519}
}

// MuxedFromAddress parses either a "G..." or an "M..." address.
func MuxedFromAddress(address string) (MuxedAccount, error) {
	kind, _, err := strkey.DecodeAny(address)
	if err != nil {
		return MuxedAccount{}, err
	}
	switch kind {
	case strkey.VersionByteAccountID:
		a, err := AccountIDFromAddress(address)
		if err != nil {
			return MuxedAccount{}, err
		}
		return MuxedFromAccountID(a), nil
	case strkey.VersionByteMuxedAccount:
		ed, id, err := strkey.DecodeMuxedAccount(address)
		if err != nil {
			return MuxedAccount{}, err
		}
		var pub Uint256
		copy(pub[:], ed)
		return MuxedAccount{Type: KeyTypeMuxedEd25519, Ed25519: pub, ID: id}, nil
	default:
		return MuxedAccount{}, fmt.Errorf("%w: not an account address", strkey.ErrVersion)
	}
}

// Address returns the "G..." or "M..." text form.
func (m MuxedAccount) Address() string {
	switch m.Type {
	case KeyTypeMuxedEd25519:
		text, err := strkey.EncodeMuxedAccount(m.Ed25519[:], m.ID)
		if err != nil {
			panic(err)
		}
		return text
	default:
		return m.AccountID().Address()
	}
}

// AccountID returns the underlying plain account, dropping any mux id.
func (m MuxedAccount) AccountID() AccountID {
	return AccountID{Type: PublicKeyTypeEd25519, Ed25519: m.Ed25519}
}

// EncodeTo writes the key-type discriminant and the active arm.
func (m MuxedAccount) EncodeTo(s *serdes.BinarySerializer) error {
	switch m.Type {
	case KeyTypeEd25519:
		s.WriteInt32(int32(m.Type))
		return m.Ed25519.EncodeTo(s)
	case KeyTypeMuxedEd25519:
		s.WriteInt32(int32(m.Type))
		s.WriteUint64(m.ID)
		return m.Ed25519.EncodeTo(s)
	default:
		return fmt.Errorf("%w: crypto key type %d", ErrUnknownDiscriminant, m.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (m *MuxedAccount) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	switch CryptoKeyType(d) {
	case KeyTypeEd25519:
		m.Type = KeyTypeEd25519
		m.ID = 0
		return m.Ed25519.DecodeFrom(p)
	case KeyTypeMuxedEd25519:
		m.Type = KeyTypeMuxedEd25519
		if m.ID, err = p.ReadUint64(); err != nil {
			return err
		}
		return m.Ed25519.DecodeFrom(p)
	default:
		return fmt.Errorf("%w: crypto key type %d", ErrUnknownDiscriminant, d)
	}
}

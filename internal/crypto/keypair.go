package crypto

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/LeJamon/gostellar/internal/codec/strkey"
	"github.com/LeJamon/gostellar/internal/codec/xdr"
)

var (
	// ErrNoPrivateKey is returned when a signing operation is attempted on a
	// verify-only keypair.
	ErrNoPrivateKey = errors.New("keypair has no private key")
	// ErrInvalidSignatureSize is returned when a signature to verify is not
	// 64 bytes long.
	ErrInvalidSignatureSize = errors.New("signature must be 64 bytes")
	// ErrPayloadTooLong is returned when a signed payload exceeds the
	// protocol maximum of 64 bytes.
	ErrPayloadTooLong = errors.New("signed payload exceeds 64 bytes")
)

// KeyPair holds an Ed25519 public key and, when constructed from a seed, the
// corresponding private key. The seed lives in a SecretKey so Destroy can
// erase it. Keypairs built from an account address alone can verify
// signatures but not produce them.
type KeyPair struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
	seed *SecretKey
}

func fromSeed(seed *SecretKey) *KeyPair {
	priv := ed25519.NewKeyFromSeed(seed.Data())
	return &KeyPair{
		pub:  priv.Public().(ed25519.PublicKey),
		priv: priv,
		seed: seed,
	}
}

// FromRawSeed builds a signing keypair from a raw 32-byte Ed25519 seed.
func FromRawSeed(seed [32]byte) *KeyPair {
	return fromSeed(NewSecretKeyWithCopy(seed[:]))
}

// FromSecretSeed builds a signing keypair from an S... secret seed string.
func FromSecretSeed(seed string) (*KeyPair, error) {
	raw, err := strkey.Decode(strkey.VersionByteSeed, seed)
	if err != nil {
		return nil, fmt.Errorf("decoding secret seed: %w", err)
	}
	return fromSeed(NewSecretKey(raw)), nil
}

// FromAccountID builds a verify-only keypair from a G... account address.
func FromAccountID(address string) (*KeyPair, error) {
	raw, err := strkey.Decode(strkey.VersionByteAccountID, address)
	if err != nil {
		return nil, fmt.Errorf("decoding account ID: %w", err)
	}
	return &KeyPair{pub: ed25519.PublicKey(raw)}, nil
}

// Random generates a keypair from a fresh random seed.
func Random() (*KeyPair, error) {
	seed, err := RandomSeed()
	if err != nil {
		return nil, err
	}
	return fromSeed(seed), nil
}

// Address returns the G... account address for the public key.
func (kp *KeyPair) Address() string {
	addr, err := strkey.Encode(strkey.VersionByteAccountID, kp.pub)
	if err != nil {
		// The public key is always exactly 32 bytes.
		panic(err)
	}
	return addr
}

// SecretSeed returns the S... secret seed string. It fails for verify-only
// keypairs.
func (kp *KeyPair) SecretSeed() (string, error) {
	if !kp.CanSign() {
		return "", ErrNoPrivateKey
	}
	return strkey.Encode(strkey.VersionByteSeed, kp.seed.Data())
}

// RawSeed returns a copy of the raw 32-byte seed. The caller owns the copy
// and should erase it when done.
func (kp *KeyPair) RawSeed() ([]byte, error) {
	if !kp.CanSign() {
		return nil, ErrNoPrivateKey
	}
	return kp.seed.Copy(), nil
}

// PublicKey returns the raw 32-byte Ed25519 public key.
func (kp *KeyPair) PublicKey() [32]byte {
	var out [32]byte
	copy(out[:], kp.pub)
	return out
}

// AccountID returns the public key as an XDR account ID.
func (kp *KeyPair) AccountID() xdr.AccountID {
	return xdr.AccountIDFromEd25519(kp.PublicKey())
}

// CanSign reports whether the keypair carries a private key.
func (kp *KeyPair) CanSign() bool {
	return kp.priv != nil
}

// Sign signs the input with the private key and returns the 64-byte Ed25519
// signature.
func (kp *KeyPair) Sign(input []byte) ([]byte, error) {
	if !kp.CanSign() {
		return nil, ErrNoPrivateKey
	}
	return ed25519.Sign(kp.priv, input), nil
}

// Verify reports whether sig is a valid signature of input under the public
// key. A malformed signature fails verification rather than erroring.
func (kp *KeyPair) Verify(input, sig []byte) error {
	if len(sig) != ed25519.SignatureSize {
		return ErrInvalidSignatureSize
	}
	if !ed25519.Verify(kp.pub, input, sig) {
		return errors.New("signature verification failed")
	}
	return nil
}

// Hint returns the last four bytes of the public key, used to identify which
// signer produced a decorated signature.
func (kp *KeyPair) Hint() xdr.SignatureHint {
	var hint xdr.SignatureHint
	copy(hint[:], kp.pub[ed25519.PublicKeySize-4:])
	return hint
}

// SignDecorated signs the input and wraps the signature with the public key
// hint.
func (kp *KeyPair) SignDecorated(input []byte) (xdr.DecoratedSignature, error) {
	sig, err := kp.Sign(input)
	if err != nil {
		return xdr.DecoratedSignature{}, err
	}
	return xdr.DecoratedSignature{Hint: kp.Hint(), Signature: sig}, nil
}

// SignPayloadDecorated signs the input and decorates the signature with the
// signed-payload hint: the public key hint XORed with the last four bytes of
// the payload. A payload shorter than four bytes contributes only its
// available bytes.
func (kp *KeyPair) SignPayloadDecorated(input, payload []byte) (xdr.DecoratedSignature, error) {
	if len(payload) > xdr.MaxSignedPayloadSize {
		return xdr.DecoratedSignature{}, ErrPayloadTooLong
	}
	sig, err := kp.Sign(input)
	if err != nil {
		return xdr.DecoratedSignature{}, err
	}
	hint := kp.Hint()
	tail := payload
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	for i, b := range tail {
		hint[i] ^= b
	}
	return xdr.DecoratedSignature{Hint: hint, Signature: sig}, nil
}

// Destroy erases the private key material. The keypair degrades to
// verify-only.
func (kp *KeyPair) Destroy() {
	kp.seed.Close()
	kp.seed = nil
	SecureErase(kp.priv)
	kp.priv = nil
}

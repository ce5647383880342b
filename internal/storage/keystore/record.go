package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/ugorji/go/codec"
	"golang.org/x/crypto/pbkdf2"
)

const (
	recordVersion = 1

	saltSize   = 16
	nonceSize  = 12
	keySize    = 32
	kdfRounds  = 250_000
	sealedSize = 32 + 16 // seed + GCM tag
)

var (
	// ErrWrongPassphrase is returned when a sealed seed fails to open,
	// which almost always means the passphrase is wrong.
	ErrWrongPassphrase = errors.New("wrong passphrase")
	// ErrCorruptRecord is returned when a stored record fails structural
	// validation.
	ErrCorruptRecord = errors.New("corrupt keystore record")
)

// record is the stored form of a key: the address in clear, the seed sealed
// under a passphrase-derived key. Encoded as CBOR.
type record struct {
	Version   int    `codec:"version"`
	Address   string `codec:"address"`
	Salt      []byte `codec:"salt"`
	Nonce     []byte `codec:"nonce"`
	Sealed    []byte `codec:"sealed"`
	CreatedAt int64  `codec:"created_at"`
}

var cborHandle = func() *codec.CborHandle {
	h := new(codec.CborHandle)
	h.Canonical = true
	return h
}()

func (r *record) encode() ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, cborHandle).Encode(r); err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return out, nil
}

func decodeRecord(data []byte) (*record, error) {
	r := new(record)
	if err := codec.NewDecoderBytes(data, cborHandle).Decode(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if r.Version != recordVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrCorruptRecord, r.Version)
	}
	if len(r.Salt) != saltSize || len(r.Nonce) != nonceSize || len(r.Sealed) != sealedSize {
		return nil, fmt.Errorf("%w: bad field sizes", ErrCorruptRecord)
	}
	return r, nil
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, kdfRounds, keySize, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// sealRecord encrypts the seed under the passphrase. The address is bound as
// additional authenticated data, so a record cannot be re-labelled.
func sealRecord(address string, seed []byte, passphrase string, salt, nonce []byte) (*record, error) {
	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	return &record{
		Version:   recordVersion,
		Address:   address,
		Salt:      salt,
		Nonce:     nonce,
		Sealed:    gcm.Seal(nil, nonce, seed, []byte(address)),
		CreatedAt: time.Now().Unix(),
	}, nil
}

// openRecord decrypts the sealed seed. The caller owns the returned bytes
// and should erase them when done.
func (r *record) open(passphrase string) ([]byte, error) {
	gcm, err := newGCM(deriveKey(passphrase, r.Salt))
	if err != nil {
		return nil, err
	}
	seed, err := gcm.Open(nil, r.Nonce, r.Sealed, []byte(r.Address))
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return seed, nil
}

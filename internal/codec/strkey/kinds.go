package strkey

import (
	"encoding/binary"
	"fmt"
)

// MaxSignedPayloadLength is the largest payload a signed-payload signer may
// carry.
const MaxSignedPayloadLength = 64

// EncodeMuxedAccount encodes an Ed25519 public key and a 64-bit
// multiplexing id as an "M..." address. The id is laid out big-endian after
// the key inside the checksummed payload.
func EncodeMuxedAccount(ed25519 []byte, id uint64) (string, error) {
	if len(ed25519) != 32 {
		return "", fmt.Errorf("%w: ed25519 key must be 32 bytes, got %d", ErrFormat, len(ed25519))
	}
	payload := make([]byte, 0, 40)
	payload = append(payload, ed25519...)
	payload = binary.BigEndian.AppendUint64(payload, id)
	return Encode(VersionByteMuxedAccount, payload)
}

// DecodeMuxedAccount splits an "M..." address into its Ed25519 public key
// and multiplexing id.
func DecodeMuxedAccount(text string) ([]byte, uint64, error) {
	payload, err := Decode(VersionByteMuxedAccount, text)
	if err != nil {
		return nil, 0, err
	}
	return payload[:32], binary.BigEndian.Uint64(payload[32:]), nil
}

// EncodeSignedPayload encodes a signed-payload signer: the inner account's
// Ed25519 public key plus an opaque payload of at most 64 bytes. The
// payload region carries its own length prefix and is padded to a 4-byte
// boundary before checksumming.
func EncodeSignedPayload(ed25519 []byte, payload []byte) (string, error) {
	if len(ed25519) != 32 {
		return "", fmt.Errorf("%w: ed25519 key must be 32 bytes, got %d", ErrFormat, len(ed25519))
	}
	if len(payload) == 0 || len(payload) > MaxSignedPayloadLength {
		return "", fmt.Errorf("%w: payload length %d out of range [1,%d]", ErrFormat, len(payload), MaxSignedPayloadLength)
	}
	padded := (len(payload) + 3) / 4 * 4
	inner := make([]byte, 0, 36+padded)
	inner = append(inner, ed25519...)
	inner = binary.BigEndian.AppendUint32(inner, uint32(len(payload)))
	inner = append(inner, payload...)
	inner = append(inner, make([]byte, padded-len(payload))...)
	return Encode(VersionByteSignedPayload, inner)
}

// DecodeSignedPayload splits a "P..." signer into its inner Ed25519 public
// key and payload.
func DecodeSignedPayload(text string) ([]byte, []byte, error) {
	raw, err := Decode(VersionByteSignedPayload, text)
	if err != nil {
		return nil, nil, err
	}
	n := binary.BigEndian.Uint32(raw[32:36])
	return raw[:32], raw[36 : 36+n], nil
}

// EncodeClaimableBalanceID encodes a v0 claimable balance id ("B...").
// The checksummed payload is the 32-byte id prefixed with its sub-type
// discriminant.
func EncodeClaimableBalanceID(id []byte) (string, error) {
	if len(id) != 32 {
		return "", fmt.Errorf("%w: claimable balance id must be 32 bytes, got %d", ErrFormat, len(id))
	}
	payload := make([]byte, 0, 33)
	payload = append(payload, 0) // v0 discriminant
	payload = append(payload, id...)
	return Encode(VersionByteClaimableBalance, payload)
}

// DecodeClaimableBalanceID returns the 32-byte id from a "B..." string.
func DecodeClaimableBalanceID(text string) ([]byte, error) {
	payload, err := Decode(VersionByteClaimableBalance, text)
	if err != nil {
		return nil, err
	}
	return payload[1:], nil
}

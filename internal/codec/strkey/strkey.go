// Package strkey implements the checksummed base32 text encoding used for
// keys and entity identifiers. Each entity kind carries a version byte
// chosen so the encoded form starts with a fixed letter (G for account ids,
// S for seeds, and so on). The trailing 16-bit CRC is recomputed on every
// decode, never trusted from input.
package strkey

import (
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
)

// VersionByte identifies the entity kind carried by an encoded string.
type VersionByte byte

const (
	// VersionByteAccountID encodes an Ed25519 public key ("G...").
	VersionByteAccountID VersionByte = 6 << 3
	// VersionByteSeed encodes an Ed25519 secret seed ("S...").
	VersionByteSeed VersionByte = 18 << 3
	// VersionBytePreAuthTx encodes a pre-authorized transaction hash ("T...").
	VersionBytePreAuthTx VersionByte = 19 << 3
	// VersionByteHashX encodes a SHA-256 hash signer ("X...").
	VersionByteHashX VersionByte = 23 << 3
	// VersionByteSignedPayload encodes a signed-payload signer ("P...").
	VersionByteSignedPayload VersionByte = 15 << 3
	// VersionByteMuxedAccount encodes a multiplexed account ("M...").
	VersionByteMuxedAccount VersionByte = 12 << 3
	// VersionByteContract encodes a contract id ("C...").
	VersionByteContract VersionByte = 2 << 3
	// VersionByteLiquidityPool encodes a liquidity pool id ("L...").
	VersionByteLiquidityPool VersionByte = 11 << 3
	// VersionByteClaimableBalance encodes a claimable balance id ("B...").
	VersionByteClaimableBalance VersionByte = 1 << 3
)

var (
	// ErrFormat is returned for invalid characters, impossible lengths, or
	// non-canonical padding bits. Checked before anything else.
	ErrFormat = errors.New("strkey: invalid format")

	// ErrChecksum is returned when the recomputed CRC does not match the
	// trailing two bytes. Only reachable once the format checks pass.
	ErrChecksum = errors.New("strkey: checksum mismatch")

	// ErrVersion is returned when a structurally valid, checksum-valid
	// string names a different entity kind than expected.
	ErrVersion = errors.New("strkey: unexpected version byte")
)

// encoding is RFC 4648 base32, uppercase, unpadded.
var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Encode returns the text form of payload under the given version byte.
// The payload length is validated for the entity kind before encoding.
func Encode(version VersionByte, payload []byte) (string, error) {
	if err := checkPayload(version, payload); err != nil {
		return "", err
	}
	raw := make([]byte, 0, 3+len(payload))
	raw = append(raw, byte(version))
	raw = append(raw, payload...)
	raw = binary.LittleEndian.AppendUint16(raw, checksum(raw))
	return encoding.EncodeToString(raw), nil
}

// Decode parses text and returns its payload, requiring the given entity
// kind. Validation order is fixed: format, then checksum, then version.
func Decode(version VersionByte, text string) ([]byte, error) {
	got, payload, err := DecodeAny(text)
	if err != nil {
		return nil, err
	}
	if got != version {
		return nil, fmt.Errorf("%w: got 0x%02x, want 0x%02x", ErrVersion, byte(got), byte(version))
	}
	return payload, nil
}

// DecodeAny parses text and returns whichever entity kind it carries.
func DecodeAny(text string) (VersionByte, []byte, error) {
	raw, err := decodeBase32(text)
	if err != nil {
		return 0, nil, err
	}
	if len(raw) < 3 {
		return 0, nil, fmt.Errorf("%w: decoded length %d too short", ErrFormat, len(raw))
	}

	body, tail := raw[:len(raw)-2], raw[len(raw)-2:]
	if checksum(body) != binary.LittleEndian.Uint16(tail) {
		return 0, nil, ErrChecksum
	}

	version := VersionByte(body[0])
	if !knownVersion(version) {
		return 0, nil, fmt.Errorf("%w: unknown version byte 0x%02x", ErrVersion, body[0])
	}
	payload := body[1:]
	if err := checkPayload(version, payload); err != nil {
		return 0, nil, err
	}
	return version, payload, nil
}

// IsValid reports whether text is a well-formed encoding of the given kind.
func IsValid(version VersionByte, text string) bool {
	_, err := Decode(version, text)
	return err == nil
}

// decodeBase32 performs the format-stage validation: charset, length class,
// and canonical zero bits in the final symbol.
func decodeBase32(text string) ([]byte, error) {
	// Lengths congruent to 1, 3, or 6 mod 8 cannot arise from encoding
	// whole bytes.
	switch len(text) % 8 {
	case 1, 3, 6:
		return nil, fmt.Errorf("%w: invalid length %d", ErrFormat, len(text))
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !(c >= 'A' && c <= 'Z' || c >= '2' && c <= '7') {
			return nil, fmt.Errorf("%w: invalid character %q", ErrFormat, c)
		}
	}
	if n := len(text); n > 0 {
		// The unused low bits of the final symbol must be zero, otherwise
		// two distinct strings would decode to the same bytes.
		leftover := (n * 5) % 8
		if leftover > 0 {
			last := base32Value(text[n-1])
			if last&(1<<leftover-1) != 0 {
				return nil, fmt.Errorf("%w: non-canonical trailing bits", ErrFormat)
			}
		}
	}
	raw, err := encoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return raw, nil
}

// base32Value maps an alphabet character to its 5-bit value. Callers have
// already validated the charset.
func base32Value(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A'
	}
	return c - '2' + 26
}

// checkPayload validates the payload length (and fixed sub-structure) for
// an entity kind.
func checkPayload(version VersionByte, payload []byte) error {
	switch version {
	case VersionByteAccountID, VersionByteSeed, VersionBytePreAuthTx,
		VersionByteHashX, VersionByteContract, VersionByteLiquidityPool:
		if len(payload) != 32 {
			return fmt.Errorf("%w: payload must be 32 bytes, got %d", ErrFormat, len(payload))
		}
	case VersionByteMuxedAccount:
		if len(payload) != 40 {
			return fmt.Errorf("%w: muxed payload must be 40 bytes, got %d", ErrFormat, len(payload))
		}
	case VersionByteClaimableBalance:
		if len(payload) != 33 {
			return fmt.Errorf("%w: claimable balance payload must be 33 bytes, got %d", ErrFormat, len(payload))
		}
		if payload[0] != 0 {
			return fmt.Errorf("%w: unknown claimable balance type %d", ErrFormat, payload[0])
		}
	case VersionByteSignedPayload:
		return checkSignedPayload(payload)
	default:
		return fmt.Errorf("%w: unknown version byte 0x%02x", ErrVersion, byte(version))
	}
	return nil
}

// checkSignedPayload validates the inner layout of a signed-payload signer:
// a 32-byte key, a 4-byte payload length, and the payload padded to a
// 4-byte boundary.
func checkSignedPayload(payload []byte) error {
	if len(payload) < 32+4 || len(payload) > 32+4+64 {
		return fmt.Errorf("%w: signed payload length %d out of range", ErrFormat, len(payload))
	}
	inner := binary.BigEndian.Uint32(payload[32:36])
	if inner == 0 || inner > 64 {
		return fmt.Errorf("%w: inner payload length %d out of range", ErrFormat, inner)
	}
	padded := (int(inner) + 3) / 4 * 4
	if len(payload) != 36+padded {
		return fmt.Errorf("%w: inner payload length %d does not match region size %d", ErrFormat, inner, len(payload)-36)
	}
	for _, b := range payload[36+int(inner):] {
		if b != 0 {
			return fmt.Errorf("%w: non-zero inner padding", ErrFormat)
		}
	}
	return nil
}

func knownVersion(v VersionByte) bool {
	switch v {
	case VersionByteAccountID, VersionByteSeed, VersionBytePreAuthTx,
		VersionByteHashX, VersionByteSignedPayload, VersionByteMuxedAccount,
		VersionByteContract, VersionByteLiquidityPool, VersionByteClaimableBalance:
		return true
	}
	return false
}

// checksum computes CRC-16/XMODEM (polynomial 0x1021, zero initial value).
func checksum(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

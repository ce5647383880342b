package xdr

import (
	"fmt"
	"strings"

	"github.com/LeJamon/gostellar/internal/codec/xdr/serdes"
)

// AssetType discriminates the Asset union.
type AssetType int32

const (
	// AssetTypeNative is the network's built-in currency.
	AssetTypeNative AssetType = 0
	// AssetTypeCreditAlphanum4 is an issued asset with a code of 1-4 chars.
	AssetTypeCreditAlphanum4 AssetType = 1
	// AssetTypeCreditAlphanum12 is an issued asset with a code of 5-12 chars.
	AssetTypeCreditAlphanum12 AssetType = 2
)

// AlphaNum4 is a short-code issued asset. The code is right-padded with
// zero bytes on the wire.
type AlphaNum4 struct {
	Code   [4]byte
	Issuer AccountID
}

// AlphaNum12 is a long-code issued asset.
type AlphaNum12 struct {
	Code   [12]byte
	Issuer AccountID
}

// Asset is the union of the native currency and issued credit assets.
type Asset struct {
	Type       AssetType
	AlphaNum4  *AlphaNum4
	AlphaNum12 *AlphaNum12
}

// NativeAsset returns the built-in currency.
func NativeAsset() Asset {
	return Asset{Type: AssetTypeNative}
}

// CreditAsset builds an issued asset from a 1-12 character code.
func CreditAsset(code string, issuer AccountID) (Asset, error) {
	switch {
	case len(code) >= 1 && len(code) <= 4:
		a := &AlphaNum4{Issuer: issuer}
		copy(a.Code[:], code)
		return Asset{Type: AssetTypeCreditAlphanum4, AlphaNum4: a}, nil
	case len(code) <= 12:
		a := &AlphaNum12{Issuer: issuer}
		copy(a.Code[:], code)
		return Asset{Type: AssetTypeCreditAlphanum12, AlphaNum12: a}, nil
	default:
		return Asset{}, fmt.Errorf("asset code %q must be 1-12 characters", code)
	}
}

// Code returns the asset code with wire padding stripped, or "XLM" for the
// native asset.
func (a Asset) Code() string {
	switch a.Type {
	case AssetTypeCreditAlphanum4:
		return strings.TrimRight(string(a.AlphaNum4.Code[:]), "\x00")
	case AssetTypeCreditAlphanum12:
		return strings.TrimRight(string(a.AlphaNum12.Code[:]), "\x00")
	default:
		return "XLM"
	}
}

// EncodeTo writes the discriminant and the active arm.
func (a Asset) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(int32(a.Type))
	switch a.Type {
	case AssetTypeNative:
		return nil
	case AssetTypeCreditAlphanum4:
		if a.AlphaNum4 == nil {
			return fmt.Errorf("asset: nil alphanum4 arm")
		}
		s.WriteFixedOpaque(a.AlphaNum4.Code[:])
		return a.AlphaNum4.Issuer.EncodeTo(s)
	case AssetTypeCreditAlphanum12:
		if a.AlphaNum12 == nil {
			return fmt.Errorf("asset: nil alphanum12 arm")
		}
		s.WriteFixedOpaque(a.AlphaNum12.Code[:])
		return a.AlphaNum12.Issuer.EncodeTo(s)
	default:
		return fmt.Errorf("%w: asset type %d", ErrUnknownDiscriminant, a.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (a *Asset) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	*a = Asset{Type: AssetType(d)}
	switch a.Type {
	case AssetTypeNative:
		return nil
	case AssetTypeCreditAlphanum4:
		a.AlphaNum4 = new(AlphaNum4)
		code, err := p.ReadFixedOpaque(4)
		if err != nil {
			return err
		}
		copy(a.AlphaNum4.Code[:], code)
		return a.AlphaNum4.Issuer.DecodeFrom(p)
	case AssetTypeCreditAlphanum12:
		a.AlphaNum12 = new(AlphaNum12)
		code, err := p.ReadFixedOpaque(12)
		if err != nil {
			return err
		}
		copy(a.AlphaNum12.Code[:], code)
		return a.AlphaNum12.Issuer.DecodeFrom(p)
	default:
		return fmt.Errorf("%w: asset type %d", ErrUnknownDiscriminant, d)
	}
}

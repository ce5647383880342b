package crypto

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/gostellar/internal/codec/xdr"
)

func seedFromHex(t *testing.T, h string) [32]byte {
	t.Helper()
	raw, err := hex.DecodeString(h)
	require.NoError(t, err)
	require.Len(t, raw, 32)
	var s [32]byte
	copy(s[:], raw)
	return s
}

func TestFromRawSeedSignAndVerify(t *testing.T) {
	seed := seedFromHex(t, "1123740522f11bfef6b3671f51e159ccf589ccf8965262dd5f97d1721d383dd4")
	kp := FromRawSeed(seed)
	require.True(t, kp.CanSign())

	msg := []byte("hello world")
	sig, err := kp.Sign(msg)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	require.NoError(t, kp.Verify(msg, sig))
	assert.Error(t, kp.Verify([]byte("hello worlds"), sig))
	assert.ErrorIs(t, kp.Verify(msg, sig[:63]), ErrInvalidSignatureSize)
}

func TestSecretSeedRoundtrip(t *testing.T) {
	kp, err := Random()
	require.NoError(t, err)

	seed, err := kp.SecretSeed()
	require.NoError(t, err)
	assert.Equal(t, byte('S'), seed[0])

	restored, err := FromSecretSeed(seed)
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), restored.Address())
}

func TestFromAccountIDVerifyOnly(t *testing.T) {
	signer, err := Random()
	require.NoError(t, err)

	verifier, err := FromAccountID(signer.Address())
	require.NoError(t, err)
	require.False(t, verifier.CanSign())

	msg := []byte("payload")
	sig, err := signer.Sign(msg)
	require.NoError(t, err)
	require.NoError(t, verifier.Verify(msg, sig))

	_, err = verifier.Sign(msg)
	assert.ErrorIs(t, err, ErrNoPrivateKey)
	_, err = verifier.SecretSeed()
	assert.ErrorIs(t, err, ErrNoPrivateKey)
}

func TestFromSecretSeedRejectsAddress(t *testing.T) {
	kp, err := Random()
	require.NoError(t, err)

	_, err = FromSecretSeed(kp.Address())
	require.Error(t, err)
}

func TestHintIsPublicKeyTail(t *testing.T) {
	seed := seedFromHex(t, "1123740522f11bfef6b3671f51e159ccf589ccf8965262dd5f97d1721d383dd4")
	kp := FromRawSeed(seed)

	pub := kp.PublicKey()
	var want xdr.SignatureHint
	copy(want[:], pub[28:])
	assert.Equal(t, want, kp.Hint())
	assert.Equal(t, xdr.SignatureHint{0xFE, 0x42, 0x04, 0x37}, kp.Hint())
}

func TestSignDecorated(t *testing.T) {
	kp, err := Random()
	require.NoError(t, err)

	msg := []byte("decorate me")
	ds, err := kp.SignDecorated(msg)
	require.NoError(t, err)
	assert.Equal(t, kp.Hint(), ds.Hint)
	require.NoError(t, kp.Verify(msg, ds.Signature))
}

func TestSignPayloadDecoratedHint(t *testing.T) {
	seed := seedFromHex(t, "1123740522f11bfef6b3671f51e159ccf589ccf8965262dd5f97d1721d383dd4")
	kp := FromRawSeed(seed)

	tests := []struct {
		name    string
		payload []byte
		want    xdr.SignatureHint
	}{
		{"five byte payload", []byte{1, 2, 3, 4, 5}, xdr.SignatureHint{0xFC, 0x41, 0x00, 0x32}},
		{"three byte payload", []byte{1, 2, 3}, xdr.SignatureHint{0xFF, 0x40, 0x07, 0x37}},
		{"empty payload", nil, kp.Hint()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := []byte("message")
			ds, err := kp.SignPayloadDecorated(msg, tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ds.Hint)
			require.NoError(t, kp.Verify(msg, ds.Signature))
		})
	}
}

func TestSignPayloadDecoratedRejectsOversize(t *testing.T) {
	kp, err := Random()
	require.NoError(t, err)

	_, err = kp.SignPayloadDecorated([]byte("msg"), make([]byte, 65))
	assert.ErrorIs(t, err, ErrPayloadTooLong)
}

func TestDestroyDegradesToVerifyOnly(t *testing.T) {
	kp, err := Random()
	require.NoError(t, err)
	addr := kp.Address()

	kp.Destroy()
	require.False(t, kp.CanSign())
	assert.Equal(t, addr, kp.Address())
	_, err = kp.Sign([]byte("msg"))
	assert.ErrorIs(t, err, ErrNoPrivateKey)
}

func TestDestroyClosesSeed(t *testing.T) {
	kp, err := Random()
	require.NoError(t, err)
	held := kp.seed
	raw := held.Data()
	require.Len(t, raw, SeedSize)

	kp.Destroy()
	assert.True(t, held.IsClosed())
	for i, v := range raw {
		assert.Zero(t, v, "seed byte %d not erased", i)
	}
	_, err = kp.SecretSeed()
	assert.ErrorIs(t, err, ErrNoPrivateKey)
	_, err = kp.RawSeed()
	assert.ErrorIs(t, err, ErrNoPrivateKey)
}

func TestFindVanity(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	kp, err := FindVanity(ctx, "A", 2)
	require.NoError(t, err)
	assert.Equal(t, byte('A'), kp.Address()[len(kp.Address())-1])
}

func TestFindVanityRejectsBadSuffix(t *testing.T) {
	_, err := FindVanity(context.Background(), "0!", 1)
	assert.ErrorIs(t, err, ErrInvalidVanitySuffix)
}

func TestFindVanityHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FindVanity(ctx, "ZZZZZZZZ", 1)
	require.Error(t, err)
}

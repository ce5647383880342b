package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureErase(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5}
	SecureErase(b)
	for i, v := range b {
		assert.Zero(t, v, "byte %d not erased", i)
	}

	// Empty and nil slices are no-ops.
	SecureErase(nil)
	SecureErase([]byte{})
}

func TestSecretKeyLifecycle(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	sk := NewSecretKey(data)

	assert.False(t, sk.IsClosed())
	assert.Equal(t, data, sk.Data())
	assert.Equal(t, len(data), sk.Len())

	cp := sk.Copy()
	assert.Equal(t, data, cp)
	cp[0] = 0
	assert.Equal(t, byte(0xDE), sk.Data()[0], "copy must not alias the key")

	sk.Close()
	assert.True(t, sk.IsClosed())
	assert.Nil(t, sk.Data())
	assert.Nil(t, sk.Copy())
	assert.Zero(t, sk.Len())
	for i, v := range data {
		assert.Zero(t, v, "byte %d not erased on close", i)
	}

	// Close is idempotent, including on a nil receiver.
	sk.Close()
	var nilKey *SecretKey
	nilKey.Close()
	assert.True(t, nilKey.IsClosed())
}

func TestNewSecretKeyWithCopyDoesNotTakeOwnership(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	sk := NewSecretKeyWithCopy(data)
	sk.Close()
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
}

func TestRandomSeed(t *testing.T) {
	seed, err := RandomSeed()
	require.NoError(t, err)
	defer seed.Close()

	assert.Equal(t, SeedSize, seed.Len())
	other, err := RandomSeed()
	require.NoError(t, err)
	defer other.Close()
	assert.NotEqual(t, seed.Data(), other.Data())
}

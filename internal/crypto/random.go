package crypto

import (
	"crypto/rand"
	"errors"
	"io"
)

// ErrRandomGeneration is returned when random number generation fails.
var ErrRandomGeneration = errors.New("failed to generate random bytes")

// RandomBytes generates n cryptographically secure random bytes.
// It uses crypto/rand which reads from the system's CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}

	b := make([]byte, n)
	_, err := io.ReadFull(rand.Reader, b)
	if err != nil {
		return nil, ErrRandomGeneration
	}
	return b, nil
}

// RandomSeed generates a random 32-byte Ed25519 seed.
// The returned SecretKey should be closed when no longer needed to securely
// erase the seed material from memory.
func RandomSeed() (*SecretKey, error) {
	seed, err := RandomBytes(SeedSize)
	if err != nil {
		return nil, err
	}
	return NewSecretKey(seed), nil
}

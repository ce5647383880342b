// Package keystore persists secret seeds sealed under a passphrase.
//
// Records live in a pebble database keyed by account address. Seeds are
// encrypted with AES-256-GCM under a PBKDF2-derived key; the address travels
// in clear so keys can be listed without the passphrase.
package keystore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/LeJamon/gostellar/internal/crypto"
)

var (
	// ErrClosed is returned when the store has been closed.
	ErrClosed = errors.New("keystore is closed")
	// ErrNotFound is returned when no record exists for an address.
	ErrNotFound = errors.New("key not found")
	// ErrExists is returned when storing a key that is already present.
	ErrExists = errors.New("key already exists")
)

// Store is a pebble-backed keystore. Safe for concurrent use.
type Store struct {
	mu sync.Mutex
	db *pebble.DB
}

// Open opens (creating if needed) the keystore at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening keystore at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Put seals the keypair's seed under the passphrase and stores it, keyed by
// the account address. Fails if the address is already stored or the keypair
// cannot sign.
func (s *Store) Put(kp *crypto.KeyPair, passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}
	if !kp.CanSign() {
		return crypto.ErrNoPrivateKey
	}

	addr := kp.Address()
	_, closer, err := s.db.Get([]byte(addr))
	if err == nil {
		closer.Close()
		return fmt.Errorf("%w: %s", ErrExists, addr)
	}
	if !errors.Is(err, pebble.ErrNotFound) {
		return err
	}

	raw, err := kp.RawSeed()
	if err != nil {
		return err
	}
	defer crypto.SecureErase(raw)

	salt, err := crypto.RandomBytes(saltSize)
	if err != nil {
		return err
	}
	nonce, err := crypto.RandomBytes(nonceSize)
	if err != nil {
		return err
	}
	rec, err := sealRecord(addr, raw, passphrase, salt, nonce)
	if err != nil {
		return err
	}
	data, err := rec.encode()
	if err != nil {
		return err
	}
	return s.db.Set([]byte(addr), data, pebble.Sync)
}

// Get opens the sealed seed for the address and rebuilds the signing
// keypair.
func (s *Store) Get(address, passphrase string) (*crypto.KeyPair, error) {
	rec, err := s.load(address)
	if err != nil {
		return nil, err
	}
	raw, err := rec.open(passphrase)
	if err != nil {
		return nil, err
	}
	defer crypto.SecureErase(raw)

	var seed [32]byte
	copy(seed[:], raw)
	kp := crypto.FromRawSeed(seed)
	crypto.SecureErase(seed[:])
	if kp.Address() != address {
		return nil, fmt.Errorf("%w: seed does not match address", ErrCorruptRecord)
	}
	return kp, nil
}

// Contains reports whether a record exists for the address.
func (s *Store) Contains(address string) (bool, error) {
	_, err := s.load(address)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns the stored addresses in key order.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var addrs []string
	for iter.First(); iter.Valid(); iter.Next() {
		addrs = append(addrs, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return addrs, nil
}

// Delete removes the record for the address.
func (s *Store) Delete(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	_, closer, err := s.db.Get([]byte(address))
	if errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	if err != nil {
		return err
	}
	closer.Close()
	return s.db.Delete([]byte(address), pebble.Sync)
}

func (s *Store) load(address string) (*record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	val, closer, err := s.db.Get([]byte(address))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	data := make([]byte, len(val))
	copy(data, val)
	return decodeRecord(data)
}

package keystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/gostellar/internal/crypto"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundtrip(t *testing.T) {
	s := openTestStore(t)
	kp, err := crypto.Random()
	require.NoError(t, err)

	require.NoError(t, s.Put(kp, "correct horse"))

	got, err := s.Get(kp.Address(), "correct horse")
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), got.Address())
	require.True(t, got.CanSign())

	wantSeed, err := kp.SecretSeed()
	require.NoError(t, err)
	gotSeed, err := got.SecretSeed()
	require.NoError(t, err)
	assert.Equal(t, wantSeed, gotSeed)
}

func TestGetWrongPassphrase(t *testing.T) {
	s := openTestStore(t)
	kp, err := crypto.Random()
	require.NoError(t, err)
	require.NoError(t, s.Put(kp, "right"))

	_, err = s.Get(kp.Address(), "wrong")
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestGetUnknownAddress(t *testing.T) {
	s := openTestStore(t)
	kp, err := crypto.Random()
	require.NoError(t, err)

	_, err = s.Get(kp.Address(), "pw")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutRejectsDuplicate(t *testing.T) {
	s := openTestStore(t)
	kp, err := crypto.Random()
	require.NoError(t, err)

	require.NoError(t, s.Put(kp, "pw"))
	assert.ErrorIs(t, s.Put(kp, "pw"), ErrExists)
}

func TestPutRejectsVerifyOnly(t *testing.T) {
	s := openTestStore(t)
	signer, err := crypto.Random()
	require.NoError(t, err)
	verifier, err := crypto.FromAccountID(signer.Address())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Put(verifier, "pw"), crypto.ErrNoPrivateKey)
}

func TestListAndDelete(t *testing.T) {
	s := openTestStore(t)

	var addrs []string
	for i := 0; i < 3; i++ {
		kp, err := crypto.Random()
		require.NoError(t, err)
		require.NoError(t, s.Put(kp, "pw"))
		addrs = append(addrs, kp.Address())
	}

	listed, err := s.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, addrs, listed)

	require.NoError(t, s.Delete(addrs[0]))
	listed, err = s.List()
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	assert.NotContains(t, listed, addrs[0])

	assert.ErrorIs(t, s.Delete(addrs[0]), ErrNotFound)
}

func TestContains(t *testing.T) {
	s := openTestStore(t)
	kp, err := crypto.Random()
	require.NoError(t, err)

	ok, err := s.Contains(kp.Address())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(kp, "pw"))
	ok, err = s.Contains(kp.Address())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClosedStore(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	kp, err := crypto.Random()
	require.NoError(t, err)
	assert.ErrorIs(t, s.Put(kp, "pw"), ErrClosed)
	_, err = s.Get(kp.Address(), "pw")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.List()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRecordSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	kp, err := crypto.Random()
	require.NoError(t, err)
	require.NoError(t, s.Put(kp, "pw"))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(kp.Address(), "pw")
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), got.Address())
}

func TestCorruptRecordDetected(t *testing.T) {
	_, err := decodeRecord([]byte{0xff, 0x00, 0x01})
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

package tx

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/gostellar/internal/codec/xdr"
	"github.com/LeJamon/gostellar/internal/crypto"
	"github.com/LeJamon/gostellar/internal/protocol"
)

func testKeyPair(t *testing.T) *crypto.KeyPair {
	t.Helper()
	raw, err := hex.DecodeString("1123740522f11bfef6b3671f51e159ccf589ccf8965262dd5f97d1721d383dd4")
	require.NoError(t, err)
	var seed [32]byte
	copy(seed[:], raw)
	return crypto.FromRawSeed(seed)
}

func paymentOp(t *testing.T, dest *crypto.KeyPair, amount int64) xdr.Operation {
	t.Helper()
	return xdr.Operation{
		Body: xdr.OperationBody{
			Type: xdr.OperationTypePayment,
			Payment: &xdr.PaymentOp{
				Destination: xdr.MuxedFromAccountID(dest.AccountID()),
				Asset:       xdr.NativeAsset(),
				Amount:      amount,
			},
		},
	}
}

func buildTestTransaction(t *testing.T, source *crypto.KeyPair, ops ...xdr.Operation) *Transaction {
	t.Helper()
	b := NewBuilder(xdr.MuxedFromAccountID(source.AccountID()), 42)
	for _, op := range ops {
		b.AddOperation(op)
	}
	built, err := b.Build()
	require.NoError(t, err)
	return built
}

func TestBuilderFeeIsBaseFeeTimesOperationCount(t *testing.T) {
	kp := testKeyPair(t)
	op := paymentOp(t, kp, 1000)

	built, err := NewBuilder(xdr.MuxedFromAccountID(kp.AccountID()), 1).
		WithBaseFee(200).
		AddOperation(op).
		AddOperation(op).
		AddOperation(op).
		Build()
	require.NoError(t, err)
	assert.Equal(t, uint32(600), built.Tx().Fee)
}

func TestBuilderValidation(t *testing.T) {
	kp := testKeyPair(t)
	source := xdr.MuxedFromAccountID(kp.AccountID())
	op := paymentOp(t, kp, 1)

	t.Run("no operations", func(t *testing.T) {
		_, err := NewBuilder(source, 1).Build()
		assert.ErrorIs(t, err, ErrNoOperations)
	})

	t.Run("too many operations", func(t *testing.T) {
		b := NewBuilder(source, 1)
		for i := 0; i < xdr.MaxOperationsPerTransaction+1; i++ {
			b.AddOperation(op)
		}
		_, err := b.Build()
		assert.ErrorIs(t, err, ErrTooManyOperations)
	})

	t.Run("base fee below minimum", func(t *testing.T) {
		_, err := NewBuilder(source, 1).WithBaseFee(99).AddOperation(op).Build()
		assert.ErrorIs(t, err, ErrBaseFeeTooLow)
	})
}

func TestHashBindsNetwork(t *testing.T) {
	kp := testKeyPair(t)
	built := buildTestTransaction(t, kp, paymentOp(t, kp, 1000))

	pubHash, err := built.Hash(protocol.Public)
	require.NoError(t, err)
	testHash, err := built.Hash(protocol.Testnet)
	require.NoError(t, err)
	assert.NotEqual(t, pubHash, testHash)
}

func TestSignAndVerify(t *testing.T) {
	kp := testKeyPair(t)
	built := buildTestTransaction(t, kp, paymentOp(t, kp, 1000))

	require.NoError(t, built.Sign(protocol.Testnet, kp))
	sigs := built.Signatures()
	require.Len(t, sigs, 1)
	assert.Equal(t, kp.Hint(), sigs[0].Hint)

	h, err := built.Hash(protocol.Testnet)
	require.NoError(t, err)
	require.NoError(t, kp.Verify(h[:], sigs[0].Signature))
}

func TestMultisigPreservesCallOrder(t *testing.T) {
	kp := testKeyPair(t)
	second, err := crypto.Random()
	require.NoError(t, err)
	third, err := crypto.Random()
	require.NoError(t, err)

	built := buildTestTransaction(t, kp, paymentOp(t, kp, 1000))
	require.NoError(t, built.Sign(protocol.Testnet, third, kp))
	require.NoError(t, built.Sign(protocol.Testnet, second))

	sigs := built.Signatures()
	require.Len(t, sigs, 3)
	assert.Equal(t, third.Hint(), sigs[0].Hint)
	assert.Equal(t, kp.Hint(), sigs[1].Hint)
	assert.Equal(t, second.Hint(), sigs[2].Hint)
}

func TestSignEnforcesSignatureLimit(t *testing.T) {
	kp := testKeyPair(t)
	built := buildTestTransaction(t, kp, paymentOp(t, kp, 1000))

	for i := 0; i < xdr.MaxSignaturesPerEnvelope; i++ {
		require.NoError(t, built.Sign(protocol.Testnet, kp))
	}
	assert.ErrorIs(t, built.Sign(protocol.Testnet, kp), ErrTooManySignatures)
}

func TestSignedEnvelopeBase64Idempotence(t *testing.T) {
	kp := testKeyPair(t)
	built := buildTestTransaction(t, kp, paymentOp(t, kp, 1000))
	require.NoError(t, built.Sign(protocol.Testnet, kp))

	b64, err := built.Base64()
	require.NoError(t, err)

	parsed, err := ParseTransactionBase64(b64)
	require.NoError(t, err)
	again, err := parsed.Base64()
	require.NoError(t, err)
	assert.Equal(t, b64, again)
}

func TestMutationAfterSigningClearsSignatures(t *testing.T) {
	kp := testKeyPair(t)

	t.Run("memo", func(t *testing.T) {
		built := buildTestTransaction(t, kp, paymentOp(t, kp, 1000))
		require.NoError(t, built.Sign(protocol.Testnet, kp))
		memo, err := xdr.MemoText("changed")
		require.NoError(t, err)
		built.SetMemo(memo)
		assert.Empty(t, built.Signatures())
	})

	t.Run("soroban data", func(t *testing.T) {
		built := buildTestTransaction(t, kp, paymentOp(t, kp, 1000))
		require.NoError(t, built.Sign(protocol.Testnet, kp))
		built.SetSorobanData(&xdr.SorobanTransactionData{ResourceFee: 100})
		assert.Empty(t, built.Signatures())
	})

	t.Run("preconditions", func(t *testing.T) {
		built := buildTestTransaction(t, kp, paymentOp(t, kp, 1000))
		require.NoError(t, built.Sign(protocol.Testnet, kp))
		built.SetPreconditions(xdr.Preconditions{Type: xdr.PrecondNone})
		assert.Empty(t, built.Signatures())
	})
}

func TestSignPayloadDecoration(t *testing.T) {
	kp := testKeyPair(t)
	built := buildTestTransaction(t, kp, paymentOp(t, kp, 1000))

	require.NoError(t, built.SignPayload(protocol.Testnet, kp, []byte{1, 2, 3, 4, 5}))
	sigs := built.Signatures()
	require.Len(t, sigs, 1)
	assert.Equal(t, xdr.SignatureHint{0xFC, 0x41, 0x00, 0x32}, sigs[0].Hint)

	h, err := built.Hash(protocol.Testnet)
	require.NoError(t, err)
	require.NoError(t, kp.Verify(h[:], sigs[0].Signature))
}

func TestFeeBump(t *testing.T) {
	kp := testKeyPair(t)
	feeSource, err := crypto.Random()
	require.NoError(t, err)

	inner := buildTestTransaction(t, kp, paymentOp(t, kp, 1000))
	require.NoError(t, inner.Sign(protocol.Testnet, kp))
	innerB64, err := inner.Base64()
	require.NoError(t, err)

	bump, err := BuildFeeBump(xdr.MuxedFromAccountID(feeSource.AccountID()), inner, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bump.Tx().Fee) // 500 x (1 op + 1)

	// Inner bytes and signatures travel untouched.
	wrapped, err := bump.InnerTransaction().Base64()
	require.NoError(t, err)
	assert.Equal(t, innerB64, wrapped)

	// Outer hash domain differs from the inner one.
	innerHash, err := inner.Hash(protocol.Testnet)
	require.NoError(t, err)
	outerHash, err := bump.Hash(protocol.Testnet)
	require.NoError(t, err)
	assert.NotEqual(t, innerHash, outerHash)

	require.NoError(t, bump.Sign(protocol.Testnet, feeSource))
	b64, err := bump.Base64()
	require.NoError(t, err)

	_, parsed, err := ParseBase64(b64)
	require.NoError(t, err)
	require.NotNil(t, parsed)
	again, err := parsed.Base64()
	require.NoError(t, err)
	assert.Equal(t, b64, again)
}

func TestFeeBumpValidation(t *testing.T) {
	kp := testKeyPair(t)
	source := xdr.MuxedFromAccountID(kp.AccountID())

	t.Run("unsigned inner", func(t *testing.T) {
		inner := buildTestTransaction(t, kp, paymentOp(t, kp, 1000))
		_, err := BuildFeeBump(source, inner, 200)
		assert.ErrorIs(t, err, ErrNotSigned)
	})

	t.Run("base fee below inner rate", func(t *testing.T) {
		inner, err := NewBuilder(source, 1).
			WithBaseFee(500).
			AddOperation(paymentOp(t, kp, 1)).
			Build()
		require.NoError(t, err)
		require.NoError(t, inner.Sign(protocol.Testnet, kp))
		_, err = BuildFeeBump(source, inner, 200)
		assert.ErrorIs(t, err, ErrFeeBumpFeeTooLow)
	})
}

func TestParseBase64RejectsGarbage(t *testing.T) {
	_, _, err := ParseBase64("not base64 at all!")
	require.Error(t, err)
}

func TestTxCopyDoesNotAliasOperationList(t *testing.T) {
	kp := testKeyPair(t)
	built := buildTestTransaction(t, kp, paymentOp(t, kp, 1000))
	require.NoError(t, built.Sign(protocol.Testnet, kp))

	before, err := built.Base64()
	require.NoError(t, err)

	// Replacing an element of the returned copy must not reach the held
	// transaction or invalidate its signatures.
	cp := built.Tx()
	cp.Operations[0] = xdr.Operation{
		Body: xdr.OperationBody{
			Type:         xdr.OperationTypeBumpSequence,
			BumpSequence: &xdr.BumpSequenceOp{BumpTo: 7},
		},
	}

	after, err := built.Base64()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, built.Signatures(), 1)
}

func TestFeeBumpTxCopyDoesNotAliasInnerLists(t *testing.T) {
	kp := testKeyPair(t)
	inner := buildTestTransaction(t, kp, paymentOp(t, kp, 1000))
	require.NoError(t, inner.Sign(protocol.Testnet, kp))

	bump, err := BuildFeeBump(xdr.MuxedFromAccountID(kp.AccountID()), inner, 200)
	require.NoError(t, err)
	require.NoError(t, bump.Sign(protocol.Testnet, kp))

	before, err := bump.Base64()
	require.NoError(t, err)

	cp := bump.Tx()
	cp.InnerTx.Tx.Operations[0] = xdr.Operation{
		Body: xdr.OperationBody{
			Type:         xdr.OperationTypeBumpSequence,
			BumpSequence: &xdr.BumpSequenceOp{BumpTo: 7},
		},
	}
	cp.InnerTx.Signatures[0] = xdr.DecoratedSignature{}

	after, err := bump.Base64()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

package xdr

import (
	"encoding/hex"
	"testing"

	"github.com/LeJamon/gostellar/internal/codec/xdr/serdes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccountID(fill byte) AccountID {
	var pub [32]byte
	for i := range pub {
		pub[i] = fill
	}
	return AccountIDFromEd25519(pub)
}

// roundtrip encodes v, decodes the bytes into out, and requires the whole
// buffer to be consumed.
func roundtrip(t *testing.T, v Encoder, out Decoder) {
	t.Helper()
	raw, err := Marshal(v)
	require.NoError(t, err)
	n, err := Unmarshal(raw, out)
	require.NoError(t, err)
	require.Equal(t, len(raw), n, "decode must consume the full encoding")
}

func TestMuxedAccountRoundtrip(t *testing.T) {
	plain := MuxedFromAccountID(testAccountID(0x11))
	muxed := MuxedAccount{Type: KeyTypeMuxedEd25519, Ed25519: plain.Ed25519, ID: 98765}

	for _, tc := range []struct {
		name string
		in   MuxedAccount
	}{
		{"plain", plain},
		{"muxed", muxed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var got MuxedAccount
			roundtrip(t, tc.in, &got)
			assert.Equal(t, tc.in, got)

			parsed, err := MuxedFromAddress(tc.in.Address())
			require.NoError(t, err)
			assert.Equal(t, tc.in, parsed)
		})
	}
}

func TestMemoRoundtrip(t *testing.T) {
	text, err := MemoText("twenty eight characters max!")
	require.NoError(t, err)
	var h Hash
	h[0], h[31] = 0xAA, 0xBB

	memos := []Memo{
		MemoNone(),
		text,
		MemoID(0xDEADBEEF),
		MemoHash(h),
		MemoReturn(h),
	}
	for _, m := range memos {
		var got Memo
		roundtrip(t, m, &got)
		assert.Equal(t, m, got)
	}

	_, err = MemoText("this memo is longer than twenty eight bytes")
	require.Error(t, err)
}

func TestAssetRoundtrip(t *testing.T) {
	issuer := testAccountID(0x22)

	usd, err := CreditAsset("USD", issuer)
	require.NoError(t, err)
	long, err := CreditAsset("FRANKLINS", issuer)
	require.NoError(t, err)

	for _, a := range []Asset{NativeAsset(), usd, long} {
		var got Asset
		roundtrip(t, a, &got)
		assert.Equal(t, a, got)
	}

	assert.Equal(t, "USD", usd.Code())
	assert.Equal(t, "FRANKLINS", long.Code())
	assert.Equal(t, "XLM", NativeAsset().Code())
}

func TestSignerKeyRoundtrip(t *testing.T) {
	var key Uint256
	key[5] = 0x77

	keys := []SignerKey{
		{Type: SignerKeyTypeEd25519, Ed25519: key},
		{Type: SignerKeyTypePreAuthTx, PreAuthTx: key},
		{Type: SignerKeyTypeHashX, HashX: key},
		{
			Type: SignerKeyTypeEd25519SignedPayload,
			SignedPayload: &SignerKeyEd25519SignedPayload{
				Ed25519: key,
				Payload: []byte{1, 2, 3, 4, 5},
			},
		},
	}
	for _, k := range keys {
		var got SignerKey
		roundtrip(t, k, &got)
		assert.Equal(t, k, got)
	}
}

func TestPreconditionsRoundtrip(t *testing.T) {
	minSeq := SequenceNumber(42)
	var key Uint256
	key[0] = 1

	conds := []Preconditions{
		{Type: PrecondNone},
		{Type: PrecondTime, TimeBounds: &TimeBounds{MinTime: 100, MaxTime: 200}},
		{
			Type: PrecondV2,
			V2: &PreconditionsV2{
				TimeBounds:      &TimeBounds{MinTime: 1, MaxTime: 2},
				LedgerBounds:    &LedgerBounds{MinLedger: 10, MaxLedger: 20},
				MinSeqNum:       &minSeq,
				MinSeqAge:       Duration(3600),
				MinSeqLedgerGap: 5,
				ExtraSigners:    []SignerKey{{Type: SignerKeyTypeEd25519, Ed25519: key}},
			},
		},
		{Type: PrecondV2, V2: &PreconditionsV2{}},
	}
	for _, c := range conds {
		var got Preconditions
		roundtrip(t, c, &got)
		assert.Equal(t, c, got)
	}
}

func TestPreconditionsRejectTooManyExtraSigners(t *testing.T) {
	var key Uint256
	sk := SignerKey{Type: SignerKeyTypeEd25519, Ed25519: key}
	pc := Preconditions{
		Type: PrecondV2,
		V2:   &PreconditionsV2{ExtraSigners: []SignerKey{sk, sk, sk}},
	}
	_, err := Marshal(pc)
	require.ErrorIs(t, err, serdes.ErrValueTooLong)
}

func TestOperationRoundtrip(t *testing.T) {
	dest := testAccountID(0x33)
	muxedDest := MuxedFromAccountID(dest)
	usd, err := CreditAsset("USD", testAccountID(0x44))
	require.NoError(t, err)

	weight := uint32(10)
	domain := "example.com"
	var contract Hash
	contract[0] = 0xC0

	ops := []Operation{
		{Body: OperationBody{Type: OperationTypeCreateAccount, CreateAccount: &CreateAccountOp{
			Destination:     dest,
			StartingBalance: 100_0000000,
		}}},
		{
			SourceAccount: &muxedDest,
			Body: OperationBody{Type: OperationTypePayment, Payment: &PaymentOp{
				Destination: muxedDest,
				Asset:       usd,
				Amount:      25_5000000,
			}},
		},
		{Body: OperationBody{Type: OperationTypeChangeTrust, ChangeTrust: &ChangeTrustOp{
			Line:  usd,
			Limit: 922337203685,
		}}},
		{Body: OperationBody{Type: OperationTypeAccountMerge, Destination: &muxedDest}},
		{Body: OperationBody{Type: OperationTypeManageData, ManageData: &ManageDataOp{
			DataName:  "config",
			DataValue: []byte("value"),
		}}},
		{Body: OperationBody{Type: OperationTypeManageData, ManageData: &ManageDataOp{
			DataName: "tombstone",
		}}},
		{Body: OperationBody{Type: OperationTypeBumpSequence, BumpSequence: &BumpSequenceOp{
			BumpTo: 123456789,
		}}},
		{Body: OperationBody{Type: OperationTypeSetOptions, SetOptions: &SetOptionsOp{
			MasterWeight: &weight,
			HomeDomain:   &domain,
			Signer: &Signer{
				Key:    SignerKey{Type: SignerKeyTypeEd25519, Ed25519: dest.Ed25519},
				Weight: 5,
			},
		}}},
		{Body: OperationBody{Type: OperationTypeSetOptions, SetOptions: &SetOptionsOp{}}},
		{Body: OperationBody{Type: OperationTypeInvokeHostFunction, InvokeHostFunction: &InvokeHostFunctionOp{
			HostFunction: HostFunction{
				Type: HostFunctionTypeInvokeContract,
				InvokeContract: &InvokeContractArgs{
					ContractAddress: SCAddress{Type: SCAddressTypeContract, ContractID: &contract},
					FunctionName:    "transfer",
					Args:            []SCVal{ScvU32(1), ScvSymbol("to")},
				},
			},
			Auth: []SorobanAuthorizationEntry{},
		}}},
		{Body: OperationBody{Type: OperationTypeExtendFootprintTtl, ExtendFootprintTtl: &ExtendFootprintTtlOp{
			ExtendTo: 1000,
		}}},
		{Body: OperationBody{Type: OperationTypeRestoreFootprint, RestoreFootprint: &RestoreFootprintOp{}}},
	}

	for _, op := range ops {
		var got Operation
		roundtrip(t, op, &got)
		assert.Equal(t, op, got)
	}
}

func TestSCValRoundtrip(t *testing.T) {
	account := testAccountID(0x55)
	var contract Hash
	contract[7] = 7

	inner := SCVec{ScvU32(1), ScvVoid(), ScvBool(true)}
	m := SCMap{
		{Key: ScvSymbol("k1"), Val: ScvI64(-5)},
		{Key: ScvSymbol("k2"), Val: ScvVec(inner)},
	}

	u128 := UInt128Parts{Hi: 1, Lo: 2}
	i128 := Int128Parts{Hi: -1, Lo: 0xFFFFFFFFFFFFFFFF}
	u256 := UInt256Parts{HiHi: 1, HiLo: 2, LoHi: 3, LoLo: 4}
	i256 := Int256Parts{HiHi: -1, HiLo: 2, LoHi: 3, LoLo: 4}

	vals := []SCVal{
		ScvBool(true),
		ScvBool(false),
		ScvVoid(),
		ScvU32(7),
		ScvI32(-7),
		ScvU64(1 << 40),
		ScvI64(-(1 << 40)),
		{Type: SCValTypeTimepoint, Time: 1700000000},
		{Type: SCValTypeDuration, Dur: 3600},
		{Type: SCValTypeU128, U128: &u128},
		{Type: SCValTypeI128, I128: &i128},
		{Type: SCValTypeU256, U256: &u256},
		{Type: SCValTypeI256, I256: &i256},
		ScvBytes([]byte{9, 8, 7}),
		ScvString("hello"),
		ScvSymbol("sym"),
		ScvVec(inner),
		ScvMap(m),
		ScvAddress(SCAddress{Type: SCAddressTypeAccount, AccountID: &account}),
		ScvAddress(SCAddress{Type: SCAddressTypeContract, ContractID: &contract}),
	}

	for _, v := range vals {
		var got SCVal
		roundtrip(t, v, &got)
		assert.Equal(t, v, got)
	}
}

func TestSorobanDataRoundtrip(t *testing.T) {
	var contract Hash
	contract[1] = 0xC1

	data := SorobanTransactionData{
		Resources: SorobanResources{
			Footprint: LedgerFootprint{
				ReadOnly: []LedgerKey{
					{Type: LedgerEntryTypeAccount, Account: &LedgerKeyAccount{AccountID: testAccountID(0x66)}},
					{Type: LedgerEntryTypeContractCode, ContractCode: &LedgerKeyContractCode{Hash: contract}},
				},
				ReadWrite: []LedgerKey{
					{Type: LedgerEntryTypeContractData, ContractData: &LedgerKeyContractData{
						Contract:   SCAddress{Type: SCAddressTypeContract, ContractID: &contract},
						Key:        ScvSymbol("COUNTER"),
						Durability: ContractDataPersistent,
					}},
				},
			},
			Instructions:  4_000_000,
			DiskReadBytes: 2000,
			WriteBytes:    400,
		},
		ResourceFee: 123456,
	}

	var got SorobanTransactionData
	roundtrip(t, data, &got)
	// Decoded footprints are append-built; normalize before comparing.
	assert.Equal(t, data.Resources.Instructions, got.Resources.Instructions)
	assert.Equal(t, data.Resources.Footprint.ReadOnly, got.Resources.Footprint.ReadOnly)
	assert.Equal(t, data.Resources.Footprint.ReadWrite, got.Resources.Footprint.ReadWrite)
	assert.Equal(t, data.ResourceFee, got.ResourceFee)
}

func TestSorobanAuthEntryRoundtrip(t *testing.T) {
	var contract Hash
	contract[2] = 0xC2
	addr := SCAddress{Type: SCAddressTypeContract, ContractID: &contract}

	entry := SorobanAuthorizationEntry{
		Credentials: SorobanCredentials{
			Type: SorobanCredentialsAddress,
			Address: &SorobanAddressCredentials{
				Address:                   addr,
				Nonce:                     555,
				SignatureExpirationLedger: 1000,
				Signature:                 ScvVoid(),
			},
		},
		RootInvocation: SorobanAuthorizedInvocation{
			Function: SorobanAuthorizedFunction{
				Type: SorobanAuthorizedFunctionContractFn,
				ContractFn: &InvokeContractArgs{
					ContractAddress: addr,
					FunctionName:    "swap",
					Args:            []SCVal{ScvU64(10)},
				},
			},
			SubInvocations: []SorobanAuthorizedInvocation{
				{
					Function: SorobanAuthorizedFunction{
						Type: SorobanAuthorizedFunctionContractFn,
						ContractFn: &InvokeContractArgs{
							ContractAddress: addr,
							FunctionName:    "transfer",
							Args:            []SCVal{},
						},
					},
					SubInvocations: []SorobanAuthorizedInvocation{},
				},
			},
		},
	}

	var got SorobanAuthorizationEntry
	roundtrip(t, entry, &got)
	assert.Equal(t, entry, got)
}

func buildTestEnvelope(t *testing.T) TransactionEnvelope {
	t.Helper()
	dest := MuxedFromAccountID(testAccountID(0x77))
	tx := Transaction{
		SourceAccount: MuxedFromAccountID(testAccountID(0x88)),
		Fee:           200,
		SeqNum:        1234567,
		Cond:          Preconditions{Type: PrecondTime, TimeBounds: &TimeBounds{MaxTime: 99999}},
		Memo:          MemoID(42),
		Operations: []Operation{
			{Body: OperationBody{Type: OperationTypePayment, Payment: &PaymentOp{
				Destination: dest,
				Asset:       NativeAsset(),
				Amount:      10_0000000,
			}}},
		},
	}
	return TransactionEnvelope{
		Type: EnvelopeTypeTx,
		V1: &TransactionV1Envelope{
			Tx: tx,
			Signatures: []DecoratedSignature{
				{Hint: SignatureHint{1, 2, 3, 4}, Signature: make([]byte, 64)},
			},
		},
	}
}

func TestEnvelopeBase64Idempotence(t *testing.T) {
	env := buildTestEnvelope(t)

	b64, err := MarshalBase64(env)
	require.NoError(t, err)

	var decoded TransactionEnvelope
	require.NoError(t, UnmarshalBase64(b64, &decoded))

	again, err := MarshalBase64(decoded)
	require.NoError(t, err)
	assert.Equal(t, b64, again)
}

func TestFeeBumpEnvelopeBase64Idempotence(t *testing.T) {
	inner := buildTestEnvelope(t)
	env := TransactionEnvelope{
		Type: EnvelopeTypeTxFeeBump,
		FeeBump: &FeeBumpTransactionEnvelope{
			Tx: FeeBumpTransaction{
				FeeSource: MuxedFromAccountID(testAccountID(0x99)),
				Fee:       400,
				InnerTx:   *inner.V1,
			},
			Signatures: []DecoratedSignature{
				{Hint: SignatureHint{5, 6, 7, 8}, Signature: make([]byte, 64)},
			},
		},
	}

	b64, err := MarshalBase64(env)
	require.NoError(t, err)

	var decoded TransactionEnvelope
	require.NoError(t, UnmarshalBase64(b64, &decoded))

	again, err := MarshalBase64(decoded)
	require.NoError(t, err)
	assert.Equal(t, b64, again)
}

func TestDecodeUnknownDiscriminants(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		dec  Decoder
		want error
	}{
		{
			name: "memo type 9",
			hex:  "00000009",
			dec:  new(Memo),
			want: ErrUnknownDiscriminant,
		},
		{
			name: "asset type 7",
			hex:  "00000007",
			dec:  new(Asset),
			want: ErrUnknownDiscriminant,
		},
		{
			name: "operation type 99",
			hex:  "00000000" + "00000063", // no source, body type 99
			dec:  new(Operation),
			want: ErrUnknownDiscriminant,
		},
		{
			name: "operation type valid but unimplemented",
			hex:  "00000000" + "00000003", // manage sell offer
			dec:  new(Operation),
			want: ErrUnsupported,
		},
		{
			name: "sc val error arm unsupported",
			hex:  "00000002",
			dec:  new(SCVal),
			want: ErrUnsupported,
		},
		{
			name: "legacy v0 envelope unsupported",
			hex:  "00000000",
			dec:  new(TransactionEnvelope),
			want: ErrUnsupported,
		},
		{
			name: "signer key type 12",
			hex:  "0000000c",
			dec:  new(SignerKey),
			want: ErrUnknownDiscriminant,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := hex.DecodeString(tc.hex)
			require.NoError(t, err)
			_, err = Unmarshal(raw, tc.dec)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecodePresenceFlagMustBeBool(t *testing.T) {
	// Operation with presence flag 2 for the optional source account.
	raw, err := hex.DecodeString("00000002")
	require.NoError(t, err)
	_, err = Unmarshal(raw, new(Operation))
	require.ErrorIs(t, err, serdes.ErrBoolEncoding)
}

func TestUnmarshalBase64RejectsTrailingBytes(t *testing.T) {
	// Eight zero bytes: a MEMO_NONE followed by four bytes of junk.
	var got Memo
	err := UnmarshalBase64("AAAAAAAAAAA=", &got)
	require.ErrorIs(t, err, ErrTrailingBytes)
}

func TestDecodeUnderrunSurfaces(t *testing.T) {
	// A transaction cut off mid-source-account.
	raw, err := hex.DecodeString("000000000102")
	require.NoError(t, err)
	_, err = Unmarshal(raw, new(Transaction))
	require.ErrorIs(t, err, serdes.ErrUnexpectedEOF)
}

func TestSCValDecodeDepthLimit(t *testing.T) {
	// A vec wrapped in itself past the depth cap must be refused, while the
	// same shape below the cap decodes fine.
	nest := func(levels int) SCVal {
		v := ScvVoid()
		for i := 0; i < levels; i++ {
			v = ScvVec(SCVec{v})
		}
		return v
	}

	raw, err := Marshal(nest(maxNestingDepth + 10))
	require.NoError(t, err)
	_, err = Unmarshal(raw, new(SCVal))
	require.ErrorIs(t, err, ErrNestingTooDeep)

	shallow := nest(10)
	var got SCVal
	roundtrip(t, shallow, &got)
	assert.Equal(t, shallow, got)
}

func TestAuthorizedInvocationDecodeDepthLimit(t *testing.T) {
	var contract Hash
	contract[0] = 0xD1
	addr := SCAddress{Type: SCAddressTypeContract, ContractID: &contract}
	fn := SorobanAuthorizedFunction{
		Type: SorobanAuthorizedFunctionContractFn,
		ContractFn: &InvokeContractArgs{
			ContractAddress: addr,
			FunctionName:    "f",
		},
	}

	inv := SorobanAuthorizedInvocation{Function: fn}
	for i := 0; i < maxNestingDepth+10; i++ {
		inv = SorobanAuthorizedInvocation{
			Function:       fn,
			SubInvocations: []SorobanAuthorizedInvocation{inv},
		}
	}

	raw, err := Marshal(inv)
	require.NoError(t, err)
	_, err = Unmarshal(raw, new(SorobanAuthorizedInvocation))
	require.ErrorIs(t, err, ErrNestingTooDeep)
}

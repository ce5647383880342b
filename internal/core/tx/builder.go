package tx

import (
	"errors"
	"fmt"
	"math"

	"github.com/LeJamon/gostellar/internal/codec/xdr"
)

// MinBaseFee is the network minimum per-operation fee in stroops.
const MinBaseFee = 100

var (
	// ErrNoOperations is returned when building a transaction with an
	// empty operation list.
	ErrNoOperations = errors.New("transaction requires at least one operation")
	// ErrTooManyOperations is returned when the operation list exceeds the
	// protocol limit.
	ErrTooManyOperations = errors.New("too many operations")
	// ErrBaseFeeTooLow is returned when the base fee is below the network
	// minimum.
	ErrBaseFeeTooLow = errors.New("base fee below network minimum")
	// ErrFeeOverflow is returned when base fee times operation count does
	// not fit the fee field.
	ErrFeeOverflow = errors.New("total fee overflows")
)

// Builder accumulates the pieces of a transaction and assembles them into a
// canonical value. The zero Builder is not usable; start from NewBuilder.
type Builder struct {
	source      xdr.MuxedAccount
	seqNum      xdr.SequenceNumber
	baseFee     uint32
	memo        xdr.Memo
	cond        xdr.Preconditions
	ops         []xdr.Operation
	sorobanData *xdr.SorobanTransactionData
}

// NewBuilder starts a transaction for the given source account and sequence
// number, at the minimum base fee with no memo and no preconditions.
func NewBuilder(source xdr.MuxedAccount, seqNum xdr.SequenceNumber) *Builder {
	return &Builder{
		source:  source,
		seqNum:  seqNum,
		baseFee: MinBaseFee,
		memo:    xdr.MemoNone(),
	}
}

// WithBaseFee sets the per-operation fee in stroops. The total fee is the
// base fee times the operation count.
func (b *Builder) WithBaseFee(fee uint32) *Builder {
	b.baseFee = fee
	return b
}

// WithMemo attaches a memo.
func (b *Builder) WithMemo(memo xdr.Memo) *Builder {
	b.memo = memo
	return b
}

// WithPreconditions sets the full precondition set.
func (b *Builder) WithPreconditions(cond xdr.Preconditions) *Builder {
	b.cond = cond
	return b
}

// WithTimeBounds restricts validity to the given ledger close time window.
// A zero max means no upper bound.
func (b *Builder) WithTimeBounds(minTime, maxTime xdr.TimePoint) *Builder {
	b.cond = xdr.Preconditions{
		Type:       xdr.PrecondTime,
		TimeBounds: &xdr.TimeBounds{MinTime: minTime, MaxTime: maxTime},
	}
	return b
}

// AddOperation appends an operation. Operations execute in the order added.
func (b *Builder) AddOperation(op xdr.Operation) *Builder {
	b.ops = append(b.ops, op)
	return b
}

// WithSorobanData attaches the Soroban resource side-car.
func (b *Builder) WithSorobanData(data *xdr.SorobanTransactionData) *Builder {
	b.sorobanData = data
	return b
}

// Build validates the accumulated pieces and assembles the unsigned
// transaction.
func (b *Builder) Build() (*Transaction, error) {
	if len(b.ops) == 0 {
		return nil, ErrNoOperations
	}
	if len(b.ops) > xdr.MaxOperationsPerTransaction {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyOperations, len(b.ops), xdr.MaxOperationsPerTransaction)
	}
	if b.baseFee < MinBaseFee {
		return nil, fmt.Errorf("%w: %d < %d", ErrBaseFeeTooLow, b.baseFee, MinBaseFee)
	}
	fee := uint64(b.baseFee) * uint64(len(b.ops))
	if fee > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d x %d operations", ErrFeeOverflow, b.baseFee, len(b.ops))
	}

	ext := xdr.TransactionExt{V: 0}
	if b.sorobanData != nil {
		ext = xdr.TransactionExt{V: 1, SorobanData: b.sorobanData}
	}

	ops := make([]xdr.Operation, len(b.ops))
	copy(ops, b.ops)

	return &Transaction{
		tx: xdr.Transaction{
			SourceAccount: b.source,
			Fee:           uint32(fee),
			SeqNum:        b.seqNum,
			Cond:          b.cond,
			Memo:          b.memo,
			Operations:    ops,
			Ext:           ext,
		},
	}, nil
}

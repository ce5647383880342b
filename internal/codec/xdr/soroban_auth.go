package xdr

import (
	"fmt"
	"math"

	"github.com/LeJamon/gostellar/internal/codec/xdr/serdes"
)

// SorobanCredentialsType discriminates the credentials union.
type SorobanCredentialsType int32

const (
	// SorobanCredentialsSourceAccount means the transaction signature
	// itself authorizes the invocation.
	SorobanCredentialsSourceAccount SorobanCredentialsType = 0
	// SorobanCredentialsAddress carries a separate address signature.
	SorobanCredentialsAddress SorobanCredentialsType = 1
)

// SorobanAddressCredentials is an address-level authorization with its own
// replay protection and expiration.
type SorobanAddressCredentials struct {
	Address                   SCAddress
	Nonce                     int64
	SignatureExpirationLedger uint32
	Signature                 SCVal
}

// EncodeTo writes all four fields.
func (c SorobanAddressCredentials) EncodeTo(s *serdes.BinarySerializer) error {
	if err := c.Address.EncodeTo(s); err != nil {
		return err
	}
	s.WriteInt64(c.Nonce)
	s.WriteUint32(c.SignatureExpirationLedger)
	return c.Signature.EncodeTo(s)
}

// DecodeFrom reads all four fields.
func (c *SorobanAddressCredentials) DecodeFrom(p *serdes.BinaryParser) error {
	if err := c.Address.DecodeFrom(p); err != nil {
		return err
	}
	var err error
	if c.Nonce, err = p.ReadInt64(); err != nil {
		return err
	}
	if c.SignatureExpirationLedger, err = p.ReadUint32(); err != nil {
		return err
	}
	return c.Signature.DecodeFrom(p)
}

// SorobanCredentials is the union of authorization credential forms.
type SorobanCredentials struct {
	Type    SorobanCredentialsType
	Address *SorobanAddressCredentials
}

// EncodeTo writes the discriminant and the active arm.
func (c SorobanCredentials) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(int32(c.Type))
	switch c.Type {
	case SorobanCredentialsSourceAccount:
		return nil
	case SorobanCredentialsAddress:
		if c.Address == nil {
			return fmt.Errorf("soroban credentials: nil address arm")
		}
		return c.Address.EncodeTo(s)
	default:
		return fmt.Errorf("%w: soroban credentials type %d", ErrUnknownDiscriminant, c.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (c *SorobanCredentials) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	*c = SorobanCredentials{Type: SorobanCredentialsType(d)}
	switch c.Type {
	case SorobanCredentialsSourceAccount:
		return nil
	case SorobanCredentialsAddress:
		c.Address = new(SorobanAddressCredentials)
		return c.Address.DecodeFrom(p)
	default:
		return fmt.Errorf("%w: soroban credentials type %d", ErrUnknownDiscriminant, d)
	}
}

// InvokeContractArgs names a contract function and its arguments.
type InvokeContractArgs struct {
	ContractAddress SCAddress
	FunctionName    string
	Args            []SCVal
}

// EncodeTo writes the address, symbol and argument list.
func (a InvokeContractArgs) EncodeTo(s *serdes.BinarySerializer) error {
	if err := a.ContractAddress.EncodeTo(s); err != nil {
		return err
	}
	if err := s.WriteString(a.FunctionName, MaxSymbolLength); err != nil {
		return err
	}
	if err := encodeVecLen(s, len(a.Args), math.MaxUint32); err != nil {
		return err
	}
	for i := range a.Args {
		if err := a.Args[i].EncodeTo(s); err != nil {
			return err
		}
	}
	return nil
}

// DecodeFrom reads the address, symbol and argument list.
func (a *InvokeContractArgs) DecodeFrom(p *serdes.BinaryParser) error {
	if err := a.ContractAddress.DecodeFrom(p); err != nil {
		return err
	}
	var err error
	if a.FunctionName, err = p.ReadString(MaxSymbolLength); err != nil {
		return err
	}
	n, err := decodeVecLen(p, math.MaxUint32)
	if err != nil {
		return err
	}
	a.Args = make([]SCVal, n)
	for i := 0; i < n; i++ {
		if err := a.Args[i].DecodeFrom(p); err != nil {
			return err
		}
	}
	return nil
}

// SorobanAuthorizedFunctionType discriminates what an authorization entry
// authorizes.
type SorobanAuthorizedFunctionType int32

const (
	// SorobanAuthorizedFunctionContractFn authorizes a contract call.
	SorobanAuthorizedFunctionContractFn SorobanAuthorizedFunctionType = 0
	// SorobanAuthorizedFunctionCreateContract authorizes a deployment.
	SorobanAuthorizedFunctionCreateContract SorobanAuthorizedFunctionType = 1
	// SorobanAuthorizedFunctionCreateContractV2 authorizes a deployment
	// with constructor arguments.
	SorobanAuthorizedFunctionCreateContractV2 SorobanAuthorizedFunctionType = 2
)

// SorobanAuthorizedFunction is the union of authorizable targets.
type SorobanAuthorizedFunction struct {
	Type       SorobanAuthorizedFunctionType
	ContractFn *InvokeContractArgs
}

// EncodeTo writes the discriminant and the active arm.
func (f SorobanAuthorizedFunction) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(int32(f.Type))
	switch f.Type {
	case SorobanAuthorizedFunctionContractFn:
		if f.ContractFn == nil {
			return fmt.Errorf("authorized function: nil contract fn arm")
		}
		return f.ContractFn.EncodeTo(s)
	case SorobanAuthorizedFunctionCreateContract, SorobanAuthorizedFunctionCreateContractV2:
		return fmt.Errorf("%w: authorized function type %d", ErrUnsupported, f.Type)
	default:
		return fmt.Errorf("%w: authorized function type %d", ErrUnknownDiscriminant, f.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (f *SorobanAuthorizedFunction) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	*f = SorobanAuthorizedFunction{Type: SorobanAuthorizedFunctionType(d)}
	switch f.Type {
	case SorobanAuthorizedFunctionContractFn:
		f.ContractFn = new(InvokeContractArgs)
		return f.ContractFn.DecodeFrom(p)
	case SorobanAuthorizedFunctionCreateContract, SorobanAuthorizedFunctionCreateContractV2:
		return fmt.Errorf("%w: authorized function type %d", ErrUnsupported, d)
	default:
		return fmt.Errorf("%w: authorized function type %d", ErrUnknownDiscriminant, d)
	}
}

// SorobanAuthorizedInvocation is the call tree an authorization covers:
// one function plus the sub-invocations it may make.
type SorobanAuthorizedInvocation struct {
	Function       SorobanAuthorizedFunction
	SubInvocations []SorobanAuthorizedInvocation
}

// EncodeTo writes the function and the sub-invocation list recursively.
func (inv SorobanAuthorizedInvocation) EncodeTo(s *serdes.BinarySerializer) error {
	if err := inv.Function.EncodeTo(s); err != nil {
		return err
	}
	if err := encodeVecLen(s, len(inv.SubInvocations), math.MaxUint32); err != nil {
		return err
	}
	for i := range inv.SubInvocations {
		if err := inv.SubInvocations[i].EncodeTo(s); err != nil {
			return err
		}
	}
	return nil
}

// DecodeFrom reads the function and the sub-invocation list recursively.
func (inv *SorobanAuthorizedInvocation) DecodeFrom(p *serdes.BinaryParser) error {
	return inv.decodeFrom(p, 0)
}

func (inv *SorobanAuthorizedInvocation) decodeFrom(p *serdes.BinaryParser, depth int) error {
	if depth >= maxNestingDepth {
		return fmt.Errorf("%w: authorized invocation", ErrNestingTooDeep)
	}
	if err := inv.Function.DecodeFrom(p); err != nil {
		return err
	}
	n, err := decodeVecLen(p, math.MaxUint32)
	if err != nil {
		return err
	}
	inv.SubInvocations = make([]SorobanAuthorizedInvocation, n)
	for i := 0; i < n; i++ {
		if err := inv.SubInvocations[i].decodeFrom(p, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// SorobanAuthorizationEntry is one independently addressable authorization
// attached to a contract transaction.
type SorobanAuthorizationEntry struct {
	Credentials    SorobanCredentials
	RootInvocation SorobanAuthorizedInvocation
}

// EncodeTo writes credentials then the invocation tree.
func (e SorobanAuthorizationEntry) EncodeTo(s *serdes.BinarySerializer) error {
	if err := e.Credentials.EncodeTo(s); err != nil {
		return err
	}
	return e.RootInvocation.EncodeTo(s)
}

// DecodeFrom reads credentials then the invocation tree.
func (e *SorobanAuthorizationEntry) DecodeFrom(p *serdes.BinaryParser) error {
	if err := e.Credentials.DecodeFrom(p); err != nil {
		return err
	}
	return e.RootInvocation.DecodeFrom(p)
}

// HostFunctionType discriminates the host function union.
type HostFunctionType int32

const (
	// HostFunctionTypeInvokeContract calls a deployed contract.
	HostFunctionTypeInvokeContract HostFunctionType = 0
	// HostFunctionTypeCreateContract deploys a contract.
	HostFunctionTypeCreateContract HostFunctionType = 1
	// HostFunctionTypeUploadContractWasm uploads a contract binary.
	HostFunctionTypeUploadContractWasm HostFunctionType = 2
	// HostFunctionTypeCreateContractV2 deploys with constructor arguments.
	HostFunctionTypeCreateContractV2 HostFunctionType = 3
)

// HostFunction is the union of operations a contract transaction may ask
// the host to perform.
type HostFunction struct {
	Type           HostFunctionType
	InvokeContract *InvokeContractArgs
	Wasm           []byte
}

// EncodeTo writes the discriminant and the active arm.
func (h HostFunction) EncodeTo(s *serdes.BinarySerializer) error {
	s.WriteInt32(int32(h.Type))
	switch h.Type {
	case HostFunctionTypeInvokeContract:
		if h.InvokeContract == nil {
			return fmt.Errorf("host function: nil invoke contract arm")
		}
		return h.InvokeContract.EncodeTo(s)
	case HostFunctionTypeUploadContractWasm:
		return s.WriteVarOpaque(h.Wasm, math.MaxUint32)
	case HostFunctionTypeCreateContract, HostFunctionTypeCreateContractV2:
		return fmt.Errorf("%w: host function type %d", ErrUnsupported, h.Type)
	default:
		return fmt.Errorf("%w: host function type %d", ErrUnknownDiscriminant, h.Type)
	}
}

// DecodeFrom reads the discriminant and dispatches to the matching arm.
func (h *HostFunction) DecodeFrom(p *serdes.BinaryParser) error {
	d, err := p.ReadInt32()
	if err != nil {
		return err
	}
	*h = HostFunction{Type: HostFunctionType(d)}
	switch h.Type {
	case HostFunctionTypeInvokeContract:
		h.InvokeContract = new(InvokeContractArgs)
		return h.InvokeContract.DecodeFrom(p)
	case HostFunctionTypeUploadContractWasm:
		h.Wasm, err = p.ReadVarOpaque(math.MaxUint32)
		return err
	case HostFunctionTypeCreateContract, HostFunctionTypeCreateContractV2:
		return fmt.Errorf("%w: host function type %d", ErrUnsupported, d)
	default:
		return fmt.Errorf("%w: host function type %d", ErrUnknownDiscriminant, d)
	}
}

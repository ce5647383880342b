// Package protocol defines the network descriptors that scope every hash
// and signature. A Network is an immutable value passed explicitly to
// hashing and signing calls; there is no process-wide network state.
package protocol

import "crypto/sha256"

// Network identifies one chain by its passphrase. The passphrase's SHA-256
// digest is mixed into every signature payload, so a signature for one
// network can never be replayed on another.
type Network struct {
	Passphrase string
}

// Well-known networks.
var (
	Public     = Network{Passphrase: "Public Global Stellar Network ; September 2015"}
	Testnet    = Network{Passphrase: "Test SDF Network ; September 2015"}
	Futurenet  = Network{Passphrase: "Test SDF Future Network ; October 2022"}
	Standalone = Network{Passphrase: "Standalone Network ; February 2017"}
)

// ID returns the 32-byte network id that prefixes signature payloads.
func (n Network) ID() [32]byte {
	return sha256.Sum256([]byte(n.Passphrase))
}

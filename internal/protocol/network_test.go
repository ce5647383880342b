package protocol

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetworkIDs(t *testing.T) {
	// Published digests of the well-known passphrases.
	assert.Equal(t,
		"7ac33997544e3175d266bd022439b22cdb16508c01163f26e5cb2a3e1045a979",
		hex.EncodeToString(mustID(Public)))
	assert.Equal(t,
		"cee0302d59844d32bdca915c8203dd44b33fbb7edc19051ea37abedf28ecd472",
		hex.EncodeToString(mustID(Testnet)))
}

func mustID(n Network) []byte {
	id := n.ID()
	return id[:]
}

func TestDistinctNetworksProduceDistinctIDs(t *testing.T) {
	assert.NotEqual(t, Public.ID(), Testnet.ID())
	assert.NotEqual(t, Testnet.ID(), Futurenet.ID())

	custom := Network{Passphrase: "my private network"}
	assert.NotEqual(t, custom.ID(), Public.ID())
	// Same passphrase, same id: the descriptor is a pure value.
	assert.Equal(t, custom.ID(), Network{Passphrase: "my private network"}.ID())
}

// Package config loads tool configuration from file, environment and
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LeJamon/gostellar/internal/protocol"
)

// Known network names accepted in configuration.
const (
	NetworkPublic     = "public"
	NetworkTestnet    = "testnet"
	NetworkFuturenet  = "futurenet"
	NetworkStandalone = "standalone"
)

var (
	// ErrUnknownNetwork is returned when the network name is not one of
	// the known networks and no custom passphrase is set.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrConflictingNetwork is returned when both a known network name and
	// a custom passphrase are set.
	ErrConflictingNetwork = errors.New("network and network_passphrase are mutually exclusive")
)

// Config carries the settings shared by all commands.
type Config struct {
	// Network is a well-known network name. Ignored when
	// NetworkPassphrase is set.
	Network string `mapstructure:"network"`
	// NetworkPassphrase selects a custom network by its passphrase.
	NetworkPassphrase string `mapstructure:"network_passphrase"`
	// KeystorePath is the directory holding the sealed key database.
	KeystorePath string `mapstructure:"keystore_path"`

	configPath string
}

// ResolveNetwork returns the Network value the configuration names.
func (c *Config) ResolveNetwork() (protocol.Network, error) {
	if c.NetworkPassphrase != "" {
		if c.Network != "" {
			return protocol.Network{}, ErrConflictingNetwork
		}
		return protocol.Network{Passphrase: c.NetworkPassphrase}, nil
	}
	switch c.Network {
	case NetworkPublic:
		return protocol.Public, nil
	case NetworkTestnet, "":
		return protocol.Testnet, nil
	case NetworkFuturenet:
		return protocol.Futurenet, nil
	case NetworkStandalone:
		return protocol.Standalone, nil
	default:
		return protocol.Network{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, c.Network)
	}
}

// GetConfigPath returns the file the configuration was loaded from, or empty
// when only defaults and environment were used.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// DefaultConfigPath returns the default configuration file location under
// the user's home directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "gostellar.toml"
	}
	return filepath.Join(home, ".gostellar", "gostellar.toml")
}

// DefaultKeystorePath returns the default keystore directory under the
// user's home directory.
func DefaultKeystorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "keystore"
	}
	return filepath.Join(home, ".gostellar", "keystore")
}

// Package cli implements the gostellar command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeJamon/gostellar/internal/config"
	"github.com/LeJamon/gostellar/internal/protocol"
	"github.com/LeJamon/gostellar/internal/storage/keystore"
)

var (
	// Global flags
	configFile   string
	networkName  string
	keystorePath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gostellar",
	Short: "gostellar - Stellar wire-format and signing toolkit in Go",
	Long: `gostellar works with the Stellar network's canonical formats: XDR
transaction envelopes, StrKey addresses and Ed25519 keys. It builds, decodes
and signs transactions and manages keys in an encrypted local keystore.`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&networkName, "network", "", "network name (public, testnet, futurenet, standalone)")
	rootCmd.PersistentFlags().StringVar(&keystorePath, "keystore", "", "keystore directory")
}

// loadConfig loads the configuration file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	path := configFile
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if networkName != "" {
		cfg.Network = networkName
		cfg.NetworkPassphrase = ""
	}
	if keystorePath != "" {
		cfg.KeystorePath = keystorePath
	}
	return cfg, nil
}

func resolveNetwork() (protocol.Network, error) {
	cfg, err := loadConfig()
	if err != nil {
		return protocol.Network{}, err
	}
	return cfg.ResolveNetwork()
}

func openKeystore() (*keystore.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.KeystorePath, 0o700); err != nil {
		return nil, fmt.Errorf("creating keystore directory: %w", err)
	}
	return keystore.Open(cfg.KeystorePath)
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from multiple sources in priority order:
// 1. Default values
// 2. Configuration file (gostellar.toml), if it exists
// 3. Environment variables (GOSTELLAR_ prefix)
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	usedPath := ""
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
			usedPath = configPath
		} else if configPath != DefaultConfigPath() {
			// An explicitly named file must exist; the default one is
			// optional.
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}
	}

	v.SetEnvPrefix("GOSTELLAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.configPath = usedPath

	if _, err := cfg.ResolveNetwork(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadDefaultConfig loads configuration from the default location.
func LoadDefaultConfig() (*Config, error) {
	return LoadConfig(DefaultConfigPath())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("network", "")
	v.SetDefault("network_passphrase", "")
	v.SetDefault("keystore_path", DefaultKeystorePath())
}

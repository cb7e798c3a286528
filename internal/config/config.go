// Package config loads and saves the wallet configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ManiReddyt/bitcli/internal/backend"
	"github.com/ManiReddyt/bitcli/internal/chain"
	"github.com/ManiReddyt/bitcli/internal/storage"
)

// Config holds all configuration for the wallet.
type Config struct {
	// Network is the Bitcoin network (mainnet or testnet).
	Network chain.Network `yaml:"network"`

	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`

	// Backend is the blockchain explorer API configuration.
	Backend backend.Config `yaml:"backend"`

	// Fees holds fee selection settings.
	Fees FeesConfig `yaml:"fees"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	// DataDir is the directory for the mnemonic and config files.
	DataDir string `yaml:"data_dir"`

	// Encrypt stores the mnemonic encrypted with a password when true.
	Encrypt bool `yaml:"encrypt"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level"`
}

// FeesConfig holds fee selection settings.
type FeesConfig struct {
	// Tier is the default fee tier for sends (low, medium, high).
	Tier string `yaml:"tier"`
}

// IsTestnet returns true if running on testnet.
func (c *Config) IsTestnet() bool {
	return c.Network == chain.Testnet
}

// BackendURL returns the explorer base URL for the configured network.
// Explicit URLs in the config win over the chain defaults.
func (c *Config) BackendURL() string {
	if c.IsTestnet() {
		if c.Backend.TestnetURL != "" {
			return c.Backend.TestnetURL
		}
	} else if c.Backend.MainnetURL != "" {
		return c.Backend.MainnetURL
	}
	url, err := chain.DefaultAPIURL(c.Network)
	if err != nil {
		return ""
	}
	return url
}

// NewBackend constructs the explorer backend for the configured network.
func (c *Config) NewBackend() (backend.Backend, error) {
	url := c.BackendURL()
	if url == "" {
		return nil, fmt.Errorf("%w: %s", chain.ErrUnsupportedNetwork, c.Network)
	}
	return backend.New(c.Backend.Type, url)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Network: chain.Mainnet,
		Storage: StorageConfig{
			DataDir: "~/.bitcli",
			Encrypt: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Backend: *backend.DefaultConfig(),
		Fees: FeesConfig{
			Tier: "high",
		},
	}
}

// ConfigFileName is the default config file name.
const ConfigFileName = "config.yaml"

// LoadConfig loads configuration from a YAML file in dataDir.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(dataDir string) (*Config, error) {
	expandedDir := storage.ExpandPath(dataDir)
	configPath := filepath.Join(expandedDir, ConfigFileName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.Storage.DataDir = dataDir

		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if !chain.Valid(cfg.Network) {
		return nil, fmt.Errorf("%w: %s", chain.ErrUnsupportedNetwork, cfg.Network)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Add header comment
	header := []byte("# bitcli Wallet Configuration\n# Generated automatically on first run\n\n")
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ConfigPath returns the full path to the config file for the given data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(storage.ExpandPath(dataDir), ConfigFileName)
}

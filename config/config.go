// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Network parameters: chain ID, endpoints, denomination and precision.
//     These must match the chain; a wrong decimal count silently corrupts
//     every amount.
//   - Client settings: data directory, timeouts, local API, logging.
package config

import (
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// =============================================================================
// Network parameters
// =============================================================================

// NetworkConfig holds the static parameters of the chain the wallet talks to.
type NetworkConfig struct {
	ChainID      string `conf:"chain.id"`
	RPCURL       string `conf:"chain.rpc"`
	RESTURL      string `conf:"chain.rest"`
	Denom        string `conf:"chain.denom"`         // Native unit, e.g. "usei".
	DisplayDenom string `conf:"chain.display_denom"` // Display symbol, e.g. "SEI".
	Bech32Prefix string `conf:"chain.prefix"`
	Decimals     int    `conf:"chain.decimals"` // Native-to-display exponent.
}

// =============================================================================
// Client configuration
// =============================================================================

// Config holds the wallet's runtime configuration.
type Config struct {
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	Chain    NetworkConfig
	Price    PriceConfig
	Timeouts TimeoutConfig
	Transfer TransferConfig
	Wallet   WalletConfig
	API      APIConfig
	Log      LogConfig
}

// PriceConfig holds the fiat price oracle settings.
type PriceConfig struct {
	URL      string  `conf:"price.url"`
	CoinID   string  `conf:"price.coin"`
	Currency string  `conf:"price.currency"`
	Fallback float64 `conf:"price.fallback"` // Returned when the oracle fails.
}

// TimeoutConfig bounds each outbound call.
type TimeoutConfig struct {
	Balance time.Duration `conf:"timeout.balance"`
	Status  time.Duration `conf:"timeout.status"`
	Price   time.Duration `conf:"timeout.price"`
	Submit  time.Duration `conf:"timeout.submit"` // Account lookup and broadcast.
}

// TransferConfig holds send parameters.
type TransferConfig struct {
	GasLimit       uint64        `conf:"transfer.gas"`
	SettleDelay    time.Duration `conf:"transfer.settle_delay"` // Wait before refreshing the balance after a send.
	PollInterval   time.Duration `conf:"transfer.poll_interval"`
	ConfirmTimeout time.Duration `conf:"transfer.confirm_timeout"`
}

// WalletConfig holds wallet defaults.
type WalletConfig struct {
	DefaultName       string `conf:"wallet.name"`
	MinPasswordLength int    `conf:"wallet.min_password"`
}

// APIConfig holds the local HTTP API settings.
type APIConfig struct {
	Enabled bool   `conf:"api.enabled"`
	Addr    string `conf:"api.addr"`
	Port    int    `conf:"api.port"`
	Metrics bool   `conf:"api.metrics"`
	Swagger bool   `conf:"api.swagger"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.seiwallet
//	macOS:   ~/Library/Application Support/SeiWallet
//	Windows: %APPDATA%\SeiWallet
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".seiwallet"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "SeiWallet")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "SeiWallet")
		}
		return filepath.Join(home, "AppData", "Roaming", "SeiWallet")
	default:
		return filepath.Join(home, ".seiwallet")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// DBDir returns the wallet database directory.
func (c *Config) DBDir() string {
	return filepath.Join(c.NetworkDataDir(), "db")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// LogFile returns the log file path. A configured path may start with ~;
// an empty one means seiwallet.log under LogsDir.
func (c *Config) LogFile() string {
	if c.Log.File == "" {
		return filepath.Join(c.LogsDir(), "seiwallet.log")
	}
	rest, ok := strings.CutPrefix(c.Log.File, "~")
	if !ok {
		return c.Log.File
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return c.Log.File
	}
	return filepath.Join(home, rest)
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "seiwallet.conf")
}

// APIListenAddr returns host:port for the local API.
func (c *Config) APIListenAddr() string {
	return net.JoinHostPort(c.API.Addr, strconv.Itoa(c.API.Port))
}

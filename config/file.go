package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFile loads configuration values from a .conf file.
// A missing file yields an empty map.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key. Unknown keys are ignored so
// files written by newer versions still load.
func setConfigValue(cfg *Config, key, value string) error {
	var err error
	switch key {
	// Core
	case "network":
		cfg.Network = NetworkType(strings.ToLower(value))
	case "datadir":
		cfg.DataDir = value

	// Chain
	case "chain.id":
		cfg.Chain.ChainID = value
	case "chain.rpc":
		cfg.Chain.RPCURL = strings.TrimRight(value, "/")
	case "chain.rest":
		cfg.Chain.RESTURL = strings.TrimRight(value, "/")
	case "chain.denom":
		cfg.Chain.Denom = value
	case "chain.display_denom":
		cfg.Chain.DisplayDenom = value
	case "chain.prefix":
		cfg.Chain.Bech32Prefix = value
	case "chain.decimals":
		cfg.Chain.Decimals, err = strconv.Atoi(value)

	// Price oracle
	case "price.url":
		cfg.Price.URL = value
	case "price.coin":
		cfg.Price.CoinID = value
	case "price.currency":
		cfg.Price.Currency = strings.ToLower(value)
	case "price.fallback":
		cfg.Price.Fallback, err = strconv.ParseFloat(value, 64)

	// Timeouts
	case "timeout.balance":
		cfg.Timeouts.Balance, err = time.ParseDuration(value)
	case "timeout.status":
		cfg.Timeouts.Status, err = time.ParseDuration(value)
	case "timeout.price":
		cfg.Timeouts.Price, err = time.ParseDuration(value)
	case "timeout.submit":
		cfg.Timeouts.Submit, err = time.ParseDuration(value)

	// Transfer
	case "transfer.gas":
		cfg.Transfer.GasLimit, err = strconv.ParseUint(value, 10, 64)
	case "transfer.settle_delay":
		cfg.Transfer.SettleDelay, err = time.ParseDuration(value)
	case "transfer.poll_interval":
		cfg.Transfer.PollInterval, err = time.ParseDuration(value)
	case "transfer.confirm_timeout":
		cfg.Transfer.ConfirmTimeout, err = time.ParseDuration(value)

	// Wallet
	case "wallet.name":
		cfg.Wallet.DefaultName = value
	case "wallet.min_password":
		cfg.Wallet.MinPasswordLength, err = strconv.Atoi(value)

	// Local API
	case "api.enabled", "api":
		cfg.API.Enabled = parseBool(value)
	case "api.addr":
		cfg.API.Addr = value
	case "api.port":
		cfg.API.Port, err = strconv.Atoi(value)
	case "api.metrics":
		cfg.API.Metrics = parseBool(value)
	case "api.swagger":
		cfg.API.Swagger = parseBool(value)

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)
	}
	return err
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	d := Default(network)
	content := `# SEI Wallet Configuration
#
# Network parameters must match the chain. A wrong chain.decimals value
# silently corrupts every amount shown and sent.

# Network: mainnet (pacific-1) or testnet (atlantic-2)
network = ` + string(network) + `

# Data directory (default: ~/.seiwallet)
# datadir = ~/.seiwallet

# ============================================================================
# Chain
# ============================================================================

chain.rpc = ` + d.Chain.RPCURL + `
chain.rest = ` + d.Chain.RESTURL + `
# chain.id = ` + d.Chain.ChainID + `
# chain.denom = usei
# chain.display_denom = SEI
# chain.prefix = sei
# chain.decimals = 6

# ============================================================================
# Price oracle
# ============================================================================

# price.url = https://api.coingecko.com/api/v3/simple/price
# price.coin = sei-network
# price.currency = usd
# price.fallback = 0.111609

# ============================================================================
# Timeouts and transfers
# ============================================================================

# timeout.balance = 10s
# timeout.status = 5s
# timeout.price = 5s
# timeout.submit = 30s
# transfer.gas = 200000
# transfer.settle_delay = 5s
# transfer.poll_interval = 3s
# transfer.confirm_timeout = 60s

# ============================================================================
# Local API (seiwalletd)
# ============================================================================

api.enabled = true
api.addr = 127.0.0.1
api.port = ` + strconv.Itoa(d.API.Port) + `
api.metrics = true
# api.swagger = false

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0600)
}

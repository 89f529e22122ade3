package config

import (
	"fmt"
	"net/url"
)

// MaxDecimals is the largest exponent the amount math supports.
const MaxDecimals = 18

// Validate checks the config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if err := ValidateNetwork(cfg.Chain); err != nil {
		return err
	}

	if err := validateURL("price.url", cfg.Price.URL); err != nil {
		return err
	}
	if cfg.Price.CoinID == "" || cfg.Price.Currency == "" {
		return fmt.Errorf("price.coin and price.currency are required")
	}
	if cfg.Price.Fallback < 0 {
		return fmt.Errorf("price.fallback must be >= 0")
	}

	for name, d := range map[string]int64{
		"timeout.balance":          int64(cfg.Timeouts.Balance),
		"timeout.status":           int64(cfg.Timeouts.Status),
		"timeout.price":            int64(cfg.Timeouts.Price),
		"timeout.submit":           int64(cfg.Timeouts.Submit),
		"transfer.poll_interval":   int64(cfg.Transfer.PollInterval),
		"transfer.confirm_timeout": int64(cfg.Transfer.ConfirmTimeout),
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}
	if cfg.Transfer.SettleDelay < 0 {
		return fmt.Errorf("transfer.settle_delay must be >= 0")
	}
	if cfg.Transfer.GasLimit == 0 {
		return fmt.Errorf("transfer.gas must be > 0")
	}
	if cfg.Wallet.MinPasswordLength < 1 {
		return fmt.Errorf("wallet.min_password must be >= 1")
	}
	if cfg.API.Port < 0 || cfg.API.Port > 65535 {
		return fmt.Errorf("api.port must be in range [0, 65535]")
	}
	return nil
}

// ValidateNetwork checks the chain parameters.
func ValidateNetwork(n NetworkConfig) error {
	if n.ChainID == "" {
		return fmt.Errorf("chain.id is required")
	}
	if n.Denom == "" || n.DisplayDenom == "" {
		return fmt.Errorf("chain.denom and chain.display_denom are required")
	}
	if n.Bech32Prefix == "" {
		return fmt.Errorf("chain.prefix is required")
	}
	if n.Decimals < 0 || n.Decimals > MaxDecimals {
		return fmt.Errorf("chain.decimals must be in range [0, %d]", MaxDecimals)
	}
	if err := validateURL("chain.rpc", n.RPCURL); err != nil {
		return err
	}
	return validateURL("chain.rest", n.RESTURL)
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, raw)
	}
	return nil
}

package config

import "time"

// DefaultPriceFallback is the SEI/USD rate shown when the oracle is unreachable.
const DefaultPriceFallback = 0.111609

// MainnetNetwork returns the pacific-1 network parameters.
func MainnetNetwork() NetworkConfig {
	return NetworkConfig{
		ChainID:      "pacific-1",
		RPCURL:       "https://sei-rpc.polkachu.com",
		RESTURL:      "https://sei-api.polkachu.com",
		Denom:        "usei",
		DisplayDenom: "SEI",
		Bech32Prefix: "sei",
		Decimals:     6,
	}
}

// TestnetNetwork returns the atlantic-2 network parameters.
func TestnetNetwork() NetworkConfig {
	n := MainnetNetwork()
	n.ChainID = "atlantic-2"
	n.RPCURL = "https://sei-testnet-rpc.polkachu.com"
	n.RESTURL = "https://sei-testnet-api.polkachu.com"
	return n
}

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Chain:   MainnetNetwork(),
		Price: PriceConfig{
			URL:      "https://api.coingecko.com/api/v3/simple/price",
			CoinID:   "sei-network",
			Currency: "usd",
			Fallback: DefaultPriceFallback,
		},
		Timeouts: TimeoutConfig{
			Balance: 10 * time.Second,
			Status:  5 * time.Second,
			Price:   5 * time.Second,
			Submit:  30 * time.Second,
		},
		Transfer: TransferConfig{
			GasLimit:       200000,
			SettleDelay:    5 * time.Second,
			PollInterval:   3 * time.Second,
			ConfirmTimeout: 60 * time.Second,
		},
		Wallet: WalletConfig{
			DefaultName:       "My Wallet",
			MinPasswordLength: 8,
		},
		API: APIConfig{
			Enabled: true,
			Addr:    "127.0.0.1",
			Port:    8787,
			Metrics: true,
			Swagger: false,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Chain = TestnetNetwork()
	cfg.API.Port = 8788
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}

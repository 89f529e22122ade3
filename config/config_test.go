package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConf(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "seiwallet.conf")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write conf: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	main := DefaultMainnet()
	if main.Chain.ChainID != "pacific-1" || main.Chain.Decimals != 6 || main.Chain.Denom != "usei" {
		t.Errorf("unexpected mainnet chain: %+v", main.Chain)
	}
	if main.Timeouts.Balance != 10*time.Second || main.Timeouts.Status != 5*time.Second {
		t.Errorf("unexpected timeouts: %+v", main.Timeouts)
	}
	if main.Transfer.GasLimit != 200000 || main.Transfer.SettleDelay != 5*time.Second {
		t.Errorf("unexpected transfer defaults: %+v", main.Transfer)
	}
	if main.Price.Fallback != DefaultPriceFallback {
		t.Errorf("fallback = %v, want %v", main.Price.Fallback, DefaultPriceFallback)
	}
	if err := Validate(main); err != nil {
		t.Errorf("mainnet defaults invalid: %v", err)
	}

	test := Default(Testnet)
	if test.Chain.ChainID != "atlantic-2" || test.API.Port == main.API.Port {
		t.Errorf("unexpected testnet defaults: chain=%s port=%d", test.Chain.ChainID, test.API.Port)
	}
	if err := Validate(test); err != nil {
		t.Errorf("testnet defaults invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConf(t, t.TempDir(), `
# comment
network = testnet
chain.rest = "https://rest.example.com/"
wallet.name = 'Savings'
`)
	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if values["network"] != "testnet" {
		t.Errorf("network = %q", values["network"])
	}
	if values["chain.rest"] != "https://rest.example.com/" {
		t.Errorf("quotes not stripped: %q", values["chain.rest"])
	}
	if values["wallet.name"] != "Savings" {
		t.Errorf("single quotes not stripped: %q", values["wallet.name"])
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("expected empty map, got %v", values)
	}
}

func TestLoadFile_BadLine(t *testing.T) {
	path := writeConf(t, t.TempDir(), "network testnet\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for line without '='")
	}
}

func TestApplyFileConfig(t *testing.T) {
	cfg := DefaultMainnet()
	err := ApplyFileConfig(cfg, map[string]string{
		"chain.rest":            "https://rest.example.com/",
		"timeout.balance":       "3s",
		"transfer.gas":          "250000",
		"transfer.settle_delay": "0s",
		"price.currency":        "EUR",
		"api.swagger":           "yes",
		"some.future.key":       "ignored",
	})
	if err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.Chain.RESTURL != "https://rest.example.com" {
		t.Errorf("RESTURL = %q, trailing slash should be trimmed", cfg.Chain.RESTURL)
	}
	if cfg.Timeouts.Balance != 3*time.Second {
		t.Errorf("Balance timeout = %v", cfg.Timeouts.Balance)
	}
	if cfg.Transfer.GasLimit != 250000 || cfg.Transfer.SettleDelay != 0 {
		t.Errorf("transfer = %+v", cfg.Transfer)
	}
	if cfg.Price.Currency != "eur" {
		t.Errorf("currency = %q, want lowercased", cfg.Price.Currency)
	}
	if !cfg.API.Swagger {
		t.Error("api.swagger = yes should enable swagger")
	}
}

func TestApplyFileConfig_BadValue(t *testing.T) {
	tests := map[string]string{
		"timeout.status": "five",
		"transfer.gas":   "-1",
		"chain.decimals": "six",
		"price.fallback": "cheap",
		"api.port":       "http",
	}
	for key, value := range tests {
		cfg := DefaultMainnet()
		if err := ApplyFileConfig(cfg, map[string]string{key: value}); err == nil {
			t.Errorf("%s = %q: expected error", key, value)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SEIWALLET_REST_URL", "https://env-rest.example.com/")
	t.Setenv("SEIWALLET_API_PORT", "9999")
	t.Setenv("SEIWALLET_LOG_JSON", "true")

	cfg := DefaultMainnet()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Chain.RESTURL != "https://env-rest.example.com" {
		t.Errorf("RESTURL = %q", cfg.Chain.RESTURL)
	}
	if cfg.API.Port != 9999 {
		t.Errorf("API.Port = %d", cfg.API.Port)
	}
	if !cfg.Log.JSON {
		t.Error("LOG_JSON=true should enable JSON logs")
	}
	// Unset variables keep defaults.
	if cfg.Chain.RPCURL != MainnetNetwork().RPCURL {
		t.Errorf("RPCURL changed without env: %q", cfg.Chain.RPCURL)
	}
}

func TestApplyEnv_BadPort(t *testing.T) {
	t.Setenv("SEIWALLET_API_PORT", "not-a-port")
	if err := ApplyEnv(DefaultMainnet()); err == nil {
		t.Fatal("expected envconfig parse error")
	}
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{"--testnet", "--api-port", "9000", "--log-json"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if f.Network != string(Testnet) {
		t.Errorf("Network = %q, want testnet", f.Network)
	}
	if !f.SetLogJSON || !f.LogJSON {
		t.Error("log-json should be marked as set")
	}
	if f.SetAPI {
		t.Error("api was not passed and should not be marked as set")
	}

	cfg := DefaultMainnet()
	ApplyFlags(cfg, f)
	if cfg.API.Port != 9000 || cfg.Network != Testnet || !cfg.Log.JSON {
		t.Errorf("ApplyFlags result: port=%d network=%s json=%v", cfg.API.Port, cfg.Network, cfg.Log.JSON)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	if _, err := ParseFlags([]string{"--no-such-flag"}); err == nil {
		t.Error("expected error for unknown flag")
	}
	if _, err := ParseFlags([]string{"extra", "--testnet"}); err == nil {
		t.Error("expected error for flag after positional argument")
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeConf(t, dir, `
network = testnet
chain.rest = https://file-rest.example.com
chain.rpc = https://file-rpc.example.com
api.port = 7000
`)
	t.Setenv("SEIWALLET_RPC_URL", "https://env-rpc.example.com")
	t.Setenv("SEIWALLET_API_PORT", "7100")

	cfg, _, err := Load([]string{"--datadir", dir, "--api-port", "7200"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// The file selected testnet, so testnet defaults underlie everything.
	if cfg.Network != Testnet || cfg.Chain.ChainID != "atlantic-2" {
		t.Errorf("network = %s chain = %s, want testnet/atlantic-2", cfg.Network, cfg.Chain.ChainID)
	}
	if cfg.Chain.RESTURL != "https://file-rest.example.com" {
		t.Errorf("file value lost: %q", cfg.Chain.RESTURL)
	}
	if cfg.Chain.RPCURL != "https://env-rpc.example.com" {
		t.Errorf("env should beat file: %q", cfg.Chain.RPCURL)
	}
	if cfg.API.Port != 7200 {
		t.Errorf("flag should beat env: %d", cfg.API.Port)
	}
	if _, err := os.Stat(cfg.DBDir()); err != nil {
		t.Errorf("db dir not created: %v", err)
	}
}

func TestLoad_FlagNetworkWins(t *testing.T) {
	dir := t.TempDir()
	writeConf(t, dir, "network = testnet\n")
	t.Setenv("SEIWALLET_NETWORK", "testnet")

	cfg, _, err := Load([]string{"--datadir", dir, "--network", "mainnet"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Network != Mainnet || cfg.Chain.ChainID != "pacific-1" {
		t.Errorf("network = %s chain = %s, want mainnet/pacific-1", cfg.Network, cfg.Chain.ChainID)
	}
}

func TestLoad_Help(t *testing.T) {
	_, f, err := Load([]string{"--help"})
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("err = %v, want flag.ErrHelp", err)
	}
	if f == nil || !f.Help {
		t.Error("flags should report Help")
	}
}

func TestLoad_InvalidNetwork(t *testing.T) {
	if _, _, err := Load([]string{"--datadir", t.TempDir(), "--network", "devnet"}); err == nil {
		t.Fatal("expected validation error for unknown network")
	}
}

func TestEnsureDataDirs_WritesDefaultConfig(t *testing.T) {
	cfg := DefaultTestnet()
	cfg.DataDir = t.TempDir()
	if err := EnsureDataDirs(cfg); err != nil {
		t.Fatalf("EnsureDataDirs: %v", err)
	}
	values, err := LoadFile(cfg.ConfigFile())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if values["network"] != "testnet" {
		t.Errorf("default config network = %q", values["network"])
	}

	// The written file must round-trip through the loader.
	loaded := DefaultTestnet()
	if err := ApplyFileConfig(loaded, values); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if err := Validate(loaded); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown network", func(c *Config) { c.Network = "devnet" }},
		{"missing chain id", func(c *Config) { c.Chain.ChainID = "" }},
		{"missing prefix", func(c *Config) { c.Chain.Bech32Prefix = "" }},
		{"decimals too large", func(c *Config) { c.Chain.Decimals = MaxDecimals + 1 }},
		{"bad rest url", func(c *Config) { c.Chain.RESTURL = "ftp://x" }},
		{"relative rpc url", func(c *Config) { c.Chain.RPCURL = "/status" }},
		{"negative fallback", func(c *Config) { c.Price.Fallback = -1 }},
		{"zero balance timeout", func(c *Config) { c.Timeouts.Balance = 0 }},
		{"negative settle delay", func(c *Config) { c.Transfer.SettleDelay = -time.Second }},
		{"zero gas", func(c *Config) { c.Transfer.GasLimit = 0 }},
		{"zero password length", func(c *Config) { c.Wallet.MinPasswordLength = 0 }},
		{"port out of range", func(c *Config) { c.API.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMainnet()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if err := Validate(nil); err == nil {
		t.Error("Validate(nil) should fail")
	}
}

func TestLogFile(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	cfg := DefaultTestnet()
	cfg.DataDir = "/data/seiwallet"

	tests := []struct {
		file, want string
	}{
		{"", "/data/seiwallet/logs/seiwallet.log"},
		{"~/.seiwallet/wallet.log", filepath.Join(home, ".seiwallet/wallet.log")},
		{"/var/log/seiwallet.log", "/var/log/seiwallet.log"},
		{"relative/wallet.log", "relative/wallet.log"},
	}
	for _, tt := range tests {
		cfg.Log.File = tt.file
		if got := cfg.LogFile(); got != tt.want {
			t.Errorf("LogFile() with %q = %q, want %q", tt.file, got, tt.want)
		}
	}
}

package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment override, e.g. SEIWALLET_REST_URL.
const EnvPrefix = "seiwallet"

// envOverrides lists the settings that can come from the environment.
// Unset variables leave the config untouched.
type envOverrides struct {
	Network  string `envconfig:"NETWORK"`
	DataDir  string `envconfig:"DATADIR"`
	RPCURL   string `envconfig:"RPC_URL"`
	RESTURL  string `envconfig:"REST_URL"`
	PriceURL string `envconfig:"PRICE_URL"`
	APIAddr  string `envconfig:"API_ADDR"`
	APIPort  int    `envconfig:"API_PORT"`
	LogLevel string `envconfig:"LOG_LEVEL"`
	LogJSON  *bool  `envconfig:"LOG_JSON"`
}

func readEnv() (*envOverrides, error) {
	var e envOverrides
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &e, nil
}

// EnvNetwork returns the network named by SEIWALLET_NETWORK, if any.
func EnvNetwork() (NetworkType, error) {
	e, err := readEnv()
	if err != nil {
		return "", err
	}
	return NetworkType(strings.ToLower(e.Network)), nil
}

// ApplyEnv overlays SEIWALLET_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	e, err := readEnv()
	if err != nil {
		return err
	}
	if e.Network != "" {
		cfg.Network = NetworkType(strings.ToLower(e.Network))
	}
	if e.DataDir != "" {
		cfg.DataDir = e.DataDir
	}
	if e.RPCURL != "" {
		cfg.Chain.RPCURL = strings.TrimRight(e.RPCURL, "/")
	}
	if e.RESTURL != "" {
		cfg.Chain.RESTURL = strings.TrimRight(e.RESTURL, "/")
	}
	if e.PriceURL != "" {
		cfg.Price.URL = e.PriceURL
	}
	if e.APIAddr != "" {
		cfg.API.Addr = e.APIAddr
	}
	if e.APIPort != 0 {
		cfg.API.Port = e.APIPort
	}
	if e.LogLevel != "" {
		cfg.Log.Level = e.LogLevel
	}
	if e.LogJSON != nil {
		cfg.Log.JSON = *e.LogJSON
	}
	return nil
}

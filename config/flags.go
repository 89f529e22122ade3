package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Version is reported by --version.
const Version = "0.1.0"

// Flags holds parsed command-line flags for seiwalletd.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	Testnet bool
	DataDir string
	Config  string

	// Chain endpoints
	RPCURL  string
	RESTURL string

	// Local API
	API     bool
	APIAddr string
	APIPort int
	Swagger bool

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetAPI     bool
	SetSwagger bool
	SetLogJSON bool
}

// ParseFlags parses command-line flags (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("seiwalletd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	fs.StringVar(&f.Network, "network", "", "Network type (mainnet or testnet)")
	fs.BoolVar(&f.Testnet, "testnet", false, "Shorthand for --network=testnet")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	fs.StringVar(&f.RPCURL, "rpc-url", "", "Chain RPC endpoint")
	fs.StringVar(&f.RESTURL, "rest-url", "", "Chain REST endpoint")

	fs.BoolVar(&f.API, "api", true, "Serve the local HTTP API")
	fs.StringVar(&f.APIAddr, "api-addr", "", "API listen address")
	fs.IntVar(&f.APIPort, "api-port", 0, "API listen port")
	fs.BoolVar(&f.Swagger, "swagger", false, "Serve the Swagger UI")

	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if f.Testnet {
		f.Network = string(Testnet)
	}
	f.SetAPI = isFlagSet(fs, "api")
	f.SetSwagger = isFlagSet(fs, "swagger")
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()

	// A positional argument stops the parser; anything flag-like after it
	// was silently dropped.
	for _, arg := range f.Args {
		if strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("flag %q was not parsed (positional argument stopped parsing)", arg)
		}
	}
	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.Network != "" {
		cfg.Network = NetworkType(strings.ToLower(f.Network))
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	if f.RPCURL != "" {
		cfg.Chain.RPCURL = strings.TrimRight(f.RPCURL, "/")
	}
	if f.RESTURL != "" {
		cfg.Chain.RESTURL = strings.TrimRight(f.RESTURL, "/")
	}

	if f.SetAPI {
		cfg.API.Enabled = f.API
	}
	if f.APIAddr != "" {
		cfg.API.Addr = f.APIAddr
	}
	if f.APIPort != 0 {
		cfg.API.Port = f.APIPort
	}
	if f.SetSwagger {
		cfg.API.Swagger = f.Swagger
	}

	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the seiwalletd help text to stdout.
func PrintUsage() {
	usage := `seiwalletd - local SEI wallet service

Usage:
  seiwalletd [options]
  seiwalletd --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --network       Network type: mainnet (default, pacific-1) or testnet (atlantic-2)
  --testnet       Shorthand for --network=testnet
  --datadir       Data directory (default: ~/.seiwallet)
  --config, -c    Config file path (default: <datadir>/seiwallet.conf)

Chain Options:
  --rpc-url       Chain RPC endpoint (status probe)
  --rest-url      Chain REST endpoint (balances, accounts, broadcast)

API Options:
  --api           Serve the local HTTP API (default: true)
  --api-addr      API listen address (default: 127.0.0.1)
  --api-port      API port (mainnet: 8787, testnet: 8788)
  --swagger       Serve the Swagger UI at /swagger/

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: <datadir>/logs/seiwallet.log)
  --log-json      Output logs as JSON

Environment:
  SEIWALLET_NETWORK, SEIWALLET_DATADIR, SEIWALLET_RPC_URL, SEIWALLET_REST_URL,
  SEIWALLET_PRICE_URL, SEIWALLET_API_ADDR, SEIWALLET_API_PORT,
  SEIWALLET_LOG_LEVEL, SEIWALLET_LOG_JSON

Precedence: defaults < config file < environment < flags.
`
	fmt.Print(usage)
}

// Load loads configuration with the following precedence:
// 1. Default values for the selected network
// 2. Config file
// 3. SEIWALLET_* environment variables
// 4. Command-line flags
//
// Returns flag.ErrHelp when --help was requested.
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}
	if flags.Help {
		return nil, flags, flag.ErrHelp
	}

	env, err := readEnv()
	if err != nil {
		return nil, nil, err
	}

	// The data dir locates the config file, so it is resolved first.
	dataDir := DefaultDataDir()
	if env.DataDir != "" {
		dataDir = env.DataDir
	}
	if flags.DataDir != "" {
		dataDir = flags.DataDir
	}
	configPath := flags.Config
	if configPath == "" {
		configPath = filepath.Join(dataDir, "seiwallet.conf")
	}

	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}

	// Network selects the defaults, so it is also resolved up front.
	network := Mainnet
	for _, n := range []string{fileValues["network"], env.Network, flags.Network} {
		if n != "" {
			network = NetworkType(strings.ToLower(n))
		}
	}

	cfg := Default(network)
	cfg.DataDir = dataDir
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, nil, err
	}
	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}
	return cfg, flags, nil
}

// LoadFromFile loads config from defaults, the conf file and the
// environment. Used by the CLI, which parses its own global flags.
func LoadFromFile(dataDir string, network NetworkType) (*Config, error) {
	cfg := Default(network)
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	fileValues, err := LoadFile(cfg.ConfigFile())
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	// The caller's network wins over the file's.
	delete(fileValues, "network")
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, fmt.Errorf("applying config: %w", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.Network = network
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := EnsureDataDirs(cfg); err != nil {
		return nil, fmt.Errorf("ensuring data dirs: %w", err)
	}
	return cfg, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. Idempotent; safe to call on every start.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.NetworkDataDir(),
		cfg.DBDir(),
		cfg.LogsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}

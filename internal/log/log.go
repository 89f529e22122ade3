// Package log holds the wallet's zerolog loggers: one root logger plus a
// logger per component, each tagged with a "component" field.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the root logger. Component loggers derive from it.
var Logger zerolog.Logger

var (
	Wallet   zerolog.Logger
	Store    zerolog.Logger
	Storage  zerolog.Logger
	Balance  zerolog.Logger
	Transfer zerolog.Logger
	Signer   zerolog.Logger
	Status   zerolog.Logger
	Price    zerolog.Logger
	API      zerolog.Logger
)

// components maps each package logger to its component name.
var components = map[string]*zerolog.Logger{
	"wallet":   &Wallet,
	"store":    &Store,
	"storage":  &Storage,
	"balance":  &Balance,
	"transfer": &Transfer,
	"signer":   &Signer,
	"status":   &Status,
	"price":    &Price,
	"api":      &API,
}

const consoleTimeFormat = "15:04:05"

func init() {
	setRoot(NewConsoleLogger(os.Stdout, "info"))
}

// Init replaces the root logger. Console output is colored unless
// jsonOutput is set. A non-empty file additionally receives every entry as
// JSON.
func Init(level string, jsonOutput bool, file string) error {
	var console io.Writer = os.Stdout
	if !jsonOutput {
		console = consoleWriter(os.Stdout)
	}
	if file == "" {
		setRoot(newLogger(console, level))
		return nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	setRoot(newLogger(zerolog.MultiLevelWriter(console, f), level))
	return nil
}

// NewConsoleLogger returns a colored, human-readable logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	return newLogger(consoleWriter(w), level)
}

// NewJSONLogger returns a logger writing one JSON object per line.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	return newLogger(w, level)
}

// WithComponent returns a child of the root logger tagged with name.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// Discard silences all output. Tests call it to keep runs quiet.
func Discard() {
	setRoot(zerolog.Nop())
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
}

func setRoot(l zerolog.Logger) {
	Logger = l
	for name, target := range components {
		*target = WithComponent(name)
	}
}

// parseLevel maps a level name to zerolog. Unknown names mean info.
func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

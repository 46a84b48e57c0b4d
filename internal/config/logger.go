package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// LoggingConfig controls console and file logging
type LoggingConfig struct {
	// Level is one of none, normal or debug
	Level string `toml:"level"`
	// Destination, when set, receives a copy of every message at debug level
	Destination string `toml:"destination"`
}

func (conf *LoggingConfig) validate() error {
	switch conf.Level {
	case "", "none", "normal", "debug":
	default:
		return fmt.Errorf("logging.level must be one of none, normal, debug: got %q", conf.Level)
	}
	return nil
}

// EnableColorOutput reports whether stream is attached to a terminal
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}

// Prepare returns the program logger. Everything goes to stderr so page
// summaries on stdout stay clean.
func (conf *LoggingConfig) Prepare() (*zap.Logger, error) {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(os.Stderr) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	consoleEncoder := zapcore.NewConsoleEncoder(ec)

	var consoleCore zapcore.Core
	switch conf.Level {
	case "debug":
		consoleCore = zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), zapcore.DebugLevel)
	case "none":
		consoleCore = zapcore.NewNopCore()
	default:
		consoleCore = zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), zapcore.InfoLevel)
	}

	fileCore := zapcore.NewNopCore()
	if conf.Destination != "" {
		if err := os.MkdirAll(filepath.Dir(conf.Destination), 0755); err != nil {
			return nil, fmt.Errorf("unable to create log directory: %w", err)
		}
		f, err := os.OpenFile(conf.Destination, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.Destination, err)
		}
		fileEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		fileCore = zapcore.NewCore(fileEncoder, zapcore.Lock(f), zapcore.DebugLevel)
	}

	return zap.New(zapcore.NewTee(consoleCore, fileCore)), nil
}

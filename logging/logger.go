// Package logging builds the zap loggers used across the cache.
//
// There is no package-level logger. The process entry point builds one and
// passes it to every component that logs.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level     string `mapstructure:"level" yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format    string `mapstructure:"format" yaml:"format" json:"format" validate:"oneof=json console text"`
	AddSource bool   `mapstructure:"add_source" yaml:"add_source" json:"add_source"`
}

func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil || c.Level == "" {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn or error)", c.Level)
	}

	switch c.Format {
	case "json", "console", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be json, console or text)", c.Format)
	}

	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Level:     "info",
		Format:    "json",
		AddSource: false,
	}
}

func DevelopmentConfig() *Config {
	return &Config{
		Level:     "debug",
		Format:    "console",
		AddSource: true,
	}
}

// New builds a logger writing to stdout. JSON output uses zap's production
// encoder; console and text use the development encoder.
func New(cfg *Config) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := zapcore.ParseLevel(cfg.Level)

	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stdout"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableCaller = !cfg.AddSource
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *zap.Logger {
	return zap.NewNop()
}

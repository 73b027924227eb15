// Package logging builds the zap logger that is injected into every engine component.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger at the given level.
// Development loggers use the console encoder with colored levels; production
// loggers emit JSON.
//
// Parameters:
//   - level: one of "debug", "info", "warn", "error" (case-insensitive, empty = "info")
//   - development: selects the development encoder and stack traces on warnings
//
// Returns:
//   - *zap.Logger: the configured logger
//   - error: error if the level is unknown or the logger cannot be built
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// ParseLevel converts a level name into a zapcore.Level.
//
// Parameters:
//   - level: the level name (empty = "info")
//
// Returns:
//   - zapcore.Level: the parsed level
//   - error: error if the name is not a known level
func ParseLevel(level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q: %w", level, err)
	}
	return lvl, nil
}

// OrNop returns logger, or a no-op logger when logger is nil.
//
// Parameters:
//   - logger: the injected logger, possibly nil
//
// Returns:
//   - *zap.Logger: a usable logger
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

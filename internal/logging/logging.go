// Package logging builds the zap loggers used across the bootstrap.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production JSON logger at the given level. Unknown
// level strings fall back to info. Quiet returns a no-op logger so
// callers can suppress output (e.g. expected-failure connection tests)
// without branching at every log site.
func New(level string, quiet bool) *zap.Logger {
	if quiet {
		return zap.NewNop()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

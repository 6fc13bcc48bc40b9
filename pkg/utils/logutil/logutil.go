// Package logutil builds zap loggers from level names used in configs and flags.
package logutil

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production zap logger at level: debug, info, warn, error or off.
//
// Empty level means info.
func New(level string) (*zap.Logger, error) {
	l := strings.ToLower(strings.TrimSpace(level))
	switch l {
	case "off":
		return zap.NewNop(), nil
	case "":
		l = "info"
	}
	lvl, err := zapcore.ParseLevel(l)
	if err != nil {
		return nil, fmt.Errorf("unknown log level: %q", level)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}

package goseal

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	loggerMu      sync.RWMutex
	packageLogger = zerolog.New(os.Stderr).
			Level(zerolog.WarnLevel).
			With().Timestamp().Str("component", "goseal").Logger()
)

// SetLogger replaces the package logger used when Options.Logger is nil.
func SetLogger(l zerolog.Logger) {
	loggerMu.Lock()
	packageLogger = l
	loggerMu.Unlock()
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	loggerMu.RLock()
	l := packageLogger
	loggerMu.RUnlock()
	return l
}

// Package logging provides the process-wide structured logger.
//
// The logger is a zap.Logger configured once at startup via Init, or
// lazily with defaults on first use. Components fetch it through GetLogger
// and attach their own fields.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger   *zap.Logger
	loggerMu sync.RWMutex
	isInited bool
)

// Config holds logger configuration.
type Config struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `json:"level"`
	// Format is "json" or "console".
	Format string `json:"format"`
	// OutputPath is empty for stderr, or a file path.
	OutputPath string `json:"output_path"`
}

// Init initializes the global logger with the given configuration.
// This should be called once at application startup; a second call
// returns an error.
func Init(config Config) error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if isInited {
		return fmt.Errorf("logger already initialized; call Close() first to reinitialize")
	}

	level := zapcore.InfoLevel
	if config.Level != "" {
		if err := level.Set(config.Level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", config.Level, err)
		}
	}

	zapCfg := zap.NewProductionConfig()
	if config.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if config.OutputPath != "" {
		zapCfg.OutputPaths = []string{config.OutputPath}
	}

	built, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	logger = built
	isInited = true
	return nil
}

// GetLogger returns the current logger, initializing a default console
// logger at info level on first use.
func GetLogger() *zap.Logger {
	loggerMu.RLock()
	if isInited {
		l := logger
		loggerMu.RUnlock()
		return l
	}
	loggerMu.RUnlock()

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if !isInited {
		logger = zap.Must(zap.NewDevelopment())
		isInited = true
	}
	return logger
}

// SetLogger replaces the global logger. Tests use this with zap.NewNop().
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
	isInited = l != nil
}

// Close flushes buffered log entries and resets the global logger, so Init
// can be called again.
func Close() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if !isInited {
		return nil
	}

	err := logger.Sync()
	logger = nil
	isInited = false
	return err
}

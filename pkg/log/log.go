// Package log provides structured logging for deep-code.
// It wraps zap's sugared logger behind a small package-level API so callers
// can log key/value pairs without carrying a logger around.
package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger *zap.SugaredLogger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	logger = newLogger()
}

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	// Call sites are not useful for a CLI tool.
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than failing startup.
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// SetLevel changes the minimum level for subsequent log calls.
// Accepted values: "debug", "info", "warn", "error". Unknown values
// leave the level unchanged.
func SetLevel(name string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return
	}
	level.SetLevel(l)
}

// SetLogger replaces the package logger. Intended for tests.
func SetLogger(l *zap.SugaredLogger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = logger.Sync()
}

// Debug logs a message at debug level with key/value pairs.
func Debug(msg string, keysAndValues ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Debugw(msg, keysAndValues...)
}

// Info logs a message at info level with key/value pairs.
func Info(msg string, keysAndValues ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Infow(msg, keysAndValues...)
}

// Warn logs a message at warn level with key/value pairs.
func Warn(msg string, keysAndValues ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Warnw(msg, keysAndValues...)
}

// Error logs a message at error level with key/value pairs.
func Error(msg string, keysAndValues ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Errorw(msg, keysAndValues...)
}

package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base *zap.Logger
)

// Init configures the process-wide JSON logger. Safe to call more
// than once; the last call wins.
func Init() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Logging must never take the process down at startup.
		l = zap.NewNop()
	}

	mu.Lock()
	base = l
	mu.Unlock()
}

// ReplaceForTests swaps the backing logger, returning a restore func.
func ReplaceForTests(l *zap.Logger) func() {
	mu.Lock()
	prev := base
	base = l
	mu.Unlock()
	return func() {
		mu.Lock()
		base = prev
		mu.Unlock()
	}
}

func get() *zap.Logger {
	mu.RLock()
	l := base
	mu.RUnlock()
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func zapFields(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func Info(msg string, fields map[string]any) {
	get().Info(msg, zapFields(fields)...)
}

func Warn(msg string, fields map[string]any) {
	get().Warn(msg, zapFields(fields)...)
}

func Error(msg string, fields map[string]any) {
	get().Error(msg, zapFields(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	get().Error(msg, zapFields(fields)...)
	_ = get().Sync()
	os.Exit(1)
}

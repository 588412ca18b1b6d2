// Package log provides structured logging for the backport pipeline using
// zap.
package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with backport-pipeline-specific helpers.
type Logger struct {
	*zap.Logger
}

var (
	// L is the global logger instance.
	L    *Logger
	once sync.Once
)

// Init initializes the global logger. Safe to call multiple times; only
// the first call takes effect.
func Init(debug bool) {
	once.Do(func() {
		L = New(debug)
	})
}

// New creates a new Logger instance.
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}

	return &Logger{Logger: logger}
}

// NewNop creates a no-op logger for testing.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// WithStage returns a logger with the pipeline stage field preset.
func (l *Logger) WithStage(stage string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("stage", stage))}
}

// FileStart logs the beginning of a per-file pipeline run.
func (l *Logger) FileStart(path string) {
	l.Info("file start", zap.String("path", path))
}

// FileDone logs the end of a per-file pipeline run with its outcome.
func (l *Logger) FileDone(path string, score int, risk string) {
	l.Info("file done", zap.String("path", path), zap.Int("score", score), zap.String("risk", risk))
}

// StubApplied logs a successful PLT stub write.
func (l *Logger) StubApplied(name, mode string, offset uint64) {
	l.Debug("stub applied", Sym(name), zap.String("mode", mode), Addr(offset))
}

// StubSkipped logs a stub that was refused or not found.
func (l *Logger) StubSkipped(name, reason string) {
	l.Debug("stub skipped", Sym(name), zap.String("reason", reason))
}

// Hex formats a uint64 as a 0x-prefixed hex string.
func Hex(v uint64) string {
	return "0x" + hexString(v)
}

func hexString(v uint64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	buf := make([]byte, 16)
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}

// Addr creates an address field.
func Addr(addr uint64) zap.Field {
	return zap.String("addr", Hex(addr))
}

// Size creates a size field.
func Size(size uint64) zap.Field {
	return zap.Uint64("size", size)
}

// Sym creates a symbol-name field.
func Sym(name string) zap.Field {
	return zap.String("sym", name)
}

// Lib creates a library-name field.
func Lib(name string) zap.Field {
	return zap.String("lib", name)
}

// FW creates a firmware-version field.
func FW(version string) zap.Field {
	return zap.String("fw", version)
}

package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var (
	mu   sync.RWMutex
	base = zap.NewNop().Sugar()
)

// Init configures the process-wide zap backend. Until it is called every
// logger is a no-op, which keeps tests quiet.
func Init(level LogLevel, mode string) error {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(toZapLevel(level))

	z, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	base = z.Sugar()
	mu.Unlock()
	return nil
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

type Log struct {
	sugar *zap.SugaredLogger
	err   error
}

func New() *Log {
	mu.RLock()
	defer mu.RUnlock()
	return &Log{sugar: base}
}

func (l *Log) WithError(err error) *Log {
	return &Log{sugar: l.sugar, err: err}
}

// With returns a logger carrying the given key/value pairs on every entry.
func (l *Log) With(keysAndValues ...interface{}) *Log {
	return &Log{sugar: l.sugar.With(keysAndValues...), err: l.err}
}

func (l *Log) fields() []interface{} {
	if l.err == nil {
		return nil
	}
	return []interface{}{"error", l.err}
}

func (l *Log) Debug(msg string) {
	l.sugar.Debugw(msg, l.fields()...)
}

func (l *Log) Info(msg string) {
	l.sugar.Infow(msg, l.fields()...)
}

func (l *Log) Warn(msg string) {
	l.sugar.Warnw(msg, l.fields()...)
}

func (l *Log) Error(msg string) {
	l.sugar.Errorw(msg, l.fields()...)
}

func toZapLevel(level LogLevel) zapcore.Level {
	switch LogLevel(strings.ToLower(string(level))) {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

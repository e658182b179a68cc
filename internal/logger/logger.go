package logger

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type implLogger struct {
	sugar *zap.SugaredLogger
	level zapcore.Level
}

// New creates a new Logger instance writing human-readable lines to stderr
func New(level string) Logger {
	return NewWithFormat(level, "text")
}

// NewWithFormat creates a Logger; format "json" selects zap's production encoder
func NewWithFormat(level, format string) Logger {
	lvl := parseLevel(level)

	var cfg zap.Config
	if strings.EqualFold(format, "json") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.Development = false
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}

	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		base = zap.NewNop()
	}

	return &implLogger{
		sugar: base.Sugar(),
		level: lvl,
	}
}

// Nop returns a Logger that discards everything, for tests
func Nop() Logger {
	return &implLogger{sugar: zap.NewNop().Sugar(), level: zapcore.FatalLevel}
}

func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil || lvl > zapcore.ErrorLevel {
		return zapcore.InfoLevel // default to info
	}
	return lvl
}

func (l *implLogger) shouldLog(level string) bool {
	target, err := zapcore.ParseLevel(level)
	if err != nil {
		return true
	}
	return target >= l.level
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("debug") {
		l.from(ctx).Debugf(msg, args...)
	}
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("info") {
		l.from(ctx).Infof(msg, args...)
	}
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("warn") {
		l.from(ctx).Warnf(msg, args...)
	}
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("error") {
		l.from(ctx).Errorf(msg, args...)
	}
}

type requestIDKey struct{}

// WithRequestID returns a context whose log lines carry id as request_id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (l *implLogger) from(ctx context.Context) *zap.SugaredLogger {
	if id := RequestID(ctx); id != "" {
		return l.sugar.With("request_id", id)
	}
	return l.sugar
}

// FormatError renders an error for log lines, empty for nil
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%v", err)
}

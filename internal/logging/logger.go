// Package logging provides the structured logger used across htmltag.
//
// It wraps log/slog with a small interface so packages can accept a Logger,
// attach component names and fields, and stay silent by default through Nop.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel is the minimum severity a logger emits.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	// LevelOff disables all output.
	LevelOff
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL", "OFF"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel converts a configuration string such as "debug" to a LogLevel.
// The empty string means info.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	case "off", "none":
		return LevelOff, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// levelFatal sits between error and off on the slog scale so a fatal-only
// logger still drops plain errors.
const (
	levelFatal = slog.LevelError + 2
	levelOff   = slog.LevelError + 4
)

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	case LevelFatal:
		return levelFatal
	default:
		return levelOff
	}
}

// Logger is the logging surface packages depend on. Fields are alternating
// key/value pairs; an slog.Attr may stand in for a pair.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	// Fatal logs at error severity with fatal=true. It never exits.
	Fatal(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// HTMLTagLogger is the slog-backed Logger.
type HTMLTagLogger struct {
	handler   slog.Handler
	component string
	attrs     []slog.Attr
}

// LoggerConfig selects level, encoding and destination.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // "json" or "text"
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultConfig logs text at info to stderr.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// NewLogger builds a logger from config; nil means DefaultConfig.
func NewLogger(config *LoggerConfig) *HTMLTagLogger {
	if config == nil {
		config = DefaultConfig()
	}
	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: config.Level.slogLevel(), AddSource: config.AddSource}
	var h slog.Handler = slog.NewTextHandler(out, opts)
	if config.Format == "json" {
		h = slog.NewJSONHandler(out, opts)
	}
	return &HTMLTagLogger{handler: h, component: config.Component}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return NewLogger(&LoggerConfig{Level: LevelOff, Output: io.Discard})
}

func (l *HTMLTagLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.emit(ctx, slog.LevelDebug, nil, msg, fields)
}

func (l *HTMLTagLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.emit(ctx, slog.LevelInfo, nil, msg, fields)
}

func (l *HTMLTagLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.emit(ctx, slog.LevelWarn, err, msg, fields)
}

func (l *HTMLTagLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.emit(ctx, slog.LevelError, err, msg, fields)
}

func (l *HTMLTagLogger) Fatal(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.emit(ctx, levelFatal, err, msg, append(fields, slog.Bool("fatal", true)))
}

// With returns a child logger carrying fields on every record.
func (l *HTMLTagLogger) With(fields ...interface{}) Logger {
	child := *l
	child.attrs = append(append([]slog.Attr(nil), l.attrs...), toAttrs(fields)...)
	return &child
}

// WithComponent returns a child logger tagged with component.
func (l *HTMLTagLogger) WithComponent(component string) Logger {
	child := *l
	child.component = component
	return &child
}

func (l *HTMLTagLogger) emit(ctx context.Context, level slog.Level, err error, msg string, fields []interface{}) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	record := slog.NewRecord(time.Now(), level, msg, 0)
	if level == levelFatal {
		record.Level = slog.LevelError
	}
	if l.component != "" {
		record.AddAttrs(slog.String("component", l.component))
	}
	if err != nil {
		record.AddAttrs(slog.String("error", err.Error()))
	}
	record.AddAttrs(l.attrs...)
	record.AddAttrs(toAttrs(fields)...)

	_ = l.handler.Handle(ctx, record)
}

// toAttrs pairs up key/value fields in order. A dangling key or a non-string
// key is dropped.
func toAttrs(fields []interface{}) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(fields)/2)
	for i := 0; i < len(fields); i++ {
		if a, ok := fields[i].(slog.Attr); ok {
			attrs = append(attrs, a)
			continue
		}
		key, ok := fields[i].(string)
		if !ok || i+1 >= len(fields) {
			continue
		}
		attrs = append(attrs, slog.Any(key, fields[i+1]))
		i++
	}
	return attrs
}

// PerfLogger times one operation.
type PerfLogger struct {
	Logger
	started   time.Time
	operation string
}

// StartOperation starts timing operation; finish with End or EndWithError.
func StartOperation(logger Logger, operation string) *PerfLogger {
	return &PerfLogger{
		Logger:    logger.With("operation", operation),
		started:   time.Now(),
		operation: operation,
	}
}

// End logs the elapsed time at debug.
func (p *PerfLogger) End(ctx context.Context) {
	elapsed := time.Since(p.started)
	p.Debug(ctx, p.operation+" done", "duration_ms", elapsed.Milliseconds(), "duration", elapsed)
}

// EndWithError logs err and the elapsed time at error.
func (p *PerfLogger) EndWithError(ctx context.Context, err error) {
	elapsed := time.Since(p.started)
	p.Error(ctx, err, p.operation+" failed", "duration_ms", elapsed.Milliseconds(), "duration", elapsed)
}

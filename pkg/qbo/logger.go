package qbo

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// LogLevel is the minimum severity a logger emits.
type LogLevel int

// Log levels, ordered by severity.
const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLogLevel converts DEBUG, INFO, WARN or ERROR (any case) to a level.
// Unknown names yield LevelError.
func ParseLogLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	default:
		return LevelError
	}
}

// String implements fmt.Stringer.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// SlogLogger adapts a *slog.Logger to Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger writes text records at or above level to w.
func NewSlogLogger(w io.Writer, level LogLevel) *SlogLogger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level.slogLevel()})

	return &SlogLogger{logger: slog.New(handler)}
}

// NewSlogLoggerFrom wraps an existing slog logger.
func NewSlogLoggerFrom(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) log(level slog.Level, msg string, fields map[string]interface{}) {
	attrs := make([]slog.Attr, 0, len(fields))
	for key, value := range fields {
		attrs = append(attrs, slog.Any(key, value))
	}

	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func (l *SlogLogger) Debug(msg string, fields map[string]interface{}) {
	l.log(slog.LevelDebug, msg, fields)
}

func (l *SlogLogger) Info(msg string, fields map[string]interface{}) {
	l.log(slog.LevelInfo, msg, fields)
}

func (l *SlogLogger) Warn(msg string, fields map[string]interface{}) {
	l.log(slog.LevelWarn, msg, fields)
}

func (l *SlogLogger) Error(msg string, fields map[string]interface{}) {
	l.log(slog.LevelError, msg, fields)
}

// LevelLogger drops messages below a minimum level before delegating.
type LevelLogger struct {
	next  Logger
	level LogLevel
}

// NewLevelLogger filters next by level.
func NewLevelLogger(next Logger, level LogLevel) *LevelLogger {
	return &LevelLogger{next: next, level: level}
}

func (l *LevelLogger) Debug(msg string, fields map[string]interface{}) {
	if l.level <= LevelDebug {
		l.next.Debug(msg, fields)
	}
}

func (l *LevelLogger) Info(msg string, fields map[string]interface{}) {
	if l.level <= LevelInfo {
		l.next.Info(msg, fields)
	}
}

func (l *LevelLogger) Warn(msg string, fields map[string]interface{}) {
	if l.level <= LevelWarn {
		l.next.Warn(msg, fields)
	}
}

func (l *LevelLogger) Error(msg string, fields map[string]interface{}) {
	l.next.Error(msg, fields)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}

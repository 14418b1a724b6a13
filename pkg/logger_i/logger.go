package logger_i

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/akolanti/intelliagent/internal/config"
)

type Logger struct {
	inner *slog.Logger
}

// Init installs the process logger. JSON output is meant for production log shipping,
// text output for local runs.
func Init(level string, json bool) {
	InitTo(os.Stdout, level, json)
}

// InitTo is Init with a different sink. The CLI logs to stderr so stdout stays free for
// command output and the MCP stdio transport.
func InitTo(w io.Writer, level string, json bool) {
	options := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

func NewLogger(section string) *Logger {
	return &Logger{
		inner: slog.Default().With("component", section),
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.inner.Error(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.inner.Warn(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.inner.Debug(msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		inner: l.inner.With(args...),
	}
}

// WithContext binds the request trace id when there is one.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	trace := config.TraceID(ctx)
	if trace == "" {
		return l
	}
	return l.With("traceId", trace)
}

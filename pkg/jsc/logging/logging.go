package logging

import (
	"context"
	"fmt"
	"log/slog"
)

const redactedText = "[redacted]"

// Logger is what contexts, groups and classes log lifecycle events through.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}

// New returns a Logger backed by the provided slog.Logger. Passing nil binds to
// slog.Default().
func New(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *slogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *slogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

// Nop returns a Logger that discards every record.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) Logger                  { return n }

// Redacted stands in for a value that may carry script text or host data
// handed across the engine boundary. The key stays so a reader can tell the
// value was withheld rather than empty.
func Redacted(key string) slog.Attr {
	return slog.String(key, redactedText)
}

// Placeholder returns the text Redacted logs in place of the value.
func Placeholder() string {
	return redactedText
}

// Script describes an evaluation without its source: the text is redacted,
// its size in bytes is kept along with the source URL and starting line.
func Script(source, url string, line int) []any {
	return []any{
		Redacted("source"),
		slog.Int("source_bytes", len(source)),
		slog.String("url", url),
		slog.Int("line", line),
	}
}

// Handle renders an engine reference (group, context, class) as hex.
func Handle(key string, ref uintptr) slog.Attr {
	return slog.String(key, fmt.Sprintf("%#x", ref))
}

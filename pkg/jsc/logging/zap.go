package logging

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
)

// NewZap returns a Logger that writes through z. Passing nil yields a no-op
// zap logger. Arguments follow slog conventions: alternating key/value pairs
// or slog.Attr values.
func NewZap(z *zap.Logger) Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &zapLogger{logger: z}
}

type zapLogger struct {
	logger *zap.Logger
}

func (l *zapLogger) Debug(_ context.Context, msg string, args ...any) {
	l.logger.Debug(msg, fields(args)...)
}

func (l *zapLogger) Info(_ context.Context, msg string, args ...any) {
	l.logger.Info(msg, fields(args)...)
}

func (l *zapLogger) Warn(_ context.Context, msg string, args ...any) {
	l.logger.Warn(msg, fields(args)...)
}

func (l *zapLogger) Error(_ context.Context, msg string, args ...any) {
	l.logger.Error(msg, fields(args)...)
}

func (l *zapLogger) With(args ...any) Logger {
	return &zapLogger{logger: l.logger.With(fields(args)...)}
}

// badKey matches the key slog uses for a value without a key.
const badKey = "!BADKEY"

// fields converts slog-style arguments into zap fields.
func fields(args []any) []zap.Field {
	out := make([]zap.Field, 0, len(args)/2+1)
	for len(args) > 0 {
		switch a := args[0].(type) {
		case slog.Attr:
			out = append(out, attrField(a))
			args = args[1:]
		case zap.Field:
			out = append(out, a)
			args = args[1:]
		case string:
			if len(args) == 1 {
				out = append(out, zap.String(badKey, a))
				return out
			}
			out = append(out, zap.Any(a, args[1]))
			args = args[2:]
		default:
			out = append(out, zap.Any(badKey, a))
			args = args[1:]
		}
	}
	return out
}

func attrField(a slog.Attr) zap.Field {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return zap.String(a.Key, v.String())
	case slog.KindInt64:
		return zap.Int64(a.Key, v.Int64())
	case slog.KindUint64:
		return zap.Uint64(a.Key, v.Uint64())
	case slog.KindFloat64:
		return zap.Float64(a.Key, v.Float64())
	case slog.KindBool:
		return zap.Bool(a.Key, v.Bool())
	case slog.KindDuration:
		return zap.Duration(a.Key, v.Duration())
	case slog.KindTime:
		return zap.Time(a.Key, v.Time())
	default:
		return zap.Any(a.Key, v.Any())
	}
}

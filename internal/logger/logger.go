package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"parts-catalog/internal/utils"

	"go.opentelemetry.io/otel/trace"
)

var (
	instance *slog.Logger
	once     sync.Once
)

type requestIDKey struct{}

// Instance is the process JSON logger. LOG_LEVEL accepts debug, info, warn or error.
func Instance() *slog.Logger {
	once.Do(func() {
		instance = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: levelFromEnv(os.Getenv("LOG_LEVEL")),
		}))
	})

	return instance
}

func levelFromEnv(v string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// Debug lines stay local; they are never pushed to the remote endpoint.
func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelDebug, msg, attrs)
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelInfo, msg, attrs)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelWarn, msg, attrs)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelError, msg, attrs)
}

func emit(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	log := Instance()
	if ctx == nil {
		ctx = context.Background()
	}
	if !log.Enabled(ctx, level) {
		return
	}
	attrs = enrich(ctx, attrs...)
	log.LogAttrs(ctx, level, msg, attrs...)
	if level > slog.LevelDebug {
		sendLog(strings.ToLower(level.String()), msg, attrs)
	}
}

// enrich adds trace and span ids when a span is recording, and the request id when one is set.
func enrich(ctx context.Context, attrs ...slog.Attr) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
			slog.String("hostname", utils.GetHost()),
		)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	return attrs
}

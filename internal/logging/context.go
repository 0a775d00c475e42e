package logging

import (
	"context"
	"log/slog"
	"os"
)

type requestLoggerContextKey struct{}

// FromContext returns the request logger, or a stdout JSON logger tagged
// "fallback" when none was attached
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(requestLoggerContextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.New(NewTracingLogHandler(slog.NewJSONHandler(os.Stdout, nil))).With(slog.String("logger", "fallback"))
}

func AddToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, requestLoggerContextKey{}, logger)
}

func AddMetaToContext(ctx context.Context, attrs ...slog.Attr) context.Context {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return AddToContext(ctx, FromContext(ctx).With(args...))
}

// AddPlayerToContext tags the logger with the validated player id.
// The request logger only has the raw path value.
func AddPlayerToContext(ctx context.Context, playerID string) context.Context {
	return AddMetaToContext(ctx, slog.String("normalizedPlayerId", playerID))
}

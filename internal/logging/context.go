package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithLogger stores a logger in the context, typically with request-scoped
// attrs such as the request id already attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the context's logger, or the fallback when none was
// stored. The result may be nil when the fallback is nil.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return fallback
}

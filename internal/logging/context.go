package logging

import (
	"context"
	"log/slog"
)

// ctxKey is an unexported type for context keys defined in this package.
type ctxKey string

const (
	loggerKey ctxKey = "logger"
	callIDKey ctxKey = "callID"
)

// WithLogger stores the provided logger on the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the scoped logger or falls back to slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithCallID stores an outbound call identifier on the context.
func WithCallID(ctx context.Context, callID string) context.Context {
	if ctx == nil || callID == "" {
		return ctx
	}
	return context.WithValue(ctx, callIDKey, callID)
}

// CallIDFromContext retrieves a previously stored call identifier.
func CallIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if callID, ok := ctx.Value(callIDKey).(string); ok {
		return callID
	}
	return ""
}

package common

import (
	"context"
	"log/slog"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyLabel     contextKey = "label"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithLabel stores the caller's free-text label. It is only logged.
func WithLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, ContextKeyLabel, label)
}

func LabelFromContext(ctx context.Context) string {
	if label, ok := ctx.Value(ContextKeyLabel).(string); ok {
		return label
	}
	return ""
}

// Logger returns logger enriched with the request id and label from ctx, if any.
func Logger(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if rid := RequestIDFromContext(ctx); rid != "" {
		logger = logger.With("req_id", rid)
	}
	if label := LabelFromContext(ctx); label != "" {
		logger = logger.With("label", label)
	}
	return logger
}

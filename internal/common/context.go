package common

import (
	"context"
)

type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyUserID    contextKey = "user_id"
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

// WithUserID records the authenticated caller for log correlation.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// LogFields returns the request-scoped slog key/value pairs present in ctx.
func LogFields(ctx context.Context) []any {
	var out []any
	if id := RequestIDFromContext(ctx); id != "" {
		out = append(out, "request_id", id)
	}
	if id, ok := ctx.Value(ContextKeyUserID).(string); ok && id != "" {
		out = append(out, "user_id", id)
	}
	return out
}

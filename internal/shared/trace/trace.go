// Package trace carries the per-request correlation id as an explicit context
// value. The id crosses the closure queue as a message field and is
// re-hydrated by the consumer, so no global mutable state is involved.
package trace

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used to accept and echo the correlation id.
const Header = "X-Trace-Id"

type contextKey struct{}

// New returns a fresh correlation id.
func New() string {
	return uuid.NewString()
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, traceID)
}

// FromContext returns the correlation id, or "" when none was attached.
func FromContext(ctx context.Context) string {
	if value, ok := ctx.Value(contextKey{}).(string); ok {
		return value
	}
	return ""
}

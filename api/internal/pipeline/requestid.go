package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// ContextWithRequestID attaches a caller-supplied request id (e.g. from X-Request-ID).
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, strings.TrimSpace(id))
}

// RequestIDFromContext returns the attached request id or a fresh uuid.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Package domain holds the storefront's core types, the error model and
// request-scoped context helpers.
package domain

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const (
	requestIDContextKey contextKey = iota
	cartIDContextKey
)

// NewContextWithRequestID returns a copy of ctx carrying requestID.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext returns the request id, or "" when none is set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// NewContextWithCartID returns a copy of ctx carrying the resolved cart id.
func NewContextWithCartID(ctx context.Context, cartID string) context.Context {
	return context.WithValue(ctx, cartIDContextKey, cartID)
}

// CartIDFromContext returns the cart id, or "" when none is set.
func CartIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(cartIDContextKey).(string)
	return id
}

// Logger returns the request logger stored in ctx by the logging middleware,
// or fallback when ctx has none.
func Logger(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}

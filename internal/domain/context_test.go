package domain

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	t.Run("empty when unset", func(t *testing.T) {
		assert.Equal(t, "", RequestIDFromContext(context.Background()))
	})

	t.Run("returns stored id", func(t *testing.T) {
		ctx := NewContextWithRequestID(context.Background(), "req-123")
		assert.Equal(t, "req-123", RequestIDFromContext(ctx))
	})
}

func TestCartIDContext(t *testing.T) {
	t.Run("empty when unset", func(t *testing.T) {
		assert.Equal(t, "", CartIDFromContext(context.Background()))
	})

	t.Run("returns stored id", func(t *testing.T) {
		ctx := NewContextWithCartID(context.Background(), "cart_1")
		assert.Equal(t, "cart_1", CartIDFromContext(ctx))
	})

	t.Run("keys do not collide", func(t *testing.T) {
		ctx := NewContextWithCartID(context.Background(), "cart_1")
		ctx = NewContextWithRequestID(ctx, "req-1")
		assert.Equal(t, "cart_1", CartIDFromContext(ctx))
		assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	})
}

func TestLogger(t *testing.T) {
	var fallbackBuf, ctxBuf bytes.Buffer
	fallback := zerolog.New(&fallbackBuf)

	t.Run("uses fallback without a context logger", func(t *testing.T) {
		Logger(context.Background(), &fallback).Info().Msg("hello")
		assert.Contains(t, fallbackBuf.String(), "hello")
	})

	t.Run("prefers the context logger", func(t *testing.T) {
		reqLogger := zerolog.New(&ctxBuf)
		ctx := reqLogger.WithContext(context.Background())

		Logger(ctx, &fallback).Info().Msg("scoped")
		assert.Contains(t, ctxBuf.String(), "scoped")
		assert.NotContains(t, fallbackBuf.String(), "scoped")
	})
}

package newsletter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/dukerupert/harvansh/internal/handler"
	"github.com/dukerupert/harvansh/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *telemetry.BusinessMetrics) {
	t.Helper()
	metrics := telemetry.NewBusinessMetrics("test", prometheus.NewRegistry())
	s := NewService(handler.NewValidator(), metrics, zerolog.Nop())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	return s, metrics
}

func TestService_Subscribe(t *testing.T) {
	ctx := context.Background()
	s, metrics := newTestService(t)

	sub, err := s.Subscribe(ctx, "  Ada@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", sub.Email)
	assert.Equal(t, 2024, sub.SubscribedAt.Year())
	assert.Contains(t, s.subscribers, "ada@example.com")

	_, err = s.Subscribe(ctx, "ada@EXAMPLE.com")
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	assert.Len(t, s.subscribers, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NewsletterSignups.WithLabelValues("subscribed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NewsletterSignups.WithLabelValues("duplicate")))
}

func TestService_SubscribeInvalid(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		message string
	}{
		{"empty", "", "email is required"},
		{"whitespace", "   ", "email is required"},
		{"no at sign", "ada.example.com", "email must be a valid email address"},
		{"no domain", "ada@", "email must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, metrics := newTestService(t)
			_, err := s.Subscribe(context.Background(), tt.email)
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err))
			assert.Equal(t, tt.message, domain.GetValidationFields(err)["email"])
			assert.Empty(t, s.subscribers)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NewsletterSignups.WithLabelValues("invalid")))
		})
	}
}

func TestService_SubscribeListFull(t *testing.T) {
	ctx := context.Background()
	s, metrics := newTestService(t)
	s.limit = 3

	for i := range 3 {
		_, err := s.Subscribe(ctx, fmt.Sprintf("reader%d@example.com", i))
		require.NoError(t, err)
	}

	_, err := s.Subscribe(ctx, "late@example.com")
	require.Error(t, err)
	assert.Equal(t, domain.ERATELIMIT, domain.ErrorCode(err))
	assert.Len(t, s.subscribers, 3)
	assert.NotContains(t, s.subscribers, "late@example.com")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NewsletterSignups.WithLabelValues("rejected")))

	// An existing reader still gets the duplicate answer once the list is full.
	_, err = s.Subscribe(ctx, "reader0@example.com")
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

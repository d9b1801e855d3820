// Package newsletter keeps the storefront's mailing list signups in memory.
package newsletter

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/dukerupert/harvansh/internal/telemetry"
	"github.com/rs/zerolog"
)

// DefaultMaxSubscribers bounds the in-memory list.
const DefaultMaxSubscribers = 10000

// FieldValidator checks a single value against validator tags.
// *handler.Validator implements it.
type FieldValidator interface {
	Var(field string, value any, tag string) error
}

// Subscription is one confirmed signup.
type Subscription struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// Service records newsletter signups. Addresses are compared case-insensitively.
type Service struct {
	mu          sync.Mutex
	subscribers map[string]Subscription
	limit       int
	validate    FieldValidator
	metrics     *telemetry.BusinessMetrics
	logger      zerolog.Logger
	now         func() time.Time
}

func NewService(validate FieldValidator, metrics *telemetry.BusinessMetrics, logger zerolog.Logger) *Service {
	return &Service{
		subscribers: make(map[string]Subscription),
		limit:       DefaultMaxSubscribers,
		validate:    validate,
		metrics:     metrics,
		logger:      logger.With().Str("component", "newsletter").Logger(),
		now:         time.Now,
	}
}

// Subscribe adds email to the list. A malformed address is EINVALID, an
// address already on the list is ECONFLICT and a full list is ERATELIMIT.
func (s *Service) Subscribe(ctx context.Context, email string) (Subscription, error) {
	const op = "newsletter.subscribe"

	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var("email", email, "required,email,max=254"); err != nil {
		if domain.IsValidationError(err) {
			s.metrics.NewsletterSignups.WithLabelValues("invalid").Inc()
		}
		return Subscription{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscribers[email]; ok {
		s.metrics.NewsletterSignups.WithLabelValues("duplicate").Inc()
		return Subscription{}, domain.Conflict(op, "This email is already subscribed")
	}
	if len(s.subscribers) >= s.limit {
		s.metrics.NewsletterSignups.WithLabelValues("rejected").Inc()
		domain.Logger(ctx, &s.logger).Warn().Int("limit", s.limit).Msg("newsletter list full")
		return Subscription{}, domain.Errorf(domain.ERATELIMIT, op, "Newsletter signups are closed, please try again later")
	}

	sub := Subscription{Email: email, SubscribedAt: s.now().UTC()}
	s.subscribers[email] = sub
	s.metrics.NewsletterSignups.WithLabelValues("subscribed").Inc()
	domain.Logger(ctx, &s.logger).Info().Msg("newsletter signup")
	return sub, nil
}

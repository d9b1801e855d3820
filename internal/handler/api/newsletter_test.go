package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/dukerupert/harvansh/internal/newsletter"
	"github.com/stretchr/testify/assert"
)

func TestNewsletterHandler_Subscribe(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedCode   string
	}{
		{"subscribes", `{"email":"ada@example.com"}`, nil, http.StatusCreated, ""},
		{"invalid email", `{"email":"nope"}`, nil, http.StatusBadRequest, domain.EINVALID},
		{"missing email", `{}`, nil, http.StatusBadRequest, domain.EINVALID},
		{"duplicate", `{"email":"ada@example.com"}`, domain.Conflict("newsletter.subscribe", "This email is already subscribed"), http.StatusConflict, domain.ECONFLICT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &mockSubscriber{
				subscribeFunc: func(ctx context.Context, email string) (newsletter.Subscription, error) {
					if tt.serviceErr != nil {
						return newsletter.Subscription{}, tt.serviceErr
					}
					return newsletter.Subscription{Email: email}, nil
				},
			}
			srv := newTestServer(t, nil, nil, sub)

			rec := srv.do(http.MethodPost, "/api/newsletter", tt.body)
			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, rec.Body.Bytes()).Error.Code)
			}
		})
	}
}

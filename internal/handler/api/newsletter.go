package api

import (
	"context"
	"net/http"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/dukerupert/harvansh/internal/newsletter"
	"github.com/labstack/echo/v4"
)

// Subscriber records newsletter signups.
type Subscriber interface {
	Subscribe(ctx context.Context, email string) (newsletter.Subscription, error)
}

// NewsletterHandler serves POST /api/newsletter.
type NewsletterHandler struct {
	subscriber Subscriber
}

func NewNewsletterHandler(subscriber Subscriber) *NewsletterHandler {
	return &NewsletterHandler{subscriber: subscriber}
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// Subscribe handles POST /api/newsletter
func (h *NewsletterHandler) Subscribe(c echo.Context) error {
	var req subscribeRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("api.newsletter.subscribe", "Request body must be valid JSON")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	sub, err := h.subscriber.Subscribe(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sub)
}

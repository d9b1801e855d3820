package routes

import (
	"github.com/dukerupert/harvansh/internal/handler"
	"github.com/dukerupert/harvansh/internal/handler/api"
	"github.com/dukerupert/harvansh/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// APIDeps contains dependencies for the /api routes
type APIDeps struct {
	CartHandler       *api.CartHandler
	CatalogHandler    *api.CatalogHandler
	NewsletterHandler *api.NewsletterHandler
}

// ServerDeps contains everything New needs to build the HTTP server
type ServerDeps struct {
	Logger zerolog.Logger

	// Validator checks request bodies. Nil gets a fresh handler.NewValidator.
	Validator *handler.Validator

	// Gatherer backs GET /metrics
	Gatherer prometheus.Gatherer

	Metrics     *middleware.Metrics
	RateLimiter *middleware.RateLimiter

	// BodyLimit is an echo size string such as "1M"
	BodyLimit string

	// SecureCookies also turns on HSTS
	SecureCookies bool

	API APIDeps
}

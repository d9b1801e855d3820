// Package routes assembles the echo server: middleware chain, error
// handling and route table.
package routes

import (
	"net/http"

	"github.com/dukerupert/harvansh/internal/handler"
	"github.com/dukerupert/harvansh/internal/middleware"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New builds the HTTP server. Middleware order, outermost first:
// request id, metrics, access log, panic recovery, security headers, body
// limit, rate limit.
func New(deps ServerDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if deps.Validator == nil {
		deps.Validator = handler.NewValidator()
	}
	e.Validator = deps.Validator
	e.HTTPErrorHandler = handler.HTTPErrorHandler(deps.Logger)

	e.Use(middleware.RequestID())
	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
	}
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			middleware.GetLogger(c, &deps.Logger).Error().
				Err(err).
				Bytes("stack", stack).
				Msg("panic recovered")
			return err
		},
	}))
	e.Use(echomw.SecureWithConfig(middleware.SecurityHeadersConfig(deps.SecureCookies)))
	if deps.BodyLimit != "" {
		e.Use(echomw.BodyLimit(deps.BodyLimit))
	}
	if deps.RateLimiter != nil {
		e.Use(deps.RateLimiter.Middleware())
	}

	e.GET("/health", health)
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	RegisterAPIRoutes(e.Group("/api"), deps.API)
	return e
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// SkipOps keeps health checks and scrapes out of the rate limiter.
func SkipOps(c echo.Context) bool {
	switch c.Path() {
	case "/health", "/metrics":
		return true
	}
	return false
}

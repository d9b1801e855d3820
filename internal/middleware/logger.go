package middleware

import (
	"time"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogger injects a request-scoped zerolog logger into the request
// context and writes one access log line per request. It must run after
// RequestID so the line carries the request id.
//
// Handler errors are passed to the echo error handler here so the logged
// status is the one the client receives.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			lctx := base.With().
				Str("method", req.Method).
				Str("path", req.URL.Path)
			if requestID := domain.RequestIDFromContext(req.Context()); requestID != "" {
				lctx = lctx.Str("request_id", requestID)
			}
			logger := lctx.Logger()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context())))

			if err := next(c); err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			event := logger.Info()
			switch {
			case status >= 500:
				event = logger.Error()
			case status >= 400:
				event = logger.Warn()
			}
			if cartID := domain.CartIDFromContext(c.Request().Context()); cartID != "" {
				event = event.Str("cart_id", cartID)
			}
			event.
				Int("status", status).
				Int64("bytes", c.Response().Size).
				Str("remote_ip", c.RealIP()).
				Dur("latency", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}

// GetLogger retrieves the request-scoped logger, or fallback when the
// middleware did not run.
func GetLogger(c echo.Context, fallback *zerolog.Logger) *zerolog.Logger {
	return domain.Logger(c.Request().Context(), fallback)
}

package middleware

import (
	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader is the header name for request ID
const RequestIDHeader = echo.HeaderXRequestID

const maxRequestIDLength = 128

// RequestID assigns each request an id. An upstream X-Request-ID (from a load
// balancer, for example) is kept when it is well formed. The id is echoed on
// the response and stored in the request context.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := req.Header.Get(RequestIDHeader)
			if !validRequestID(requestID) {
				requestID = uuid.New().String()
			}

			c.Response().Header().Set(RequestIDHeader, requestID)
			ctx := domain.NewContextWithRequestID(req.Context(), requestID)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// GetRequestID retrieves the request ID from the echo context.
func GetRequestID(c echo.Context) string {
	return domain.RequestIDFromContext(c.Request().Context())
}

// validRequestID accepts printable ASCII without spaces so ids are safe to log.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

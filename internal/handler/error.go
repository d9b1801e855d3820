// Package handler holds HTTP concerns shared by every endpoint: error
// rendering and request validation.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// errorBody is the JSON error envelope: {"error":{"code","message","fields"}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// errorResponse logs err and writes it to the client. Internal errors are
// replaced by a generic message.
func errorResponse(w http.ResponseWriter, r *http.Request, err error, fallback *zerolog.Logger) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)
	logError(r, fallback, err, code, status)
	writeError(w, r, status, errorDetail{
		Code:    code,
		Message: domain.ErrorMessage(err),
		Fields:  domain.GetValidationFields(err),
	})
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ETOOLARGE:
		return http.StatusRequestEntityTooLarge
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorHandler renders every error returned through echo, including the
// router's own 404/405 and middleware errors, in the same envelope.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			errorResponse(c.Response(), c.Request(), err, &logger)
			return
		}

		status := he.Code
		message, ok := he.Message.(string)
		if !ok || status >= http.StatusInternalServerError {
			message = http.StatusText(status)
		}
		code := httpStatusToErrorCode(status)
		if he.Internal != nil {
			logError(c.Request(), &logger, he.Internal, code, status)
		}
		writeError(c.Response(), c.Request(), status, errorDetail{Code: code, Message: message})
	}
}

// httpStatusToErrorCode is the inverse of ErrorCodeToHTTPStatus. Statuses
// without a domain code use the snake_cased status text.
func httpStatusToErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.EINVALID
	case http.StatusNotFound:
		return domain.ENOTFOUND
	case http.StatusConflict:
		return domain.ECONFLICT
	case http.StatusRequestEntityTooLarge:
		return domain.ETOOLARGE
	case http.StatusTooManyRequests:
		return domain.ERATELIMIT
	}
	if status >= http.StatusInternalServerError {
		return domain.EINTERNAL
	}
	return strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
}

func writeError(w http.ResponseWriter, r *http.Request, status int, detail errorDetail) {
	if !acceptsJSON(r) {
		http.Error(w, detail.Message, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(errorBody{Error: detail})
}

func logError(r *http.Request, fallback *zerolog.Logger, err error, code string, status int) {
	logger := domain.Logger(r.Context(), fallback)

	event := logger.Info()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Err(err).
		Str("code", code).
		Str("op", domain.ErrorOp(err)).
		Int("status", status).
		Msg("request failed")
}

// acceptsJSON reports whether the client should get a JSON error body.
// Everything under /api/ speaks JSON regardless of headers.
func acceptsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasSuffix(r.URL.Path, ".json")
}

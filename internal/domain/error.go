package domain

import (
	"errors"
	"fmt"
)

// Error codes. Each maps to one HTTP status in the handler package.
const (
	EINVALID   = "invalid"    // 400
	ENOTFOUND  = "not_found"  // 404
	ECONFLICT  = "conflict"   // 409
	ETOOLARGE  = "too_large"  // 413
	ERATELIMIT = "rate_limit" // 429
	EINTERNAL  = "internal"   // 500
)

// genericMessage replaces the message of internal errors before they reach a client.
const genericMessage = "An internal error occurred. Please try again later."

// Error is an application error carrying a machine-readable code and a
// message that is safe to return to clients.
type Error struct {
	Code    string
	Message string

	// Op names the operation that failed, e.g. "cart.add". Logged, never shown.
	Op string

	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Op != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Cart and catalog errors. Compare with errors.Is.
var (
	ErrProductNotFound  = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrItemNotFound     = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrCategoryNotFound = &Error{Code: ENOTFOUND, Message: "Category not found"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be between 1 and 9999"}
	ErrInvalidVariant   = &Error{Code: EINVALID, Message: "Variant is not offered for this product"}
	ErrInvalidCartID    = &Error{Code: EINVALID, Message: "Cart id is missing or malformed"}

	// ErrOrphanedReference marks a cart item whose product no longer resolves.
	// It never reaches a client: aggregation drops the line and counts it.
	ErrOrphanedReference = &Error{Code: EINTERNAL, Message: "Cart item references a missing product"}
)

// ErrorCode returns the code of the first *Error in err's chain.
// Validation errors report EINVALID, anything else EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if IsValidationError(err) {
		return EINVALID
	}
	return EINTERNAL
}

// ErrorMessage returns a client-safe message for err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Code == EINTERNAL {
			return genericMessage
		}
		return e.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "Validation failed"
	}
	return genericMessage
}

// ErrorOp returns the operation recorded on err, if any.
func ErrorOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Op
	}
	return ""
}

// IsCode reports whether err carries code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// Errorf builds an *Error with a formatted message.
func Errorf(code, op, format string, args ...any) error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Invalid(op, message string) error {
	return &Error{Code: EINVALID, Op: op, Message: message}
}

func Conflict(op, message string) error {
	return &Error{Code: ECONFLICT, Op: op, Message: message}
}

// Internal wraps an infrastructure failure. Clients only ever see the generic message.
func Internal(err error, op, message string) error {
	return &Error{Code: EINTERNAL, Op: op, Message: message, Err: err}
}

// ValidationError collects per-field failures for a request body or entity.
type ValidationError struct {
	Fields map[string]string
	Op     string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		for field, msg := range e.Fields {
			if e.Op != "" {
				return fmt.Sprintf("%s: %s: %s", e.Op, field, msg)
			}
			return fmt.Sprintf("%s: %s", field, msg)
		}
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: validation failed for %d fields", e.Op, len(e.Fields))
	}
	return fmt.Sprintf("validation failed for %d fields", len(e.Fields))
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(op, field, message string) error {
	return &ValidationError{Op: op, Fields: map[string]string{field: message}}
}

// AddFieldError records a field failure on err, creating the ValidationError
// when err is nil or of another type.
func AddFieldError(err error, field, message string) error {
	var ve *ValidationError
	if err != nil && errors.As(err, &ve) {
		ve.Fields[field] = message
		return ve
	}
	return &ValidationError{Fields: map[string]string{field: message}}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationFields returns the field map of a ValidationError, or nil.
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

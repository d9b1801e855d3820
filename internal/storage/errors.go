package storage

import "fmt"

// Codes mirror the domain error codes so the storage package stays free of
// upward imports.
const (
	codeInternal = "internal"
	codeInvalid  = "invalid"
	codeNotFound = "not_found"
)

// StorageError is a store failure with a code the handler layer understands.
type StorageError struct {
	Code    string
	Message string
}

func (e *StorageError) Error() string {
	return e.Message
}

// ErrorCode returns the code for HTTP status mapping.
func (e *StorageError) ErrorCode() string {
	return e.Code
}

func newStorageError(code, message string) *StorageError {
	return &StorageError{Code: code, Message: message}
}

var (
	// ErrNotFound is returned by Get when no item has the requested id.
	ErrNotFound = newStorageError(codeNotFound, "cart item not found")

	// ErrClosed is returned by operations on a store after Close.
	ErrClosed = newStorageError(codeInternal, "store is closed")

	ErrDatabaseURLRequired = newStorageError(codeInvalid, "DATABASE_URL is required for the postgres driver")
	ErrRedisURLRequired    = newStorageError(codeInvalid, "REDIS_URL is required for the redis driver")
)

// ErrUnknownDriver reports an unsupported STORE_DRIVER value.
func ErrUnknownDriver(driver string) error {
	return &StorageError{
		Code:    codeInvalid,
		Message: fmt.Sprintf("unknown store driver: %s", driver),
	}
}

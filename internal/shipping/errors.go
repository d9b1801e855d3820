package shipping

// ShippingError is a pricing-policy configuration error. Code mirrors the
// domain error codes.
type ShippingError struct {
	Code    string
	Message string
}

func (e *ShippingError) Error() string {
	return e.Message
}

var (
	ErrNegativeFee       = &ShippingError{Code: "invalid", Message: "flat shipping fee must not be negative"}
	ErrNegativeThreshold = &ShippingError{Code: "invalid", Message: "free shipping threshold must not be negative"}
)

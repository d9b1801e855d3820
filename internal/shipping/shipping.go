// Package shipping prices delivery for a cart.
package shipping

import "github.com/shopspring/decimal"

// Calculator quotes shipping for a cart subtotal.
type Calculator interface {
	Quote(subtotal decimal.Decimal, itemCount int) Quote
}

// Quote is the shipping outcome for one cart.
type Quote struct {
	Cost decimal.Decimal

	// FreeShippingRemaining is how much more the customer must spend to ship
	// free. Zero once free shipping applies.
	FreeShippingRemaining decimal.Decimal

	Free bool
}

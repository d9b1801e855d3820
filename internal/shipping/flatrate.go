package shipping

import "github.com/shopspring/decimal"

// FlatRate charges Fee on every non-empty cart whose subtotal is below
// FreeThreshold. Empty carts ship free.
type FlatRate struct {
	Fee           decimal.Decimal
	FreeThreshold decimal.Decimal
}

var _ Calculator = (*FlatRate)(nil)

// NewFlatRate validates the policy amounts.
func NewFlatRate(fee, freeThreshold decimal.Decimal) (*FlatRate, error) {
	if fee.IsNegative() {
		return nil, ErrNegativeFee
	}
	if freeThreshold.IsNegative() {
		return nil, ErrNegativeThreshold
	}
	return &FlatRate{Fee: fee, FreeThreshold: freeThreshold}, nil
}

func (r *FlatRate) Quote(subtotal decimal.Decimal, itemCount int) Quote {
	if itemCount <= 0 {
		return Quote{Cost: decimal.Zero, FreeShippingRemaining: r.FreeThreshold, Free: true}
	}
	if subtotal.GreaterThanOrEqual(r.FreeThreshold) {
		return Quote{Cost: decimal.Zero, FreeShippingRemaining: decimal.Zero, Free: true}
	}
	return Quote{
		Cost:                  r.Fee,
		FreeShippingRemaining: r.FreeThreshold.Sub(subtotal),
	}
}

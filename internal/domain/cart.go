package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MaxCartIDLength bounds client-supplied cart ids.
const MaxCartIDLength = 128

// MaxQuantity bounds the quantity of a single cart line, merges included.
const MaxQuantity = 9999

// ValidCartID reports whether id is a usable cart id: non-empty, at most
// MaxCartIDLength bytes, drawn from [A-Za-z0-9._:-].
func ValidCartID(id string) bool {
	if id == "" || len(id) > MaxCartIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == ':', c == '-':
		default:
			return false
		}
	}
	return true
}

// CartItem is one line of a cart. At most one item exists per
// (CartID, ProductID, Variant).
type CartItem struct {
	ID        int64     `json:"id"`
	CartID    string    `json:"cartId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	Variant   string    `json:"variant,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SameLine reports whether two items would merge on add.
func (i *CartItem) SameLine(cartID string, productID int64, variant string) bool {
	return i.CartID == cartID && i.ProductID == productID && i.Variant == variant
}

// ProductSnapshot is the product data embedded in a cart line.
type ProductSnapshot struct {
	ID        int64
	Name      string
	Slug      string
	Price     decimal.Decimal
	SalePrice decimal.NullDecimal
	Image     string
}

// Snapshot copies the fields a cart line displays.
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Price:     p.Price,
		SalePrice: p.SalePrice,
		Image:     p.Image,
	}
}

// CartLine pairs an item with its product and priced totals.
type CartLine struct {
	Item      CartItem
	Product   ProductSnapshot
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// CartView is the priced, display-ready cart.
type CartView struct {
	CartID                string
	Lines                 []CartLine
	ItemCount             int
	Subtotal              decimal.Decimal
	ShippingCost          decimal.Decimal
	Total                 decimal.Decimal
	FreeShippingRemaining decimal.Decimal
}

// CartService is the cart surface handlers depend on.
type CartService interface {
	GetCart(ctx context.Context, cartID string) (*CartView, error)
	AddItem(ctx context.Context, cartID string, productID int64, quantity int, variant string) (*CartItem, error)

	// SetQuantity returns removed=true and a nil item when quantity <= 0
	// deleted the line.
	SetQuantity(ctx context.Context, itemID int64, quantity int) (item *CartItem, removed bool, err error)
	RemoveItem(ctx context.Context, itemID int64) (bool, error)
	ClearCart(ctx context.Context, cartID string) (int, error)
}

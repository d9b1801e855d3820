package api

import (
	"time"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/shopspring/decimal"
)

// Money is rendered as a string with two decimal places, e.g. "99.90".
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := money(d.Decimal)
	return &s
}

type productResponse struct {
	ID             int64                 `json:"id"`
	Name           string                `json:"name"`
	Slug           string                `json:"slug"`
	Description    string                `json:"description"`
	Price          string                `json:"price"`
	SalePrice      *string               `json:"salePrice"`
	EffectivePrice string                `json:"effectivePrice"`
	Image          string                `json:"image"`
	Gallery        []string              `json:"gallery,omitempty"`
	CategoryID     int64                 `json:"categoryId"`
	IsNew          bool                  `json:"isNew"`
	OnSale         bool                  `json:"onSale"`
	Featured       bool                  `json:"featured"`
	InStock        bool                  `json:"inStock"`
	StockQuantity  int                   `json:"stockQuantity"`
	Colors         []domain.ColorVariant `json:"colors,omitempty"`
	Rating         float64               `json:"rating"`
	ReviewCount    int                   `json:"reviewCount"`
}

func newProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          money(p.Price),
		SalePrice:      nullMoney(p.SalePrice),
		EffectivePrice: money(p.EffectivePrice()),
		Image:          p.Image,
		Gallery:        p.Gallery,
		CategoryID:     p.CategoryID,
		IsNew:          p.IsNew,
		OnSale:         p.OnSale,
		Featured:       p.Featured,
		InStock:        p.InStock,
		StockQuantity:  p.Stock,
		Colors:         p.Colors,
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
	}
}

func newProductList(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, newProductResponse(&products[i]))
	}
	return out
}

type categoryResponse struct {
	Category domain.Category   `json:"category"`
	Products []productResponse `json:"products"`
}

type cartItemResponse struct {
	ID        int64     `json:"id"`
	CartID    string    `json:"cartId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	Variant   string    `json:"variant"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newCartItemResponse(item *domain.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:        item.ID,
		CartID:    item.CartID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Variant:   item.Variant,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

type lineProductResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Price     string  `json:"price"`
	SalePrice *string `json:"salePrice"`
	Image     string  `json:"image"`
}

type cartLineResponse struct {
	ID        int64               `json:"id"`
	ProductID int64               `json:"productId"`
	Quantity  int                 `json:"quantity"`
	Variant   string              `json:"variant"`
	UnitPrice string              `json:"unitPrice"`
	LineTotal string              `json:"lineTotal"`
	Product   lineProductResponse `json:"product"`
}

type cartResponse struct {
	CartID                string             `json:"cartId"`
	Items                 []cartLineResponse `json:"items"`
	ItemCount             int                `json:"itemCount"`
	Subtotal              string             `json:"subtotal"`
	ShippingCost          string             `json:"shippingCost"`
	Total                 string             `json:"total"`
	FreeShippingRemaining string             `json:"freeShippingRemaining"`
}

func newCartResponse(v *domain.CartView) cartResponse {
	items := make([]cartLineResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		items = append(items, cartLineResponse{
			ID:        l.Item.ID,
			ProductID: l.Item.ProductID,
			Quantity:  l.Item.Quantity,
			Variant:   l.Item.Variant,
			UnitPrice: money(l.UnitPrice),
			LineTotal: money(l.LineTotal),
			Product: lineProductResponse{
				ID:        l.Product.ID,
				Name:      l.Product.Name,
				Slug:      l.Product.Slug,
				Price:     money(l.Product.Price),
				SalePrice: nullMoney(l.Product.SalePrice),
				Image:     l.Product.Image,
			},
		})
	}
	return cartResponse{
		CartID:                v.CartID,
		Items:                 items,
		ItemCount:             v.ItemCount,
		Subtotal:              money(v.Subtotal),
		ShippingCost:          money(v.ShippingCost),
		Total:                 money(v.Total),
		FreeShippingRemaining: money(v.FreeShippingRemaining),
	}
}

type removedResponse struct {
	Removed bool  `json:"removed"`
	ID      int64 `json:"id"`
}

type successResponse struct {
	Success bool `json:"success"`
	Removed *int `json:"removed,omitempty"`
}

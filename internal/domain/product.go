package domain

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Category groups products for browsing.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// ColorVariant is a color a product can be ordered in. Name doubles as the
// cart item's variant key.
type ColorVariant struct {
	Name string `json:"name"`
	Hex  string `json:"hex,omitempty"`
}

// Product is a catalog entry.
type Product struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	SalePrice   decimal.NullDecimal `json:"salePrice"`
	Image       string              `json:"image"`
	Gallery     []string            `json:"gallery,omitempty"`
	CategoryID  int64               `json:"categoryId"`
	IsNew       bool                `json:"isNew"`
	OnSale      bool                `json:"onSale"`
	Featured    bool                `json:"featured"`
	InStock     bool                `json:"inStock"`
	Stock       int                 `json:"stockQuantity"`
	Colors      []ColorVariant      `json:"colors,omitempty"`
	Rating      float64             `json:"rating"`
	ReviewCount int                 `json:"reviewCount"`
}

// EffectivePrice is the sale price when one is set and lower than the base
// price, otherwise the base price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid && p.SalePrice.Decimal.LessThan(p.Price) {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// HasVariants reports whether the product is offered in named colors.
func (p *Product) HasVariants() bool {
	return len(p.Colors) > 0
}

// MatchVariant resolves variant against the declared colors, ignoring case
// and surrounding space, and returns the canonical spelling. An empty variant
// always matches and resolves to "".
func (p *Product) MatchVariant(variant string) (string, bool) {
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return "", true
	}
	for _, c := range p.Colors {
		if strings.EqualFold(c.Name, variant) {
			return c.Name, true
		}
	}
	return "", false
}

// Validate checks the product fields that the catalog enforces on write.
func (p *Product) Validate() error {
	const op = "product.validate"
	var err error
	if strings.TrimSpace(p.Name) == "" {
		err = AddFieldError(err, "name", "is required")
	}
	if !slugPattern.MatchString(p.Slug) {
		err = AddFieldError(err, "slug", "must be lowercase letters, digits and dashes")
	}
	if p.Price.IsNegative() {
		err = AddFieldError(err, "price", "must not be negative")
	}
	if p.SalePrice.Valid && p.SalePrice.Decimal.IsNegative() {
		err = AddFieldError(err, "salePrice", "must not be negative")
	}
	if p.Rating < 0 || p.Rating > 5 {
		err = AddFieldError(err, "rating", "must be between 0 and 5")
	}
	if p.Stock < 0 {
		err = AddFieldError(err, "stockQuantity", "must not be negative")
	}
	if p.ReviewCount < 0 {
		err = AddFieldError(err, "reviewCount", "must not be negative")
	}
	seen := make(map[string]bool, len(p.Colors))
	for _, c := range p.Colors {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if key == "" {
			err = AddFieldError(err, "colors", "color name is required")
			break
		}
		if seen[key] {
			err = AddFieldError(err, "colors", "duplicate color "+c.Name)
			break
		}
		seen[key] = true
	}
	if err != nil {
		err.(*ValidationError).Op = op
	}
	return err
}

// ValidSlug reports whether s is usable as a product or category slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Testimonial is a customer quote shown on the storefront.
type Testimonial struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Avatar   string `json:"avatar,omitempty"`
}

// ProductFilter narrows ListProducts. Nil pointers leave a flag unconstrained.
type ProductFilter struct {
	Category string
	Featured *bool
	OnSale   *bool
	New      *bool
	InStock  *bool
	Query    string
}

// Matches reports whether p satisfies the flag filters. Category and Query
// need catalog context and are applied by the store.
func (f ProductFilter) Matches(p *Product) bool {
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.OnSale != nil && p.OnSale != *f.OnSale {
		return false
	}
	if f.New != nil && p.IsNew != *f.New {
		return false
	}
	if f.InStock != nil && p.InStock != *f.InStock {
		return false
	}
	return true
}

// ProductLookup resolves products by id. The cart layer depends on nothing else
// from the catalog.
type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
}

// CatalogService is the read surface the storefront API exposes.
type CatalogService interface {
	ProductLookup
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	Featured(ctx context.Context) ([]Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	FindByCategory(ctx context.Context, categoryRef string) ([]Product, error)
	ListTestimonials(ctx context.Context) ([]Testimonial, error)
}

package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the YAML layout of a catalog import. Products reference their
// category by name or slug.
type Seed struct {
	Categories   []SeedCategory    `yaml:"categories"`
	Products     []SeedProduct     `yaml:"products"`
	Testimonials []SeedTestimonial `yaml:"testimonials"`
}

type SeedCategory struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

type SeedProduct struct {
	Name        string                `yaml:"name"`
	Slug        string                `yaml:"slug"`
	Description string                `yaml:"description"`
	Price       string                `yaml:"price"`
	SalePrice   string                `yaml:"sale_price"`
	Image       string                `yaml:"image"`
	Gallery     []string              `yaml:"gallery"`
	Category    string                `yaml:"category"`
	New         bool                  `yaml:"new"`
	OnSale      bool                  `yaml:"on_sale"`
	Featured    bool                  `yaml:"featured"`
	InStock     bool                  `yaml:"in_stock"`
	Stock       int                   `yaml:"stock"`
	Colors      []domain.ColorVariant `yaml:"colors"`
	Rating      float64               `yaml:"rating"`
	ReviewCount int                   `yaml:"review_count"`
}

type SeedTestimonial struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
	Rating   int    `yaml:"rating"`
	Comment  string `yaml:"comment"`
	Avatar   string `yaml:"avatar"`
}

// ParseSeed decodes a YAML seed document. Unknown fields are rejected.
func ParseSeed(r io.Reader) (*Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode catalog seed: %w", err)
	}
	return &seed, nil
}

// LoadSeed reads the seed at path, or the embedded seed when path is empty.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return ParseSeed(bytes.NewReader(defaultSeed))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog seed: %w", err)
	}
	defer f.Close()
	return ParseSeed(f)
}

// Load imports seed into the store. Categories are written first so products
// can reference them.
func (s *Store) Load(ctx context.Context, seed *Seed) error {
	categoryIDs := make(map[string]int64, len(seed.Categories))
	for _, sc := range seed.Categories {
		c, err := s.PutCategory(ctx, domain.Category{
			Name:        sc.Name,
			Slug:        sc.Slug,
			Description: sc.Description,
			Image:       sc.Image,
		})
		if err != nil {
			return fmt.Errorf("seed category %q: %w", sc.Name, err)
		}
		categoryIDs[c.Name] = c.ID
		categoryIDs[c.Slug] = c.ID
	}

	for _, sp := range seed.Products {
		p, err := sp.toProduct(categoryIDs)
		if err != nil {
			return err
		}
		if _, err := s.PutProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %q: %w", sp.Name, err)
		}
	}

	for _, st := range seed.Testimonials {
		_, err := s.AddTestimonial(ctx, domain.Testimonial{
			Name:     st.Name,
			Location: st.Location,
			Rating:   st.Rating,
			Comment:  st.Comment,
			Avatar:   st.Avatar,
		})
		if err != nil {
			return fmt.Errorf("seed testimonial %q: %w", st.Name, err)
		}
	}

	s.logger.Info().
		Int("categories", len(seed.Categories)).
		Int("products", len(seed.Products)).
		Int("testimonials", len(seed.Testimonials)).
		Msg("catalog seeded")
	return nil
}

func (sp SeedProduct) toProduct(categoryIDs map[string]int64) (domain.Product, error) {
	price, err := decimal.NewFromString(sp.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("seed product %q: invalid price %q", sp.Name, sp.Price)
	}
	var salePrice decimal.NullDecimal
	if sp.SalePrice != "" {
		d, err := decimal.NewFromString(sp.SalePrice)
		if err != nil {
			return domain.Product{}, fmt.Errorf("seed product %q: invalid sale_price %q", sp.Name, sp.SalePrice)
		}
		salePrice = decimal.NewNullDecimal(d)
	}
	categoryID, ok := categoryIDs[sp.Category]
	if !ok {
		return domain.Product{}, fmt.Errorf("seed product %q: unknown category %q", sp.Name, sp.Category)
	}
	return domain.Product{
		Name:        sp.Name,
		Slug:        sp.Slug,
		Description: sp.Description,
		Price:       price,
		SalePrice:   salePrice,
		Image:       sp.Image,
		Gallery:     sp.Gallery,
		CategoryID:  categoryID,
		IsNew:       sp.New,
		OnSale:      sp.OnSale,
		Featured:    sp.Featured,
		InStock:     sp.InStock,
		Stock:       sp.Stock,
		Colors:      sp.Colors,
		Rating:      sp.Rating,
		ReviewCount: sp.ReviewCount,
	}, nil
}

// Package catalog is the in-memory product catalog. The cart reads it through
// domain.ProductLookup and never writes to it.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/rs/zerolog"
)

// Store holds categories, products and testimonials in memory.
type Store struct {
	mu           sync.RWMutex
	categories   map[int64]domain.Category
	products     map[int64]domain.Product
	slugs        map[string]int64
	testimonials []domain.Testimonial

	nextCategoryID    int64
	nextProductID     int64
	nextTestimonialID int64

	logger zerolog.Logger
}

var _ domain.CatalogService = (*Store)(nil)

func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		categories: make(map[int64]domain.Category),
		products:   make(map[int64]domain.Product),
		slugs:      make(map[string]int64),
		logger:     logger.With().Str("component", "catalog").Logger(),
	}
}

// clone detaches slices so callers cannot mutate stored products.
func clone(p domain.Product) domain.Product {
	p.Gallery = append([]string(nil), p.Gallery...)
	p.Colors = append([]domain.ColorVariant(nil), p.Colors...)
	return p
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p = clone(p)
	return &p, nil
}

func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.slugs[strings.ToLower(slug)]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p := clone(s.products[id])
	return &p, nil
}

// ListProducts returns products matching filter, ordered by id.
func (s *Store) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var categoryID int64
	if filter.Category != "" {
		c, ok := s.categoryByRef(filter.Category)
		if !ok {
			return []domain.Product{}, nil
		}
		categoryID = c.ID
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	out := []domain.Product{}
	for _, p := range s.products {
		if categoryID != 0 && p.CategoryID != categoryID {
			continue
		}
		if !filter.Matches(&p) {
			continue
		}
		if query != "" && !s.matchesQuery(&p, query) {
			continue
		}
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Featured(ctx context.Context) ([]domain.Product, error) {
	featured := true
	return s.ListProducts(ctx, domain.ProductFilter{Featured: &featured})
}

// Search matches query case-insensitively against product name, description
// and category name. An empty query returns every product.
func (s *Store) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return s.ListProducts(ctx, domain.ProductFilter{Query: query})
}

// FindByCategory returns the products of the category whose slug or name
// equals ref, ignoring case. Unknown categories yield an empty list.
func (s *Store) FindByCategory(ctx context.Context, ref string) ([]domain.Product, error) {
	return s.ListProducts(ctx, domain.ProductFilter{Category: ref})
}

// matchesQuery expects a lowercased query and the read lock held.
func (s *Store) matchesQuery(p *domain.Product, query string) bool {
	if strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	c, ok := s.categories[p.CategoryID]
	return ok && strings.Contains(strings.ToLower(c.Name), query)
}

// categoryByRef expects the read lock held. Slugs are matched before names
// so a name that equals another category's slug cannot shadow it.
func (s *Store) categoryByRef(ref string) (domain.Category, bool) {
	ref = strings.TrimSpace(ref)
	for _, c := range s.categories {
		if strings.EqualFold(c.Slug, ref) {
			return c, true
		}
	}
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, ref) {
			return c, true
		}
	}
	return domain.Category{}, false
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetCategoryBySlug also accepts the category name.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categoryByRef(slug)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return &c, nil
}

func (s *Store) ListTestimonials(ctx context.Context) ([]domain.Testimonial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Testimonial{}, s.testimonials...), nil
}

// PutCategory inserts c, assigning an id when c.ID is zero, or replaces the
// category with c.ID. Names and slugs are unique ignoring case.
func (s *Store) PutCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	const op = "catalog.put_category"
	var verr error
	if strings.TrimSpace(c.Name) == "" {
		verr = domain.AddFieldError(verr, "name", "is required")
	}
	if !domain.ValidSlug(c.Slug) {
		verr = domain.AddFieldError(verr, "slug", "must be lowercase letters, digits and dashes")
	}
	if verr != nil {
		return domain.Category{}, verr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.ID == c.ID {
			continue
		}
		if strings.EqualFold(existing.Name, c.Name) || strings.EqualFold(existing.Slug, c.Slug) {
			return domain.Category{}, domain.Conflict(op, "category "+c.Name+" already exists")
		}
	}
	if c.ID == 0 {
		s.nextCategoryID++
		c.ID = s.nextCategoryID
	} else if c.ID > s.nextCategoryID {
		s.nextCategoryID = c.ID
	}
	s.categories[c.ID] = c
	return c, nil
}

// PutProduct validates and stores p, assigning an id when p.ID is zero.
func (s *Store) PutProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	const op = "catalog.put_product"
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[p.CategoryID]; !ok {
		return domain.Product{}, domain.NewValidationError(op, "categoryId", "unknown category")
	}
	if owner, ok := s.slugs[p.Slug]; ok && owner != p.ID {
		return domain.Product{}, domain.Conflict(op, "product slug "+p.Slug+" already exists")
	}

	if p.ID == 0 {
		s.nextProductID++
		p.ID = s.nextProductID
	} else if p.ID > s.nextProductID {
		s.nextProductID = p.ID
	}
	if prev, ok := s.products[p.ID]; ok && prev.Slug != p.Slug {
		delete(s.slugs, prev.Slug)
	}
	if p.SalePrice.Valid && !p.SalePrice.Decimal.LessThan(p.Price) {
		s.logger.Warn().
			Int64("product_id", p.ID).
			Str("price", p.Price.String()).
			Str("sale_price", p.SalePrice.Decimal.String()).
			Msg("sale price is not below base price and will be ignored")
	}

	p = clone(p)
	s.products[p.ID] = p
	s.slugs[p.Slug] = p.ID
	return clone(p), nil
}

// DeleteProduct removes a product. Cart items referencing it become orphans
// and are dropped when carts are read.
func (s *Store) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return false, nil
	}
	delete(s.products, id)
	delete(s.slugs, p.Slug)
	s.logger.Info().Int64("product_id", id).Str("slug", p.Slug).Msg("product deleted")
	return true, nil
}

// AddTestimonial appends t, assigning the next id.
func (s *Store) AddTestimonial(ctx context.Context, t domain.Testimonial) (domain.Testimonial, error) {
	if t.Rating < 1 || t.Rating > 5 {
		return domain.Testimonial{}, domain.NewValidationError("catalog.add_testimonial", "rating", "must be between 1 and 5")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTestimonialID++
	t.ID = s.nextTestimonialID
	s.testimonials = append(s.testimonials, t)
	return t, nil
}

package api

import (
	"net/http"
	"strconv"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/dukerupert/harvansh/internal/telemetry"
	"github.com/labstack/echo/v4"
)

// CatalogHandler serves read-only product, category and testimonial data.
type CatalogHandler struct {
	catalog domain.CatalogService
	metrics *telemetry.BusinessMetrics
}

func NewCatalogHandler(catalog domain.CatalogService, metrics *telemetry.BusinessMetrics) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, metrics: metrics}
}

// List handles GET /api/products with optional filters:
// category, featured, onSale, new, inStock and q.
func (h *CatalogHandler) List(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	products, err := h.catalog.ListProducts(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	h.metrics.ProductSearches.WithLabelValues(filterType(filter)).Inc()
	return c.JSON(http.StatusOK, newProductList(products))
}

// Featured handles GET /api/products/featured
func (h *CatalogHandler) Featured(c echo.Context) error {
	products, err := h.catalog.Featured(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProductList(products))
}

// Search handles GET /api/products/search?q=
func (h *CatalogHandler) Search(c echo.Context) error {
	products, err := h.catalog.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	h.metrics.ProductSearches.WithLabelValues("query").Inc()
	return c.JSON(http.StatusOK, newProductList(products))
}

// Get handles GET /api/products/:ref where ref is a numeric id or a slug.
func (h *CatalogHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ref := c.Param("ref")

	var (
		product *domain.Product
		err     error
	)
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		product, err = h.catalog.GetProduct(ctx, id)
	} else {
		product, err = h.catalog.GetProductBySlug(ctx, ref)
	}
	if err != nil {
		return err
	}
	h.metrics.ProductViews.WithLabelValues(product.Slug).Inc()
	return c.JSON(http.StatusOK, newProductResponse(product))
}

// Categories handles GET /api/categories
func (h *CatalogHandler) Categories(c echo.Context) error {
	categories, err := h.catalog.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

// Category handles GET /api/categories/:slug
func (h *CatalogHandler) Category(c echo.Context) error {
	ctx := c.Request().Context()
	category, err := h.catalog.GetCategoryBySlug(ctx, c.Param("slug"))
	if err != nil {
		return err
	}
	products, err := h.catalog.FindByCategory(ctx, category.Slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoryResponse{Category: *category, Products: newProductList(products)})
}

// CategoryProducts handles GET /api/categories/:slug/products. The
// reference may also be a category name; unknown categories list nothing.
func (h *CatalogHandler) CategoryProducts(c echo.Context) error {
	products, err := h.catalog.FindByCategory(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProductList(products))
}

// Testimonials handles GET /api/testimonials
func (h *CatalogHandler) Testimonials(c echo.Context) error {
	testimonials, err := h.catalog.ListTestimonials(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, testimonials)
}

func parseFilter(c echo.Context) (domain.ProductFilter, error) {
	filter := domain.ProductFilter{
		Category: c.QueryParam("category"),
		Query:    c.QueryParam("q"),
	}

	var verr error
	flags := []struct {
		name string
		dst  **bool
	}{
		{"featured", &filter.Featured},
		{"onSale", &filter.OnSale},
		{"new", &filter.New},
		{"inStock", &filter.InStock},
	}
	for _, f := range flags {
		raw := c.QueryParam(f.name)
		if raw == "" {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			verr = domain.AddFieldError(verr, f.name, f.name+" must be true or false")
			continue
		}
		*f.dst = &b
	}
	if verr != nil {
		return domain.ProductFilter{}, verr
	}
	return filter, nil
}

func filterType(f domain.ProductFilter) string {
	switch {
	case f.Query != "":
		return "query"
	case f.Category != "":
		return "category"
	case f.Featured != nil || f.OnSale != nil || f.New != nil || f.InStock != nil:
		return "flags"
	default:
		return "none"
	}
}

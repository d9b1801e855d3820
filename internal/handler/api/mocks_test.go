package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/harvansh/internal/cookie"
	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/dukerupert/harvansh/internal/handler/api"
	"github.com/dukerupert/harvansh/internal/identity"
	"github.com/dukerupert/harvansh/internal/newsletter"
	"github.com/dukerupert/harvansh/internal/routes"
	"github.com/dukerupert/harvansh/internal/telemetry"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// mockCartService implements domain.CartService for testing
type mockCartService struct {
	getCartFunc     func(ctx context.Context, cartID string) (*domain.CartView, error)
	addItemFunc     func(ctx context.Context, cartID string, productID int64, quantity int, variant string) (*domain.CartItem, error)
	setQuantityFunc func(ctx context.Context, itemID int64, quantity int) (*domain.CartItem, bool, error)
	removeItemFunc  func(ctx context.Context, itemID int64) (bool, error)
	clearCartFunc   func(ctx context.Context, cartID string) (int, error)
}

func (m *mockCartService) GetCart(ctx context.Context, cartID string) (*domain.CartView, error) {
	if m.getCartFunc != nil {
		return m.getCartFunc(ctx, cartID)
	}
	return &domain.CartView{CartID: cartID}, nil
}

func (m *mockCartService) AddItem(ctx context.Context, cartID string, productID int64, quantity int, variant string) (*domain.CartItem, error) {
	if m.addItemFunc != nil {
		return m.addItemFunc(ctx, cartID, productID, quantity, variant)
	}
	return nil, nil
}

func (m *mockCartService) SetQuantity(ctx context.Context, itemID int64, quantity int) (*domain.CartItem, bool, error) {
	if m.setQuantityFunc != nil {
		return m.setQuantityFunc(ctx, itemID, quantity)
	}
	return nil, false, nil
}

func (m *mockCartService) RemoveItem(ctx context.Context, itemID int64) (bool, error) {
	if m.removeItemFunc != nil {
		return m.removeItemFunc(ctx, itemID)
	}
	return false, nil
}

func (m *mockCartService) ClearCart(ctx context.Context, cartID string) (int, error) {
	if m.clearCartFunc != nil {
		return m.clearCartFunc(ctx, cartID)
	}
	return 0, nil
}

// mockCatalog implements domain.CatalogService for testing
type mockCatalog struct {
	products     []domain.Product
	categories   []domain.Category
	testimonials []domain.Testimonial
	listFunc     func(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

func (m *mockCatalog) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockCatalog) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	for i := range m.products {
		if m.products[i].Slug == slug {
			return &m.products[i], nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockCatalog) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return m.products, nil
}

func (m *mockCatalog) Featured(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalog) Search(ctx context.Context, query string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return m.categories, nil
}

func (m *mockCatalog) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for i := range m.categories {
		if m.categories[i].Slug == slug {
			return &m.categories[i], nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (m *mockCatalog) FindByCategory(ctx context.Context, ref string) ([]domain.Product, error) {
	var id int64
	for _, c := range m.categories {
		if c.Slug == ref || c.Name == ref {
			id = c.ID
		}
	}
	out := []domain.Product{}
	for _, p := range m.products {
		if id != 0 && p.CategoryID == id {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalog) ListTestimonials(ctx context.Context) ([]domain.Testimonial, error) {
	return m.testimonials, nil
}

// mockSubscriber implements api.Subscriber for testing
type mockSubscriber struct {
	subscribeFunc func(ctx context.Context, email string) (newsletter.Subscription, error)
}

func (m *mockSubscriber) Subscribe(ctx context.Context, email string) (newsletter.Subscription, error) {
	if m.subscribeFunc != nil {
		return m.subscribeFunc(ctx, email)
	}
	return newsletter.Subscription{Email: email}, nil
}

type testServer struct {
	e *echo.Echo
}

func newTestServer(t *testing.T, cart domain.CartService, catalog domain.CatalogService, sub api.Subscriber) *testServer {
	t.Helper()
	if cart == nil {
		cart = &mockCartService{}
	}
	if catalog == nil {
		catalog = &mockCatalog{}
	}
	if sub == nil {
		sub = &mockSubscriber{}
	}
	metrics := telemetry.NewBusinessMetrics("test", prometheus.NewRegistry())
	resolver := identity.NewResolver(cookie.NewConfig("", false))

	e := routes.New(routes.ServerDeps{
		Logger: zerolog.Nop(),
		API: routes.APIDeps{
			CartHandler:       api.NewCartHandler(cart, resolver),
			CatalogHandler:    api.NewCatalogHandler(catalog, metrics),
			NewsletterHandler: api.NewNewsletterHandler(sub),
		},
	})
	return &testServer{e: e}
}

func (s *testServer) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

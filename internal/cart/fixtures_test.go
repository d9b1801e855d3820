package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/harvansh/internal/catalog"
	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/dukerupert/harvansh/internal/storage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	pidLamp   int64 = 3
	pidBasket int64 = 4
	pidThrow  int64 = 5
	pidChair  int64 = 7
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newCatalog returns a catalog with a small fixed product set:
// a lamp in two colors, a basket whose sale price is above its price,
// a throw on a real sale and a chair at 99.99 with no variants.
func newCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	ctx := context.Background()
	s := catalog.NewStore(zerolog.Nop())
	c, err := s.PutCategory(ctx, domain.Category{Name: "Home", Slug: "home"})
	require.NoError(t, err)

	products := []domain.Product{
		{
			ID: pidLamp, Name: "Table Lamp", Slug: "table-lamp", Price: money("79.99"), CategoryID: c.ID,
			Colors: []domain.ColorVariant{{Name: "Brass"}, {Name: "Black"}},
		},
		{
			ID: pidBasket, Name: "Basket Set", Slug: "basket-set", Price: money("49.99"),
			SalePrice: decimal.NewNullDecimal(money("65.99")), CategoryID: c.ID,
		},
		{
			ID: pidThrow, Name: "Linen Throw", Slug: "linen-throw", Price: money("50.00"),
			SalePrice: decimal.NewNullDecimal(money("40.00")), CategoryID: c.ID,
		},
		{ID: pidChair, Name: "Rattan Chair", Slug: "rattan-chair", Price: money("99.99"), CategoryID: c.ID},
	}
	for _, p := range products {
		_, err := s.PutProduct(ctx, p)
		require.NoError(t, err)
	}
	return s
}

func newRepo(t *testing.T, lookup domain.ProductLookup) (*Repository, storage.CartStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	repo, err := NewRepository(context.Background(), store, lookup)
	require.NoError(t, err)
	return repo, store
}

// mockLookup is a function-field ProductLookup.
type mockLookup struct {
	getProductFunc func(ctx context.Context, id int64) (*domain.Product, error)
}

func (m *mockLookup) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return m.getProductFunc(ctx, id)
}

// failingStore wraps a store and fails writes once failPut is set.
type failingStore struct {
	storage.CartStore
	failPut bool
}

var errDiskFull = errors.New("disk full")

func (s *failingStore) Put(ctx context.Context, item domain.CartItem) error {
	if s.failPut {
		return errDiskFull
	}
	return s.CartStore.Put(ctx, item)
}

package cart

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/dukerupert/harvansh/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_AddItemMerges(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, newCatalog(t))

	first, err := repo.AddItem(ctx, "c1", pidChair, 2, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, 2, first.Quantity)

	second, err := repo.AddItem(ctx, "c1", pidChair, 3, "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	items, err := repo.ListItems(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestRepository_AddItemSeparatesLines(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, newCatalog(t))

	brass, err := repo.AddItem(ctx, "c1", pidLamp, 1, "Brass")
	require.NoError(t, err)
	black, err := repo.AddItem(ctx, "c1", pidLamp, 1, "Black")
	require.NoError(t, err)
	plain, err := repo.AddItem(ctx, "c1", pidLamp, 1, "")
	require.NoError(t, err)
	otherCart, err := repo.AddItem(ctx, "c2", pidLamp, 1, "Brass")
	require.NoError(t, err)

	got := []int64{brass.ID, black.ID, plain.ID, otherCart.ID}
	assert.Equal(t, []int64{1, 2, 3, 4}, got)

	t.Run("variant match ignores case and stores canonical spelling", func(t *testing.T) {
		merged, err := repo.AddItem(ctx, "c1", pidLamp, 2, "  bRASS ")
		require.NoError(t, err)
		assert.Equal(t, brass.ID, merged.ID)
		assert.Equal(t, "Brass", merged.Variant)
		assert.Equal(t, 3, merged.Quantity)
	})
}

func TestRepository_AddItemValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		cartID    string
		productID int64
		quantity  int
		variant   string
		wantErr   error
	}{
		{"zero quantity", "c1", pidChair, 0, "", domain.ErrInvalidQuantity},
		{"negative quantity", "c1", pidChair, -4, "", domain.ErrInvalidQuantity},
		{"quantity above max", "c1", pidChair, domain.MaxQuantity + 1, "", domain.ErrInvalidQuantity},
		{"max int quantity", "c1", pidChair, math.MaxInt, "", domain.ErrInvalidQuantity},
		{"empty cart id", "", pidChair, 1, "", domain.ErrInvalidCartID},
		{"malformed cart id", "c1; drop", pidChair, 1, "", domain.ErrInvalidCartID},
		{"unknown product", "c1", 404, 1, "", domain.ErrProductNotFound},
		{"undeclared variant", "c1", pidLamp, 1, "Purple", domain.ErrInvalidVariant},
		{"variant on product without colors", "c1", pidChair, 1, "Red", domain.ErrInvalidVariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, store := newRepo(t, newCatalog(t))
			_, err := repo.AddItem(ctx, tt.cartID, tt.productID, tt.quantity, tt.variant)
			assert.ErrorIs(t, err, tt.wantErr)

			all, err := store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all, "a rejected add must not write")
		})
	}
}

func TestRepository_AddItemQuantityCap(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, newCatalog(t))

	full, err := repo.AddItem(ctx, "c1", pidChair, domain.MaxQuantity, "")
	require.NoError(t, err)
	assert.Equal(t, domain.MaxQuantity, full.Quantity)

	for _, qty := range []int{1, math.MaxInt} {
		_, err = repo.AddItem(ctx, "c1", pidChair, qty, "")
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "merging %d into a full line", qty)
	}

	items, err := repo.ListItems(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.MaxQuantity, items[0].Quantity)

	t.Run("merge up to the cap", func(t *testing.T) {
		_, err := repo.AddItem(ctx, "c2", pidChair, domain.MaxQuantity-3, "")
		require.NoError(t, err)
		merged, err := repo.AddItem(ctx, "c2", pidChair, 3, "")
		require.NoError(t, err)
		assert.Equal(t, domain.MaxQuantity, merged.Quantity)
	})
}

func TestRepository_IDsAreNeverReused(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, newCatalog(t))

	a, err := repo.AddItem(ctx, "c1", pidChair, 1, "")
	require.NoError(t, err)
	removed, err := repo.RemoveItem(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, removed)

	b, err := repo.AddItem(ctx, "c1", pidChair, 1, "")
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)
}

func TestNewRepository_SeedsCounterFromStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(ctx, domain.CartItem{ID: 41, CartID: "old", ProductID: pidChair, Quantity: 1}))

	repo, err := NewRepository(ctx, store, newCatalog(t))
	require.NoError(t, err)

	item, err := repo.AddItem(ctx, "new", pidChair, 1, "")
	require.NoError(t, err)
	assert.Equal(t, int64(42), item.ID)
}

func TestRepository_SetQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("updates quantity", func(t *testing.T) {
		repo, _ := newRepo(t, newCatalog(t))
		item, err := repo.AddItem(ctx, "c1", pidChair, 1, "")
		require.NoError(t, err)

		updated, removed, err := repo.SetQuantity(ctx, item.ID, 6)
		require.NoError(t, err)
		assert.False(t, removed)
		assert.Equal(t, 6, updated.Quantity)
		assert.False(t, updated.UpdatedAt.Before(item.UpdatedAt))
	})

	for _, qty := range []int{0, -1} {
		t.Run(fmt.Sprintf("quantity %d removes the item", qty), func(t *testing.T) {
			repo, _ := newRepo(t, newCatalog(t))
			item, err := repo.AddItem(ctx, "c1", pidChair, 2, "")
			require.NoError(t, err)

			updated, removed, err := repo.SetQuantity(ctx, item.ID, qty)
			require.NoError(t, err)
			assert.True(t, removed)
			assert.Nil(t, updated)

			items, err := repo.ListItems(ctx, "c1")
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}

	t.Run("quantity above max is rejected", func(t *testing.T) {
		repo, _ := newRepo(t, newCatalog(t))
		item, err := repo.AddItem(ctx, "c1", pidChair, 2, "")
		require.NoError(t, err)

		for _, qty := range []int{domain.MaxQuantity + 1, math.MaxInt} {
			_, _, err = repo.SetQuantity(ctx, item.ID, qty)
			assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
		}

		updated, _, err := repo.SetQuantity(ctx, item.ID, domain.MaxQuantity)
		require.NoError(t, err)
		assert.Equal(t, domain.MaxQuantity, updated.Quantity)
	})

	t.Run("unknown item", func(t *testing.T) {
		repo, _ := newRepo(t, newCatalog(t))
		_, _, err := repo.SetQuantity(ctx, 99, 3)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
		_, _, err = repo.SetQuantity(ctx, 99, 0)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})
}

func TestRepository_RemoveItemIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, newCatalog(t))

	keep, err := repo.AddItem(ctx, "c1", pidLamp, 1, "Brass")
	require.NoError(t, err)
	drop, err := repo.AddItem(ctx, "c1", pidChair, 1, "")
	require.NoError(t, err)

	removed, err := repo.RemoveItem(ctx, drop.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveItem(ctx, drop.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.GetItem(ctx, drop.ID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	got, err := repo.GetItem(ctx, keep.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
}

func TestRepository_Clear(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, newCatalog(t))

	_, err := repo.AddItem(ctx, "c1", pidLamp, 1, "Brass")
	require.NoError(t, err)
	_, err = repo.AddItem(ctx, "c1", pidChair, 1, "")
	require.NoError(t, err)
	other, err := repo.AddItem(ctx, "c2", pidChair, 1, "")
	require.NoError(t, err)

	n, err := repo.Clear(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.Clear(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	items, err := repo.ListItems(ctx, "c2")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, other.ID, items[0].ID)
}

func TestRepository_FailedWriteLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{CartStore: storage.NewMemoryStore()}
	repo, err := NewRepository(ctx, store, newCatalog(t))
	require.NoError(t, err)

	item, err := repo.AddItem(ctx, "c1", pidChair, 2, "")
	require.NoError(t, err)

	store.failPut = true
	_, err = repo.AddItem(ctx, "c1", pidChair, 3, "")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.EINTERNAL))
	assert.ErrorIs(t, err, errDiskFull)

	_, _, err = repo.SetQuantity(ctx, item.ID, 10)
	require.Error(t, err)

	got, err := repo.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
}

func TestRepository_ConcurrentAddsMerge(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, newCatalog(t))

	const workers = 64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.AddItem(ctx, "c1", pidLamp, 1, "Black")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := repo.ListItems(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, workers, items[0].Quantity)
}

func TestRepository_ConcurrentCartsGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo(t, newCatalog(t))

	const carts = 32
	var wg sync.WaitGroup
	wg.Add(carts)
	for i := 0; i < carts; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := repo.AddItem(ctx, fmt.Sprintf("cart-%d", i), pidChair, 1, "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, carts)
	seen := make(map[int64]bool, carts)
	for _, item := range all {
		assert.False(t, seen[item.ID], "duplicate id %d", item.ID)
		seen[item.ID] = true
	}
}

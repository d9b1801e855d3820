// Package cart owns cart line items and prices carts against the catalog.
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/dukerupert/harvansh/internal/storage"
)

// Repository is the single writer of cart items. It enforces one item per
// (cart, product, variant) and allocates item ids from a counter that is
// never rewound. Mutations hold the write lock from lookup to store write.
type Repository struct {
	mu      sync.RWMutex
	store   storage.CartStore
	catalog domain.ProductLookup
	lastID  int64
	now     func() time.Time
}

// NewRepository seeds the id counter from the highest id already in store.
func NewRepository(ctx context.Context, store storage.CartStore, catalog domain.ProductLookup) (*Repository, error) {
	maxID, err := store.MaxID(ctx)
	if err != nil {
		return nil, domain.Internal(err, "cart.new_repository", "failed to read highest cart item id")
	}
	return &Repository{
		store:   store,
		catalog: catalog,
		lastID:  maxID,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// AddItem adds quantity of productID to cartID, merging into the existing
// line for the same product and variant.
func (r *Repository) AddItem(ctx context.Context, cartID string, productID int64, quantity int, variant string) (*domain.CartItem, error) {
	item, _, err := r.Merge(ctx, cartID, productID, quantity, variant)
	return item, err
}

// Merge is AddItem that also reports whether an existing line absorbed the quantity.
func (r *Repository) Merge(ctx context.Context, cartID string, productID int64, quantity int, variant string) (*domain.CartItem, bool, error) {
	const op = "cart.add"

	if quantity < 1 || quantity > domain.MaxQuantity {
		return nil, false, domain.ErrInvalidQuantity
	}
	if !domain.ValidCartID(cartID) {
		return nil, false, domain.ErrInvalidCartID
	}
	product, err := r.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, false, domain.ErrProductNotFound
		}
		return nil, false, domain.Internal(err, op, "failed to look up product")
	}
	canonical, ok := product.MatchVariant(variant)
	if !ok {
		return nil, false, domain.ErrInvalidVariant
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.store.ListByCart(ctx, cartID)
	if err != nil {
		return nil, false, domain.Internal(err, op, "failed to load cart")
	}
	now := r.now()

	for _, existing := range items {
		if !existing.SameLine(cartID, productID, canonical) {
			continue
		}
		if existing.Quantity > domain.MaxQuantity-quantity {
			return nil, false, domain.ErrInvalidQuantity
		}
		existing.Quantity += quantity
		existing.UpdatedAt = now
		if err := r.store.Put(ctx, existing); err != nil {
			return nil, false, domain.Internal(err, op, "failed to save cart item")
		}
		return &existing, true, nil
	}

	r.lastID++
	item := domain.CartItem{
		ID:        r.lastID,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		Variant:   canonical,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.Put(ctx, item); err != nil {
		return nil, false, domain.Internal(err, op, "failed to save cart item")
	}
	return &item, false, nil
}

// SetQuantity replaces an item's quantity. A quantity of zero or less removes
// the item and reports removed=true with a nil item. Quantities above
// domain.MaxQuantity are rejected.
func (r *Repository) SetQuantity(ctx context.Context, itemID int64, quantity int) (*domain.CartItem, bool, error) {
	const op = "cart.update"

	if quantity > domain.MaxQuantity {
		return nil, false, domain.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, err := r.store.Get(ctx, itemID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, false, domain.Internal(err, op, "failed to load cart item")
	}

	if quantity <= 0 {
		if _, err := r.store.Delete(ctx, itemID); err != nil {
			return nil, false, domain.Internal(err, op, "failed to remove cart item")
		}
		return nil, true, nil
	}

	item.Quantity = quantity
	item.UpdatedAt = r.now()
	if err := r.store.Put(ctx, item); err != nil {
		return nil, false, domain.Internal(err, op, "failed to save cart item")
	}
	return &item, false, nil
}

// RemoveItem reports whether an item was deleted. Unknown ids are not an error.
func (r *Repository) RemoveItem(ctx context.Context, itemID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed, err := r.store.Delete(ctx, itemID)
	if err != nil {
		return false, domain.Internal(err, "cart.remove", "failed to remove cart item")
	}
	return removed, nil
}

// GetItem returns one item or domain.ErrItemNotFound.
func (r *Repository) GetItem(ctx context.Context, itemID int64) (*domain.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, err := r.store.Get(ctx, itemID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, domain.Internal(err, "cart.get_item", "failed to load cart item")
	}
	return &item, nil
}

// ListItems returns a cart's items in creation order. Unknown carts are empty.
func (r *Repository) ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, err := r.store.ListByCart(ctx, cartID)
	if err != nil {
		return nil, domain.Internal(err, "cart.list", "failed to load cart")
	}
	return items, nil
}

// AllItems returns every item across carts in id order.
func (r *Repository) AllItems(ctx context.Context) ([]domain.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, err := r.store.List(ctx)
	if err != nil {
		return nil, domain.Internal(err, "cart.list_all", "failed to load cart items")
	}
	return items, nil
}

// Clear removes every item of cartID and returns how many were removed.
func (r *Repository) Clear(ctx context.Context, cartID string) (int, error) {
	const op = "cart.clear"

	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.store.ListByCart(ctx, cartID)
	if err != nil {
		return 0, domain.Internal(err, op, "failed to load cart")
	}
	removed := 0
	for _, item := range items {
		ok, err := r.store.Delete(ctx, item.ID)
		if err != nil {
			return removed, domain.Internal(err, op, "failed to remove cart item")
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// Package storage persists cart items. Backends keep rows and a per-cart
// index; the merge invariant and id allocation belong to the cart repository.
package storage

import (
	"context"
	"sort"

	"github.com/dukerupert/harvansh/internal"
	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/rs/zerolog"
)

// Drivers accepted by New.
const (
	DriverMemory   = "memory"
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// CartStore is the persistence contract for cart items.
type CartStore interface {
	// Get returns ErrNotFound when no item has id.
	Get(ctx context.Context, id int64) (domain.CartItem, error)

	// Put inserts or replaces the item with item.ID and keeps the cart index current.
	Put(ctx context.Context, item domain.CartItem) error

	// Delete reports whether an item was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	// ListByCart returns the items of one cart ordered by id.
	ListByCart(ctx context.Context, cartID string) ([]domain.CartItem, error)

	// List returns every item ordered by id.
	List(ctx context.Context) ([]domain.CartItem, error)

	// MaxID returns the highest id ever persisted and still present, or 0.
	MaxID(ctx context.Context) (int64, error)

	Close() error
}

// New opens the store selected by cfg.Driver.
func New(ctx context.Context, cfg internal.StoreConfig, logger zerolog.Logger) (CartStore, error) {
	logger = logger.With().Str("component", "storage").Str("driver", cfg.Driver).Logger()

	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverBadger:
		return OpenBadger(BadgerConfig{Path: cfg.BadgerPath}, logger)
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, ErrDatabaseURLRequired
		}
		return OpenPostgres(ctx, cfg.DatabaseURL, logger)
	case DriverRedis:
		if cfg.RedisURL == "" {
			return nil, ErrRedisURLRequired
		}
		return OpenRedis(ctx, cfg.RedisURL, logger)
	default:
		return nil, ErrUnknownDriver(cfg.Driver)
	}
}

func sortByID(items []domain.CartItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

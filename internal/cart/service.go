package cart

import (
	"context"
	"errors"

	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/dukerupert/harvansh/internal/events"
	"github.com/dukerupert/harvansh/internal/shipping"
	"github.com/dukerupert/harvansh/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service prices carts and fronts the repository's mutations for handlers.
type Service struct {
	repo     *Repository
	catalog  domain.ProductLookup
	shipping shipping.Calculator
	events   events.Publisher
	metrics  *telemetry.BusinessMetrics
	logger   zerolog.Logger
}

var _ domain.CartService = (*Service)(nil)

func NewService(
	repo *Repository,
	catalog domain.ProductLookup,
	calc shipping.Calculator,
	publisher events.Publisher,
	metrics *telemetry.BusinessMetrics,
	logger zerolog.Logger,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:     repo,
		catalog:  catalog,
		shipping: calc,
		events:   publisher,
		metrics:  metrics,
		logger:   logger.With().Str("component", "cart").Logger(),
	}
}

// GetCart builds the priced view of cartID. Lines whose product is gone are
// left out and counted; any other catalog failure fails the call.
func (s *Service) GetCart(ctx context.Context, cartID string) (*domain.CartView, error) {
	items, err := s.repo.ListItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	view := &domain.CartView{
		CartID:   cartID,
		Lines:    make([]domain.CartLine, 0, len(items)),
		Subtotal: decimal.Zero,
	}
	for _, item := range items {
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if errors.Is(err, domain.ErrProductNotFound) {
			s.orphaned(ctx, item)
			continue
		}
		if err != nil {
			return nil, domain.Internal(err, "cart.get", "failed to look up product")
		}

		unit := product.EffectivePrice()
		lineTotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Lines = append(view.Lines, domain.CartLine{
			Item:      item,
			Product:   product.Snapshot(),
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
		view.ItemCount += item.Quantity
		view.Subtotal = view.Subtotal.Add(lineTotal)
	}

	quote := s.shipping.Quote(view.Subtotal, view.ItemCount)
	view.ShippingCost = quote.Cost
	view.FreeShippingRemaining = quote.FreeShippingRemaining
	view.Total = view.Subtotal.Add(quote.Cost)

	s.metrics.CartViews.Inc()
	if view.ItemCount > 0 {
		s.metrics.CartValue.Observe(view.Subtotal.InexactFloat64())
	}
	return view, nil
}

func (s *Service) orphaned(ctx context.Context, item domain.CartItem) {
	s.metrics.OrphanedLines.Inc()
	domain.Logger(ctx, &s.logger).Warn().
		Err(domain.ErrOrphanedReference).
		Str("cart_id", item.CartID).
		Int64("item_id", item.ID).
		Int64("product_id", item.ProductID).
		Msg("dropping orphaned cart line")
}

func (s *Service) AddItem(ctx context.Context, cartID string, productID int64, quantity int, variant string) (*domain.CartItem, error) {
	item, merged, err := s.repo.Merge(ctx, cartID, productID, quantity, variant)
	if err != nil {
		return nil, err
	}
	if merged {
		s.metrics.CartItemsAdded.WithLabelValues("true").Inc()
	} else {
		s.metrics.CartItemsAdded.WithLabelValues("false").Inc()
	}
	s.publish(ctx, events.Event{
		Type:      events.TypeItemAdded,
		CartID:    item.CartID,
		ItemID:    item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Variant:   item.Variant,
	})
	return item, nil
}

func (s *Service) SetQuantity(ctx context.Context, itemID int64, quantity int) (*domain.CartItem, bool, error) {
	// The cart id is only known before a removal.
	before, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, false, err
	}

	item, removed, err := s.repo.SetQuantity(ctx, itemID, quantity)
	if err != nil {
		return nil, false, err
	}
	if removed {
		s.metrics.CartItemsRemoved.WithLabelValues("zero_quantity").Inc()
		s.publish(ctx, events.Event{
			Type:      events.TypeItemRemoved,
			CartID:    before.CartID,
			ItemID:    itemID,
			ProductID: before.ProductID,
		})
		return nil, true, nil
	}

	s.metrics.CartItemsUpdated.Inc()
	s.publish(ctx, events.Event{
		Type:      events.TypeItemUpdated,
		CartID:    item.CartID,
		ItemID:    item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Variant:   item.Variant,
	})
	return item, false, nil
}

func (s *Service) RemoveItem(ctx context.Context, itemID int64) (bool, error) {
	before, err := s.repo.GetItem(ctx, itemID)
	if errors.Is(err, domain.ErrItemNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	removed, err := s.repo.RemoveItem(ctx, itemID)
	if err != nil || !removed {
		return removed, err
	}
	s.metrics.CartItemsRemoved.WithLabelValues("explicit").Inc()
	s.publish(ctx, events.Event{
		Type:      events.TypeItemRemoved,
		CartID:    before.CartID,
		ItemID:    itemID,
		ProductID: before.ProductID,
	})
	return true, nil
}

func (s *Service) ClearCart(ctx context.Context, cartID string) (int, error) {
	// No item can exist under a malformed id, so there is nothing to clear.
	if !domain.ValidCartID(cartID) {
		return 0, nil
	}
	removed, err := s.repo.Clear(ctx, cartID)
	if err != nil {
		return removed, err
	}
	s.metrics.CartCleared.Inc()
	if removed > 0 {
		s.metrics.CartItemsRemoved.WithLabelValues("cleared").Add(float64(removed))
		s.publish(ctx, events.Event{Type: events.TypeCartCleared, CartID: cartID, Removed: removed})
	}
	return removed, nil
}

// PruneOrphans deletes every cart item whose product no longer resolves and
// returns how many were deleted.
func (s *Service) PruneOrphans(ctx context.Context) (int, error) {
	items, err := s.repo.AllItems(ctx)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return pruned, err
		}
		_, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrProductNotFound) {
			return pruned, domain.Internal(err, "cart.prune_orphans", "failed to look up product")
		}
		removed, err := s.repo.RemoveItem(ctx, item.ID)
		if err != nil {
			return pruned, err
		}
		if removed {
			pruned++
			s.metrics.CartItemsRemoved.WithLabelValues("orphan_sweep").Inc()
			s.publish(ctx, events.Event{
				Type:      events.TypeItemRemoved,
				CartID:    item.CartID,
				ItemID:    item.ID,
				ProductID: item.ProductID,
			})
		}
	}
	return pruned, nil
}

// publish never fails the caller; the mutation has already been applied.
func (s *Service) publish(ctx context.Context, e events.Event) {
	e.RequestID = domain.RequestIDFromContext(ctx)
	if err := s.events.Publish(ctx, e); err != nil {
		s.metrics.EventsFailed.WithLabelValues(e.Type).Inc()
		domain.Logger(ctx, &s.logger).Warn().
			Err(err).
			Str("event", e.Type).
			Str("cart_id", e.CartID).
			Msg("failed to publish cart event")
	}
}

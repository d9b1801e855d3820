package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds the storefront's domain-level Prometheus metrics.
type BusinessMetrics struct {
	// Catalog engagement
	ProductViews    *prometheus.CounterVec
	ProductSearches *prometheus.CounterVec

	// Cart
	CartItemsAdded   *prometheus.CounterVec
	CartItemsUpdated prometheus.Counter
	CartItemsRemoved *prometheus.CounterVec
	CartCleared      prometheus.Counter
	CartViews        prometheus.Counter
	CartValue        prometheus.Histogram
	OrphanedLines    prometheus.Counter
	EventsFailed     *prometheus.CounterVec

	// Newsletter
	NewsletterSignups *prometheus.CounterVec
}

// NewBusinessMetrics creates the metrics and registers them with reg.
// A nil reg registers with the default Prometheus registry.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "harvansh"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	subsystem := "business"

	return &BusinessMetrics{
		ProductViews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "product_views_total",
				Help:      "Total product detail lookups",
			},
			[]string{"product_slug"},
		),
		ProductSearches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "product_searches_total",
				Help:      "Total product list requests by filter type",
			},
			[]string{"filter_type"}, // filter_type: category, query, flags, none
		),
		CartItemsAdded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total add to cart operations",
			},
			[]string{"merged"}, // merged: true when an existing line was incremented
		),
		CartItemsUpdated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_updated_total",
				Help:      "Total cart line quantity changes",
			},
		),
		CartItemsRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_removed_total",
				Help:      "Total cart lines removed",
			},
			[]string{"reason"}, // reason: explicit, zero_quantity, cleared, orphan_sweep
		),
		CartCleared: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cleared_total",
				Help:      "Total cart clear operations",
			},
		),
		CartViews: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_views_total",
				Help:      "Total cart aggregations",
			},
		),
		CartValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_value",
				Help:      "Cart subtotal at aggregation time, in currency units",
				Buckets:   []float64{10, 25, 50, 99, 150, 250, 500, 1000},
			},
		),
		OrphanedLines: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orphaned_cart_lines_total",
				Help:      "Cart lines dropped because their product no longer exists",
			},
		),
		EventsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_events_failed_total",
				Help:      "Cart events that could not be published",
			},
			[]string{"type"},
		),
		NewsletterSignups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "newsletter_signups_total",
				Help:      "Newsletter subscription attempts by outcome",
			},
			[]string{"outcome"}, // outcome: subscribed, duplicate, invalid, rejected
		),
	}
}

// Package events publishes cart mutations for downstream consumers.
package events

import (
	"context"
	"time"
)

// Event types. The NATS subject is "<prefix>.<type>".
const (
	TypeItemAdded   = "item_added"
	TypeItemUpdated = "item_updated"
	TypeItemRemoved = "item_removed"
	TypeCartCleared = "cleared"
)

// Event describes one successful cart mutation.
type Event struct {
	Type       string    `json:"type"`
	CartID     string    `json:"cartId"`
	ItemID     int64     `json:"itemId,omitempty"`
	ProductID  int64     `json:"productId,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	Variant    string    `json:"variant,omitempty"`
	Removed    int       `json:"removed,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher delivers events. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards every event. Used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, e Event) error { return nil }

func (NopPublisher) Close() error { return nil }

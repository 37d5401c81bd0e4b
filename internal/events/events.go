// Package events publishes SKU write events so other processes can drop
// cached lookups for the affected product.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeSkuAdded   = "added"
	TypeSkuDeleted = "deleted"
)

// DefaultSubjectPrefix is the NATS subject prefix used when none is configured.
const DefaultSubjectPrefix = "sku"

// Event describes a write to a product's SKUs.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Type         string    `json:"type"`
	ProductID    int64     `json:"product_id"`
	ProductSkuID int64     `json:"product_sku_id,omitempty"`
	Sku          string    `json:"sku,omitempty"`
	Rows         int64     `json:"rows,omitempty"`
	Source       string    `json:"source,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewEvent creates an event of the given type for productID.
func NewEvent(eventType string, productID int64) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		ProductID:  productID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers write events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Invalidator drops cached data for a product.
type Invalidator interface {
	InvalidateProduct(productID int64)
}

// Subject returns the subject an event type is published on.
func Subject(prefix, eventType string) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return prefix + "." + eventType
}

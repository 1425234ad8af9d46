// Package events publishes domain events for downstream consumers
// (kitchen display, analytics, marketing).
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Topic names, prefixed with the configured topic prefix on publish.
const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicProductsImported   = "products.imported"
)

// Publisher sends an event to topic, keyed for partitioning.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

type OrderCreated struct {
	OrderID   string          `json:"orderId"`
	OrderRef  string          `json:"orderRef"`
	UserID    string          `json:"userId,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	Items     int             `json:"items"`
	Delivery  string          `json:"delivery"`
	CreatedAt time.Time       `json:"createdAt"`
}

type OrderStatusChanged struct {
	OrderID   string    `json:"orderId"`
	OrderRef  string    `json:"orderRef"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changedAt"`
}

type ProductsImported struct {
	ImportJobID string    `json:"importJobId"`
	Count       int       `json:"count"`
	ProductIDs  []string  `json:"productIds"`
	ImportedAt  time.Time `json:"importedAt"`
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                        { return nil }

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the base interface for domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// OrderPlaced is raised once an order and its stock decrements are committed.
type OrderPlaced struct {
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	Lines      []PlacedLine    `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	PlacedAt   time.Time       `json:"placed_at"`
}

// PlacedLine is the event view of an order line.
type PlacedLine struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// NewOrderPlaced builds the event for a persisted order.
func NewOrderPlaced(order *Order, placedAt time.Time) OrderPlaced {
	lines := make([]PlacedLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, PlacedLine{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price})
	}
	return OrderPlaced{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Lines:      lines,
		Total:      order.Total(),
		PlacedAt:   placedAt,
	}
}

// EventName returns the event type identifier.
func (e OrderPlaced) EventName() string {
	return "orders.order.placed"
}

// OccurredAt returns when the order was placed.
func (e OrderPlaced) OccurredAt() time.Time {
	return e.PlacedAt
}

package mapper

import (
	"time"

	ordertypes "github.com/Apurer/go-gin-marketplace/internal/domains/orders/application/types"
)

// OrderProduct is one requested product in a placement payload.
type OrderProduct struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// PlaceOrderRequest is the body of POST /v1/orders.
type PlaceOrderRequest struct {
	CustomerID string         `json:"customer_id"`
	Products   []OrderProduct `json:"products"`
}

// OrderLine is the HTTP representation of a persisted line. Money is a fixed two-decimal string.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Subtotal  string `json:"subtotal"`
}

// Order is the HTTP representation of a placed order.
type Order struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	Products   []OrderLine `json:"products"`
	Total      string      `json:"total"`
	CreatedAt  time.Time   `json:"created_at,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at,omitempty"`
}

// ToPlaceOrderInput maps the transport payload and optional Idempotency-Key header.
func ToPlaceOrderInput(req PlaceOrderRequest, idempotencyKey string) ordertypes.PlaceOrderInput {
	lines := make([]ordertypes.OrderLineInput, 0, len(req.Products))
	for _, p := range req.Products {
		lines = append(lines, ordertypes.OrderLineInput{ProductID: p.ID, Quantity: p.Quantity})
	}
	return ordertypes.PlaceOrderInput{
		CustomerID:     req.CustomerID,
		Lines:          lines,
		IdempotencyKey: idempotencyKey,
	}
}

// FromProjection converts an order projection to its transport shape.
func FromProjection(p *ordertypes.OrderProjection) Order {
	if p == nil || p.Entity == nil {
		return Order{}
	}
	order := p.Entity
	lines := make([]OrderLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price.StringFixed(2),
			Subtotal:  l.Subtotal().StringFixed(2),
		})
	}
	return Order{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Products:   lines,
		Total:      order.Total().StringFixed(2),
		CreatedAt:  p.Metadata.CreatedAt,
		UpdatedAt:  p.Metadata.UpdatedAt,
	}
}

// FromProjections converts a list, preserving order.
func FromProjections(list []*ordertypes.OrderProjection) []Order {
	out := make([]Order, 0, len(list))
	for _, p := range list {
		out = append(out, FromProjection(p))
	}
	return out
}

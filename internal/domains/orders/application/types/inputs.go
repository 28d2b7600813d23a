package types

// OrderLineInput is one requested product and the units wanted.
type OrderLineInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderInput is the place-order command. IdempotencyKey is optional; when set,
// retries with the same key and payload replay the original order.
type PlaceOrderInput struct {
	CustomerID     string           `json:"customer_id"`
	Lines          []OrderLineInput `json:"lines"`
	IdempotencyKey string           `json:"idempotency_key,omitempty"`
}

package ports

import (
	"context"

	ordertypes "github.com/Apurer/go-gin-marketplace/internal/domains/orders/application/types"
)

// Service defines the order use cases exposed to adapters (inbound/driving port).
type Service interface {
	PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*ordertypes.OrderProjection, error)
	GetOrder(ctx context.Context, id string) (*ordertypes.OrderProjection, error)
	ListCustomerOrders(ctx context.Context, customerID string) ([]*ordertypes.OrderProjection, error)
}

package types

import (
	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace/internal/shared/projection"
)

// OrderProjection transports an order together with its persistence metadata.
type OrderProjection = projection.Projection[*domain.Order]

// CloneProjection duplicates a projection including the order lines.
func CloneProjection(src *OrderProjection) *OrderProjection {
	if src == nil {
		return nil
	}
	return &OrderProjection{Entity: src.Entity.Clone(), Metadata: src.Metadata}
}

package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-marketplace/internal/shared/projection"
)

// CreateProductInput carries the fields of a new catalog entry.
type CreateProductInput struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// Service defines the catalog use cases exposed to adapters.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*projection.Projection[*domain.Product], error)
	GetProduct(ctx context.Context, id string) (*projection.Projection[*domain.Product], error)
	ListProducts(ctx context.Context) ([]*projection.Projection[*domain.Product], error)
	Restock(ctx context.Context, id string, amount int) (*projection.Projection[*domain.Product], error)
}

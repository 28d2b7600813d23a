package mapper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-marketplace/internal/shared/projection"
)

// CreateProductRequest is the body of POST /v1/products. Price accepts "10.00" or 10.
type CreateProductRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// RestockRequest is the body of POST /v1/products/:productId/restock.
type RestockRequest struct {
	Quantity int `json:"quantity"`
}

// Product is the HTTP representation of a catalog entry.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ToCreateInput maps the transport payload into the service input.
func ToCreateInput(req CreateProductRequest) ports.CreateProductInput {
	return ports.CreateProductInput{
		Name:     strings.TrimSpace(req.Name),
		Price:    req.Price,
		Quantity: req.Quantity,
	}
}

// FromProjection converts a product projection to its transport shape.
func FromProjection(p *projection.Projection[*domain.Product]) Product {
	if p == nil || p.Entity == nil {
		return Product{}
	}
	return Product{
		ID:        p.Entity.ID,
		Name:      p.Entity.Name,
		Price:     p.Entity.Price.StringFixed(2),
		Quantity:  p.Entity.Quantity,
		CreatedAt: p.Metadata.CreatedAt,
		UpdatedAt: p.Metadata.UpdatedAt,
	}
}

func FromProjections(list []*projection.Projection[*domain.Product]) []Product {
	out := make([]Product, 0, len(list))
	for _, p := range list {
		out = append(out, FromProjection(p))
	}
	return out
}

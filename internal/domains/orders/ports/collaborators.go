package ports

import (
	"context"

	catalogdomain "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/domain"
	customerdomain "github.com/Apurer/go-gin-marketplace/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/domain"
)

// CustomerLookup resolves the buyer of an order. Absent customers are reported
// with the customers context's ErrNotFound.
type CustomerLookup interface {
	FindByID(ctx context.Context, id string) (*customerdomain.Customer, error)
}

// ProductCatalog resolves products in batch and persists stock decrements.
type ProductCatalog interface {
	// FindAllByID returns only the products that exist.
	FindAllByID(ctx context.Context, ids []string) ([]*catalogdomain.Product, error)
	UpdateQuantity(ctx context.Context, products []*catalogdomain.Product) error
}

// Transactor runs fn as one atomic unit of work.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher delivers order events to downstream consumers.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error
}

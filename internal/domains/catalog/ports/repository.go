package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-marketplace/internal/shared/projection"
)

var (
	ErrNotFound  = errors.New("product not found")
	ErrNameInUse = errors.New("product name is already in use")
)

type Repository interface {
	Save(ctx context.Context, product *domain.Product) (*projection.Projection[*domain.Product], error)
	GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Product], error)
	GetByName(ctx context.Context, name string) (*projection.Projection[*domain.Product], error)
	List(ctx context.Context) ([]*projection.Projection[*domain.Product], error)
	// FindAllByID returns the products that exist among ids. Unknown ids are skipped.
	// Inside a transaction the returned rows stay locked until commit.
	FindAllByID(ctx context.Context, ids []string) ([]*domain.Product, error)
	// UpdateQuantity persists the stock level of every product in one call.
	UpdateQuantity(ctx context.Context, products []*domain.Product) error
	// IncreaseQuantity adds amount to the stored stock level in a single write.
	IncreaseQuantity(ctx context.Context, id string, amount int) (*projection.Projection[*domain.Product], error)
}

// Transactor runs fn as one atomic unit of work. Catalog writes share it with order placement.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

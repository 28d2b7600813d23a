package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-marketplace/internal/domains/customers/domain"
)

var (
	ErrNotFound   = errors.New("customer not found")
	ErrEmailInUse = errors.New("e-mail is already assigned")
)

// Repository persists customers.
type Repository interface {
	// Create stores a new customer and fails with ErrEmailInUse when the address is taken.
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	// FindByID returns ErrNotFound when the customer does not exist.
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context) ([]*domain.Customer, error)
}

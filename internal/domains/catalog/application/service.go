package application

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-marketplace/internal/shared/projection"
)

// Service orchestrates the catalog use cases.
type Service struct {
	repo ports.Repository
	tx   ports.Transactor
}

// Option customizes the service.
type Option func(*Service)

// WithTransactor runs catalog writes in the unit of work used by order placement.
func WithTransactor(tx ports.Transactor) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// NewService wires the catalog service with its repository.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, tx: passthroughTx{}}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateProduct registers a product under a unique name.
func (s *Service) CreateProduct(ctx context.Context, input ports.CreateProductInput) (*projection.Projection[*domain.Product], error) {
	product, err := domain.NewProduct("", input.Name, input.Price, input.Quantity)
	if err != nil {
		return nil, mapError(err)
	}
	var saved *projection.Projection[*domain.Product]
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByName(ctx, product.Name)
		switch {
		case err == nil && existing != nil:
			return ports.ErrNameInUse
		case err != nil && !errors.Is(err, ports.ErrNotFound):
			return err
		}
		saved, err = s.repo.Save(ctx, product)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// GetProduct loads a single product.
func (s *Service) GetProduct(ctx context.Context, id string) (*projection.Projection[*domain.Product], error) {
	return s.repo.GetByID(ctx, id)
}

// ListProducts returns the whole catalog.
func (s *Service) ListProducts(ctx context.Context) ([]*projection.Projection[*domain.Product], error) {
	return s.repo.List(ctx)
}

// Restock adds units to an existing product. The stored level is incremented in place,
// so concurrent placements never see their decrement overwritten.
func (s *Service) Restock(ctx context.Context, id string, amount int) (*projection.Projection[*domain.Product], error) {
	if amount <= 0 {
		return nil, mapError(domain.ErrInvalidAmount)
	}
	var restocked *projection.Projection[*domain.Product]
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		restocked, err = s.repo.IncreaseQuantity(ctx, id, amount)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return restocked, nil
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ ports.Service = (*Service)(nil)

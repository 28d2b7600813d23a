package application

import (
	"context"
	"errors"
	"strings"

	"github.com/Apurer/go-gin-marketplace/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/customers/ports"
)

// Service orchestrates customer use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// CreateCustomer registers a customer with a unique e-mail address.
func (s *Service) CreateCustomer(ctx context.Context, name, email string) (*domain.Customer, error) {
	customer, err := domain.NewCustomer("", name, email)
	if err != nil {
		return nil, mapError(err)
	}
	existing, err := s.repo.FindByEmail(ctx, customer.Email)
	switch {
	case err == nil && existing != nil:
		return nil, ports.ErrEmailInUse
	case err != nil && !errors.Is(err, ports.ErrNotFound):
		return nil, err
	}
	return s.repo.Create(ctx, customer)
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ports.ErrNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	return s.repo.List(ctx)
}

var _ ports.Service = (*Service)(nil)

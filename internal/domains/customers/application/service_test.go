package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	customermemory "github.com/Apurer/go-gin-marketplace/internal/domains/customers/adapters/memory"
	"github.com/Apurer/go-gin-marketplace/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/customers/ports"
)

func TestCreateCustomer_PersistsAndLoads(t *testing.T) {
	svc := NewService(customermemory.NewRepository())
	ctx := context.Background()

	created, err := svc.CreateCustomer(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	loaded, err := svc.GetCustomer(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, loaded)
}

func TestCreateCustomer_RejectsDuplicateEmail(t *testing.T) {
	svc := NewService(customermemory.NewRepository())
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)

	_, err = svc.CreateCustomer(ctx, "Other Ada", "ADA@example.com")
	require.ErrorIs(t, err, ports.ErrEmailInUse)
}

func TestCreateCustomer_InvalidInput(t *testing.T) {
	svc := NewService(customermemory.NewRepository())

	_, err := svc.CreateCustomer(context.Background(), "Ada", "nope")
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestGetCustomer_NotFound(t *testing.T) {
	svc := NewService(customermemory.NewRepository())

	_, err := svc.GetCustomer(context.Background(), "8a4f27a4-9c0e-4c53-9d0e-3c1f6d1f0a11")
	require.ErrorIs(t, err, ports.ErrNotFound)

	_, err = svc.GetCustomer(context.Background(), " ")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

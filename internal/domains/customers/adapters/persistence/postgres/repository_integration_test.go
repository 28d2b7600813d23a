//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-marketplace/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/customers/ports"
	"github.com/Apurer/go-gin-marketplace/internal/platform/postgres/postgrestest"
)

func TestRepository_CreateAndFind(t *testing.T) {
	db := postgrestest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customer, err := domain.NewCustomer("", "Ada Lovelace", "Ada@Example.com")
	require.NoError(t, err)

	created, err := repo.Create(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", created.Email)

	byID, err := repo.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", byID.Name)

	byEmail, err := repo.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, byEmail.ID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRepository_DuplicateEmailAndMissing(t *testing.T) {
	db := postgrestest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first, err := domain.NewCustomer("", "Ada", "ada@example.com")
	require.NoError(t, err)
	_, err = repo.Create(ctx, first)
	require.NoError(t, err)

	second, err := domain.NewCustomer("", "Other Ada", "ada@example.com")
	require.NoError(t, err)
	_, err = repo.Create(ctx, second)
	assert.ErrorIs(t, err, ports.ErrEmailInUse)

	_, err = repo.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.FindByID(ctx, "5b0f9c4e-3c1d-4a7b-9e2f-000000000000")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

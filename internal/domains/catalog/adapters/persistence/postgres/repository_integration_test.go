//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/ports"
	platformpostgres "github.com/Apurer/go-gin-marketplace/internal/platform/postgres"
	"github.com/Apurer/go-gin-marketplace/internal/platform/postgres/postgrestest"
)

func newProduct(t *testing.T, name, price string, qty int) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct("", name, decimal.RequireFromString(price), qty)
	require.NoError(t, err)
	return p
}

func TestRepository_SaveAndGet(t *testing.T) {
	db := postgrestest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := newProduct(t, "Keyboard", "10.00", 5)
	saved, err := repo.Save(ctx, product)
	require.NoError(t, err)
	assert.Equal(t, "10.00", saved.Entity.Price.StringFixed(2))

	byName, err := repo.GetByName(ctx, "keyboard")
	require.NoError(t, err)
	assert.Equal(t, product.ID, byName.Entity.ID)

	product.Price = decimal.RequireFromString("12.50")
	updated, err := repo.Save(ctx, product)
	require.NoError(t, err)
	assert.Equal(t, "12.50", updated.Entity.Price.StringFixed(2))

	_, err = repo.Save(ctx, newProduct(t, "Keyboard", "1.00", 1))
	assert.ErrorIs(t, err, ports.ErrNameInUse)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_FindAllByIDSkipsUnknown(t *testing.T) {
	db := postgrestest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	a := newProduct(t, "A", "1.00", 1)
	b := newProduct(t, "B", "2.00", 2)
	for _, p := range []*domain.Product{a, b} {
		_, err := repo.Save(ctx, p)
		require.NoError(t, err)
	}

	found, err := repo.FindAllByID(ctx, []string{a.ID, "not-a-uuid", "9f3c2b0e-5a4d-4c2b-8e1f-000000000000", b.ID})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	err = platformpostgres.NewTransactor(db).WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := repo.FindAllByID(ctx, []string{a.ID})
		if err != nil {
			return err
		}
		require.Len(t, locked, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestRepository_UpdateQuantity(t *testing.T) {
	db := postgrestest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	a := newProduct(t, "A", "1.00", 5)
	_, err := repo.Save(ctx, a)
	require.NoError(t, err)

	a.Quantity = 2
	require.NoError(t, repo.UpdateQuantity(ctx, []*domain.Product{a}))
	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Entity.Quantity)

	ghost := newProduct(t, "Ghost", "1.00", 1)
	a.Quantity = 0
	err = repo.UpdateQuantity(ctx, []*domain.Product{a, ghost})
	assert.ErrorIs(t, err, ports.ErrNotFound)
	got, err = repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Entity.Quantity)
}

func TestRepository_IncreaseQuantityWaitsForLockedPlacement(t *testing.T) {
	db := postgrestest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	a := newProduct(t, "A", "1.00", 5)
	_, err := repo.Save(ctx, a)
	require.NoError(t, err)

	restocked := make(chan error, 1)
	err = platformpostgres.NewTransactor(db).WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := repo.FindAllByID(ctx, []string{a.ID})
		if err != nil {
			return err
		}
		require.Len(t, locked, 1)

		go func() {
			_, err := repo.IncreaseQuantity(context.Background(), a.ID, 10)
			restocked <- err
		}()
		select {
		case err := <-restocked:
			t.Fatalf("restock finished while the row was locked: %v", err)
		case <-time.After(200 * time.Millisecond):
		}

		locked[0].Quantity -= 3
		return repo.UpdateQuantity(ctx, locked)
	})
	require.NoError(t, err)
	require.NoError(t, <-restocked)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Entity.Quantity)

	_, err = repo.IncreaseQuantity(ctx, "9f3c2b0e-5a4d-4c2b-8e1f-000000000000", 1)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

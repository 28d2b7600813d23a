package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/ports"
)

func newProduct(t *testing.T, name string, price string, qty int) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct("", name, decimal.RequireFromString(price), qty)
	require.NoError(t, err)
	return p
}

func TestFindAllByID_SkipsUnknownAndDuplicates(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	p1 := newProduct(t, "Keyboard", "10.00", 5)
	p2 := newProduct(t, "Mouse", "20.00", 2)
	_, err := repo.Save(ctx, p1)
	require.NoError(t, err)
	_, err = repo.Save(ctx, p2)
	require.NoError(t, err)

	found, err := repo.FindAllByID(ctx, []string{p2.ID, "missing", p1.ID, p2.ID})
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, p2.ID, found[0].ID)
	require.Equal(t, p1.ID, found[1].ID)

	found[0].Quantity = 0
	stored, err := repo.GetByID(ctx, p2.ID)
	require.NoError(t, err)
	require.Equal(t, 2, stored.Entity.Quantity)
}

func TestUpdateQuantity_PersistsStock(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time { return created })
	p := newProduct(t, "Keyboard", "10.00", 5)
	_, err := repo.Save(ctx, p)
	require.NoError(t, err)

	updated := created.Add(time.Hour)
	repo.WithClock(func() time.Time { return updated })
	p.Quantity = 2
	require.NoError(t, repo.UpdateQuantity(ctx, []*domain.Product{p}))

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, stored.Entity.Quantity)
	require.Equal(t, created, stored.Metadata.CreatedAt)
	require.Equal(t, updated, stored.Metadata.UpdatedAt)
}

func TestUpdateQuantity_UnknownProductLeavesStockUntouched(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	p := newProduct(t, "Keyboard", "10.00", 5)
	_, err := repo.Save(ctx, p)
	require.NoError(t, err)

	ghost := newProduct(t, "Ghost", "1.00", 1)
	p.Quantity = 1
	err = repo.UpdateQuantity(ctx, []*domain.Product{p, ghost})
	require.ErrorIs(t, err, ports.ErrNotFound)

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 5, stored.Entity.Quantity)
}

func TestSave_RejectsDuplicateName(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	_, err := repo.Save(ctx, newProduct(t, "Keyboard", "10.00", 5))
	require.NoError(t, err)

	_, err = repo.Save(ctx, newProduct(t, "keyboard", "12.00", 1))
	require.ErrorIs(t, err, ports.ErrNameInUse)
}

func TestCheckpoint_Restores(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	p := newProduct(t, "Keyboard", "10.00", 5)
	_, err := repo.Save(ctx, p)
	require.NoError(t, err)

	restore := repo.Checkpoint()
	p.Quantity = 0
	require.NoError(t, repo.UpdateQuantity(ctx, []*domain.Product{p}))
	restore()

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 5, stored.Entity.Quantity)
}

func TestIncreaseQuantity_AddsToStoredStock(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	p := newProduct(t, "Keyboard", "10.00", 5)
	_, err := repo.Save(ctx, p)
	require.NoError(t, err)

	// The caller's copy is stale; only the stored level counts.
	p.Quantity = 2
	require.NoError(t, repo.UpdateQuantity(ctx, []*domain.Product{p}))

	restocked, err := repo.IncreaseQuantity(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Equal(t, 12, restocked.Entity.Quantity)

	_, err = repo.IncreaseQuantity(ctx, p.ID, 0)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = repo.IncreaseQuantity(ctx, "missing", 1)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

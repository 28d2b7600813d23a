//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	catalogpostgres "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/domain"
	customerpostgres "github.com/Apurer/go-gin-marketplace/internal/domains/customers/adapters/persistence/postgres"
	customerdomain "github.com/Apurer/go-gin-marketplace/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-gin-marketplace/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/go-gin-marketplace/internal/platform/postgres"
	"github.com/Apurer/go-gin-marketplace/internal/platform/postgres/postgrestest"
)

type seeded struct {
	customer *customerdomain.Customer
	p1, p2   *catalogdomain.Product
}

func seed(t *testing.T, db *gorm.DB) seeded {
	t.Helper()
	ctx := context.Background()
	customer, err := customerdomain.NewCustomer("", "Ada", "ada@example.com")
	require.NoError(t, err)
	_, err = customerpostgres.NewRepository(db).Create(ctx, customer)
	require.NoError(t, err)

	catalog := catalogpostgres.NewRepository(db)
	p1, err := catalogdomain.NewProduct("", "Keyboard", decimal.RequireFromString("10.00"), 5)
	require.NoError(t, err)
	_, err = catalog.Save(ctx, p1)
	require.NoError(t, err)
	p2, err := catalogdomain.NewProduct("", "Mouse", decimal.RequireFromString("20.00"), 2)
	require.NoError(t, err)
	_, err = catalog.Save(ctx, p2)
	require.NoError(t, err)
	return seeded{customer: customer, p1: p1, p2: p2}
}

func TestRepository_CreateAndGetByID(t *testing.T) {
	db := postgrestest.Start(t)
	s := seed(t, db)
	repo := NewRepository(db)
	ctx := context.Background()

	order, err := domain.NewOrder("", s.customer.ID, []domain.Line{
		{ProductID: s.p2.ID, Quantity: 1, Price: s.p2.Price},
		{ProductID: s.p1.ID, Quantity: 3, Price: s.p1.Price},
	})
	require.NoError(t, err)

	created, err := repo.Create(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, order.ID, created.Entity.ID)

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Entity.Lines, 2)
	assert.Equal(t, s.p2.ID, fetched.Entity.Lines[0].ProductID)
	assert.Equal(t, s.p1.ID, fetched.Entity.Lines[1].ProductID)
	assert.Equal(t, "10.00", fetched.Entity.Lines[1].Price.StringFixed(2))
	assert.Equal(t, "50.00", fetched.Entity.Total().StringFixed(2))
	assert.False(t, fetched.Metadata.CreatedAt.IsZero())

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ListByCustomerNewestFirst(t *testing.T) {
	db := postgrestest.Start(t)
	s := seed(t, db)
	repo := NewRepository(db)
	ctx := context.Background()

	first, err := domain.NewOrder("", s.customer.ID, []domain.Line{{ProductID: s.p1.ID, Quantity: 1, Price: s.p1.Price}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, first)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := domain.NewOrder("", s.customer.ID, []domain.Line{{ProductID: s.p2.ID, Quantity: 1, Price: s.p2.Price}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	list, err := repo.ListByCustomer(ctx, s.customer.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].Entity.ID)
	assert.Equal(t, first.ID, list[1].Entity.ID)
	require.Len(t, list[1].Entity.Lines, 1)
}

func TestSchema_DeletingProductOrphansLines(t *testing.T) {
	db := postgrestest.Start(t)
	s := seed(t, db)
	repo := NewRepository(db)
	ctx := context.Background()

	order, err := domain.NewOrder("", s.customer.ID, []domain.Line{{ProductID: s.p1.ID, Quantity: 2, Price: s.p1.Price}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, order)
	require.NoError(t, err)

	require.NoError(t, db.Exec("DELETE FROM products WHERE id = ?", s.p1.ID).Error)

	var line orderProductRecord
	require.NoError(t, db.First(&line, "order_id = ?", order.ID).Error)
	assert.Nil(t, line.ProductID)
	assert.Equal(t, 2, line.Quantity)

	require.NoError(t, db.Exec("DELETE FROM orders WHERE id = ?", order.ID).Error)
	var orphan orderProductRecord
	require.NoError(t, db.First(&orphan, "id = ?", line.ID).Error)
	assert.Nil(t, orphan.OrderID)
}

func TestIdempotencyStore_SaveGetAndPurge(t *testing.T) {
	db := postgrestest.Start(t)
	store := NewIdempotencyStore(db)
	ctx := context.Background()
	orderID := "4b1d7a3c-6f0e-4d8e-9a55-0c7d7e1f2a01"

	missing, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", OrderID: orderID})
	require.NoError(t, err)
	assert.Equal(t, orderID, saved.OrderID)

	again, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", OrderID: orderID})
	require.NoError(t, err)
	assert.Equal(t, "h1", again.RequestHash)

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h2", OrderID: orderID})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.NotNil(t, existing)
	assert.Equal(t, "h1", existing.RequestHash)

	purged, err := store.PurgeBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestPlaceOrder_TransactionalAgainstPostgres(t *testing.T) {
	db := postgrestest.Start(t)
	s := seed(t, db)
	ctx := context.Background()

	catalog := catalogpostgres.NewRepository(db)
	orders := NewRepository(db)
	svc := application.NewService(customerpostgres.NewRepository(db), catalog, orders,
		application.WithTransactor(platformpostgres.NewTransactor(db)),
		application.WithIdempotencyStore(NewIdempotencyStore(db)),
	)

	placed, err := svc.PlaceOrder(ctx, ordertypes.PlaceOrderInput{
		CustomerID: s.customer.ID,
		Lines: []ordertypes.OrderLineInput{
			{ProductID: s.p1.ID, Quantity: 3},
			{ProductID: s.p2.ID, Quantity: 2},
		},
		IdempotencyKey: "checkout-1",
	})
	require.NoError(t, err)
	require.Len(t, placed.Entity.Lines, 2)

	p1, err := catalog.GetByID(ctx, s.p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p1.Entity.Quantity)
	p2, err := catalog.GetByID(ctx, s.p2.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p2.Entity.Quantity)

	replayed, err := svc.PlaceOrder(ctx, ordertypes.PlaceOrderInput{
		CustomerID:     s.customer.ID,
		Lines:          []ordertypes.OrderLineInput{{ProductID: s.p2.ID, Quantity: 2}, {ProductID: s.p1.ID, Quantity: 3}},
		IdempotencyKey: "checkout-1",
	})
	require.NoError(t, err)
	assert.Equal(t, placed.Entity.ID, replayed.Entity.ID)

	_, err = svc.PlaceOrder(ctx, ordertypes.PlaceOrderInput{
		CustomerID: s.customer.ID,
		Lines:      []ordertypes.OrderLineInput{{ProductID: s.p1.ID, Quantity: 1}, {ProductID: s.p2.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, application.ErrInsufficientStock)
	p1, err = catalog.GetByID(ctx, s.p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p1.Entity.Quantity)

	var count int64
	require.NoError(t, db.Model(&orderRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPlaceOrder_RollsBackWhenOrderInsertFails(t *testing.T) {
	db := postgrestest.Start(t)
	s := seed(t, db)
	ctx := context.Background()

	catalog := catalogpostgres.NewRepository(db)
	boom := errors.New("insert failed")
	svc := application.NewService(customerpostgres.NewRepository(db), catalog, failingOrders{Repository: NewRepository(db), err: boom},
		application.WithTransactor(platformpostgres.NewTransactor(db)),
	)

	_, err := svc.PlaceOrder(ctx, ordertypes.PlaceOrderInput{
		CustomerID: s.customer.ID,
		Lines:      []ordertypes.OrderLineInput{{ProductID: s.p1.ID, Quantity: 3}},
	})
	require.ErrorIs(t, err, boom)

	p1, err := catalog.GetByID(ctx, s.p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, p1.Entity.Quantity)
}

func TestPlaceOrder_ConcurrentOrdersSerializeOnProductRows(t *testing.T) {
	db := postgrestest.Start(t)
	s := seed(t, db)
	ctx := context.Background()

	catalog := catalogpostgres.NewRepository(db)
	svc := application.NewService(customerpostgres.NewRepository(db), catalog, NewRepository(db),
		application.WithTransactor(platformpostgres.NewTransactor(db)),
	)

	const buyers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		placed   int
		rejected int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(ctx, ordertypes.PlaceOrderInput{
				CustomerID: s.customer.ID,
				Lines:      []ordertypes.OrderLineInput{{ProductID: s.p1.ID, Quantity: 1}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case errors.Is(err, application.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected placement error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, placed)
	assert.Equal(t, buyers-5, rejected)
	p1, err := catalog.GetByID(ctx, s.p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p1.Entity.Quantity)

	var count int64
	require.NoError(t, db.Model(&orderRecord{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestSchema_OrdersReferenceExistingCustomers(t *testing.T) {
	db := postgrestest.Start(t)
	s := seed(t, db)
	repo := NewRepository(db)
	ctx := context.Background()

	stranger, err := domain.NewOrder("", uuid.NewString(), []domain.Line{{ProductID: s.p1.ID, Quantity: 1, Price: s.p1.Price}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, stranger)
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)

	order, err := domain.NewOrder("", s.customer.ID, []domain.Line{{ProductID: s.p1.ID, Quantity: 1, Price: s.p1.Price}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, order)
	require.NoError(t, err)

	err = db.Exec("DELETE FROM customers WHERE id = ?", s.customer.ID).Error
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}

type failingOrders struct {
	*Repository
	err error
}

func (f failingOrders) Create(context.Context, *domain.Order) (*ordertypes.OrderProjection, error) {
	return nil, f.err
}

//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	marketplaceserver "github.com/Apurer/go-gin-marketplace/go"
	"github.com/Apurer/go-gin-marketplace/internal/app/wiring"
	catalogmemory "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/domain"
	customermemory "github.com/Apurer/go-gin-marketplace/internal/domains/customers/adapters/memory"
	customerdomain "github.com/Apurer/go-gin-marketplace/internal/domains/customers/domain"
	ordermemory "github.com/Apurer/go-gin-marketplace/internal/domains/orders/adapters/memory"
	orderdomain "github.com/Apurer/go-gin-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace/internal/platform/memtx"
	platformobservability "github.com/Apurer/go-gin-marketplace/internal/platform/observability"
	pacttest "github.com/Apurer/go-gin-marketplace/test/pact"
)

func TestMarketplaceProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	state := func(seed func(t testing.TB)) models.StateHandler {
		return func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup && seed != nil {
				seed(t)
			}
			return nil, nil
		}
	}
	stateHandlers := models.StateHandlers{
		pacttest.StateCatalogStocked: state(func(t testing.TB) {
			app.seedCustomer(t)
			app.seedProduct(t, pacttest.KeyboardID, "Keyboard", pacttest.KeyboardPrice, 5)
			app.seedProduct(t, pacttest.MouseID, "Mouse", pacttest.MousePrice, 2)
		}),
		pacttest.StateCustomerMissing: state(func(t testing.TB) {
			app.seedProduct(t, pacttest.KeyboardID, "Keyboard", pacttest.KeyboardPrice, 5)
		}),
		pacttest.StateStockExhausted: state(func(t testing.TB) {
			app.seedCustomer(t)
			app.seedProduct(t, pacttest.KeyboardID, "Keyboard", pacttest.KeyboardPrice, 1)
		}),
		pacttest.StateOrderExists: state(func(t testing.TB) {
			app.seedCustomer(t)
			app.seedProduct(t, pacttest.KeyboardID, "Keyboard", pacttest.KeyboardPrice, 5)
			app.seedOrder(t)
		}),
		pacttest.StateOrderMissing: state(nil),
	}

	verifier := pactprovider.NewVerifier()
	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset()
			return nil
		},
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	customers *customermemory.Repository
	catalog   *catalogmemory.Repository
	orders    *ordermemory.Repository
	server    *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	customers := customermemory.NewRepository()
	catalog := catalogmemory.NewRepository()
	orders := ordermemory.NewRepository()
	idempotency := ordermemory.NewIdempotencyStore()
	stores := wiring.Stores{
		Customers:   customers,
		Catalog:     catalog,
		Orders:      orders,
		Idempotency: idempotency,
		Transactor:  memtx.New(catalog, orders, idempotency),
	}
	instruments := &platformobservability.Instruments{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	services := wiring.BuildServices(stores, ordermemory.NewEventLog(), instruments)

	handlers := marketplaceserver.ApiHandleFunctions{
		CustomerAPI: marketplaceserver.NewCustomerAPI(services.Customers),
		ProductAPI:  marketplaceserver.NewProductAPI(services.Catalog),
		OrderAPI:    marketplaceserver.NewOrderAPI(services.Orders, nil),
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router = marketplaceserver.NewRouterWithGinEngine(router, handlers)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{customers: customers, catalog: catalog, orders: orders, server: server}
}

func (a *contractProviderApp) reset() {
	a.customers.Reset()
	a.catalog.Reset()
	a.orders.Reset()
}

func (a *contractProviderApp) seedCustomer(t testing.TB) {
	t.Helper()
	customer, err := customerdomain.NewCustomer(pacttest.ExistingCustomerID, "Pact Buyer", "pact.buyer@example.com")
	require.NoError(t, err)
	_, err = a.customers.Create(context.Background(), customer)
	require.NoError(t, err)
}

func (a *contractProviderApp) seedProduct(t testing.TB, id, name, price string, quantity int) {
	t.Helper()
	product, err := catalogdomain.NewProduct(id, name, decimal.RequireFromString(price), quantity)
	require.NoError(t, err)
	_, err = a.catalog.Save(context.Background(), product)
	require.NoError(t, err)
}

func (a *contractProviderApp) seedOrder(t testing.TB) {
	t.Helper()
	order, err := orderdomain.NewOrder(pacttest.ExistingOrderID, pacttest.ExistingCustomerID, []orderdomain.Line{
		{ProductID: pacttest.KeyboardID, Quantity: 2, Price: decimal.RequireFromString(pacttest.KeyboardPrice)},
	})
	require.NoError(t, err)
	_, err = a.orders.Create(context.Background(), order)
	require.NoError(t, err)
}

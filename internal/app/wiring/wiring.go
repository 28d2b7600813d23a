// Package wiring assembles the marketplace services from configuration so the
// API, the worker and the maintenance commands share one composition root.
package wiring

import (
	"context"
	"errors"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-marketplace/internal/app/config"
	catalogmemory "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/ports"
	customermemory "github.com/Apurer/go-gin-marketplace/internal/domains/customers/adapters/memory"
	customerobs "github.com/Apurer/go-gin-marketplace/internal/domains/customers/adapters/observability"
	customerpostgres "github.com/Apurer/go-gin-marketplace/internal/domains/customers/adapters/persistence/postgres"
	customerapp "github.com/Apurer/go-gin-marketplace/internal/domains/customers/application"
	customerports "github.com/Apurer/go-gin-marketplace/internal/domains/customers/ports"
	ordermemory "github.com/Apurer/go-gin-marketplace/internal/domains/orders/adapters/memory"
	orderkafka "github.com/Apurer/go-gin-marketplace/internal/domains/orders/adapters/messaging/kafka"
	orderobs "github.com/Apurer/go-gin-marketplace/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/Apurer/go-gin-marketplace/internal/domains/orders/adapters/persistence/postgres"
	orderapp "github.com/Apurer/go-gin-marketplace/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-marketplace/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-marketplace/internal/platform/memtx"
	platformobservability "github.com/Apurer/go-gin-marketplace/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-marketplace/internal/platform/postgres"
)

// Stores is the persistence side of the marketplace: either all in memory or all in PostgreSQL.
type Stores struct {
	Customers   customerports.Repository
	Catalog     catalogports.Repository
	Orders      orderports.Repository
	Idempotency orderports.IdempotencyStore
	Transactor  orderports.Transactor
	// DB is nil for the in-memory stores.
	DB *gorm.DB
}

// MemoryStores builds in-memory stores whose writes roll back together.
func MemoryStores() Stores {
	catalog := catalogmemory.NewRepository()
	orders := ordermemory.NewRepository()
	idempotency := ordermemory.NewIdempotencyStore()
	return Stores{
		Customers:   customermemory.NewRepository(),
		Catalog:     catalog,
		Orders:      orders,
		Idempotency: idempotency,
		Transactor:  memtx.New(catalog, orders, idempotency),
	}
}

// PostgresStores builds the GORM-backed stores sharing db and its transactions.
func PostgresStores(db *gorm.DB) Stores {
	return Stores{
		Customers:   customerpostgres.NewRepository(db),
		Catalog:     catalogpostgres.NewRepository(db),
		Orders:      orderpostgres.NewRepository(db),
		Idempotency: orderpostgres.NewIdempotencyStore(db),
		Transactor:  platformpostgres.NewTransactor(db),
		DB:          db,
	}
}

// BuildStores connects to PostgreSQL when a DSN is configured and falls back to memory otherwise.
func BuildStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (Stores, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return MemoryStores(), func() {}
	}
	db, cleanup := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return MemoryStores(), cleanup
	}
	return PostgresStores(db), cleanup
}

// BuildEventPublisher writes to Kafka when brokers are configured, otherwise events stay in process.
func BuildEventPublisher(cfg config.Config, logger *slog.Logger) (orderports.EventPublisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set, order events are kept in process")
		return ordermemory.NewEventLog(), func() {}
	}
	publisher, err := orderkafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
	if err != nil {
		logger.Warn("failed to configure kafka publisher, order events are kept in process", slog.String("error", err.Error()))
		return ordermemory.NewEventLog(), func() {}
	}
	logger.Info("order events published to kafka", slog.String("topic", cfg.KafkaOrdersTopic))
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to flush kafka publisher", slog.String("error", err.Error()))
		}
	}
}

// Services are the instrumented use cases served by the API and the worker.
type Services struct {
	Customers customerports.Service
	Catalog   catalogports.Service
	Orders    orderports.Service
}

// BuildServices wraps the application services with tracing, metrics and logging.
func BuildServices(stores Stores, events orderports.EventPublisher, instruments *platformobservability.Instruments) Services {
	logger := instruments.Logger
	customers := customerobs.New(
		customerapp.NewService(stores.Customers),
		customerobs.WithLogger(logger),
		customerobs.WithTracer(instruments.Tracer("internal.customers.application")),
		customerobs.WithMeter(instruments.Meter("internal.customers.application")),
	)
	catalog := catalogobs.New(
		catalogapp.NewService(stores.Catalog, catalogapp.WithTransactor(stores.Transactor)),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	coreOrders := orderapp.NewService(
		stores.Customers,
		stores.Catalog,
		stores.Orders,
		orderapp.WithTransactor(stores.Transactor),
		orderapp.WithIdempotencyStore(stores.Idempotency),
		orderapp.WithEventPublisher(events),
		orderapp.WithLogger(logger),
	)
	orders := orderobs.New(
		coreOrders,
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	return Services{Customers: customers, Catalog: catalog, Orders: orders}
}

// DialTemporal connects a traced Temporal client unless Temporal is disabled.
func DialTemporal(cfg config.Config, instruments *platformobservability.Instruments, component string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(component),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.Logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

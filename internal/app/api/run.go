package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	marketplaceserver "github.com/Apurer/go-gin-marketplace/go"
	"github.com/Apurer/go-gin-marketplace/internal/app/config"
	"github.com/Apurer/go-gin-marketplace/internal/app/wiring"
	orderworkflows "github.com/Apurer/go-gin-marketplace/internal/domains/orders/adapters/workflows"
	orderports "github.com/Apurer/go-gin-marketplace/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/go-gin-marketplace/internal/platform/observability"
)

const serviceName = "marketplace-api"

// Run boots the marketplace HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context, cfg config.Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.Settings{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		LogLevel:     cfg.LogLevel,
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stores, cleanupStores := wiring.BuildStores(ctx, cfg, logger)
	defer cleanupStores()
	events, cleanupEvents := wiring.BuildEventPublisher(cfg, logger)
	defer cleanupEvents()
	services := wiring.BuildServices(stores, events, instruments)

	var orderWorkflows orderports.WorkflowOrchestrator = orderworkflows.NewInlineOrderWorkflows(services.Orders)
	if temporalClient, err := wiring.DialTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = orderworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := NewRouter(services, orderWorkflows)
	logger.Info("marketplace API listening", slog.String("addr", cfg.Addr()))
	if err := router.Run(cfg.Addr()); err != nil {
		logger.Error("marketplace API server exited", slog.String("addr", cfg.Addr()), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// NewRouter mounts the marketplace handlers behind request tracing.
func NewRouter(services wiring.Services, orderWorkflows orderports.WorkflowOrchestrator) *gin.Engine {
	handlers := marketplaceserver.ApiHandleFunctions{
		CustomerAPI: marketplaceserver.NewCustomerAPI(services.Customers),
		ProductAPI:  marketplaceserver.NewProductAPI(services.Catalog),
		OrderAPI:    marketplaceserver.NewOrderAPI(services.Orders, orderWorkflows),
	}
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	return marketplaceserver.NewRouterWithGinEngine(router, handlers)
}

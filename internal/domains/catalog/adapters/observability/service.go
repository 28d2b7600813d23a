package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-marketplace/internal/shared/projection"
)

const tracerName = "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	created metric.Int64Counter
	stocked metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m == nil {
			return
		}
		s.created, _ = m.Int64Counter("catalog.service.products_created", metric.WithDescription("Number of products created"))
		s.stocked, _ = m.Int64Counter("catalog.service.units_restocked", metric.WithDescription("Units added through restocking"))
	}
}

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{inner: inner}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) CreateProduct(ctx context.Context, input ports.CreateProductInput) (*projection.Projection[*domain.Product], error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreateProduct", trace.WithAttributes(attribute.String("product.name", input.Name)))
	defer span.End()

	result, err := s.inner.CreateProduct(ctx, input)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to create product", slog.String("product.name", input.Name))
	}
	if s.created != nil {
		s.created.Add(ctx, 1)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "product created",
		slog.String("product.id", result.Entity.ID),
		slog.Int("product.quantity", result.Entity.Quantity))
	return result, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*projection.Projection[*domain.Product], error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetProduct", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	result, err := s.inner.GetProduct(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to load product", slog.String("product.id", id))
	}
	return result, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]*projection.Projection[*domain.Product], error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()

	result, err := s.inner.ListProducts(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to list products")
	}
	span.SetAttributes(attribute.Int("product.result.count", len(result)))
	return result, nil
}

// Restock adds units and reports the new stock level.
func (s *Service) Restock(ctx context.Context, id string, amount int) (*projection.Projection[*domain.Product], error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Restock", trace.WithAttributes(
		attribute.String("product.id", id),
		attribute.Int("product.restock_amount", amount),
	))
	defer span.End()

	result, err := s.inner.Restock(ctx, id, amount)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to restock product", slog.String("product.id", id))
	}
	if s.stocked != nil {
		s.stocked.Add(ctx, int64(amount))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "product restocked",
		slog.String("product.id", id),
		slog.Int("product.quantity", result.Entity.Quantity))
	return result, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

var _ ports.Service = (*Service)(nil)

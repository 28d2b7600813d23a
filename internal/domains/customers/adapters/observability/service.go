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

	"github.com/Apurer/go-gin-marketplace/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/customers/ports"
)

const tracerName = "github.com/Apurer/go-gin-marketplace/internal/domains/customers/adapters/observability/service"

// Service decorates the customers port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	created metric.Int64Counter
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
		if m != nil {
			s.created, _ = m.Int64Counter("customers.service.customers_created", metric.WithDescription("Number of customers registered"))
		}
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

func (s *Service) CreateCustomer(ctx context.Context, name, email string) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomersService.CreateCustomer")
	defer span.End()

	result, err := s.inner.CreateCustomer(ctx, name, email)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to create customer")
	}
	if s.created != nil {
		s.created.Add(ctx, 1)
	}
	span.SetAttributes(attribute.String("customer.id", result.ID))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "customer created", slog.String("customer.id", result.ID))
	return result, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomersService.GetCustomer", trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	result, err := s.inner.GetCustomer(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to load customer", slog.String("customer.id", id))
	}
	return result, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomersService.ListCustomers")
	defer span.End()

	result, err := s.inner.ListCustomers(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to list customers")
	}
	span.SetAttributes(attribute.Int("customer.result.count", len(result)))
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

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

	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-gin-marketplace/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-gin-marketplace/internal/domains/orders/adapters/observability/service"

// Outcome values recorded on orders.service.orders_placed.
const (
	outcomePlaced = "placed"
	outcomeFailed = "error"
)

// Service decorates the orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// PlaceOrder places an order with instrumentation. Client rejections are logged
// at warn level and tagged with their kind.
func (s *Service) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "OrdersService.PlaceOrder",
		attribute.String("customer.id", input.CustomerID),
		attribute.Int("order.requested_lines", len(input.Lines)),
		attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
	)
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("customer.id", input.CustomerID), slog.Int("lines", len(input.Lines)))
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		if kind, ok := application.KindOf(err); ok {
			span.SetAttributes(attribute.String("order.rejection", string(kind)))
			span.SetStatus(codes.Error, err.Error())
			s.metrics.recordPlaced(ctx, string(kind))
			s.logger.LogAttrs(ctx, slog.LevelWarn, "order rejected",
				slog.String("customer.id", input.CustomerID),
				slog.String("kind", string(kind)))
			return nil, err
		}
		s.metrics.recordPlaced(ctx, outcomeFailed)
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("customer.id", input.CustomerID))
	}
	if result != nil && result.Entity != nil {
		span.SetAttributes(attribute.String("order.id", result.Entity.ID))
		s.metrics.recordPlaced(ctx, outcomePlaced)
		s.metrics.recordLines(ctx, len(result.Entity.Lines))
		s.logInfo(ctx, "order placed",
			slog.String("order.id", result.Entity.ID),
			slog.String("order.total", result.Entity.Total().StringFixed(2)))
	}
	return result, nil
}

// GetOrder loads a single order.
func (s *Service) GetOrder(ctx context.Context, id string) (*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "OrdersService.GetOrder", attribute.String("order.id", id))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", id))
	}
	return result, nil
}

// ListCustomerOrders lists the orders of a customer.
func (s *Service) ListCustomerOrders(ctx context.Context, customerID string) ([]*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "OrdersService.ListCustomerOrders", attribute.String("customer.id", customerID))
	defer span.End()

	result, err := s.inner.ListCustomerOrders(ctx, customerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list customer orders", slog.String("customer.id", customerID))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(result)))
	s.logInfo(ctx, "listed customer orders", slog.String("customer.id", customerID), slog.Int("count", len(result)))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersPlaced metric.Int64Counter
	orderLines   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Order placement attempts by outcome"))
	orderLines, _ := m.Int64Counter("orders.service.order_lines", metric.WithDescription("Line items across placed orders"))
	return serviceMetrics{
		ordersPlaced: ordersPlaced,
		orderLines:   orderLines,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, outcome string) {
	addCounter(ctx, m.ordersPlaced, 1, attribute.String("outcome", outcome))
}

func (m serviceMetrics) recordLines(ctx context.Context, lines int) {
	addCounter(ctx, m.orderLines, int64(lines))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)

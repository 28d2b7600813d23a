package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func placedEvent(t *testing.T) domain.OrderPlaced {
	t.Helper()
	order, err := domain.NewOrder("", "c1", []domain.Line{
		{ProductID: "p1", Quantity: 3, Price: decimal.RequireFromString("10.00")},
		{ProductID: "p2", Quantity: 2, Price: decimal.RequireFromString("20.00")},
	})
	require.NoError(t, err)
	return domain.NewOrderPlaced(order, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
}

func TestPublishOrderPlaced_WritesKeyedJSON(t *testing.T) {
	writer := &fakeWriter{}
	publisher := newPublisher(writer)
	event := placedEvent(t)

	require.NoError(t, publisher.PublishOrderPlaced(context.Background(), event))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	require.Equal(t, event.OrderID, string(msg.Key))
	require.Equal(t, "orders.order.placed", headerCarrier{msg: &msg}.Get(eventTypeHeader))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.Equal(t, "c1", decoded["customer_id"])
	require.Equal(t, "70", decoded["total"])
	require.Len(t, decoded["lines"], 2)
}

func TestPublishOrderPlaced_PropagatesTraceContext(t *testing.T) {
	writer := &fakeWriter{}
	publisher := newPublisher(writer)
	publisher.propagator = propagation.TraceContext{}

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "place")
	defer span.End()

	require.NoError(t, publisher.PublishOrderPlaced(ctx, placedEvent(t)))

	msg := writer.messages[0]
	traceparent := headerCarrier{msg: &msg}.Get("traceparent")
	require.Contains(t, traceparent, span.SpanContext().TraceID().String())
}

func TestPublishOrderPlaced_WrapsWriterError(t *testing.T) {
	boom := errors.New("leader not available")
	publisher := newPublisher(&fakeWriter{err: boom})

	err := publisher.PublishOrderPlaced(context.Background(), placedEvent(t))
	require.ErrorIs(t, err, boom)
}

func TestNewPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewPublisher(nil, "")
	require.Error(t, err)

	publisher, err := NewPublisher([]string{"localhost:9092"}, "")
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

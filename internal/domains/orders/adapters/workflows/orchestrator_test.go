package workflows

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/mocks"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-gin-marketplace/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-marketplace/internal/platform/temporal/activities/orders"
)

func TestFromWorkflowError_RestoresPlacementKinds(t *testing.T) {
	cases := map[string]error{
		string(application.KindCustomerNotFound):   application.ErrCustomerNotFound,
		string(application.KindProductsNotFound):   application.ErrProductsNotFound,
		string(application.KindInsufficientStock):  application.ErrInsufficientStock,
		orderactivities.ErrTypeIdempotencyConflict: ports.ErrIdempotencyConflict,
		orderactivities.ErrTypeInvalidInput:        application.ErrInvalidInput,
	}
	for errType, want := range cases {
		t.Run(errType, func(t *testing.T) {
			wrapped := temporal.NewNonRetryableApplicationError("rejected", errType, nil)
			require.ErrorIs(t, fromWorkflowError(wrapped), want)
		})
	}
}

func TestFromWorkflowError_KeepsStockDetails(t *testing.T) {
	details := application.StockError{ProductID: "p2", Requested: 5, Available: 2}
	wrapped := temporal.NewNonRetryableApplicationError("short", string(application.KindInsufficientStock), nil, details)

	err := fromWorkflowError(wrapped)

	var stock *application.StockError
	require.ErrorAs(t, err, &stock)
	require.Equal(t, details, *stock)
	require.EqualError(t, err, "Insufficient item quantity for the order")
}

func TestFromWorkflowError_PassesThroughUnknown(t *testing.T) {
	boom := errors.New("timeout")
	require.Equal(t, boom, fromWorkflowError(boom))
}

func TestBuildWorkflowID_StableForIdempotencyKey(t *testing.T) {
	input := ordertypes.PlaceOrderInput{IdempotencyKey: "checkout-1"}
	first := buildOrderPlacementWorkflowID(input, "a")
	second := buildOrderPlacementWorkflowID(input, "b")
	require.Equal(t, first, second)
	require.Contains(t, first, "order-placement-idem-")

	require.NotEqual(t, buildOrderPlacementWorkflowID(ordertypes.PlaceOrderInput{}, "a"), first)
}

type recordingService struct {
	ports.Service
	got ordertypes.PlaceOrderInput
}

func (r *recordingService) PlaceOrder(_ context.Context, input ordertypes.PlaceOrderInput) (*ordertypes.OrderProjection, error) {
	r.got = input
	return &ordertypes.OrderProjection{}, nil
}

func TestInlineOrderWorkflows_Delegates(t *testing.T) {
	svc := &recordingService{}
	_, err := NewInlineOrderWorkflows(svc).PlaceOrder(context.Background(), ordertypes.PlaceOrderInput{CustomerID: "c1"})
	require.NoError(t, err)
	require.Equal(t, "c1", svc.got.CustomerID)

	var missing *InlineOrderWorkflows
	_, err = missing.PlaceOrder(context.Background(), ordertypes.PlaceOrderInput{})
	require.Error(t, err)
}

func TestTemporalOrderWorkflows_RejectsOversizedKeyBeforeStarting(t *testing.T) {
	temporalClient := &mocks.Client{}
	orchestrator := NewTemporalOrderWorkflows(temporalClient)

	_, err := orchestrator.PlaceOrder(context.Background(), ordertypes.PlaceOrderInput{
		CustomerID:     "c1",
		IdempotencyKey: strings.Repeat("k", ports.MaxIdempotencyKeyLength+1),
	})

	require.ErrorIs(t, err, application.ErrInvalidInput)
	require.ErrorIs(t, err, ports.ErrIdempotencyKeyTooLong)
	temporalClient.AssertExpectations(t)
}

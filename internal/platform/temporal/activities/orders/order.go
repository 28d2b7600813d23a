package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-gin-marketplace/internal/domains/orders/application/types"
	orderports "github.com/Apurer/go-gin-marketplace/internal/domains/orders/ports"
)

// PlaceOrderActivityName places an order inside the activity worker.
const PlaceOrderActivityName = "orders.activities.PlaceOrder"

// Application error types raised by PlaceOrder besides the placement kinds.
const (
	ErrTypeInvalidInput        = "InvalidInput"
	ErrTypeIdempotencyConflict = "IdempotencyConflict"
)

// NonRetryableErrorTypes lists every rejection that retrying cannot fix.
var NonRetryableErrorTypes = []string{
	string(application.KindCustomerNotFound),
	string(application.KindProductsNotFound),
	string(application.KindInsufficientStock),
	ErrTypeInvalidInput,
	ErrTypeIdempotencyConflict,
}

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder runs the placement use case. Client rejections are returned as
// non-retryable application errors typed by their kind.
func (a *Activities) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*ordertypes.OrderProjection, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order placement activity not initialized", "customerId", input.CustomerID)
		return nil, errors.New("order placement activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "customerId", input.CustomerID, "lines", len(input.Lines))
	projection, err := a.service.PlaceOrder(ctx, input)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "customerId", input.CustomerID, "error", err)
		return nil, toApplicationError(err)
	}
	if projection != nil && projection.Entity != nil {
		logger.Info("PlaceOrder activity completed", "orderId", projection.Entity.ID)
	}
	return projection, nil
}

func toApplicationError(err error) error {
	var stock *application.StockError
	if errors.As(err, &stock) {
		return temporal.NewNonRetryableApplicationError(err.Error(), string(application.KindInsufficientStock), err, *stock)
	}
	if kind, ok := application.KindOf(err); ok {
		return temporal.NewNonRetryableApplicationError(err.Error(), string(kind), err)
	}
	if errors.Is(err, application.ErrInvalidInput) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	}
	if errors.Is(err, orderports.ErrIdempotencyConflict) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeIdempotencyConflict, err)
	}
	return err
}

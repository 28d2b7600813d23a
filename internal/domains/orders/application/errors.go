package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/ports"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid order input")

// ErrorKind names a client-facing placement rejection.
type ErrorKind string

const (
	KindCustomerNotFound  ErrorKind = "CustomerNotFound"
	KindProductsNotFound  ErrorKind = "ProductsNotFound"
	KindInsufficientStock ErrorKind = "InsufficientStock"
)

// PlacementError is a rejection caused by the request itself. The message is
// fixed per kind and safe to return to clients.
type PlacementError struct {
	Kind    ErrorKind
	Message string
}

func (e *PlacementError) Error() string { return e.Message }

// Is matches any placement error of the same kind.
func (e *PlacementError) Is(target error) bool {
	t, ok := target.(*PlacementError)
	return ok && t.Kind == e.Kind
}

var (
	ErrCustomerNotFound  = &PlacementError{Kind: KindCustomerNotFound, Message: "Customer not found"}
	ErrProductsNotFound  = &PlacementError{Kind: KindProductsNotFound, Message: "Product(s) not found"}
	ErrInsufficientStock = &PlacementError{Kind: KindInsufficientStock, Message: "Insufficient item quantity for the order"}
)

// StockError reports the first undersupplied product. It matches ErrInsufficientStock.
type StockError struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func (e *StockError) Error() string { return ErrInsufficientStock.Message }

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// KindOf extracts the placement kind carried by err.
func KindOf(err error) (ErrorKind, bool) {
	var placement *PlacementError
	if errors.As(err, &placement) {
		return placement.Kind, true
	}
	return "", false
}

// ErrorForKind returns the sentinel for kind, or nil when kind is unknown.
func ErrorForKind(kind ErrorKind) error {
	switch kind {
	case KindCustomerNotFound:
		return ErrCustomerNotFound
	case KindProductsNotFound:
		return ErrProductsNotFound
	case KindInsufficientStock:
		return ErrInsufficientStock
	default:
		return nil
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyCustomer) ||
		errors.Is(err, domain.ErrEmptyProduct) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrNoLines) ||
		errors.Is(err, ports.ErrIdempotencyKeyTooLong) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

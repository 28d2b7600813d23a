package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCustomer   = errors.New("customer id is required")
	ErrEmptyProduct    = errors.New("product id is required")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrNegativePrice   = errors.New("line price must not be negative")
	ErrNoLines         = errors.New("order must contain at least one line")
)

// Line is a product, quantity and the unit price snapshotted when the order was placed.
type Line struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Subtotal is the line price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the purchase aggregate: one customer and its lines.
type Order struct {
	ID         string
	CustomerID string
	Lines      []Line
}

// NewOrder validates and constructs an order. A blank id is replaced by a fresh UUID.
func NewOrder(id, customerID string, lines []Line) (*Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	order := &Order{
		ID:         id,
		CustomerID: strings.TrimSpace(customerID),
		Lines:      append([]Line(nil), lines...),
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.CustomerID == "" {
		return ErrEmptyCustomer
	}
	if len(o.Lines) == 0 {
		return ErrNoLines
	}
	for _, line := range o.Lines {
		if strings.TrimSpace(line.ProductID) == "" {
			return ErrEmptyProduct
		}
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if line.Price.IsNegative() {
			return ErrNegativePrice
		}
	}
	return nil
}

// Total sums every line subtotal.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone
}

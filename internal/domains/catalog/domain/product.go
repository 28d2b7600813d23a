package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidID         = errors.New("product id must be a UUID")
	ErrEmptyName         = errors.New("product name is required")
	ErrNegativePrice     = errors.New("price must not be negative")
	ErrNegativeQuantity  = errors.New("quantity must not be negative")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product is a sellable item with a unit price and the units available for sale.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// NewProduct validates and constructs a product. A blank id is replaced by a fresh UUID.
func NewProduct(id, name string, price decimal.Decimal, quantity int) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	product := &Product{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Price:    price.Round(2),
		Quantity: quantity,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	return product, nil
}

// Validate enforces invariants on the entity.
func (p *Product) Validate() error {
	if _, err := uuid.Parse(p.ID); err != nil {
		return ErrInvalidID
	}
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// HasStock reports whether amount units can be withdrawn.
func (p *Product) HasStock(amount int) bool {
	return p.Quantity >= amount
}

// Withdraw removes amount units from stock.
func (p *Product) Withdraw(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !p.HasStock(amount) {
		return ErrInsufficientStock
	}
	p.Quantity -= amount
	return nil
}

// Restock adds amount units to stock.
func (p *Product) Restock(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	p.Quantity += amount
	return nil
}

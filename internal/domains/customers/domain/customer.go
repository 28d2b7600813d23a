package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidID    = errors.New("customer id must be a UUID")
	ErrEmptyName    = errors.New("customer name is required")
	ErrInvalidEmail = errors.New("email must contain '@'")
)

// Customer is a registered buyer. Orders reference it by ID.
type Customer struct {
	ID    string
	Name  string
	Email string
}

// NewCustomer builds a customer ensuring required invariants. A blank id is replaced by a fresh UUID.
func NewCustomer(id, name, email string) (*Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	customer := &Customer{ID: id}
	if err := customer.Rename(name); err != nil {
		return nil, err
	}
	if err := customer.ChangeEmail(email); err != nil {
		return nil, err
	}
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	return customer, nil
}

// Rename trims and validates the display name.
func (c *Customer) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	c.Name = name
	return nil
}

// ChangeEmail normalizes the address to lower case.
func (c *Customer) ChangeEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	c.Email = email
	return nil
}

// Validate enforces invariants on the entity.
func (c *Customer) Validate() error {
	if _, err := uuid.Parse(c.ID); err != nil {
		return ErrInvalidID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !strings.Contains(c.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

package mapper

import (
	"github.com/Apurer/go-gin-marketplace/internal/domains/customers/domain"
)

// CreateCustomerRequest is the body of POST /v1/customers.
type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Customer is the HTTP representation of a customer.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func FromDomainCustomer(customer *domain.Customer) Customer {
	if customer == nil {
		return Customer{}
	}
	return Customer{ID: customer.ID, Name: customer.Name, Email: customer.Email}
}

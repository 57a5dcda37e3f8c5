// Package customer provides the Customer catalog. Customers appear on sale invoices.
package customer

import (
	"context"

	"anbar/internal/core/entity"
)

// Customer is a trading partner.
type Customer struct {
	entity.Catalog
	entity.Party
}

// NewCustomer creates a new Customer.
func NewCustomer(code, name string) *Customer {
	return &Customer{Catalog: entity.NewCatalog(code, name)}
}

// Validate implements entity.Validatable interface.
func (p *Customer) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	p.Party.Normalize()
	return nil
}

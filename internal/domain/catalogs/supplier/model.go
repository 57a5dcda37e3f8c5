// Package supplier provides the Supplier catalog. Suppliers appear on purchase invoices.
package supplier

import (
	"context"

	"anbar/internal/core/entity"
)

// Supplier is a trading partner.
type Supplier struct {
	entity.Catalog
	entity.Party
}

// NewSupplier creates a new Supplier.
func NewSupplier(code, name string) *Supplier {
	return &Supplier{Catalog: entity.NewCatalog(code, name)}
}

// Validate implements entity.Validatable interface.
func (p *Supplier) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	p.Party.Normalize()
	return nil
}

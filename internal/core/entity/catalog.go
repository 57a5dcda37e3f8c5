package entity

import (
	"context"
	"strings"

	"anbar/internal/core/apperror"
)

// Catalog is the base type for reference data: products, suppliers, customers.
type Catalog struct {
	BaseCatalog

	// Code is a human-readable identifier, unique per catalog
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Code = strings.TrimSpace(c.Code)

	if c.Name == "" {
		return apperror.NewFieldValidation("name", "name is required")
	}

	// Code can be auto-generated, so it's optional at creation
	return nil
}

// DisplayName returns the name, falling back to code.
func (c *Catalog) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Code
}

// GetCode returns the catalog code.
func (c *Catalog) GetCode() string { return c.Code }

// SetCode sets the catalog code.
func (c *Catalog) SetCode(code string) { c.Code = code }

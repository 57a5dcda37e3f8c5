// Package product provides the Product catalog: stocked goods referenced by
// document lines.
package product

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"anbar/internal/core/apperror"
	"anbar/internal/core/entity"
)

// Product is a stocked item.
type Product struct {
	entity.Catalog

	// Unit of measure shown on invoices (e.g. "kg", "pcs")
	Unit string `db:"unit" json:"unit"`

	Category string `db:"category" json:"category,omitempty"`
	Barcode  string `db:"barcode" json:"barcode,omitempty"`

	// SalePrice is the suggested sale price; invoices carry their own prices
	SalePrice decimal.Decimal `db:"sale_price" json:"salePrice"`

	// MinStock and MaxStock are optional reorder thresholds
	MinStock *decimal.Decimal `db:"min_stock" json:"minStock,omitempty"`
	MaxStock *decimal.Decimal `db:"max_stock" json:"maxStock,omitempty"`

	Description string `db:"description" json:"description,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name, unit string) *Product {
	return &Product{
		Catalog:   entity.NewCatalog(code, name),
		Unit:      unit,
		SalePrice: decimal.Zero,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	p.Unit = strings.TrimSpace(p.Unit)
	if p.Unit == "" {
		return apperror.NewFieldValidation("unit", "unit of measure is required")
	}

	if p.SalePrice.IsNegative() {
		return apperror.NewFieldValidation("salePrice", "sale price cannot be negative")
	}

	if p.MinStock != nil && p.MinStock.IsNegative() {
		return apperror.NewFieldValidation("minStock", "minimum stock cannot be negative")
	}
	if p.MaxStock != nil && p.MaxStock.IsNegative() {
		return apperror.NewFieldValidation("maxStock", "maximum stock cannot be negative")
	}
	if p.MinStock != nil && p.MaxStock != nil && p.MinStock.GreaterThan(*p.MaxStock) {
		return apperror.NewValidation("minimum stock exceeds maximum stock").
			WithDetail("field", "minStock")
	}

	return nil
}

// IsActive reports whether the product is not soft-deleted.
func (p *Product) IsActive() bool {
	return !p.DeletionMark
}

// StockLevel classifies a quantity against the thresholds.
type StockLevel string

const (
	LevelNormal StockLevel = "normal"
	LevelLow    StockLevel = "low"
	LevelHigh   StockLevel = "high"
)

// LevelOf returns the stock level of qty.
func (p *Product) LevelOf(qty decimal.Decimal) StockLevel {
	if p.MinStock != nil && qty.LessThan(*p.MinStock) {
		return LevelLow
	}
	if p.MaxStock != nil && qty.GreaterThan(*p.MaxStock) {
		return LevelHigh
	}
	return LevelNormal
}

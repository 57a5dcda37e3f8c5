package dto

import (
	"github.com/shopspring/decimal"

	"anbar/internal/core/entity"
	"anbar/internal/domain/catalogs/customer"
	"anbar/internal/domain/catalogs/product"
	"anbar/internal/domain/catalogs/supplier"
)

// --- Products ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code        string           `json:"code" binding:"max=32"`
	Name        string           `json:"name" binding:"required,max=200"`
	Unit        string           `json:"unit" binding:"required,max=32"`
	Category    string           `json:"category" binding:"max=100"`
	Barcode     string           `json:"barcode" binding:"max=64"`
	SalePrice   decimal.Decimal  `json:"salePrice"`
	MinStock    *decimal.Decimal `json:"minStock"`
	MaxStock    *decimal.Decimal `json:"maxStock"`
	Description string           `json:"description"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name, r.Unit)
	r.apply(p)
	return p
}

func (r *CreateProductRequest) apply(p *product.Product) {
	p.Code = r.Code
	p.Name = r.Name
	p.Unit = r.Unit
	p.Category = r.Category
	p.Barcode = r.Barcode
	p.SalePrice = r.SalePrice
	p.MinStock = r.MinStock
	p.MaxStock = r.MaxStock
	p.Description = r.Description
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	CreateProductRequest
	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	r.apply(p)
	p.Version = r.Version
}

// ProductResponse is the response body for a product.
type ProductResponse struct {
	*product.Product
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{Product: p}
}

// --- Suppliers and customers ---

// CreatePartyRequest is the request body for creating a supplier or customer.
type CreatePartyRequest struct {
	Code         string `json:"code" binding:"max=32"`
	Name         string `json:"name" binding:"required,max=200"`
	Phone        string `json:"phone" binding:"max=32"`
	Address      string `json:"address"`
	NationalID   string `json:"nationalId" binding:"max=16"`
	EconomicCode string `json:"economicCode" binding:"max=16"`
}

func (r *CreatePartyRequest) catalog(c *entity.Catalog, p *entity.Party) {
	c.Code = r.Code
	c.Name = r.Name
	p.Phone = r.Phone
	p.Address = r.Address
	p.NationalID = r.NationalID
	p.EconomicCode = r.EconomicCode
}

// ToSupplier converts DTO to a supplier.
func (r *CreatePartyRequest) ToSupplier() *supplier.Supplier {
	s := supplier.NewSupplier(r.Code, r.Name)
	r.catalog(&s.Catalog, &s.Party)
	return s
}

// ToCustomer converts DTO to a customer.
func (r *CreatePartyRequest) ToCustomer() *customer.Customer {
	c := customer.NewCustomer(r.Code, r.Name)
	r.catalog(&c.Catalog, &c.Party)
	return c
}

// UpdatePartyRequest is the request body for updating a supplier or customer.
type UpdatePartyRequest struct {
	CreatePartyRequest
	Version int `json:"version" binding:"required,min=1"`
}

// ApplyToSupplier applies update DTO to existing supplier.
func (r *UpdatePartyRequest) ApplyToSupplier(s *supplier.Supplier) {
	r.catalog(&s.Catalog, &s.Party)
	s.Version = r.Version
}

// ApplyToCustomer applies update DTO to existing customer.
func (r *UpdatePartyRequest) ApplyToCustomer(c *customer.Customer) {
	r.catalog(&c.Catalog, &c.Party)
	c.Version = r.Version
}

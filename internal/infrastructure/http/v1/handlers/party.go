package handlers

import (
	"anbar/internal/domain/catalogs/customer"
	"anbar/internal/domain/catalogs/supplier"
	"anbar/internal/infrastructure/http/v1/dto"
)

// SupplierHandler handles HTTP requests for the supplier catalog.
type SupplierHandler = CatalogHandler[*supplier.Supplier, dto.CreatePartyRequest, dto.UpdatePartyRequest]

// CustomerHandler handles HTTP requests for the customer catalog.
type CustomerHandler = CatalogHandler[*customer.Customer, dto.CreatePartyRequest, dto.UpdatePartyRequest]

// NewSupplierHandler creates a new supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*supplier.Supplier, dto.CreatePartyRequest, dto.UpdatePartyRequest]{
		Service:    service.CatalogService,
		EntityName: "supplier",
		MapCreateDTO: func(req dto.CreatePartyRequest) *supplier.Supplier {
			return req.ToSupplier()
		},
		MapUpdateDTO: func(req dto.UpdatePartyRequest, existing *supplier.Supplier) *supplier.Supplier {
			req.ApplyToSupplier(existing)
			return existing
		},
		MapToDTO: func(s *supplier.Supplier) any { return s },
	})
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*customer.Customer, dto.CreatePartyRequest, dto.UpdatePartyRequest]{
		Service:    service.CatalogService,
		EntityName: "customer",
		MapCreateDTO: func(req dto.CreatePartyRequest) *customer.Customer {
			return req.ToCustomer()
		},
		MapUpdateDTO: func(req dto.UpdatePartyRequest, existing *customer.Customer) *customer.Customer {
			req.ApplyToCustomer(existing)
			return existing
		},
		MapToDTO: func(c *customer.Customer) any { return c },
	})
}

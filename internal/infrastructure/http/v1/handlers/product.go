package handlers

import (
	"github.com/gin-gonic/gin"

	"anbar/internal/domain/catalogs/product"
	"anbar/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	cfg := CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
		Service:    service.CatalogService,
		EntityName: "product",
		MapCreateDTO: func(req dto.CreateProductRequest) *product.Product {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) *product.Product {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(p *product.Product) any {
			return dto.FromProduct(p)
		},
	}

	return &ProductHandler{
		CatalogHandler: NewCatalogHandler(base, cfg),
		service:        service,
	}
}

// ByBarcode handles GET /catalog/products/by-barcode/:barcode
func (h *ProductHandler) ByBarcode(c *gin.Context) {
	p, err := h.service.FindByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(p))
}

// LowStock handles GET /catalog/products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 100)

	list, err := h.service.FindLowStock(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ProductResponse, len(list))
	for i, p := range list {
		items[i] = dto.FromProduct(p)
	}
	h.OK(c, dto.ListResponse{Items: items, TotalCount: int64(len(items)), Limit: limit})
}

package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"anbar/internal/domain/company"
	"anbar/internal/infrastructure/http/v1/dto"
)

// CompanyService manages the company profile.
type CompanyService interface {
	GetActive(ctx context.Context) (*company.Company, error)
	Upsert(ctx context.Context, in company.UpsertInput) (*company.Company, error)
	History(ctx context.Context, limit int) ([]*company.Company, error)
}

// CompanyHandler handles HTTP requests for the company profile.
type CompanyHandler struct {
	*BaseHandler
	service CompanyService
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(base *BaseHandler, service CompanyService) *CompanyHandler {
	return &CompanyHandler{BaseHandler: base, service: service}
}

// GetActive handles GET /company
func (h *CompanyHandler) GetActive(c *gin.Context) {
	co, err := h.service.GetActive(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCompany(co))
}

// Upsert handles PUT /company
func (h *CompanyHandler) Upsert(c *gin.Context) {
	var req dto.UpsertCompanyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	co, err := h.service.Upsert(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCompany(co))
}

// History handles GET /company/history
func (h *CompanyHandler) History(c *gin.Context) {
	list, err := h.service.History(c.Request.Context(), h.ParseIntQuery(c, "limit", 20))
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.CompanyResponse, len(list))
	for i, co := range list {
		items[i] = dto.FromCompany(co)
	}
	h.OK(c, gin.H{"items": items})
}

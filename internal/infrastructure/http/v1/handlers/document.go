package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"anbar/internal/core/entity"
	"anbar/internal/core/id"
	"anbar/internal/domain"
	"anbar/internal/domain/documents"
	"anbar/internal/infrastructure/http/v1/dto"
)

// DocumentService is the document ledger as seen by the handler.
type DocumentService interface {
	Create(ctx context.Context, doc *documents.Document) error
	Update(ctx context.Context, doc *documents.Document) error
	Finalize(ctx context.Context, docID id.ID) (*documents.Document, error)
	Delete(ctx context.Context, docID id.ID) (bool, error)
	GetByID(ctx context.Context, docID id.ID) (*documents.Document, error)
	List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[*documents.Document], error)
}

// MovementLister lists the register rows of a document.
type MovementLister interface {
	ListByDocument(ctx context.Context, documentID id.ID) ([]entity.InventoryMovement, error)
}

// DocumentHandler handles HTTP requests for invoices and stock documents.
type DocumentHandler struct {
	*BaseHandler
	service   DocumentService
	movements MovementLister
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(base *BaseHandler, service DocumentService, movements MovementLister) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler: base,
		service:     service,
		movements:   movements,
	}
}

// ParseDocumentFilter reads the document list filter shared by the document
// list and the journal report.
func (h *DocumentHandler) ParseDocumentFilter(c *gin.Context) (documents.ListFilter, bool) {
	return parseDocumentFilter(h.BaseHandler, c)
}

func parseDocumentFilter(h *BaseHandler, c *gin.Context) (documents.ListFilter, bool) {
	f := documents.ListFilter{
		Search:         strings.TrimSpace(c.Query("search")),
		IncludeDeleted: c.Query("includeDeleted") == "true",
		OrderBy:        c.Query("orderBy"),
		Limit:          h.ParseIntQuery(c, "limit", 50),
		Offset:         h.ParseIntQuery(c, "offset", 0),
		WithItems:      c.Query("withItems") == "true",
		Finalized:      h.ParseBoolQuery(c, "finalized"),
	}

	for _, raw := range c.QueryArray("type") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			t, err := documents.ParseDocumentType(part)
			if err != nil {
				h.Error(c, err)
				return f, false
			}
			f.Types = append(f.Types, t)
		}
	}

	refs := []struct {
		key string
		dst **id.ID
	}{
		{"productId", &f.ProductID},
		{"supplierId", &f.SupplierID},
		{"customerId", &f.CustomerID},
	}
	for _, ref := range refs {
		raw := c.Query(ref.key)
		v, err := dto.ParseOptionalID(ref.key, &raw)
		if err != nil {
			h.Error(c, err)
			return f, false
		}
		*ref.dst = v
	}

	var ok bool
	if f.DateFrom, ok = h.ParseTimeQuery(c, "from", false); !ok {
		return f, false
	}
	if f.DateTo, ok = h.ParseTimeQuery(c, "to", true); !ok {
		return f, false
	}
	return f, true
}

// List handles GET /documents
func (h *DocumentHandler) List(c *gin.Context) {
	f, ok := h.ParseDocumentFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.DocumentResponse, len(result.Items))
	for i, d := range result.Items {
		items[i] = dto.FromDocument(d)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDocument(doc))
}

// Create handles POST /documents
func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromDocument(doc))
}

// Update handles PUT /documents/:id
func (h *DocumentHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(doc); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDocument(doc))
}

// Delete handles DELETE /documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.DeleteDocumentResponse{Deleted: deleted})
}

// Finalize handles POST /documents/:id/finalize
func (h *DocumentHandler) Finalize(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.Finalize(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDocument(doc))
}

// Movements handles GET /documents/:id/movements
func (h *DocumentHandler) Movements(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	// 404 for unknown documents rather than an empty list.
	if _, err := h.service.GetByID(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	list, err := h.movements.ListByDocument(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromMovements(list)})
}

package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"anbar/internal/core/apperror"
	"anbar/internal/core/entity"
	"anbar/internal/core/id"
	"anbar/internal/domain/registers/movements"
	"anbar/internal/domain/reports"
	"anbar/internal/infrastructure/http/v1/dto"
)

// ReportService builds the stock and journal reports.
type ReportService interface {
	Cardex(ctx context.Context, req reports.CardexRequest) (*reports.CardexReport, error)
	MovementSummary(ctx context.Context, productID id.ID, includeDrafts *bool) (*reports.MovementSummaryReport, error)
	StockBalances(ctx context.Context, filter reports.StockBalanceFilter) (*reports.StockBalanceReport, error)
	DocumentJournal(ctx context.Context, filter reports.JournalFilter) (*reports.Journal, error)
}

// RegisterReader queries the movement register directly.
type RegisterReader interface {
	ListByProduct(ctx context.Context, productID id.ID, filter movements.MovementFilter) ([]entity.InventoryMovement, error)
	Turnover(ctx context.Context, filter movements.TurnoverFilter) (movements.Turnover, error)
}

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service  ReportService
	register RegisterReader
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service ReportService, register RegisterReader) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
		register:    register,
	}
}

// Cardex handles GET /reports/cardex/:productId
func (h *ReportsHandler) Cardex(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	req := reports.CardexRequest{
		ProductID:     productID,
		IncludeDrafts: h.ParseBoolQuery(c, "includeDrafts"),
	}
	if req.From, ok = h.ParseTimeQuery(c, "from", false); !ok {
		return
	}
	if req.To, ok = h.ParseTimeQuery(c, "to", true); !ok {
		return
	}

	report, err := h.service.Cardex(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// MovementSummary handles GET /reports/movement-summary/:productId
func (h *ReportsHandler) MovementSummary(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	report, err := h.service.MovementSummary(c.Request.Context(), productID, h.ParseBoolQuery(c, "includeDrafts"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// StockBalances handles GET /reports/stock-balances
func (h *ReportsHandler) StockBalances(c *gin.Context) {
	productIDs, ok := h.ParseIDsQuery(c, "productId")
	if !ok {
		return
	}

	filter := reports.StockBalanceFilter{
		ProductIDs:  productIDs,
		ExcludeZero: c.DefaultQuery("excludeZero", "true") == "true",
	}
	if filter.AsOf, ok = h.ParseTimeQuery(c, "asOf", true); !ok {
		return
	}

	report, err := h.service.StockBalances(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// DocumentJournal handles GET /reports/document-journal
func (h *ReportsHandler) DocumentJournal(c *gin.Context) {
	f, ok := parseDocumentFilter(h.BaseHandler, c)
	if !ok {
		return
	}
	if c.Query("orderBy") == "" {
		f.OrderBy = "-date"
	}

	journal, err := h.service.DocumentJournal(c.Request.Context(), reports.JournalFilter{ListFilter: f})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, journal)
}

// StockMovements handles GET /reports/stock-movements/:productId
func (h *ReportsHandler) StockMovements(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	filter := movements.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	for _, raw := range c.QueryArray("type") {
		mt := entity.MovementType(raw)
		if !mt.IsValid() {
			h.Error(c, apperror.NewFieldValidation("type", "unknown movement type").WithDetail("value", raw))
			return
		}
		filter.Types = append(filter.Types, mt)
	}
	if filter.FromDate, ok = h.ParseTimeQuery(c, "from", false); !ok {
		return
	}
	if filter.ToDate, ok = h.ParseTimeQuery(c, "to", true); !ok {
		return
	}

	list, err := h.register.ListByProduct(c.Request.Context(), productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      dto.FromMovements(list),
		TotalCount: int64(len(list)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// StockTurnover handles GET /reports/stock-turnover/:productId?from=&to=
func (h *ReportsHandler) StockTurnover(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	from, ok := h.ParseTimeQuery(c, "from", false)
	if !ok {
		return
	}
	to, ok := h.ParseTimeQuery(c, "to", true)
	if !ok {
		return
	}
	if from == nil {
		h.Error(c, apperror.NewFieldValidation("from", "from is required"))
		return
	}
	if to == nil {
		now := time.Now().UTC()
		to = &now
	}

	turnover, err := h.register.Turnover(c.Request.Context(), movements.TurnoverFilter{
		ProductID: productID,
		FromDate:  *from,
		ToDate:    *to,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, turnover)
}

package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anbar/internal/core/apperror"
	"anbar/internal/core/entity"
	"anbar/internal/core/id"
	"anbar/internal/domain/registers/movements"
	"anbar/internal/domain/reports"
)

type fakeReports struct {
	cardex   reports.CardexRequest
	drafts   *bool
	balances reports.StockBalanceFilter
	journal  reports.JournalFilter
}

func (f *fakeReports) Cardex(_ context.Context, req reports.CardexRequest) (*reports.CardexReport, error) {
	f.cardex = req
	return &reports.CardexReport{Product: reports.ProductRef{ID: req.ProductID, Name: "Rice"}, Rows: []reports.CardexRow{}}, nil
}

func (f *fakeReports) MovementSummary(_ context.Context, productID id.ID, includeDrafts *bool) (*reports.MovementSummaryReport, error) {
	f.drafts = includeDrafts
	return &reports.MovementSummaryReport{Product: reports.ProductRef{ID: productID}}, nil
}

func (f *fakeReports) StockBalances(_ context.Context, filter reports.StockBalanceFilter) (*reports.StockBalanceReport, error) {
	f.balances = filter
	return &reports.StockBalanceReport{Items: []reports.StockBalanceRow{}}, nil
}

func (f *fakeReports) DocumentJournal(_ context.Context, filter reports.JournalFilter) (*reports.Journal, error) {
	f.journal = filter
	return &reports.Journal{Items: []reports.JournalRow{}}, nil
}

type fakeRegister struct {
	filter   movements.MovementFilter
	turnover movements.TurnoverFilter
}

func (f *fakeRegister) ListByProduct(_ context.Context, _ id.ID, filter movements.MovementFilter) ([]entity.InventoryMovement, error) {
	f.filter = filter
	return nil, nil
}

func (f *fakeRegister) Turnover(_ context.Context, filter movements.TurnoverFilter) (movements.Turnover, error) {
	f.turnover = filter
	if filter.ToDate.Before(filter.FromDate) {
		return movements.Turnover{}, apperror.NewValidation("toDate is before fromDate")
	}
	return movements.Turnover{ProductID: filter.ProductID}, nil
}

func reportsRouter(svc *fakeReports, reg *fakeRegister) http.Handler {
	h := NewReportsHandler(NewBaseHandler(), svc, reg)
	r := newEngine()
	g := r.Group("/reports")
	g.GET("/cardex/:productId", h.Cardex)
	g.GET("/movement-summary/:productId", h.MovementSummary)
	g.GET("/stock-balances", h.StockBalances)
	g.GET("/stock-movements/:productId", h.StockMovements)
	g.GET("/stock-turnover/:productId", h.StockTurnover)
	g.GET("/document-journal", h.DocumentJournal)
	return r
}

func TestReportsHandler_Cardex(t *testing.T) {
	svc := &fakeReports{}
	r := reportsRouter(svc, &fakeRegister{})
	p := id.New()

	w := do(t, r, http.MethodGet, "/reports/cardex/"+p.String()+"?includeDrafts=false&from=1403/10/01&to=1403/10/01", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, p, svc.cardex.ProductID)
	require.NotNil(t, svc.cardex.IncludeDrafts)
	assert.False(t, *svc.cardex.IncludeDrafts)
	require.NotNil(t, svc.cardex.From)
	require.NotNil(t, svc.cardex.To)
	// A single Jalaali day spans the whole day.
	assert.Equal(t, 24*time.Hour-time.Nanosecond, svc.cardex.To.Sub(*svc.cardex.From))

	w = do(t, r, http.MethodGet, "/reports/cardex/"+p.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.cardex.IncludeDrafts)

	w = do(t, r, http.MethodGet, "/reports/cardex/xyz", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportsHandler_MovementSummary(t *testing.T) {
	svc := &fakeReports{}
	r := reportsRouter(svc, &fakeRegister{})

	w := do(t, r, http.MethodGet, "/reports/movement-summary/"+id.New().String()+"?includeDrafts=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.drafts)
	assert.True(t, *svc.drafts)
}

func TestReportsHandler_StockBalances(t *testing.T) {
	svc := &fakeReports{}
	r := reportsRouter(svc, &fakeRegister{})

	w := do(t, r, http.MethodGet, "/reports/stock-balances", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.balances.ExcludeZero)
	assert.Nil(t, svc.balances.AsOf)

	p := id.New()
	w = do(t, r, http.MethodGet, "/reports/stock-balances?excludeZero=false&asOf=2024-12-21&productId="+p.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, svc.balances.ExcludeZero)
	assert.Equal(t, []id.ID{p}, svc.balances.ProductIDs)
	require.NotNil(t, svc.balances.AsOf)
	assert.Equal(t, time.Date(2024, 12, 21, 20, 29, 59, 999999999, time.UTC), *svc.balances.AsOf)
}

func TestReportsHandler_DocumentJournalDefaultsToNewestFirst(t *testing.T) {
	svc := &fakeReports{}
	r := reportsRouter(svc, &fakeRegister{})

	w := do(t, r, http.MethodGet, "/reports/document-journal?type=SALE_INVOICE", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "-date", svc.journal.OrderBy)
	assert.Len(t, svc.journal.Types, 1)

	w = do(t, r, http.MethodGet, "/reports/document-journal?orderBy=number", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "number", svc.journal.OrderBy)
}

func TestReportsHandler_StockMovementsAndTurnover(t *testing.T) {
	reg := &fakeRegister{}
	r := reportsRouter(&fakeReports{}, reg)
	p := id.New().String()

	w := do(t, r, http.MethodGet, "/reports/stock-movements/"+p+"?type=SALE&type=PURCHASE&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []entity.MovementType{entity.MovementSale, entity.MovementPurchase}, reg.filter.Types)
	assert.Equal(t, 5, reg.filter.Limit)

	w = do(t, r, http.MethodGet, "/reports/stock-movements/"+p+"?type=INITIAL_STOCK", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []entity.MovementType{entity.MovementInitialStock}, reg.filter.Types)

	w = do(t, r, http.MethodGet, "/reports/stock-movements/"+p+"?type=RETURN", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/reports/stock-turnover/"+p+"?from=1403/10/01&to=1403/10/30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, reg.turnover.ToDate.After(reg.turnover.FromDate))

	w = do(t, r, http.MethodGet, "/reports/stock-turnover/"+p, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/reports/stock-turnover/"+p+"?from=1403/10/30&to=1403/10/01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

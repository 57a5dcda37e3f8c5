package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anbar/internal/core/apperror"
	"anbar/internal/core/id"
	"anbar/internal/domain/company"
)

type fakeCompany struct {
	active  *company.Company
	history []*company.Company
	lastIn  company.UpsertInput
}

func (f *fakeCompany) GetActive(context.Context) (*company.Company, error) {
	if f.active == nil {
		return nil, apperror.NewNotFound("company", "active")
	}
	return f.active, nil
}

func (f *fakeCompany) Upsert(ctx context.Context, in company.UpsertInput) (*company.Company, error) {
	if err := in.Validate(ctx); err != nil {
		return nil, err
	}
	f.lastIn = in
	c := &company.Company{ID: id.New(), Name: in.Name, IsActive: true, Version: len(f.history) + 1}
	if in.FiscalYear != 0 {
		c.FiscalYearStart, c.FiscalYearEnd = company.FiscalYearRange(in.FiscalYear)
	} else {
		c.FiscalYearStart, c.FiscalYearEnd = *in.FiscalYearStart, *in.FiscalYearEnd
	}
	f.active = c
	f.history = append([]*company.Company{c}, f.history...)
	return c, nil
}

func (f *fakeCompany) History(_ context.Context, limit int) ([]*company.Company, error) {
	if limit < len(f.history) {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func companyRouter(svc *fakeCompany) http.Handler {
	h := NewCompanyHandler(NewBaseHandler(), svc)
	r := newEngine()
	r.GET("/company", h.GetActive)
	r.PUT("/company", h.Upsert)
	r.GET("/company/history", h.History)
	return r
}

func TestCompanyHandler_UpsertAndGet(t *testing.T) {
	svc := &fakeCompany{}
	r := companyRouter(svc)

	w := do(t, r, http.MethodGet, "/company", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPut, "/company", map[string]any{"name": "Anbar Co", "fiscalYear": 1403})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(1403), body["fiscalYear"])
	assert.Equal(t, "۱۴۰۳/۰۱/۰۱", body["jalaliFiscalYearStart"])
	assert.Equal(t, "۱۴۰۳/۱۲/۳۰", body["jalaliFiscalYearEnd"])

	w = do(t, r, http.MethodGet, "/company", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Anbar Co", decode(t, w)["name"])
}

func TestCompanyHandler_UpsertJalaliBounds(t *testing.T) {
	svc := &fakeCompany{}
	r := companyRouter(svc)

	w := do(t, r, http.MethodPut, "/company", map[string]any{
		"name":                  "Anbar Co",
		"jalaliFiscalYearStart": "1403/07/01",
		"jalaliFiscalYearEnd":   "1404/06/31",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "۱۴۰۳/۰۷/۰۱", body["jalaliFiscalYearStart"])
	assert.Equal(t, "۱۴۰۴/۰۶/۳۱", body["jalaliFiscalYearEnd"])
	require.NotNil(t, svc.lastIn.FiscalYearEnd)
	assert.True(t, svc.lastIn.FiscalYearStart.Before(*svc.lastIn.FiscalYearEnd))
}

func TestCompanyHandler_UpsertValidation(t *testing.T) {
	r := companyRouter(&fakeCompany{})

	w := do(t, r, http.MethodPut, "/company", map[string]any{"fiscalYear": 1403})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name", decode(t, w)["details"].(map[string]any)["field"])

	w = do(t, r, http.MethodPut, "/company", map[string]any{"name": "Anbar Co"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "fiscalYear", decode(t, w)["details"].(map[string]any)["field"])
}

func TestCompanyHandler_History(t *testing.T) {
	svc := &fakeCompany{}
	r := companyRouter(svc)
	for _, year := range []int{1402, 1403} {
		w := do(t, r, http.MethodPut, "/company", map[string]any{"name": "Anbar Co", "fiscalYear": year})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(t, r, http.MethodGet, "/company/history?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(1403), items[0].(map[string]any)["fiscalYear"])
}

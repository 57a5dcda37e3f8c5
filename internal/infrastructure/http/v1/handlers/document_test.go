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
	"anbar/internal/core/types"
	"anbar/internal/domain"
	"anbar/internal/domain/documents"
)

type fakeDocuments struct {
	docs       map[id.ID]*documents.Document
	lastFilter documents.ListFilter
	createErr  error
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{docs: make(map[id.ID]*documents.Document)}
}

func (f *fakeDocuments) Create(_ context.Context, doc *documents.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	if doc.Number == "" {
		doc.Number = doc.Type.NumberPrefix() + "-1403-00001"
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocuments) Update(_ context.Context, doc *documents.Document) error {
	cur, ok := f.docs[doc.ID]
	if !ok {
		return apperror.NewNotFound("document", doc.ID.String())
	}
	if cur.Version != doc.Version {
		return apperror.NewConcurrentModification("document", doc.ID.String())
	}
	doc.Version++
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocuments) Finalize(_ context.Context, docID id.ID) (*documents.Document, error) {
	doc, ok := f.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("document", docID.String())
	}
	doc.MarkFinalized()
	return doc, nil
}

func (f *fakeDocuments) Delete(_ context.Context, docID id.ID) (bool, error) {
	doc, ok := f.docs[docID]
	if !ok {
		return false, apperror.NewNotFound("document", docID.String())
	}
	if doc.DeletionMark {
		return false, nil
	}
	doc.MarkDeleted()
	return true, nil
}

func (f *fakeDocuments) GetByID(_ context.Context, docID id.ID) (*documents.Document, error) {
	// Copy so that handler edits do not leak into the store before Update.
	doc, ok := f.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("document", docID.String())
	}
	cp := *doc
	cp.Items = append([]documents.Item(nil), doc.Items...)
	return &cp, nil
}

func (f *fakeDocuments) List(_ context.Context, filter documents.ListFilter) (domain.ListResult[*documents.Document], error) {
	f.lastFilter = filter
	out := make([]*documents.Document, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, d)
	}
	return domain.ListResult[*documents.Document]{Items: out, TotalCount: int64(len(out)), Limit: filter.Limit}, nil
}

type fakeMovements struct {
	rows []entity.InventoryMovement
}

func (f *fakeMovements) ListByDocument(_ context.Context, documentID id.ID) ([]entity.InventoryMovement, error) {
	return f.rows, nil
}

func documentRouter(docs *fakeDocuments, moves *fakeMovements) http.Handler {
	h := NewDocumentHandler(NewBaseHandler(), docs, moves)
	r := newEngine()
	g := r.Group("/documents")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/finalize", h.Finalize)
	g.GET("/:id/movements", h.Movements)
	return r
}

func TestDocumentHandler_CreateWithJalaliDate(t *testing.T) {
	docs := newFakeDocuments()
	r := documentRouter(docs, &fakeMovements{})
	productID := id.New()

	w := do(t, r, http.MethodPost, "/documents", map[string]any{
		"documentType": "purchase_invoice",
		"jalaliDate":   "۱۴۰۳/۱۰/۰۱",
		"supplierId":   id.New().String(),
		"items": []map[string]any{
			{"productId": productID.String(), "quantity": "2", "unitPrice": "150.5", "totalPrice": "1"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "PURCHASE_INVOICE", body["documentType"])
	assert.Equal(t, "۱۴۰۳/۱۰/۰۱", body["jalaliDate"])
	assert.Equal(t, "PI-1403-00001", body["number"])

	require.Len(t, docs.docs, 1)
	for _, d := range docs.docs {
		assert.True(t, types.MustMoney("301").Equal(d.TotalAmount))
		assert.True(t, time.Date(2024, 12, 20, 20, 30, 0, 0, time.UTC).Equal(d.Date))
	}
}

func TestDocumentHandler_CreateValidation(t *testing.T) {
	r := documentRouter(newFakeDocuments(), &fakeMovements{})

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{
			name:  "missing type",
			body:  map[string]any{"date": "2024-12-21T08:00:00Z"},
			field: "documentType",
		},
		{
			name:  "unknown type",
			body:  map[string]any{"documentType": "RETURN", "date": "2024-12-21T08:00:00Z"},
			field: "documentType",
		},
		{
			name:  "no date",
			body:  map[string]any{"documentType": "SALE_INVOICE"},
			field: "date",
		},
		{
			name:  "bad jalali date",
			body:  map[string]any{"documentType": "SALE_INVOICE", "jalaliDate": "1403/12/31"},
			field: "jalaliDate",
		},
		{
			name: "bad product id",
			body: map[string]any{
				"documentType": "SALE_INVOICE",
				"date":         "2024-12-21T08:00:00Z",
				"items":        []map[string]any{{"productId": "x", "quantity": 1, "unitPrice": 1}},
			},
			field: "items[0].productId",
		},
		{
			name: "missing product id",
			body: map[string]any{
				"documentType": "SALE_INVOICE",
				"date":         "2024-12-21T08:00:00Z",
				"items":        []map[string]any{{"quantity": 1, "unitPrice": 1}},
			},
			field: "items[0].productId",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/documents", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			body := decode(t, w)
			assert.Equal(t, apperror.CodeValidation, body["code"])
			details, ok := body["details"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.field, details["field"])
		})
	}
}

func TestDocumentHandler_UpdateUsesVersion(t *testing.T) {
	docs := newFakeDocuments()
	doc := documents.NewDocument(documents.TypeSaleInvoice, time.Date(2024, 12, 21, 8, 0, 0, 0, time.UTC))
	doc.Number = "SI-1403-00007"
	docs.docs[doc.ID] = doc
	r := documentRouter(docs, &fakeMovements{})

	body := map[string]any{
		"date":        "2024-12-22T08:00:00Z",
		"description": "corrected",
		"customerId":  id.New().String(),
		"version":     doc.Version,
	}
	w := do(t, r, http.MethodPut, "/documents/"+doc.ID.String(), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "corrected", docs.docs[doc.ID].Description)
	assert.Equal(t, float64(doc.Version+1), decode(t, w)["version"])

	// Stale version.
	w = do(t, r, http.MethodPut, "/documents/"+doc.ID.String(), body)
	assert.Equal(t, http.StatusConflict, w.Code)

	delete(body, "version")
	w = do(t, r, http.MethodPut, "/documents/"+doc.ID.String(), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_FinalizeAndDelete(t *testing.T) {
	docs := newFakeDocuments()
	doc := documents.NewDocument(documents.TypeInitialStock, time.Date(2024, 12, 21, 8, 0, 0, 0, time.UTC))
	docs.docs[doc.ID] = doc
	r := documentRouter(docs, &fakeMovements{})
	path := "/documents/" + doc.ID.String()

	w := do(t, r, http.MethodPost, path+"/finalize", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["finalized"])

	w = do(t, r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["deleted"])

	w = do(t, r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["deleted"])

	w = do(t, r, http.MethodDelete, "/documents/"+id.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodDelete, "/documents/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_ListFilter(t *testing.T) {
	docs := newFakeDocuments()
	r := documentRouter(docs, &fakeMovements{})
	productID := id.New()

	w := do(t, r, http.MethodGet, "/documents?type=SALE_INVOICE,purchase_invoice&finalized=false&productId="+
		productID.String()+"&from=1403/10/01&to=1403/10/30&search=42&orderBy=-date&limit=10&withItems=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	f := docs.lastFilter
	assert.Equal(t, []documents.DocumentType{documents.TypeSaleInvoice, documents.TypePurchaseInvoice}, f.Types)
	require.NotNil(t, f.Finalized)
	assert.False(t, *f.Finalized)
	require.NotNil(t, f.ProductID)
	assert.Equal(t, productID, *f.ProductID)
	assert.Nil(t, f.SupplierID)
	require.NotNil(t, f.DateFrom)
	require.NotNil(t, f.DateTo)
	assert.True(t, f.DateTo.After(*f.DateFrom))
	assert.Equal(t, "42", f.Search)
	assert.Equal(t, "-date", f.OrderBy)
	assert.Equal(t, 10, f.Limit)
	assert.True(t, f.WithItems)

	w = do(t, r, http.MethodGet, "/documents?type=RETURN", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/documents?customerId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_Movements(t *testing.T) {
	docs := newFakeDocuments()
	doc := documents.NewDocument(documents.TypeSaleInvoice, time.Date(2024, 12, 21, 8, 0, 0, 0, time.UTC))
	docs.docs[doc.ID] = doc
	moves := &fakeMovements{rows: []entity.InventoryMovement{{
		DocumentID:   doc.ID,
		LineNo:       1,
		ProductID:    id.New(),
		MovementType: entity.MovementSale,
		Quantity:     types.MustMoney("-3"),
		Date:         doc.Date,
	}}}
	r := documentRouter(docs, moves)

	w := do(t, r, http.MethodGet, "/documents/"+doc.ID.String()+"/movements", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "۱۴۰۳/۱۰/۰۱", items[0].(map[string]any)["jalaliDate"])

	w = do(t, r, http.MethodGet, "/documents/"+id.New().String()+"/movements", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package documents

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anbar/internal/core/apperror"
	"anbar/internal/core/entity"
	"anbar/internal/core/id"
	"anbar/internal/core/numerator"
	"anbar/internal/core/types"
	"anbar/internal/domain"
	"anbar/internal/domain/registers/movements"
)

// --- fakes ---

type memRepo struct {
	mu   sync.Mutex
	docs map[id.ID]*Document
}

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[id.ID]*Document)}
}

func clone(d *Document) *Document {
	c := *d
	c.Items = append([]Item(nil), d.Items...)
	return &c
}

func (r *memRepo) Create(_ context.Context, doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = clone(doc)
	return nil
}

func (r *memRepo) Update(_ context.Context, doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.docs[doc.ID]
	if !ok {
		return apperror.NewNotFound("document", doc.ID)
	}
	if cur.Version != doc.Version {
		return apperror.NewConcurrentModification("document", doc.ID)
	}
	c := clone(doc)
	c.Version++
	r.docs[doc.ID] = c
	return nil
}

func (r *memRepo) MarkFinalized(ctx context.Context, doc *Document) error {
	return r.Update(ctx, doc)
}

func (r *memRepo) GetByID(_ context.Context, docID id.ID) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("document", docID)
	}
	return clone(d), nil
}

func (r *memRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Document, error) {
	return r.GetByID(ctx, docID)
}

func (r *memRepo) ExistsByNumber(_ context.Context, t DocumentType, number string, excludeID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.Type == t && d.Number == number && d.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) SetDeletionMark(_ context.Context, docID id.ID, marked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[docID]
	if !ok {
		return apperror.NewNotFound("document", docID)
	}
	d.DeletionMark = marked
	return nil
}

func (r *memRepo) List(_ context.Context, f ListFilter) (domain.ListResult[*Document], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Document
	for _, d := range r.docs {
		if d.DeletionMark && !f.IncludeDeleted {
			continue
		}
		if f.ProductID != nil && !containsProduct(d, *f.ProductID) {
			continue
		}
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return domain.ListResult[*Document]{Items: out, TotalCount: int64(len(out))}, nil
}

func containsProduct(d *Document, productID id.ID) bool {
	for _, it := range d.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

type memMovements struct {
	byDoc map[id.ID][]entity.InventoryMovement
}

func newMemMovements() *memMovements {
	return &memMovements{byDoc: make(map[id.ID][]entity.InventoryMovement)}
}

func (m *memMovements) Replace(_ context.Context, docID id.ID, movements []entity.InventoryMovement) error {
	m.byDoc[docID] = movements
	return nil
}

func (m *memMovements) Retract(_ context.Context, docID id.ID) error {
	delete(m.byDoc, docID)
	return nil
}

func (m *memMovements) Verify(_ context.Context, docID id.ID, expected []entity.InventoryMovement) error {
	return movements.Compare(docID, m.byDoc[docID], expected)
}

func (m *memMovements) total() int {
	n := 0
	for _, ms := range m.byDoc {
		n += len(ms)
	}
	return n
}

type idSet map[id.ID]bool

func (s idSet) Exists(_ context.Context, v id.ID) (bool, error) {
	return s[v], nil
}

type fixedFiscalYear struct{ start, end time.Time }

func (f fixedFiscalYear) ActiveFiscalYear(context.Context) (time.Time, time.Time, bool, error) {
	return f.start, f.end, true, nil
}

type fixture struct {
	svc       *Service
	repo      *memRepo
	movements *memMovements
	products  idSet
	supplier  id.ID
	customer  id.ID
	product   id.ID
}

func newFixture(t *testing.T, mutate ...func(*ServiceConfig)) *fixture {
	t.Helper()
	f := &fixture{
		repo:      newMemRepo(),
		movements: newMemMovements(),
		supplier:  id.New(),
		customer:  id.New(),
		product:   id.New(),
	}
	f.products = idSet{f.product: true}

	cfg := ServiceConfig{
		Repo:      f.repo,
		Movements: f.movements,
		Numerator: &numerator.MockGenerator{},
		Products:  f.products,
		Suppliers: idSet{f.supplier: true},
		Customers: idSet{f.customer: true},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	f.svc = NewService(cfg)
	return f
}

func (f *fixture) purchase(qty, price string) *Document {
	d := NewDocument(TypePurchaseInvoice, time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC))
	d.SupplierID = &f.supplier
	d.AddItem(f.product, types.MustMoney(qty), types.MustMoney(price))
	return d
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.Code
}

// --- tests ---

func TestCreate_EmptyItemsFailsWithoutMovements(t *testing.T) {
	f := newFixture(t)
	d := NewDocument(TypePurchaseInvoice, time.Now())
	d.SupplierID = &f.supplier

	err := f.svc.Create(context.Background(), d)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, codeOf(t, err))
	assert.Zero(t, f.movements.total())
	assert.Empty(t, f.repo.docs)
}

func TestCreate_RecomputesTotalsAndProjects(t *testing.T) {
	f := newFixture(t)
	d := f.purchase("4", "25.5")
	d.Items[0].TotalPrice = types.MustMoney("1")
	d.TotalAmount = types.MustMoney("1")

	require.NoError(t, f.svc.Create(context.Background(), d))

	assert.True(t, types.MustMoney("102").Equal(d.Items[0].TotalPrice))
	assert.True(t, types.MustMoney("102").Equal(d.TotalAmount))
	assert.False(t, d.Finalized)
	assert.Equal(t, "PI-00001", d.Number)

	ms := f.movements.byDoc[d.ID]
	require.Len(t, ms, 1)
	assert.Equal(t, entity.MovementPurchase, ms[0].MovementType)
	assert.True(t, types.MustMoney("4").Equal(ms[0].Quantity))
	assert.Equal(t, d.Date, ms[0].Date)
	assert.Equal(t, f.product, ms[0].ProductID)
}

func TestCreate_InitialStockIsFinalized(t *testing.T) {
	f := newFixture(t)
	d := NewDocument(TypeInitialStock, time.Now())
	d.AddItem(f.product, types.MustMoney("10"), types.MustMoney("100"))

	require.NoError(t, f.svc.Create(context.Background(), d))
	assert.True(t, d.Finalized)
	assert.NotNil(t, d.FinalizedAt)
	assert.True(t, strings.HasPrefix(d.Number, "IS-"))
}

func TestCreate_PartyRequired(t *testing.T) {
	tests := []struct {
		name  string
		typ   DocumentType
		field string
	}{
		{"purchase needs supplier", TypePurchaseInvoice, "supplierId"},
		{"sale needs customer", TypeSaleInvoice, "customerId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			d := NewDocument(tt.typ, time.Now())
			d.AddItem(f.product, types.MustMoney("1"), types.MustMoney("1"))

			err := f.svc.Create(context.Background(), d)
			require.Error(t, err)
			appErr, _ := apperror.AsAppError(err)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestCreate_RejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t)
	d := f.purchase("0", "10")

	err := f.svc.Create(context.Background(), d)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, codeOf(t, err))
	assert.Zero(t, f.movements.total())
}

func TestCreate_RejectsExcessScale(t *testing.T) {
	tests := []struct {
		name, qty, price, field string
	}{
		{"quantity", "1.00005", "3", "items[0].quantity"},
		{"unit price", "1", "2.50001", "items[0].unitPrice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			d := f.purchase(tt.qty, tt.price)

			err := f.svc.Create(context.Background(), d)
			require.Error(t, err)
			appErr, _ := apperror.AsAppError(err)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
			assert.Zero(t, f.movements.total())
		})
	}

	f := newFixture(t)
	d := f.purchase("1.0001", "3.0001")
	require.NoError(t, f.svc.Create(context.Background(), d))
	assert.True(t, types.MustMoney("3.00040001").Equal(d.TotalAmount))
}

func TestCreate_DuplicateNumber(t *testing.T) {
	f := newFixture(t)
	first := f.purchase("1", "10")
	first.Number = "INV-1"
	require.NoError(t, f.svc.Create(context.Background(), first))

	second := f.purchase("2", "10")
	second.Number = "INV-1"
	err := f.svc.Create(context.Background(), second)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeDuplicate, codeOf(t, err))

	// Numbers are unique per type only.
	sale := NewDocument(TypeSaleInvoice, time.Now())
	sale.CustomerID = &f.customer
	sale.Number = "INV-1"
	sale.AddItem(f.product, types.MustMoney("1"), types.MustMoney("10"))
	require.NoError(t, f.svc.Create(context.Background(), sale))
}

func TestCreate_ReferentialError(t *testing.T) {
	f := newFixture(t)
	d := f.purchase("1", "10")
	d.Items[0].ProductID = id.New()

	err := f.svc.Create(context.Background(), d)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeReferential, codeOf(t, err))
	assert.Zero(t, f.movements.total())
	assert.Empty(t, f.repo.docs)
}

func TestCreate_FiscalYearGuard(t *testing.T) {
	start := time.Date(2025, 3, 20, 20, 30, 0, 0, time.UTC)
	end := time.Date(2026, 3, 20, 20, 29, 59, 0, time.UTC)
	f := newFixture(t, func(cfg *ServiceConfig) {
		cfg.FiscalYear = fixedFiscalYear{start: start, end: end}
		cfg.EnforceFiscalYear = true
	})

	d := f.purchase("1", "10")
	d.Date = start.Add(-time.Hour)
	err := f.svc.Create(context.Background(), d)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeOutsideFiscalYear, codeOf(t, err))

	ok := f.purchase("1", "10")
	require.NoError(t, f.svc.Create(context.Background(), ok))
}

func TestCreate_AdjustmentDirections(t *testing.T) {
	f := newFixture(t)
	d := NewDocument(TypeStockAdjustment, time.Now())
	d.Items = []Item{
		{ProductID: f.product, Quantity: types.MustMoney("3"), UnitPrice: types.Zero(), Direction: DirectionOut},
		{ProductID: f.product, Quantity: types.MustMoney("2"), UnitPrice: types.MustMoney("5")},
	}

	require.NoError(t, f.svc.Create(context.Background(), d))

	ms := f.movements.byDoc[d.ID]
	require.Len(t, ms, 2)
	assert.Equal(t, entity.MovementAdjustmentOut, ms[0].MovementType)
	assert.True(t, ms[0].Quantity.IsNegative())
	assert.Equal(t, entity.MovementAdjustmentIn, ms[1].MovementType)
	assert.True(t, ms[1].Quantity.IsPositive())
	assert.Equal(t, DirectionIn, d.Items[1].Direction)
}

func TestUpdate_RegeneratesMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.purchase("1", "10")
	require.NoError(t, f.svc.Create(ctx, d))

	edit := clone(d)
	edit.Number = ""
	edit.Items = nil
	edit.AddItem(f.product, types.MustMoney("3"), types.MustMoney("10"))
	edit.AddItem(f.product, types.MustMoney("2"), types.MustMoney("20"))
	require.NoError(t, f.svc.Update(ctx, edit))

	assert.Equal(t, d.Number, edit.Number)
	assert.Equal(t, 2, edit.Version)
	assert.True(t, types.MustMoney("70").Equal(edit.TotalAmount))

	ms := f.movements.byDoc[d.ID]
	require.Len(t, ms, 2)
	assert.Equal(t, 2, ms[0].DocumentVersion)
}

func TestUpdate_StaleVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.purchase("1", "10")
	require.NoError(t, f.svc.Create(ctx, d))

	stale := clone(d)
	require.NoError(t, f.svc.Update(ctx, clone(d)))

	err := f.svc.Update(ctx, stale)
	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestUpdate_TypeCannotChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.purchase("1", "10")
	require.NoError(t, f.svc.Create(ctx, d))

	edit := clone(d)
	edit.Type = TypeSaleInvoice
	edit.CustomerID = &f.customer
	err := f.svc.Update(ctx, edit)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, codeOf(t, err))
}

func TestFinalize_IsIdempotentAndLocksDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.purchase("1", "10")
	require.NoError(t, f.svc.Create(ctx, d))

	var fired int
	f.svc.Hooks().OnAfterFinalize(func(context.Context, *Document) error {
		fired++
		return nil
	})

	got, err := f.svc.Finalize(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, got.Finalized)
	assert.Equal(t, 2, got.Version)

	again, err := f.svc.Finalize(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, again.Finalized)
	assert.Equal(t, 2, again.Version)
	assert.Equal(t, 1, fired)

	edit := clone(again)
	err = f.svc.Update(ctx, edit)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeDocumentFinalized, codeOf(t, err))
}

func TestFinalize_RejectsDriftedMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.purchase("1", "10")
	require.NoError(t, f.svc.Create(ctx, d))

	f.movements.byDoc[d.ID] = nil

	_, err := f.svc.Finalize(ctx, d.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeConsistency, codeOf(t, err))

	got, err := f.svc.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.Finalized)
}

func TestDelete_RetractsMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.purchase("1", "10")
	require.NoError(t, f.svc.Create(ctx, d))
	require.Equal(t, 1, f.movements.total())

	deleted, err := f.svc.Delete(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Zero(t, f.movements.total())

	deleted, err = f.svc.Delete(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = f.svc.Finalize(ctx, d.ID)
	assert.True(t, apperror.IsNotFound(err))

	docs, err := f.svc.FindByProduct(ctx, f.product)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDelete_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Delete(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestList_RejectsInvertedRange(t *testing.T) {
	f := newFixture(t)
	from := time.Now()
	to := from.Add(-time.Hour)

	_, err := f.svc.List(context.Background(), ListFilter{DateFrom: &from, DateTo: &to})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, codeOf(t, err))
}

func TestProjectMovements_OnePerItem(t *testing.T) {
	p := id.New()
	d := NewDocument(TypeSaleInvoice, time.Now())
	d.Number = "SI-1"
	d.AddItem(p, types.MustMoney("2"), types.MustMoney("10"))
	d.AddItem(p, types.MustMoney("1.5"), types.MustMoney("4"))

	ms, err := ProjectMovements(d)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	for i, m := range ms {
		assert.Equal(t, entity.MovementSale, m.MovementType)
		assert.True(t, m.Quantity.IsNegative())
		assert.Equal(t, d.ID, m.DocumentID)
		assert.Equal(t, "SI-1", m.DocumentNumber)
		assert.Equal(t, i+1, m.LineNo)
	}
	assert.True(t, types.MustMoney("-1.5").Equal(ms[1].Quantity))
}

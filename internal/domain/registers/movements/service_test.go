package movements

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anbar/internal/core/apperror"
	"anbar/internal/core/entity"
	"anbar/internal/core/id"
)

type memRepo struct {
	rows []entity.InventoryMovement
}

func (r *memRepo) CreateMovements(_ context.Context, ms []entity.InventoryMovement) error {
	r.rows = append(r.rows, ms...)
	return nil
}

func (r *memRepo) DeleteByDocument(_ context.Context, documentID id.ID) (int64, error) {
	kept := r.rows[:0]
	var n int64
	for _, m := range r.rows {
		if m.DocumentID == documentID {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.rows = kept
	return n, nil
}

func (r *memRepo) ListByDocument(_ context.Context, documentID id.ID) ([]entity.InventoryMovement, error) {
	var out []entity.InventoryMovement
	for _, m := range r.rows {
		if m.DocumentID == documentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) ListByProduct(_ context.Context, productID id.ID, _ MovementFilter) ([]entity.InventoryMovement, error) {
	var out []entity.InventoryMovement
	for _, m := range r.rows {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) Balances(_ context.Context, _ BalanceFilter) ([]entity.StockBalance, error) {
	sums := map[id.ID]decimal.Decimal{}
	for _, m := range r.rows {
		sums[m.ProductID] = sums[m.ProductID].Add(m.Quantity)
	}
	var out []entity.StockBalance
	for pid, q := range sums {
		out = append(out, entity.StockBalance{ProductID: pid, Quantity: q})
	}
	return out, nil
}

func (r *memRepo) Turnover(_ context.Context, f TurnoverFilter) (Turnover, error) {
	return Turnover{ProductID: f.ProductID}, nil
}

var day = time.Date(2024, 3, 25, 8, 0, 0, 0, time.UTC)

func movement(docID, productID id.ID, line int, mt entity.MovementType, qty int64) entity.InventoryMovement {
	return entity.NewInventoryMovement(docID, "PURCHASE_INVOICE", "PI-1", 1, line,
		productID, mt, decimal.NewFromInt(qty), decimal.NewFromInt(100), day)
}

func TestService_ReplaceSwapsDocumentMovements(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	svc := NewService(repo)

	doc, other, product := id.New(), id.New(), id.New()
	require.NoError(t, svc.Record(ctx, []entity.InventoryMovement{
		movement(other, product, 1, entity.MovementPurchase, 3),
	}))
	require.NoError(t, svc.Replace(ctx, doc, []entity.InventoryMovement{
		movement(doc, product, 1, entity.MovementPurchase, 10),
		movement(doc, product, 2, entity.MovementPurchase, 5),
	}))
	require.NoError(t, svc.Replace(ctx, doc, []entity.InventoryMovement{
		movement(doc, product, 1, entity.MovementSale, 4),
	}))

	got, err := svc.ListByDocument(ctx, doc)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Quantity.Equal(decimal.NewFromInt(-4)))

	balances, err := svc.Balances(ctx, BalanceFilter{})
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Quantity.Equal(decimal.NewFromInt(-1)))
}

func TestService_ReplaceRejectsForeignMovement(t *testing.T) {
	svc := NewService(&memRepo{})
	doc := id.New()

	err := svc.Replace(context.Background(), doc, []entity.InventoryMovement{
		movement(id.New(), id.New(), 1, entity.MovementPurchase, 1),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_RecordRejectsWrongSign(t *testing.T) {
	svc := NewService(&memRepo{})
	m := movement(id.New(), id.New(), 1, entity.MovementSale, 2)
	m.Quantity = m.Quantity.Abs()

	err := svc.Record(context.Background(), []entity.InventoryMovement{m})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_Retract(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	svc := NewService(repo)
	doc := id.New()

	require.NoError(t, svc.Record(ctx, []entity.InventoryMovement{
		movement(doc, id.New(), 1, entity.MovementInitialStock, 1),
	}))
	require.NoError(t, svc.Retract(ctx, doc))
	assert.Empty(t, repo.rows)
}

func TestService_Verify(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	svc := NewService(repo)
	doc, product := id.New(), id.New()

	stored := []entity.InventoryMovement{movement(doc, product, 1, entity.MovementPurchase, 10)}
	require.NoError(t, svc.Record(ctx, stored))

	fresh := []entity.InventoryMovement{movement(doc, product, 1, entity.MovementPurchase, 10)}
	assert.NoError(t, svc.Verify(ctx, doc, fresh))

	changed := []entity.InventoryMovement{movement(doc, product, 1, entity.MovementPurchase, 12)}
	err := svc.Verify(ctx, doc, changed)
	assert.True(t, apperror.HasCode(err, apperror.CodeConsistency))

	extra := append(fresh, movement(doc, product, 2, entity.MovementPurchase, 1))
	err = svc.Verify(ctx, doc, extra)
	assert.True(t, apperror.HasCode(err, apperror.CodeConsistency))
}

func TestService_TurnoverRejectsInvertedPeriod(t *testing.T) {
	svc := NewService(&memRepo{})
	_, err := svc.Turnover(context.Background(), TurnoverFilter{
		ProductID: id.New(),
		FromDate:  day,
		ToDate:    day.Add(-time.Hour),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

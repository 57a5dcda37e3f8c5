package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anbar/internal/core/id"
	"anbar/internal/core/types"
	"anbar/internal/domain/documents"
)

func TestComputeProductMovementSummary(t *testing.T) {
	p := id.New()
	docs := []*documents.Document{
		doc(documents.TypeInitialStock, 0, true, line(p, "10", "100")),
		doc(documents.TypePurchaseInvoice, 1, true, line(p, "10", "200")),
		doc(documents.TypeSaleInvoice, 2, true, line(p, "5", "400")),
		doc(documents.TypeStockAdjustment, 3, false, adjust(p, documents.DirectionIn, "5", "150")),
	}

	s := ComputeProductMovementSummary(p, docs, DefaultOptions())

	assert.Equal(t, p, s.ProductID)
	assert.Equal(t, 4, s.Entries)

	assertDec(t, "10", s.InitialStock.Quantity)
	assertDec(t, "1000", s.InitialStock.TotalPrice)
	assertDec(t, "100", s.InitialStock.UnitPrice)

	assertDec(t, "15", s.Incoming.Quantity)
	assertDec(t, "2750", s.Incoming.TotalPrice)

	// Outgoing is charged at average cost, not at the 400 sale price.
	assertDec(t, "5", s.Outgoing.Quantity)
	assertDec(t, "750", s.Outgoing.TotalPrice)
	assertDec(t, "150", s.Outgoing.UnitPrice)

	assertDec(t, "20", s.Balance.Quantity)
	assertDec(t, "3000", s.Balance.TotalPrice)
	assertDec(t, "150", s.Balance.UnitPrice)
}

func TestSummary_BalanceMatchesLastCardexEntry(t *testing.T) {
	p := id.New()
	tests := []struct {
		name string
		docs []*documents.Document
	}{
		{
			name: "fractional prices",
			docs: []*documents.Document{
				doc(documents.TypeInitialStock, 0, true, line(p, "3", "100")),
				doc(documents.TypePurchaseInvoice, 1, true, line(p, "7", "133.33")),
				doc(documents.TypeSaleInvoice, 2, true, line(p, "4", "1")),
				doc(documents.TypeStockAdjustment, 3, true, adjust(p, documents.DirectionOut, "1.5", "0")),
				doc(documents.TypePurchaseInvoice, 4, true, line(p, "2.25", "90.1")),
			},
		},
		{
			name: "oversold then restocked",
			docs: []*documents.Document{
				doc(documents.TypeInitialStock, 0, true, line(p, "2", "100")),
				doc(documents.TypeSaleInvoice, 1, true, line(p, "5", "150")),
				doc(documents.TypePurchaseInvoice, 2, true, line(p, "10", "120")),
			},
		},
		{
			name: "oversold twice",
			docs: []*documents.Document{
				doc(documents.TypeInitialStock, 0, true, line(p, "2", "100")),
				doc(documents.TypeSaleInvoice, 1, true, line(p, "5", "150")),
				doc(documents.TypeSaleInvoice, 2, true, line(p, "1", "150")),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := ComputeCardex(p, tt.docs, DefaultOptions())
			last := Last(entries)
			require.NotNil(t, last)

			s := Summarize(p, entries)
			assert.True(t, s.Balance.Quantity.Equal(last.BalanceQuantity),
				"quantity %s vs %s", s.Balance.Quantity, last.BalanceQuantity)
			assert.True(t, s.Balance.TotalPrice.Sub(last.BalanceTotalPrice).Abs().LessThan(types.Epsilon),
				"value %s vs %s", s.Balance.TotalPrice, last.BalanceTotalPrice)
			assert.True(t, s.Balance.UnitPrice.Sub(last.BalanceUnitPrice).Abs().LessThan(types.Epsilon),
				"unit price %s vs %s", s.Balance.UnitPrice, last.BalanceUnitPrice)
		})
	}
}

func TestSummary_OversellKeepsValueIdentity(t *testing.T) {
	p := id.New()
	docs := []*documents.Document{
		doc(documents.TypeInitialStock, 0, true, line(p, "2", "100")),
		doc(documents.TypeSaleInvoice, 1, true, line(p, "5", "150")),
		doc(documents.TypePurchaseInvoice, 2, true, line(p, "10", "120")),
	}

	s := ComputeProductMovementSummary(p, docs, DefaultOptions())

	assertDec(t, "200", s.InitialStock.TotalPrice)
	assertDec(t, "1200", s.Incoming.TotalPrice)
	assertDec(t, "500", s.Outgoing.TotalPrice)
	assertDec(t, "7", s.Balance.Quantity)
	assertDec(t, "900", s.Balance.TotalPrice)
}

func TestSummary_Empty(t *testing.T) {
	s := ComputeProductMovementSummary(id.New(), nil, DefaultOptions())
	assert.Zero(t, s.Entries)
	assert.True(t, s.Balance.Quantity.IsZero())
	assert.True(t, s.Balance.TotalPrice.IsZero())
	assert.True(t, s.Outgoing.UnitPrice.IsZero())
}

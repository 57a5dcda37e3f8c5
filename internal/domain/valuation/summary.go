package valuation

import (
	"github.com/shopspring/decimal"

	"anbar/internal/core/id"
	"anbar/internal/core/types"
	"anbar/internal/domain/documents"
)

// Bucket aggregates quantity and value of one movement class.
type Bucket struct {
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func newBucket() Bucket {
	return Bucket{Quantity: decimal.Zero, UnitPrice: decimal.Zero, TotalPrice: decimal.Zero}
}

func (b *Bucket) add(qty, total decimal.Decimal) {
	b.Quantity = b.Quantity.Add(qty)
	b.TotalPrice = b.TotalPrice.Add(total)
}

func (b *Bucket) price() {
	b.UnitPrice = types.SafeDiv(b.TotalPrice, b.Quantity)
}

// Summary is the aggregate stock picture of one product.
type Summary struct {
	ProductID    id.ID  `json:"productId"`
	InitialStock Bucket `json:"initialStock"`
	// Incoming covers purchases and inbound adjustments.
	Incoming Bucket `json:"incoming"`
	// Outgoing is valued at average cost, not at sale price.
	Outgoing Bucket `json:"outgoing"`
	Balance  Bucket `json:"balance"`
	// Entries is the number of cardex rows the summary was built from.
	Entries int `json:"entries"`
}

// ComputeProductMovementSummary aggregates the cardex of productID.
// Balance is initial stock plus incoming minus outgoing; it agrees with the
// final cardex entry up to snapped rounding dust.
func ComputeProductMovementSummary(productID id.ID, docs []*documents.Document, opts Options) Summary {
	return Summarize(productID, ComputeCardex(productID, docs, opts))
}

// Summarize aggregates an already computed cardex.
func Summarize(productID id.ID, entries []Entry) Summary {
	s := Summary{
		ProductID:    productID,
		InitialStock: newBucket(),
		Incoming:     newBucket(),
		Outgoing:     newBucket(),
		Balance:      newBucket(),
		Entries:      len(entries),
	}

	for _, e := range entries {
		switch {
		case e.Flow == FlowOut:
			s.Outgoing.add(e.OutQuantity, e.OutTotalPrice)
		case e.DocumentType == documents.TypeInitialStock:
			s.InitialStock.add(e.InQuantity, e.InTotalPrice)
		default:
			s.Incoming.add(e.InQuantity, e.InTotalPrice)
		}
	}

	s.Balance = Bucket{
		Quantity:   s.InitialStock.Quantity.Add(s.Incoming.Quantity).Sub(s.Outgoing.Quantity),
		TotalPrice: s.InitialStock.TotalPrice.Add(s.Incoming.TotalPrice).Sub(s.Outgoing.TotalPrice),
	}

	for _, b := range []*Bucket{&s.InitialStock, &s.Incoming, &s.Outgoing, &s.Balance} {
		b.price()
	}
	return s
}

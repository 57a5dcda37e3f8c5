// Package valuation implements moving weighted-average inventory costing: the
// per-product cardex and its aggregate movement summary.
//
// Every receipt blends into a single running average unit cost, and every
// issue is costed at the average in effect at that instant, never at the
// issuing document's own price. The computation is pure and keeps no state
// between calls.
package valuation

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"anbar/internal/core/id"
	"anbar/internal/core/types"
	"anbar/internal/domain/documents"
)

// Options controls which documents take part in valuation.
type Options struct {
	// IncludeDrafts lets unfinalized documents preview their effect.
	IncludeDrafts bool
}

// DefaultOptions includes drafts.
func DefaultOptions() Options {
	return Options{IncludeDrafts: true}
}

// Flow is the stock direction of a cardex entry.
type Flow string

const (
	FlowIn  Flow = "IN"
	FlowOut Flow = "OUT"
)

// Entry is one cardex row: one matching line of one document.
type Entry struct {
	Date           time.Time              `json:"date"`
	DocumentID     id.ID                  `json:"documentId"`
	DocumentType   documents.DocumentType `json:"documentType"`
	DocumentNumber string                 `json:"documentNumber"`
	Finalized      bool                   `json:"finalized"`
	LineNo         int                    `json:"lineNo"`
	Flow           Flow                   `json:"flow"`

	InQuantity   decimal.Decimal `json:"inQuantity"`
	InUnitPrice  decimal.Decimal `json:"inUnitPrice"`
	InTotalPrice decimal.Decimal `json:"inTotalPrice"`

	OutQuantity decimal.Decimal `json:"outQuantity"`
	// OutUnitPrice is the price stated on the document, for display only.
	OutUnitPrice decimal.Decimal `json:"outUnitPrice"`
	// OutUnitCost is the average cost the issue was charged at.
	OutUnitCost   decimal.Decimal `json:"outUnitCost"`
	OutTotalPrice decimal.Decimal `json:"outTotalPrice"`

	BalanceQuantity   decimal.Decimal `json:"balanceQuantity"`
	BalanceUnitPrice  decimal.Decimal `json:"balanceUnitPrice"`
	BalanceTotalPrice decimal.Decimal `json:"balanceTotalPrice"`

	// NegativeBalance marks an issue that took the quantity below zero.
	NegativeBalance bool `json:"negativeBalance,omitempty"`
}

// candidate is a matching line before ordering.
type candidate struct {
	doc  *documents.Document
	item documents.Item
	flow Flow
}

// Participates reports whether doc takes part in valuation under opts.
// Soft-deleted documents never do.
func Participates(doc *documents.Document, opts Options) bool {
	if doc == nil || doc.DeletionMark {
		return false
	}
	return doc.Finalized || opts.IncludeDrafts
}

// FlowOf classifies a document line. Initial stock, purchases and inbound
// adjustments are incoming; sales and outbound adjustments are outgoing.
func FlowOf(t documents.DocumentType, it documents.Item) Flow {
	if it.MovementType(t).IsOutgoing() {
		return FlowOut
	}
	return FlowIn
}

// collect flattens docs into one candidate per line of productID and orders
// them by date. The sort is stable, so equal instants keep input order.
func collect(productID id.ID, docs []*documents.Document, opts Options) []candidate {
	var out []candidate
	for _, d := range docs {
		if !Participates(d, opts) {
			continue
		}
		for _, it := range d.Items {
			if it.ProductID != productID {
				continue
			}
			out = append(out, candidate{doc: d, item: it, flow: FlowOf(d.Type, it)})
		}
	}

	slices.SortStableFunc(out, func(a, b candidate) int {
		return a.doc.Date.Compare(b.doc.Date)
	})
	return out
}

// ComputeCardex returns the running cardex of productID over docs.
func ComputeCardex(productID id.ID, docs []*documents.Document, opts Options) []Entry {
	cands := collect(productID, docs, opts)
	entries := make([]Entry, 0, len(cands))

	balanceQty := decimal.Zero
	balanceValue := decimal.Zero

	for _, c := range cands {
		qty := c.item.Quantity.Abs()
		e := Entry{
			Date:           c.doc.Date,
			DocumentID:     c.doc.ID,
			DocumentType:   c.doc.Type,
			DocumentNumber: c.doc.Number,
			Finalized:      c.doc.Finalized,
			LineNo:         c.item.LineNo,
			Flow:           c.flow,
			InQuantity:     decimal.Zero,
			InUnitPrice:    decimal.Zero,
			InTotalPrice:   decimal.Zero,
			OutQuantity:    decimal.Zero,
			OutUnitPrice:   decimal.Zero,
			OutUnitCost:    decimal.Zero,
			OutTotalPrice:  decimal.Zero,
		}

		switch c.flow {
		case FlowIn:
			total := qty.Mul(c.item.UnitPrice)
			e.InQuantity = qty
			e.InUnitPrice = c.item.UnitPrice
			e.InTotalPrice = total
			balanceQty = balanceQty.Add(qty)
			balanceValue = balanceValue.Add(total)

		case FlowOut:
			// With no stock on hand there is no average, so the issue is costed at zero.
			avg := types.SafeDiv(balanceValue, balanceQty)
			total := qty.Mul(avg)
			if qty.Equal(balanceQty) {
				// Selling out takes the whole remaining value, leaving no residue.
				total = balanceValue
			}
			e.OutQuantity = qty
			e.OutUnitPrice = c.item.UnitPrice
			e.OutUnitCost = avg
			e.OutTotalPrice = total
			balanceQty = balanceQty.Sub(qty)
			balanceValue = balanceValue.Sub(total)
		}

		// Only rounding dust is snapped; an oversold balance keeps its sign.
		balanceQty = types.SnapToZero(balanceQty)
		balanceValue = types.SnapToZero(balanceValue)

		e.BalanceQuantity = balanceQty
		e.BalanceTotalPrice = balanceValue
		e.BalanceUnitPrice = types.SafeDiv(balanceValue, balanceQty)
		e.NegativeBalance = balanceQty.IsNegative()

		entries = append(entries, e)
	}

	return entries
}

// Window splits entries at from and to. opening is the last entry dated before
// from (nil when there is none); in holds the entries inside [from, to].
// Nil bounds are open.
func Window(entries []Entry, from, to *time.Time) (opening *Entry, in []Entry) {
	for i := range entries {
		e := entries[i]
		if from != nil && e.Date.Before(*from) {
			opening = &entries[i]
			continue
		}
		if to != nil && e.Date.After(*to) {
			break
		}
		in = append(in, e)
	}
	return opening, in
}

// Last returns the final entry, or nil for an empty cardex.
func Last(entries []Entry) *Entry {
	if len(entries) == 0 {
		return nil
	}
	return &entries[len(entries)-1]
}

// DraftsIncluded reports whether any entry comes from an unfinalized document.
func DraftsIncluded(entries []Entry) bool {
	return slices.ContainsFunc(entries, func(e Entry) bool { return !e.Finalized })
}

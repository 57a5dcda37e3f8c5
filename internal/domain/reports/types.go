// Package reports builds read-only views over documents, the valuation engine
// and the movement register.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"anbar/internal/core/id"
	"anbar/internal/domain/documents"
	"anbar/internal/domain/valuation"
)

// DeletedItemName is shown in place of a catalog entry that no longer exists.
const DeletedItemName = "deleted item"

// Flag marks a report condition the operator should know about.
type Flag string

const (
	// FlagDraftsIncluded: unfinalized documents took part in valuation.
	FlagDraftsIncluded Flag = "DRAFTS_INCLUDED"
	// FlagNegativeBalance: an issue took the stock below zero.
	FlagNegativeBalance Flag = "NEGATIVE_BALANCE"
)

// ProductRef is the catalog view of a product inside a report.
type ProductRef struct {
	ID      id.ID  `db:"id" json:"id"`
	Code    string `db:"code" json:"code"`
	Name    string `db:"name" json:"name"`
	Unit    string `db:"unit" json:"unit"`
	Deleted bool   `db:"deletion_mark" json:"deleted,omitempty"`
	// Missing is set when the product row no longer exists.
	Missing bool `db:"-" json:"missing,omitempty"`
}

func placeholderProduct(productID id.ID) ProductRef {
	return ProductRef{ID: productID, Name: DeletedItemName, Missing: true}
}

// --- Cardex ---

// CardexRequest selects the cardex of one product. A nil IncludeDrafts uses
// the service default. From and To bound the listed rows; rows before From are
// folded into the opening balance.
type CardexRequest struct {
	ProductID     id.ID
	IncludeDrafts *bool
	From          *time.Time
	To            *time.Time
}

// CardexRow is a cardex entry with its Jalaali date.
type CardexRow struct {
	valuation.Entry
	JalaliDate string `json:"jalaliDate"`
}

// Balance is a point-in-time stock position.
type Balance struct {
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func zeroBalance() Balance {
	return Balance{Quantity: decimal.Zero, UnitPrice: decimal.Zero, TotalPrice: decimal.Zero}
}

func balanceOf(e *valuation.Entry) Balance {
	if e == nil {
		return zeroBalance()
	}
	return Balance{Quantity: e.BalanceQuantity, UnitPrice: e.BalanceUnitPrice, TotalPrice: e.BalanceTotalPrice}
}

// CardexReport is the running valuation of one product.
type CardexReport struct {
	Product       ProductRef  `json:"product"`
	IncludeDrafts bool        `json:"includeDrafts"`
	From          *time.Time  `json:"from,omitempty"`
	To            *time.Time  `json:"to,omitempty"`
	Opening       Balance     `json:"opening"`
	Rows          []CardexRow `json:"rows"`
	Closing       Balance     `json:"closing"`
	Flags         []Flag      `json:"flags,omitempty"`
}

// --- Movement summary ---

// MovementSummaryReport is the aggregate movement picture of one product.
type MovementSummaryReport struct {
	Product       ProductRef        `json:"product"`
	IncludeDrafts bool              `json:"includeDrafts"`
	Summary       valuation.Summary `json:"summary"`
	Flags         []Flag            `json:"flags,omitempty"`
}

// --- Stock balances ---

// StockBalanceFilter selects products of the stock balance report.
type StockBalanceFilter struct {
	ProductIDs  []id.ID
	AsOf        *time.Time
	ExcludeZero bool
}

// StockBalanceRow is the register quantity of one product.
type StockBalanceRow struct {
	Product        ProductRef      `json:"product"`
	Quantity       decimal.Decimal `json:"quantity"`
	LastMovementAt *time.Time      `json:"lastMovementAt,omitempty"`
	JalaliDate     string          `json:"jalaliLastMovement,omitempty"`
	Negative       bool            `json:"negative,omitempty"`
}

// StockBalanceReport lists register balances.
type StockBalanceReport struct {
	AsOf       time.Time         `json:"asOf"`
	Items      []StockBalanceRow `json:"items"`
	TotalItems int               `json:"totalItems"`
}

// --- Document journal ---

// JournalFilter selects documents of the journal.
type JournalFilter struct {
	documents.ListFilter
}

// JournalRow is one document in the journal.
type JournalRow struct {
	ID           id.ID                  `json:"id"`
	DocumentType documents.DocumentType `json:"documentType"`
	Number       string                 `json:"number"`
	Date         time.Time              `json:"date"`
	JalaliDate   string                 `json:"jalaliDate"`
	Finalized    bool                   `json:"finalized"`

	PartyID   *id.ID `json:"partyId,omitempty"`
	PartyName string `json:"partyName,omitempty"`

	ItemCount   int             `json:"itemCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`

	Description  string `json:"description,omitempty"`
	DeletionMark bool   `json:"deletionMark"`
}

// TypeSummary aggregates journal documents of one type.
type TypeSummary struct {
	DocumentType   documents.DocumentType `db:"document_type" json:"documentType"`
	Count          int                    `db:"count" json:"count"`
	FinalizedCount int                    `db:"finalized_count" json:"finalizedCount"`
	TotalAmount    decimal.Decimal        `db:"total_amount" json:"totalAmount"`
}

// Journal is the document journal result.
type Journal struct {
	Items      []JournalRow  `json:"items"`
	TotalCount int64         `json:"totalCount"`
	Limit      int           `json:"limit"`
	Offset     int           `json:"offset"`
	Summary    []TypeSummary `json:"summary,omitempty"`
}

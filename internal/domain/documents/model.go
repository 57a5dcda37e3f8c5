// Package documents provides the document ledger: initial stock, purchase and
// sale invoices and stock adjustments, each carrying line items that project
// inventory movements.
package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anbar/internal/core/apperror"
	"anbar/internal/core/entity"
	"anbar/internal/core/id"
	"anbar/internal/core/types"
)

// DocumentType is the closed set of document kinds.
type DocumentType string

const (
	TypeInitialStock    DocumentType = "INITIAL_STOCK"
	TypePurchaseInvoice DocumentType = "PURCHASE_INVOICE"
	TypeSaleInvoice     DocumentType = "SALE_INVOICE"
	TypeStockAdjustment DocumentType = "STOCK_ADJUSTMENT"
)

// AllTypes lists document types in display order.
var AllTypes = []DocumentType{TypeInitialStock, TypePurchaseInvoice, TypeSaleInvoice, TypeStockAdjustment}

// ParseDocumentType rejects unknown values.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", apperror.NewFieldValidation("documentType", fmt.Sprintf("unknown document type %q", s))
	}
	return t, nil
}

// IsValid reports whether t is a known document type.
func (t DocumentType) IsValid() bool {
	switch t {
	case TypeInitialStock, TypePurchaseInvoice, TypeSaleInvoice, TypeStockAdjustment:
		return true
	}
	return false
}

// NumberPrefix is the auto-numbering prefix of the type.
func (t DocumentType) NumberPrefix() string {
	switch t {
	case TypeInitialStock:
		return "IS"
	case TypePurchaseInvoice:
		return "PI"
	case TypeSaleInvoice:
		return "SI"
	case TypeStockAdjustment:
		return "SA"
	}
	return "DOC"
}

// Direction is the stock direction of an adjustment line.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// ParseDirection maps an empty value to IN and rejects unknown values.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToUpper(strings.TrimSpace(s))); d {
	case "":
		return DirectionIn, nil
	case DirectionIn, DirectionOut:
		return d, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// Item is one document line. Items are owned by their document.
type Item struct {
	LineNo      int            `db:"line_no" json:"lineNo"`
	ProductID   id.ID          `db:"product_id" json:"productId"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice   types.Money    `db:"unit_price" json:"unitPrice"`
	TotalPrice  types.Money    `db:"total_price" json:"totalPrice"`
	Direction   Direction      `db:"direction" json:"direction,omitempty"`
	Description string         `db:"description" json:"description,omitempty"`
}

// MovementType maps the line to its movement type under the document type.
func (it Item) MovementType(t DocumentType) entity.MovementType {
	switch t {
	case TypeInitialStock:
		return entity.MovementInitialStock
	case TypePurchaseInvoice:
		return entity.MovementPurchase
	case TypeSaleInvoice:
		return entity.MovementSale
	case TypeStockAdjustment:
		if it.Direction == DirectionOut {
			return entity.MovementAdjustmentOut
		}
		return entity.MovementAdjustmentIn
	}
	return ""
}

// Document is a business transaction with line items.
type Document struct {
	entity.Document

	Type DocumentType `db:"document_type" json:"documentType"`

	// SupplierID is required for purchase invoices
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	// CustomerID is required for sale invoices
	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`

	// TotalAmount is the sum of item totals, always recomputed
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	Items []Item `db:"-" json:"items"`
}

// NewDocument creates a draft document of type t dated date.
func NewDocument(t DocumentType, date time.Time) *Document {
	d := &Document{
		Document:    entity.NewDocument(),
		Type:        t,
		TotalAmount: types.Zero(),
	}
	d.Date = date.UTC()
	return d
}

// AddItem appends a line and recalculates totals.
func (d *Document) AddItem(productID id.ID, qty types.Quantity, unitPrice types.Money) {
	d.Items = append(d.Items, Item{ProductID: productID, Quantity: qty, UnitPrice: unitPrice})
	d.Recalculate()
}

// Recalculate renumbers lines, derives every line total as quantity x unit
// price and the document total as their sum. Client-supplied totals are
// discarded. Direction is cleared on non-adjustment documents.
func (d *Document) Recalculate() {
	total := types.Zero()
	for i := range d.Items {
		it := &d.Items[i]
		it.LineNo = i + 1
		it.TotalPrice = it.Quantity.Mul(it.UnitPrice)
		if d.Type != TypeStockAdjustment {
			it.Direction = ""
		} else if it.Direction == "" {
			it.Direction = DirectionIn
		}
		total = total.Add(it.TotalPrice)
	}
	d.TotalAmount = total
}

// Validate implements entity.Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}

	if !d.Type.IsValid() {
		return apperror.NewFieldValidation("documentType", fmt.Sprintf("unknown document type %q", d.Type))
	}

	d.Number = strings.TrimSpace(d.Number)

	switch d.Type {
	case TypePurchaseInvoice:
		if d.SupplierID == nil || id.IsNil(*d.SupplierID) {
			return apperror.NewFieldValidation("supplierId", "supplier is required for a purchase invoice")
		}
	case TypeSaleInvoice:
		if d.CustomerID == nil || id.IsNil(*d.CustomerID) {
			return apperror.NewFieldValidation("customerId", "customer is required for a sale invoice")
		}
	}

	if len(d.Items) == 0 {
		return apperror.NewFieldValidation("items", "document must have at least one item")
	}

	for i, it := range d.Items {
		field := fmt.Sprintf("items[%d]", i)
		if id.IsNil(it.ProductID) {
			return apperror.NewFieldValidation(field+".productId", "product is required")
		}
		if !it.Quantity.IsPositive() {
			return apperror.NewFieldValidation(field+".quantity", "quantity must be greater than zero")
		}
		if err := types.CheckScale(it.Quantity); err != nil {
			return apperror.NewFieldValidation(field+".quantity", err.Error())
		}
		if it.UnitPrice.IsNegative() {
			return apperror.NewFieldValidation(field+".unitPrice", "unit price cannot be negative")
		}
		if err := types.CheckScale(it.UnitPrice); err != nil {
			return apperror.NewFieldValidation(field+".unitPrice", err.Error())
		}
		if d.Type == TypeStockAdjustment && it.Direction != DirectionIn && it.Direction != DirectionOut {
			return apperror.NewFieldValidation(field+".direction", fmt.Sprintf("unknown direction %q", it.Direction))
		}
	}

	return nil
}

// ProductIDs returns the distinct products on the document.
func (d *Document) ProductIDs() []id.ID {
	ids := make([]id.ID, 0, len(d.Items))
	for _, it := range d.Items {
		ids = append(ids, it.ProductID)
	}
	return id.Unique(ids)
}

// PartyID returns the supplier or customer reference, if any.
func (d *Document) PartyID() *id.ID {
	if d.SupplierID != nil {
		return d.SupplierID
	}
	return d.CustomerID
}

package entity

import (
	"fmt"
	"time"

	"anbar/internal/core/id"
	"anbar/internal/core/types"
)

// MovementType classifies an inventory movement. The set is closed.
type MovementType string

const (
	MovementInitialStock  MovementType = "INITIAL_STOCK"
	MovementPurchase      MovementType = "PURCHASE"
	MovementSale          MovementType = "SALE"
	MovementAdjustmentIn  MovementType = "ADJUSTMENT_IN"
	MovementAdjustmentOut MovementType = "ADJUSTMENT_OUT"
)

// IsOutgoing reports whether movements of this type decrease stock.
func (t MovementType) IsOutgoing() bool {
	return t == MovementSale || t == MovementAdjustmentOut
}

// IsValid reports whether t is one of the known movement types.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementInitialStock, MovementPurchase, MovementSale, MovementAdjustmentIn, MovementAdjustmentOut:
		return true
	}
	return false
}

// InventoryMovement is one signed stock change derived from a document line.
// Movements are immutable: they are deleted and regenerated, never updated.
type InventoryMovement struct {
	// LineID identifies the movement row (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	DocumentID     id.ID  `db:"document_id" json:"documentId"`
	DocumentType   string `db:"document_type" json:"documentType"`
	DocumentNumber string `db:"document_number" json:"documentNumber"`

	// DocumentVersion is the document version the movement was projected from
	DocumentVersion int `db:"document_version" json:"documentVersion"`

	// LineNo is the 1-based position of the source item in the document
	LineNo int `db:"line_no" json:"lineNo"`

	ProductID    id.ID        `db:"product_id" json:"productId"`
	MovementType MovementType `db:"movement_type" json:"movementType"`

	// Quantity is signed: negative for SALE and ADJUSTMENT_OUT
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	UnitPrice  types.Money `db:"unit_price" json:"unitPrice"`
	TotalPrice types.Money `db:"total_price" json:"totalPrice"`

	Date      time.Time `db:"date" json:"date"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewInventoryMovement builds a movement from an unsigned quantity, applying the
// sign implied by the movement type.
func NewInventoryMovement(
	documentID id.ID,
	documentType, documentNumber string,
	documentVersion, lineNo int,
	productID id.ID,
	movementType MovementType,
	quantity types.Quantity,
	unitPrice types.Money,
	date time.Time,
) InventoryMovement {
	abs := quantity.Abs()
	signed := abs
	if movementType.IsOutgoing() {
		signed = abs.Neg()
	}
	return InventoryMovement{
		LineID:          id.New(),
		DocumentID:      documentID,
		DocumentType:    documentType,
		DocumentNumber:  documentNumber,
		DocumentVersion: documentVersion,
		LineNo:          lineNo,
		ProductID:       productID,
		MovementType:    movementType,
		Quantity:        signed,
		UnitPrice:       unitPrice,
		TotalPrice:      abs.Mul(unitPrice),
		Date:            date,
		CreatedAt:       time.Now().UTC(),
	}
}

// CheckSign verifies the quantity sign matches the movement type.
func (m *InventoryMovement) CheckSign() error {
	if !m.MovementType.IsValid() {
		return fmt.Errorf("unknown movement type %q", m.MovementType)
	}
	if m.MovementType.IsOutgoing() && m.Quantity.IsPositive() {
		return fmt.Errorf("%s movement must have a negative quantity", m.MovementType)
	}
	if !m.MovementType.IsOutgoing() && m.Quantity.IsNegative() {
		return fmt.Errorf("%s movement must have a positive quantity", m.MovementType)
	}
	return nil
}

// StockBalance is the aggregated signed quantity of one product.
type StockBalance struct {
	ProductID      id.ID          `db:"product_id" json:"productId"`
	Quantity       types.Quantity `db:"quantity" json:"quantity"`
	LastMovementAt time.Time      `db:"last_movement_at" json:"lastMovementAt"`
}

// Package movements provides the inventory movement register: a derived,
// rebuildable index of signed stock changes, one row per document line.
package movements

import (
	"context"
	"time"

	"anbar/internal/core/entity"
	"anbar/internal/core/id"
	"anbar/internal/core/types"
)

// Repository defines operations for the movement register.
type Repository interface {
	// CreateMovements batch inserts movements.
	CreateMovements(ctx context.Context, movements []entity.InventoryMovement) error

	// DeleteByDocument removes all movements of a document.
	DeleteByDocument(ctx context.Context, documentID id.ID) (int64, error)

	// ListByDocument returns a document's movements by line number.
	ListByDocument(ctx context.Context, documentID id.ID) ([]entity.InventoryMovement, error)

	// ListByProduct returns a product's movements in date order.
	ListByProduct(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.InventoryMovement, error)

	// Balances sums signed quantities per product.
	Balances(ctx context.Context, filter BalanceFilter) ([]entity.StockBalance, error)

	// Turnover aggregates a product's movements over a period.
	Turnover(ctx context.Context, filter TurnoverFilter) (Turnover, error)
}

// MovementFilter narrows movement history.
type MovementFilter struct {
	Types    []entity.MovementType
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// BalanceFilter narrows balance queries.
type BalanceFilter struct {
	ProductIDs  []id.ID
	ExcludeZero bool
	// AsOf limits movements to those dated at or before the instant.
	AsOf *time.Time
}

// TurnoverFilter selects the product and period of a turnover query.
type TurnoverFilter struct {
	ProductID id.ID
	FromDate  time.Time
	ToDate    time.Time
}

// Turnover holds incoming and outgoing quantities over a period.
type Turnover struct {
	ProductID      id.ID          `json:"productId"`
	OpeningBalance types.Quantity `json:"openingBalance"`
	Incoming       types.Quantity `json:"incoming"`
	Outgoing       types.Quantity `json:"outgoing"`
	ClosingBalance types.Quantity `json:"closingBalance"`
}

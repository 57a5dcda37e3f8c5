package documents

import (
	"context"
	"time"

	"anbar/internal/core/entity"
	"anbar/internal/core/id"
	"anbar/internal/domain"
)

// ListFilter selects documents for lists, the journal and valuation.
type ListFilter struct {
	Types      []DocumentType
	Finalized  *bool
	ProductID  *id.ID
	SupplierID *id.ID
	CustomerID *id.ID
	DateFrom   *time.Time
	DateTo     *time.Time

	// Search matches the document number or description
	Search string

	IncludeDeleted bool

	// OrderBy: "date" (default), "-date", "number", "-number"
	OrderBy string

	Limit  int
	Offset int

	// WithItems loads line items for every listed document
	WithItems bool
}

// Repository persists documents with their items.
type Repository interface {
	// Create inserts the header and items.
	Create(ctx context.Context, doc *Document) error

	// Update replaces header and items. doc.Version must match the stored
	// version; the stored version is incremented.
	Update(ctx context.Context, doc *Document) error

	// MarkFinalized persists the finalized flag with the same version check.
	MarkFinalized(ctx context.Context, doc *Document) error

	// GetByID loads a document with items, soft-deleted ones included.
	GetByID(ctx context.Context, docID id.ID) (*Document, error)

	// GetForUpdate is GetByID with a row lock.
	GetForUpdate(ctx context.Context, docID id.ID) (*Document, error)

	// ExistsByNumber reports whether another document of the type has the number.
	ExistsByNumber(ctx context.Context, t DocumentType, number string, excludeID id.ID) (bool, error)

	SetDeletionMark(ctx context.Context, docID id.ID, marked bool) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Document], error)
}

// MovementWriter maintains the movement register for a document.
type MovementWriter interface {
	// Replace deletes the movements of documentID and stores movements.
	Replace(ctx context.Context, documentID id.ID, movements []entity.InventoryMovement) error

	// Retract deletes all movements of documentID.
	Retract(ctx context.Context, documentID id.ID) error

	// Verify fails with CONSISTENCY_ERROR when the stored movements of
	// documentID differ from expected.
	Verify(ctx context.Context, documentID id.ID, expected []entity.InventoryMovement) error
}

// Existence reports whether a live catalog entry exists.
type Existence interface {
	Exists(ctx context.Context, entityID id.ID) (bool, error)
}

// FiscalYearProvider returns the active fiscal year. ok is false when no
// company is configured.
type FiscalYearProvider interface {
	ActiveFiscalYear(ctx context.Context) (start, end time.Time, ok bool, err error)
}

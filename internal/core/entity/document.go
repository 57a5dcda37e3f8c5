package entity

import (
	"context"
	"time"

	"anbar/internal/core/apperror"
)

// Document is the base type for business transactions (invoices, stock documents).
type Document struct {
	BaseDocument

	// Number is unique within the document type
	Number string `db:"number" json:"number"`

	// Date is the business instant of the document (UTC)
	Date time.Time `db:"date" json:"date"`

	// Finalized documents are read-only. The flag never goes back to false.
	Finalized bool `db:"finalized" json:"finalized"`

	// FinalizedAt is set when the document is finalized
	FinalizedAt *time.Time `db:"finalized_at" json:"finalizedAt,omitempty"`

	Description string `db:"description" json:"description,omitempty"`
}

// NewDocument creates a new Document dated now.
func NewDocument() Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewFieldValidation("date", "date is required")
	}
	return nil
}

// CanModify checks if document can be modified.
func (d *Document) CanModify() error {
	if d.Finalized {
		return apperror.NewDocumentFinalized(d.ID.String())
	}
	return nil
}

// MarkFinalized sets the finalized flag. It reports false when the document was
// already finalized, leaving it untouched. The version is bumped by the repository.
func (d *Document) MarkFinalized() bool {
	if d.Finalized {
		return false
	}
	now := time.Now().UTC()
	d.Finalized = true
	d.FinalizedAt = &now
	d.UpdatedAt = now
	return true
}

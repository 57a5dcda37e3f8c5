package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"anbar/internal/core/apperror"
	"anbar/internal/core/entity"
	"anbar/internal/core/id"
	"anbar/internal/domain/documents"
	"anbar/pkg/jalaali"
)

// DocumentItemRequest is one document line. Line totals are always recomputed.
type DocumentItemRequest struct {
	ProductID   string          `json:"productId" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Direction   string          `json:"direction" binding:"omitempty,oneof=IN OUT in out"`
	Description string          `json:"description"`
}

// DocumentFields are the editable fields shared by create and update.
type DocumentFields struct {
	Number string `json:"number" binding:"max=64"`
	DateInput
	SupplierID  *string               `json:"supplierId"`
	CustomerID  *string               `json:"customerId"`
	Description string                `json:"description"`
	Items       []DocumentItemRequest `json:"items" binding:"dive"`
}

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	DocumentType string `json:"documentType" binding:"required"`
	DocumentFields
}

// ToEntity converts DTO to domain entity.
func (r *CreateDocumentRequest) ToEntity() (*documents.Document, error) {
	t, err := documents.ParseDocumentType(r.DocumentType)
	if err != nil {
		return nil, err
	}
	date, err := r.Resolve()
	if err != nil {
		return nil, err
	}
	doc := documents.NewDocument(t, date)
	if err := r.apply(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *DocumentFields) apply(doc *documents.Document) error {
	var err error
	doc.Number = strings.TrimSpace(r.Number)
	doc.Description = r.Description

	if doc.SupplierID, err = ParseOptionalID("supplierId", r.SupplierID); err != nil {
		return err
	}
	if doc.CustomerID, err = ParseOptionalID("customerId", r.CustomerID); err != nil {
		return err
	}

	doc.Items = make([]documents.Item, 0, len(r.Items))
	for i, it := range r.Items {
		field := fmt.Sprintf("items[%d]", i)
		productID, err := id.Parse(strings.TrimSpace(it.ProductID))
		if err != nil {
			return apperror.NewFieldValidation(field+".productId", "invalid id format")
		}
		dir, err := documents.ParseDirection(it.Direction)
		if err != nil {
			return apperror.NewFieldValidation(field+".direction", err.Error())
		}
		doc.Items = append(doc.Items, documents.Item{
			ProductID:   productID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Direction:   dir,
			Description: it.Description,
		})
	}
	doc.Recalculate()
	return nil
}

// UpdateDocumentRequest replaces the editable fields of a draft. The document
// type cannot change; when sent it must match.
type UpdateDocumentRequest struct {
	DocumentType string `json:"documentType"`
	DocumentFields
	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateDocumentRequest) ApplyTo(doc *documents.Document) error {
	if r.DocumentType != "" {
		t, err := documents.ParseDocumentType(r.DocumentType)
		if err != nil {
			return err
		}
		doc.Type = t
	}
	date, err := r.Resolve()
	if err != nil {
		return err
	}
	doc.Date = date
	doc.Version = r.Version
	return r.apply(doc)
}

// DocumentResponse is a document with its Jalaali date.
type DocumentResponse struct {
	*documents.Document
	JalaliDate string `json:"jalaliDate"`
}

// FromDocument creates response DTO from domain entity.
func FromDocument(d *documents.Document) DocumentResponse {
	if d.Items == nil {
		d.Items = []documents.Item{}
	}
	return DocumentResponse{Document: d, JalaliDate: jalaali.FormatTime(d.Date)}
}

// DeleteDocumentResponse reports whether a delete changed anything.
type DeleteDocumentResponse struct {
	Deleted bool `json:"deleted"`
}

// MovementResponse is one movement with its Jalaali date.
type MovementResponse struct {
	entity.InventoryMovement
	JalaliDate string `json:"jalaliDate"`
}

// FromMovements creates response DTOs for movements.
func FromMovements(list []entity.InventoryMovement) []MovementResponse {
	out := make([]MovementResponse, len(list))
	for i, m := range list {
		out[i] = MovementResponse{InventoryMovement: m, JalaliDate: jalaali.FormatTime(m.Date)}
	}
	return out
}

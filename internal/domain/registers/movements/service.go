package movements

import (
	"context"
	"fmt"

	"anbar/internal/core/apperror"
	"anbar/internal/core/entity"
	"anbar/internal/core/id"
	"anbar/pkg/logger"
)

// Service provides operations on the movement register. Writes are issued by the
// document service inside its transaction.
type Service struct {
	repo Repository
}

// NewService creates a new movement register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores movements after checking their sign invariants.
func (s *Service) Record(ctx context.Context, movements []entity.InventoryMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i := range movements {
		m := &movements[i]
		if err := m.CheckSign(); err != nil {
			return apperror.NewValidation(fmt.Sprintf("movement %d: %v", i, err))
		}
		if id.IsNil(m.DocumentID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: document_id is required", i))
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Debug(ctx, "recorded inventory movements",
		"count", len(movements),
		"document_id", movements[0].DocumentID,
	)
	return nil
}

// Replace deletes the movements of documentID and records movements.
func (s *Service) Replace(ctx context.Context, documentID id.ID, movements []entity.InventoryMovement) error {
	for i := range movements {
		if movements[i].DocumentID != documentID {
			return apperror.NewValidation(fmt.Sprintf("movement %d belongs to another document", i))
		}
	}
	if _, err := s.repo.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}
	return s.Record(ctx, movements)
}

// Retract removes all movements of a document.
func (s *Service) Retract(ctx context.Context, documentID id.ID) error {
	n, err := s.repo.DeleteByDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	logger.Info(ctx, "retracted inventory movements",
		"document_id", documentID,
		"count", n,
	)
	return nil
}

// ListByDocument returns the movements of a document.
func (s *Service) ListByDocument(ctx context.Context, documentID id.ID) ([]entity.InventoryMovement, error) {
	return s.repo.ListByDocument(ctx, documentID)
}

// ListByProduct returns the movement history of a product.
func (s *Service) ListByProduct(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.InventoryMovement, error) {
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return nil, apperror.NewValidation("toDate is before fromDate")
	}
	return s.repo.ListByProduct(ctx, productID, filter)
}

// Balances returns stock quantities per product.
func (s *Service) Balances(ctx context.Context, filter BalanceFilter) ([]entity.StockBalance, error) {
	return s.repo.Balances(ctx, filter)
}

// Turnover returns opening, incoming, outgoing and closing quantities.
func (s *Service) Turnover(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	if filter.ToDate.Before(filter.FromDate) {
		return Turnover{}, apperror.NewValidation("toDate is before fromDate")
	}
	return s.repo.Turnover(ctx, filter)
}

// Verify compares the stored movements of a document with a fresh projection
// and returns a CONSISTENCY_ERROR describing the first divergence.
func (s *Service) Verify(ctx context.Context, documentID id.ID, expected []entity.InventoryMovement) error {
	stored, err := s.repo.ListByDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("list movements: %w", err)
	}
	return Compare(documentID, stored, expected)
}

// Compare reports whether stored and expected describe the same movements,
// matched by line number. Ids and creation times are ignored.
func Compare(documentID id.ID, stored, expected []entity.InventoryMovement) error {
	if len(stored) != len(expected) {
		return apperror.NewConsistency("movement count does not match document items").
			WithDetail("documentId", documentID.String()).
			WithDetail("stored", len(stored)).
			WithDetail("expected", len(expected))
	}

	byLine := make(map[int]entity.InventoryMovement, len(stored))
	for _, m := range stored {
		byLine[m.LineNo] = m
	}

	for _, want := range expected {
		got, ok := byLine[want.LineNo]
		if !ok {
			return apperror.NewConsistency("movement missing for document line").
				WithDetail("documentId", documentID.String()).
				WithDetail("lineNo", want.LineNo)
		}
		if got.ProductID != want.ProductID ||
			got.MovementType != want.MovementType ||
			!got.Quantity.Equal(want.Quantity) ||
			!got.UnitPrice.Equal(want.UnitPrice) ||
			!got.Date.Equal(want.Date) {
			return apperror.NewConsistency("movement differs from document line").
				WithDetail("documentId", documentID.String()).
				WithDetail("lineNo", want.LineNo)
		}
	}
	return nil
}

package reports

import (
	"context"

	"anbar/internal/core/entity"
	"anbar/internal/core/id"
	"anbar/internal/domain"
	"anbar/internal/domain/documents"
	"anbar/internal/domain/registers/movements"
)

// Repository resolves catalog names for reports. Soft-deleted rows are
// returned; ids with no row are simply absent from the result.
type Repository interface {
	Products(ctx context.Context, ids []id.ID) (map[id.ID]ProductRef, error)

	// PartyNames resolves supplier and customer names in one call.
	PartyNames(ctx context.Context, supplierIDs, customerIDs []id.ID) (map[id.ID]string, error)

	// TypeSummary aggregates documents matching filter by type.
	TypeSummary(ctx context.Context, filter documents.ListFilter) ([]TypeSummary, error)
}

// DocumentSource reads the document ledger.
type DocumentSource interface {
	FindByProduct(ctx context.Context, productID id.ID) ([]*documents.Document, error)
	List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[*documents.Document], error)
}

// BalanceSource reads the movement register.
type BalanceSource interface {
	Balances(ctx context.Context, filter movements.BalanceFilter) ([]entity.StockBalance, error)
}

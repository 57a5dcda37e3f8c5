package product

import (
	"context"

	"anbar/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// FindByBarcode retrieves a live product by barcode.
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)

	// FindLowStock lists live products whose register balance is below MinStock.
	FindLowStock(ctx context.Context, limit int) ([]*Product, error)
}

package product

import (
	"context"

	"anbar/internal/core/apperror"
	"anbar/internal/core/id"
	"anbar/internal/core/numerator"
	"anbar/internal/core/tx"
	"anbar/internal/domain"
)

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a new Product service. Empty codes are generated as P-00001...
func NewService(repo Repository, txm tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txm,
		Numerator:  gen,
		EntityName: "product",
		CodePrefix: "P",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeSave(svc.checkBarcode)

	return svc
}

func (s *Service) checkBarcode(ctx context.Context, p *Product) error {
	if p.Barcode == "" {
		return nil
	}
	exists, err := s.barcodeTaken(ctx, p.Barcode, p.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("product", "barcode", p.Barcode)
	}
	return nil
}

// FindByBarcode retrieves a product by barcode.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (*Product, error) {
	return s.repo.FindByBarcode(ctx, barcode)
}

// FindLowStock lists products that need replenishment.
func (s *Service) FindLowStock(ctx context.Context, limit int) ([]*Product, error) {
	return s.repo.FindLowStock(ctx, limit)
}

func (s *Service) barcodeTaken(ctx context.Context, barcode string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}

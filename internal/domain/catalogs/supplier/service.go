package supplier

import (
	"anbar/internal/core/numerator"
	"anbar/internal/core/tx"
	"anbar/internal/domain"
)

// Service provides business logic for the Supplier catalog.
type Service struct {
	*domain.CatalogService[*Supplier]
}

// NewService creates a new Supplier service. Empty codes are generated as S-00001...
func NewService(repo Repository, txm tx.Manager, gen numerator.Generator) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
			Repo:       repo,
			TxManager:  txm,
			Numerator:  gen,
			EntityName: "supplier",
			CodePrefix: "S",
		}),
	}
}

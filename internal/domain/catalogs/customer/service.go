package customer

import (
	"anbar/internal/core/numerator"
	"anbar/internal/core/tx"
	"anbar/internal/domain"
)

// Service provides business logic for the Customer catalog.
type Service struct {
	*domain.CatalogService[*Customer]
}

// NewService creates a new Customer service. Empty codes are generated as C-00001...
func NewService(repo Repository, txm tx.Manager, gen numerator.Generator) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
			Repo:       repo,
			TxManager:  txm,
			Numerator:  gen,
			EntityName: "customer",
			CodePrefix: "C",
		}),
	}
}

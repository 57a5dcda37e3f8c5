// Package main loads a demo company, catalog and a handful of documents into
// an empty database.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"anbar/internal/config"
	"anbar/internal/core/apperror"
	"anbar/internal/core/types"
	"anbar/internal/domain/catalogs/customer"
	"anbar/internal/domain/catalogs/product"
	"anbar/internal/domain/catalogs/supplier"
	"anbar/internal/domain/company"
	"anbar/internal/domain/documents"
	"anbar/internal/domain/registers/movements"
	"anbar/internal/infrastructure/numerator"
	"anbar/internal/infrastructure/storage/postgres"
	"anbar/internal/infrastructure/storage/postgres/catalog_repo"
	"anbar/internal/infrastructure/storage/postgres/company_repo"
	"anbar/internal/infrastructure/storage/postgres/document_repo"
	"anbar/internal/infrastructure/storage/postgres/register_repo"
	"anbar/pkg/jalaali"
	"anbar/pkg/logger"
)

type seeder struct {
	log       *logger.Logger
	products  *product.Service
	suppliers *supplier.Service
	customers *customer.Service
	company   *company.Service
	documents *documents.Service
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	if err := postgres.Migrate(ctx, txm); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}

	auditService, err := postgres.NewAuditService(txm)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	gen := numerator.NewFromTxManager(txm)
	s := &seeder{
		log:       log,
		products:  product.NewService(catalog_repo.NewProductRepo(txm), txm, gen),
		suppliers: supplier.NewService(catalog_repo.NewSupplierRepo(txm), txm, gen),
		customers: customer.NewService(catalog_repo.NewCustomerRepo(txm), txm, gen),
		company:   company.NewService(company_repo.NewCompanyRepo(txm), txm, auditService),
	}
	s.documents = documents.NewService(documents.ServiceConfig{
		Repo:             document_repo.NewDocumentRepo(txm),
		Movements:        movements.NewService(register_repo.NewMovementRepo(txm)),
		TxManager:        txm,
		Numerator:        gen,
		NumberingOptions: cfg.NumberingOptions(),
		Products:         s.products,
		Suppliers:        s.suppliers,
		Customers:        s.customers,
		Audit:            auditService,
	})

	if err := s.run(ctx); err != nil {
		log.Fatalw("seeding failed", "error", err)
	}
	log.Info("seeding completed successfully")
}

func (s *seeder) run(ctx context.Context) error {
	if _, err := s.products.GetByCode(ctx, "DEMO-RICE"); err == nil {
		s.log.Info("demo data already present, nothing to do")
		return nil
	} else if !apperror.IsNotFound(err) {
		return fmt.Errorf("check demo data: %w", err)
	}

	today := jalaali.FromTime(time.Now())
	if _, err := s.company.Upsert(ctx, company.UpsertInput{
		Name:       "شرکت نمونه انبار",
		Phone:      "021-88000000",
		Address:    "تهران",
		FiscalYear: today.Year,
	}); err != nil {
		return fmt.Errorf("seed company: %w", err)
	}

	rice := product.NewProduct("DEMO-RICE", "برنج ایرانی", "kg")
	oil := product.NewProduct("DEMO-OIL", "روغن مایع", "pcs")
	tea := product.NewProduct("DEMO-TEA", "چای", "box")
	for _, p := range []*product.Product{rice, oil, tea} {
		reorder := types.MustMoney("5")
		p.MinStock = &reorder
		if err := s.products.Create(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.Code, err)
		}
	}

	sup := supplier.NewSupplier("", "پخش البرز")
	if err := s.suppliers.Create(ctx, sup); err != nil {
		return fmt.Errorf("seed supplier: %w", err)
	}
	cus := customer.NewCustomer("", "فروشگاه ستاره")
	if err := s.customers.Create(ctx, cus); err != nil {
		return fmt.Errorf("seed customer: %w", err)
	}

	start := today.AddDays(-10).Time(nil)

	opening := documents.NewDocument(documents.TypeInitialStock, start)
	opening.AddItem(rice.ID, types.MustMoney("100"), types.MustMoney("850000"))
	opening.AddItem(oil.ID, types.MustMoney("40"), types.MustMoney("1200000"))
	opening.AddItem(tea.ID, types.MustMoney("20"), types.MustMoney("2500000"))

	purchase := documents.NewDocument(documents.TypePurchaseInvoice, start.AddDate(0, 0, 3))
	purchase.SupplierID = &sup.ID
	purchase.AddItem(rice.ID, types.MustMoney("50"), types.MustMoney("900000"))
	purchase.AddItem(tea.ID, types.MustMoney("10"), types.MustMoney("2600000"))

	sale := documents.NewDocument(documents.TypeSaleInvoice, start.AddDate(0, 0, 6))
	sale.CustomerID = &cus.ID
	sale.AddItem(rice.ID, types.MustMoney("30"), types.MustMoney("1100000"))
	sale.AddItem(oil.ID, types.MustMoney("12"), types.MustMoney("1500000"))

	adjust := documents.NewDocument(documents.TypeStockAdjustment, start.AddDate(0, 0, 8))
	adjust.AddItem(tea.ID, types.MustMoney("2"), types.MustMoney("0"))
	adjust.Items[0].Direction = documents.DirectionOut
	adjust.Description = "شمارش انبار"
	adjust.Recalculate()

	for _, doc := range []*documents.Document{opening, purchase, sale, adjust} {
		if err := s.documents.Create(ctx, doc); err != nil {
			return fmt.Errorf("seed %s: %w", doc.Type, err)
		}
		s.log.Infow("document created", "type", doc.Type, "number", doc.Number, "jalali_date", jalaali.FormatTime(doc.Date))
	}

	// Initial stock is finalized on creation; the sale and the adjustment stay drafts.
	if _, err := s.documents.Finalize(ctx, purchase.ID); err != nil {
		return fmt.Errorf("finalize %s: %w", purchase.Number, err)
	}
	return nil
}

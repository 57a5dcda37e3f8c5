// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"anbar/internal/config"
	"anbar/internal/domain/audit"
	"anbar/internal/domain/catalogs/customer"
	"anbar/internal/domain/catalogs/product"
	"anbar/internal/domain/catalogs/supplier"
	"anbar/internal/domain/company"
	"anbar/internal/domain/documents"
	"anbar/internal/domain/registers/movements"
	"anbar/internal/domain/reports"
	"anbar/internal/infrastructure/http/v1/handlers"
	"anbar/internal/infrastructure/http/v1/middleware"
	"anbar/internal/infrastructure/numerator"
	"anbar/internal/infrastructure/storage/postgres"
	"anbar/internal/infrastructure/storage/postgres/catalog_repo"
	"anbar/internal/infrastructure/storage/postgres/company_repo"
	"anbar/internal/infrastructure/storage/postgres/document_repo"
	"anbar/internal/infrastructure/storage/postgres/register_repo"
	"anbar/internal/infrastructure/storage/postgres/report_repo"
	"anbar/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager

	// Audit stores snapshots of documents and company revisions
	Audit *postgres.AuditService

	Logger  *logger.Logger
	Config  *config.Config
	Version string
}

// services are created once and shared by the route groups.
type services struct {
	products  *product.Service
	suppliers *supplier.Service
	customers *customer.Service
	company   *company.Service
	movements *movements.Service
	documents *documents.Service
	reports   *reports.Service
	audit     audit.Reader
}

func newServices(cfg RouterConfig) *services {
	txm := cfg.TxManager
	gen := numerator.NewFromTxManager(txm)

	var rec audit.Recorder = audit.Nop{}
	var reader audit.Reader
	if cfg.Audit != nil {
		rec = cfg.Audit
		reader = cfg.Audit
	}

	s := &services{
		products:  product.NewService(catalog_repo.NewProductRepo(txm), txm, gen),
		suppliers: supplier.NewService(catalog_repo.NewSupplierRepo(txm), txm, gen),
		customers: customer.NewService(catalog_repo.NewCustomerRepo(txm), txm, gen),
		company:   company.NewService(company_repo.NewCompanyRepo(txm), txm, rec),
		movements: movements.NewService(register_repo.NewMovementRepo(txm)),
		audit:     reader,
	}

	s.documents = documents.NewService(documents.ServiceConfig{
		Repo:              document_repo.NewDocumentRepo(txm),
		Movements:         s.movements,
		TxManager:         txm,
		Numerator:         gen,
		NumberingOptions:  cfg.Config.NumberingOptions(),
		Products:          s.products,
		Suppliers:         s.suppliers,
		Customers:         s.customers,
		FiscalYear:        s.company,
		EnforceFiscalYear: cfg.Config.DocumentsEnforceFiscalYear,
		Audit:             rec,
	})
	s.documents.Hooks().OnAfterFinalize(documents.WarnNegativeStock(s.movements))

	s.reports = reports.NewService(reports.Config{
		Repo:          report_repo.NewReportRepo(txm),
		Documents:     s.documents,
		Balances:      s.movements,
		IncludeDrafts: cfg.Config.ReportsIncludeDrafts,
	})

	return s
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Config.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	svc := newServices(cfg)
	base := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	{
		registerCatalogRoutes(api, base, svc)
		registerDocumentRoutes(api, base, svc)
		registerCompanyRoutes(api, base, svc)
		registerReportRoutes(api, base, svc)
		registerCalendarRoutes(api, base)
		registerAuditRoutes(api, base, svc)
	}

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *services) {
	catalogs := rg.Group("/catalog")

	// --- PRODUCTS ---
	{
		handler := handlers.NewProductHandler(base, svc.products)
		group := catalogs.Group("/products")
		group.GET("/low-stock", handler.LowStock)
		group.GET("/by-barcode/:barcode", handler.ByBarcode)
		RegisterCatalogRoutes(group, handler)
	}

	// --- SUPPLIERS ---
	RegisterCatalogRoutes(catalogs.Group("/suppliers"), handlers.NewSupplierHandler(base, svc.suppliers))

	// --- CUSTOMERS ---
	RegisterCatalogRoutes(catalogs.Group("/customers"), handlers.NewCustomerHandler(base, svc.customers))
}

func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *services) {
	handler := handlers.NewDocumentHandler(base, svc.documents, svc.movements)
	RegisterDocumentRoutes(rg.Group("/documents"), handler)
}

func registerCompanyRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *services) {
	handler := handlers.NewCompanyHandler(base, svc.company)
	group := rg.Group("/company")
	group.GET("", handler.GetActive)
	group.PUT("", handler.Upsert)
	group.GET("/history", handler.History)
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *services) {
	handler := handlers.NewReportsHandler(base, svc.reports, svc.movements)
	group := rg.Group("/reports")
	group.GET("/cardex/:productId", handler.Cardex)
	group.GET("/movement-summary/:productId", handler.MovementSummary)
	group.GET("/stock-balances", handler.StockBalances)
	group.GET("/stock-movements/:productId", handler.StockMovements)
	group.GET("/stock-turnover/:productId", handler.StockTurnover)
	group.GET("/document-journal", handler.DocumentJournal)
}

func registerCalendarRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler) {
	handler := handlers.NewCalendarHandler(base)
	group := rg.Group("/calendar")
	group.GET("/today", handler.Today)
	group.GET("/convert", handler.Convert)
	group.GET("/fiscal-year/:year", handler.FiscalYear)
}

func registerAuditRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *services) {
	if svc.audit == nil {
		return
	}
	handler := handlers.NewAuditHandler(base, svc.audit)
	rg.GET("/audit/:entityType/:id", handler.History)
}

package documents

import (
	"context"
	"fmt"
	"time"

	"anbar/internal/core/apperror"
	"anbar/internal/core/id"
	"anbar/internal/core/numerator"
	"anbar/internal/core/tx"
	"anbar/internal/domain"
	"anbar/internal/domain/audit"
	"anbar/pkg/jalaali"
	"anbar/pkg/logger"
)

const auditEntity = "document"

// ServiceConfig wires the document service.
type ServiceConfig struct {
	Repo      Repository
	Movements MovementWriter
	TxManager tx.Manager
	Numerator numerator.Generator
	// NumberingOptions selects strict or cached numbering. Nil means strict.
	NumberingOptions *numerator.Options

	Products  Existence
	Suppliers Existence
	Customers Existence

	// FiscalYear is consulted only when EnforceFiscalYear is set.
	FiscalYear        FiscalYearProvider
	EnforceFiscalYear bool

	Audit audit.Recorder // optional
}

// Service provides the ledger operations: create, update, finalize and delete,
// each writing the document and its movements in one transaction.
type Service struct {
	repo      Repository
	movements MovementWriter
	txManager tx.Manager
	numerator numerator.Generator
	numOpts   *numerator.Options

	products  Existence
	suppliers Existence
	customers Existence

	fiscalYear    FiscalYearProvider
	enforceFiscal bool

	audit audit.Recorder
	hooks *domain.HookRegistry[*Document]
}

// NewService creates a new document service.
func NewService(cfg ServiceConfig) *Service {
	txm := cfg.TxManager
	if txm == nil {
		txm = tx.Nop{}
	}
	rec := cfg.Audit
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{
		repo:          cfg.Repo,
		movements:     cfg.Movements,
		txManager:     txm,
		numerator:     cfg.Numerator,
		numOpts:       cfg.NumberingOptions,
		products:      cfg.Products,
		suppliers:     cfg.Suppliers,
		customers:     cfg.Customers,
		fiscalYear:    cfg.FiscalYear,
		enforceFiscal: cfg.EnforceFiscalYear,
		audit:         rec,
		hooks:         domain.NewHookRegistry[*Document](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Document] {
	return s.hooks
}

// Create validates doc, recomputes its totals and stores it together with one
// movement per item. Initial stock documents are stored finalized; every other
// type starts as a draft. Nothing is written when any step fails.
func (s *Service) Create(ctx context.Context, doc *Document) error {
	doc.Finalized = doc.Type == TypeInitialStock
	doc.FinalizedAt = nil
	if doc.Finalized {
		now := time.Now().UTC()
		doc.FinalizedAt = &now
	}
	doc.DeletionMark = false
	doc.Recalculate()

	if err := doc.Validate(ctx); err != nil {
		return normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, domain.BeforeCreate, doc); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, doc); err != nil {
			return err
		}
		if err := s.checkFiscalYear(ctx, doc); err != nil {
			return err
		}
		if err := s.assignNumber(ctx, doc); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.project(ctx, doc); err != nil {
			return err
		}
		return s.audit.Record(ctx, auditEntity, doc.ID, audit.ActionCreate, doc)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "id", doc.ID, "error", err)
	}

	logger.Info(ctx, "document created",
		"id", doc.ID,
		"type", doc.Type,
		"number", doc.Number,
		"items", len(doc.Items),
		"total", doc.TotalAmount.String())

	return nil
}

// Update replaces the editable fields and the whole item set of a draft, then
// regenerates its movements. doc.Version must equal the stored version.
// The document type cannot change.
func (s *Service) Update(ctx context.Context, doc *Document) error {
	if err := s.hooks.Run(ctx, domain.BeforeUpdate, doc); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, doc.ID)
		if err != nil {
			return normalizeGetErr(err, doc.ID)
		}
		if current.DeletionMark {
			return apperror.NewNotFound(auditEntity, doc.ID.String())
		}
		if err := current.CanModify(); err != nil {
			return err
		}
		if current.Version != doc.Version {
			return apperror.NewConcurrentModification(auditEntity, doc.ID.String()).
				WithDetail("expectedVersion", current.Version)
		}
		if doc.Type != current.Type {
			return apperror.NewFieldValidation("documentType", "document type cannot be changed")
		}

		doc.CreatedAt = current.CreatedAt
		doc.Finalized = false
		doc.FinalizedAt = nil
		if doc.Number == "" {
			doc.Number = current.Number
		}
		doc.Recalculate()

		if err := doc.Validate(ctx); err != nil {
			return normalizeValidationErr(err)
		}
		if err := s.checkReferences(ctx, doc); err != nil {
			return err
		}
		if err := s.checkFiscalYear(ctx, doc); err != nil {
			return err
		}
		if doc.Number != current.Number {
			if err := s.checkNumberFree(ctx, doc); err != nil {
				return err
			}
		}

		doc.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		doc.Version++

		if err := s.project(ctx, doc); err != nil {
			return err
		}
		return s.audit.Record(ctx, auditEntity, doc.ID, audit.ActionUpdate, doc)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterUpdate, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "id", doc.ID, "error", err)
	}
	return nil
}

// Finalize makes a draft read-only. Finalizing a finalized document is a no-op.
func (s *Service) Finalize(ctx context.Context, docID id.ID) (*Document, error) {
	var (
		doc     *Document
		changed bool
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return normalizeGetErr(err, docID)
		}
		if doc.DeletionMark {
			return apperror.NewNotFound(auditEntity, docID.String())
		}

		if doc.Finalized {
			return nil
		}

		// A finalized document must agree with its movements.
		expected, err := ProjectMovements(doc)
		if err != nil {
			return apperror.NewInternal(err)
		}
		if err := s.movements.Verify(ctx, doc.ID, expected); err != nil {
			return err
		}

		changed = doc.MarkFinalized()
		if err := s.repo.MarkFinalized(ctx, doc); err != nil {
			return fmt.Errorf("finalize document: %w", err)
		}
		doc.Version++
		return s.audit.Record(ctx, auditEntity, doc.ID, audit.ActionFinalize, doc)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		if err := s.hooks.Run(ctx, domain.AfterFinalize, doc); err != nil {
			logger.Warn(ctx, "after-finalize hook failed", "id", doc.ID, "error", err)
		}
		logger.Info(ctx, "document finalized", "id", doc.ID, "number", doc.Number)
	}
	return doc, nil
}

// Delete soft-deletes the document and retracts its movements. It reports
// false when the document was already deleted.
func (s *Service) Delete(ctx context.Context, docID id.ID) (bool, error) {
	var (
		doc     *Document
		deleted bool
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return normalizeGetErr(err, docID)
		}
		if doc.DeletionMark {
			return nil
		}

		if err := s.hooks.Run(ctx, domain.BeforeDelete, doc); err != nil {
			return err
		}
		if err := s.repo.SetDeletionMark(ctx, docID, true); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		if err := s.movements.Retract(ctx, docID); err != nil {
			return fmt.Errorf("retract movements: %w", err)
		}
		doc.MarkDeleted()
		deleted = true
		return s.audit.Record(ctx, auditEntity, docID, audit.ActionDelete, doc)
	})
	if err != nil {
		return false, err
	}

	if deleted {
		if err := s.hooks.Run(ctx, domain.AfterDelete, doc); err != nil {
			logger.Warn(ctx, "after-delete hook failed", "id", docID, "error", err)
		}
		logger.Info(ctx, "document deleted", "id", docID, "number", doc.Number)
	}
	return deleted, nil
}

// GetByID retrieves a document with items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Document, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, normalizeGetErr(err, docID)
	}
	return doc, nil
}

// List retrieves documents with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Document], error) {
	for _, t := range filter.Types {
		if !t.IsValid() {
			return domain.ListResult[*Document]{}, apperror.NewFieldValidation("type", fmt.Sprintf("unknown document type %q", t))
		}
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return domain.ListResult[*Document]{}, apperror.NewValidation("dateTo is before dateFrom")
	}
	return s.repo.List(ctx, filter)
}

// FindByProduct returns every live document with a line for productID, items
// loaded, in date order. Drafts are included.
func (s *Service) FindByProduct(ctx context.Context, productID id.ID) ([]*Document, error) {
	res, err := s.repo.List(ctx, ListFilter{
		ProductID: &productID,
		OrderBy:   "date",
		WithItems: true,
	})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// project regenerates the movements of doc.
func (s *Service) project(ctx context.Context, doc *Document) error {
	movements, err := ProjectMovements(doc)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if err := s.movements.Replace(ctx, doc.ID, movements); err != nil {
		return fmt.Errorf("record movements: %w", err)
	}
	return nil
}

func (s *Service) assignNumber(ctx context.Context, doc *Document) error {
	if doc.Number != "" {
		return s.checkNumberFree(ctx, doc)
	}
	if s.numerator == nil {
		return apperror.NewFieldValidation("number", "document number is required")
	}

	cfg := numerator.DefaultConfig(doc.Type.NumberPrefix())
	number, err := s.numerator.GetNextNumber(ctx, cfg, s.numOpts, doc.Date)
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number
	return nil
}

func (s *Service) checkNumberFree(ctx context.Context, doc *Document) error {
	exists, err := s.repo.ExistsByNumber(ctx, doc.Type, doc.Number, doc.ID)
	if err != nil {
		return fmt.Errorf("check number: %w", err)
	}
	if exists {
		return apperror.NewDuplicate(auditEntity, "number", doc.Number).
			WithDetail("documentType", string(doc.Type))
	}
	return nil
}

// checkReferences rejects documents pointing at missing or deleted catalog entries.
func (s *Service) checkReferences(ctx context.Context, doc *Document) error {
	if s.products != nil {
		for _, pid := range doc.ProductIDs() {
			if err := exists(ctx, s.products, "product", pid); err != nil {
				return err
			}
		}
	}
	if doc.SupplierID != nil && s.suppliers != nil {
		if err := exists(ctx, s.suppliers, "supplier", *doc.SupplierID); err != nil {
			return err
		}
	}
	if doc.CustomerID != nil && s.customers != nil {
		if err := exists(ctx, s.customers, "customer", *doc.CustomerID); err != nil {
			return err
		}
	}
	return nil
}

func exists(ctx context.Context, e Existence, name string, entityID id.ID) error {
	ok, err := e.Exists(ctx, entityID)
	if err != nil {
		return fmt.Errorf("check %s: %w", name, err)
	}
	if !ok {
		return apperror.NewReferential(name, entityID.String())
	}
	return nil
}

func (s *Service) checkFiscalYear(ctx context.Context, doc *Document) error {
	if !s.enforceFiscal || s.fiscalYear == nil {
		return nil
	}
	start, end, ok, err := s.fiscalYear.ActiveFiscalYear(ctx)
	if err != nil {
		return fmt.Errorf("load fiscal year: %w", err)
	}
	if !ok {
		return nil
	}
	if doc.Date.Before(start) || doc.Date.After(end) {
		return apperror.NewOutsideFiscalYear(
			jalaali.FromTime(doc.Date).String(),
			jalaali.FromTime(start).String(),
			jalaali.FromTime(end).String())
	}
	return nil
}

func normalizeValidationErr(err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func normalizeGetErr(err error, docID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(auditEntity, docID.String())
	}
	return err
}

package company

import (
	"context"
	"fmt"
	"time"

	"anbar/internal/core/apperror"
	"anbar/internal/core/id"
	"anbar/internal/core/tx"
	"anbar/internal/domain/audit"
	"anbar/pkg/logger"
)

const entityName = "company"

// Repository persists company revisions.
type Repository interface {
	// GetActive returns the active revision or a NOT_FOUND error.
	GetActive(ctx context.Context) (*Company, error)

	// DeactivateAll clears the active flag on every revision.
	DeactivateAll(ctx context.Context) error

	// Create inserts a revision. A second active row violates the partial
	// unique index and is reported as CONCURRENT_MODIFICATION.
	Create(ctx context.Context, c *Company) error

	// History lists revisions newest first.
	History(ctx context.Context, limit int) ([]*Company, error)
}

// Service manages the company profile.
type Service struct {
	repo      Repository
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates a new company service. rec may be nil.
func NewService(repo Repository, txm tx.Manager, rec audit.Recorder) *Service {
	if txm == nil {
		txm = tx.Nop{}
	}
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{repo: repo, txManager: txm, audit: rec}
}

// GetActive returns the active company.
func (s *Service) GetActive(ctx context.Context) (*Company, error) {
	c, err := s.repo.GetActive(ctx)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(entityName, "active")
		}
		return nil, err
	}
	return c, nil
}

// Upsert replaces the active company with a new revision built from in. The
// version continues from the previous revision. Readers never observe two
// active rows or none at all.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (*Company, error) {
	if err := in.Validate(ctx); err != nil {
		return nil, err
	}
	start, end := in.period()

	c := &Company{
		ID:              id.New(),
		Name:            in.Name,
		EconomicCode:    in.EconomicCode,
		NationalID:      in.NationalID,
		RegistrationNo:  in.RegistrationNo,
		Phone:           in.Phone,
		Address:         in.Address,
		PostalCode:      in.PostalCode,
		FiscalYearStart: start,
		FiscalYearEnd:   end,
		IsActive:        true,
		Version:         1,
		CreatedAt:       time.Now().UTC(),
	}

	err := tx.RunSerializable(ctx, s.txManager, func(ctx context.Context) error {
		current, err := s.repo.GetActive(ctx)
		switch {
		case err == nil:
			c.Version = current.Version + 1
		case apperror.IsNotFound(err):
		default:
			return fmt.Errorf("load active company: %w", err)
		}

		if err := s.repo.DeactivateAll(ctx); err != nil {
			return fmt.Errorf("deactivate company: %w", err)
		}
		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}
		return s.audit.Record(ctx, entityName, c.ID, audit.ActionUpsert, c)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "company updated",
		"id", c.ID,
		"version", c.Version,
		"fiscal_year", c.FiscalYear())
	return c, nil
}

// History lists company revisions newest first. limit <= 0 means all.
func (s *Service) History(ctx context.Context, limit int) ([]*Company, error) {
	return s.repo.History(ctx, limit)
}

// ActiveFiscalYear returns the fiscal period of the active company. ok is
// false when no company is configured.
func (s *Service) ActiveFiscalYear(ctx context.Context) (start, end time.Time, ok bool, err error) {
	c, err := s.repo.GetActive(ctx)
	if err != nil {
		if apperror.IsNotFound(err) {
			return time.Time{}, time.Time{}, false, nil
		}
		return time.Time{}, time.Time{}, false, err
	}
	return c.FiscalYearStart, c.FiscalYearEnd, true, nil
}

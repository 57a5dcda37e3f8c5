// Package company_repo stores company profile revisions in sys_company.
package company_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anbar/internal/core/apperror"
	"anbar/internal/domain/company"
	"anbar/internal/infrastructure/storage/postgres"
)

const companyTable = "sys_company"

var companyCols = postgres.ExtractDBColumns[company.Company]()

// CompanyRepo implements company.Repository.
type CompanyRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewCompanyRepo creates a company repository.
func NewCompanyRepo(txManager *postgres.TxManager) *CompanyRepo {
	return &CompanyRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ company.Repository = (*CompanyRepo)(nil)

// GetActive returns the active revision.
func (r *CompanyRepo) GetActive(ctx context.Context) (*company.Company, error) {
	sql, args, err := r.builder.Select(companyCols...).
		From(companyTable).
		Where(squirrel.Eq{"is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c := new(company.Company)
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("company", "active")
		}
		return nil, fmt.Errorf("get active company: %w", err)
	}
	return c, nil
}

// DeactivateAll clears the active flag.
func (r *CompanyRepo) DeactivateAll(ctx context.Context) error {
	sql, args, err := r.builder.Update(companyTable).
		Set("is_active", false).
		Where(squirrel.Eq{"is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("deactivate company: %w", err)
	}
	return nil
}

// Create inserts a revision.
func (r *CompanyRepo) Create(ctx context.Context, c *company.Company) error {
	sql, args, err := r.builder.Insert(companyTable).
		SetMap(postgres.StructToMap(c)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return apperror.NewConcurrentModification("company", c.ID).WithCause(err)
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// History lists revisions newest first.
func (r *CompanyRepo) History(ctx context.Context, limit int) ([]*company.Company, error) {
	q := r.builder.Select(companyCols...).
		From(companyTable).
		OrderBy("created_at DESC", "version DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var list []*company.Company
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("company history: %w", err)
	}
	return list, nil
}

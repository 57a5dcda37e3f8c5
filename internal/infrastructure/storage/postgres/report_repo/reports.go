// Package report_repo provides the catalog lookups and aggregates behind the
// reports service.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anbar/internal/core/id"
	"anbar/internal/domain/documents"
	"anbar/internal/domain/reports"
	"anbar/internal/infrastructure/storage/postgres"
	"anbar/internal/infrastructure/storage/postgres/document_repo"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Products loads products by id, soft-deleted ones included. Ids with no row
// are absent from the result.
func (r *ReportRepo) Products(ctx context.Context, ids []id.ID) (map[id.ID]reports.ProductRef, error) {
	out := make(map[id.ID]reports.ProductRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sql, args, err := r.builder.
		Select("id", "code", "name", "unit", "deletion_mark").
		From("cat_products").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var refs []reports.ProductRef
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &refs, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	for _, p := range refs {
		out[p.ID] = p
	}
	return out, nil
}

type partyName struct {
	ID   id.ID  `db:"id"`
	Name string `db:"name"`
}

// PartyNames resolves supplier and customer names in one round-trip.
func (r *ReportRepo) PartyNames(ctx context.Context, supplierIDs, customerIDs []id.ID) (map[id.ID]string, error) {
	out := make(map[id.ID]string, len(supplierIDs)+len(customerIDs))
	if len(supplierIDs)+len(customerIDs) == 0 {
		return out, nil
	}

	sql, args, err := r.partyNamesQuery(supplierIDs, customerIDs).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []partyName
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select party names: %w", err)
	}
	for _, p := range rows {
		out[p.ID] = p.Name
	}
	return out, nil
}

func (r *ReportRepo) partyNamesQuery(supplierIDs, customerIDs []id.ID) squirrel.SelectBuilder {
	suppliers := r.builder.Select("id", "name").From("cat_suppliers").Where(squirrel.Eq{"id": supplierIDs})
	// The unioned half keeps "?" placeholders; the outer query numbers them all.
	customers := squirrel.Select("id", "name").From("cat_customers").Where(squirrel.Eq{"id": customerIDs})

	switch {
	case len(customerIDs) == 0:
		return suppliers
	case len(supplierIDs) == 0:
		return customers.PlaceholderFormat(squirrel.Dollar)
	}
	return suppliers.SuffixExpr(squirrel.ConcatExpr("UNION ALL ", customers))
}

// TypeSummary returns document counts and totals by type over the whole
// filter, ignoring paging.
func (r *ReportRepo) TypeSummary(ctx context.Context, filter documents.ListFilter) ([]reports.TypeSummary, error) {
	q, err := r.typeSummaryQuery(filter)
	if err != nil {
		return nil, err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []reports.TypeSummary
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &result, sql, args...); err != nil {
		return nil, fmt.Errorf("document type summary: %w", err)
	}
	return result, nil
}

func (r *ReportRepo) typeSummaryQuery(filter documents.ListFilter) (squirrel.SelectBuilder, error) {
	q := r.builder.Select(
		"document_type",
		"COUNT(*) AS count",
		"COUNT(*) FILTER (WHERE finalized) AS finalized_count",
		"COALESCE(SUM(total_amount), 0) AS total_amount",
	).From("doc_documents")

	q, err := document_repo.ApplyFilter(q, filter)
	if err != nil {
		return q, err
	}
	return q.GroupBy("document_type").OrderBy("document_type"), nil
}

// Ensure interface compliance
var _ reports.Repository = (*ReportRepo)(nil)

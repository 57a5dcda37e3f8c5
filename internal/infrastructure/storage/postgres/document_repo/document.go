// Package document_repo provides the PostgreSQL implementation of the document
// ledger repository.
package document_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anbar/internal/core/apperror"
	"anbar/internal/core/id"
	"anbar/internal/domain"
	"anbar/internal/domain/documents"
	"anbar/internal/infrastructure/storage/postgres"
)

const (
	documentsTable = "doc_documents"
	itemsTable     = "doc_document_items"
)

var (
	documentCols = postgres.ExtractDBColumns[documents.Document]()
	itemCols     = postgres.ExtractDBColumns[documents.Item]()
)

// DocumentRepo stores document headers in doc_documents and their lines in
// doc_document_items.
type DocumentRepo struct {
	txManager *postgres.TxManager
}

// NewDocumentRepo creates a document repository.
func NewDocumentRepo(txManager *postgres.TxManager) *DocumentRepo {
	return &DocumentRepo{txManager: txManager}
}

var _ documents.Repository = (*DocumentRepo)(nil)

func (r *DocumentRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *DocumentRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func headerOf(doc *documents.Document, skip ...string) map[string]any {
	data := postgres.StructToMap(doc)
	out := make(map[string]any, len(documentCols))
	for _, col := range documentCols {
		skipped := false
		for _, s := range skip {
			if s == col {
				skipped = true
				break
			}
		}
		if skipped {
			continue
		}
		if val, ok := data[col]; ok {
			out[col] = val
		}
	}
	return out
}

func mapWriteErr(err error, doc *documents.Document) error {
	if _, ok := postgres.UniqueViolation(err); ok {
		return apperror.NewDuplicate("document", "number", doc.Number).
			WithDetail("documentType", doc.Type).
			WithCause(err)
	}
	if postgres.IsForeignKeyViolation(err) {
		return apperror.NewReferential("document", doc.ID).WithCause(err)
	}
	return fmt.Errorf("write %s: %w", documentsTable, err)
}

// Create inserts the header and its items.
func (r *DocumentRepo) Create(ctx context.Context, doc *documents.Document) error {
	sql, args, err := r.Builder().
		Insert(documentsTable).
		SetMap(headerOf(doc)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return mapWriteErr(err, doc)
	}
	return r.saveItems(ctx, doc.ID, doc.Items)
}

// Update replaces header and items with optimistic locking.
func (r *DocumentRepo) Update(ctx context.Context, doc *documents.Document) error {
	// id, created_at and the type never change; version is managed here
	data := headerOf(doc, "id", "created_at", "document_type", "version")

	sql, args, err := r.Builder().
		Update(documentsTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": doc.ID}).
		Where(squirrel.Eq{"version": doc.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteErr(err, doc)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("document", doc.ID)
	}
	return r.saveItems(ctx, doc.ID, doc.Items)
}

// MarkFinalized persists the finalized flag with the version check.
func (r *DocumentRepo) MarkFinalized(ctx context.Context, doc *documents.Document) error {
	sql, args, err := r.Builder().
		Update(documentsTable).
		Set("finalized", true).
		Set("finalized_at", doc.FinalizedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": doc.ID}).
		Where(squirrel.Eq{"version": doc.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build finalize: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("finalize %s: %w", documentsTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("document", doc.ID)
	}
	return nil
}

// SetDeletionMark soft-deletes or restores a document. Items stay in place.
func (r *DocumentRepo) SetDeletionMark(ctx context.Context, docID id.ID, marked bool) error {
	sql, args, err := r.Builder().
		Update(documentsTable).
		Set("deletion_mark", marked).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build deletion mark: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark %s: %w", documentsTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("document", docID.String())
	}
	return nil
}

func (r *DocumentRepo) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(documentCols...).
		From(documentsTable)
}

// GetByID loads a document with items, soft-deleted ones included.
func (r *DocumentRepo) GetByID(ctx context.Context, docID id.ID) (*documents.Document, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": docID}), docID)
}

// GetForUpdate is GetByID with a row lock on the header.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, docID id.ID) (*documents.Document, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": docID}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, docID)
}

func (r *DocumentRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, docID id.ID) (*documents.Document, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	doc := new(documents.Document)
	if err := pgxscan.Get(ctx, r.querier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("document", docID.String())
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	items, err := r.loadItems(ctx, []id.ID{doc.ID})
	if err != nil {
		return nil, err
	}
	doc.Items = items[doc.ID]
	return doc, nil
}

// ExistsByNumber reports whether another document of the type has the number.
// Soft-deleted documents still hold their number.
func (r *DocumentRepo) ExistsByNumber(ctx context.Context, t documents.DocumentType, number string, excludeID id.ID) (bool, error) {
	q := r.Builder().
		Select("1").
		From(documentsTable).
		Where(squirrel.Eq{"document_type": t, "number": number}).
		Limit(1)
	if !id.IsNil(excludeID) {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var one int
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&one); err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("exists by number: %w", err)
	}
	return true, nil
}

// List retrieves documents matching filter.
func (r *DocumentRepo) List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[*documents.Document], error) {
	result := domain.ListResult[*documents.Document]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q, err := r.listQuery(filter)
	if err != nil {
		return result, err
	}

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy...)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}

	if filter.WithItems && len(result.Items) > 0 {
		ids := make([]id.ID, len(result.Items))
		for i, d := range result.Items {
			ids[i] = d.ID
		}
		items, err := r.loadItems(ctx, ids)
		if err != nil {
			return result, err
		}
		for _, d := range result.Items {
			d.Items = items[d.ID]
		}
	}

	return result, nil
}

// listQuery applies every filter except ordering and paging.
func (r *DocumentRepo) listQuery(filter documents.ListFilter) (squirrel.SelectBuilder, error) {
	return ApplyFilter(r.baseSelect(), filter)
}

// ApplyFilter adds the WHERE clauses of filter to a query over doc_documents.
// Ordering and paging are left to the caller.
func ApplyFilter(q squirrel.SelectBuilder, filter documents.ListFilter) (squirrel.SelectBuilder, error) {
	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			if !t.IsValid() {
				return q, apperror.NewFieldValidation("types", fmt.Sprintf("unknown document type %q", t))
			}
			types[i] = string(t)
		}
		q = q.Where(squirrel.Eq{"document_type": types})
	}
	if filter.Finalized != nil {
		q = q.Where(squirrel.Eq{"finalized": *filter.Finalized})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": filter.DateFrom.UTC()})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": filter.DateTo.UTC()})
	}
	if filter.ProductID != nil {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM "+itemsTable+" i WHERE i.document_id = "+documentsTable+".id AND i.product_id = ?)",
			*filter.ProductID,
		))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	return q, nil
}

// parseOrderBy maps the public sort keys to columns. Ties fall back to
// creation order so equal dates keep entry order.
func parseOrderBy(orderBy string) ([]string, error) {
	switch strings.TrimSpace(orderBy) {
	case "", "date", "+date":
		return []string{"date ASC", "created_at ASC", "id ASC"}, nil
	case "-date":
		return []string{"date DESC", "created_at DESC", "id DESC"}, nil
	case "number", "+number":
		return []string{"number ASC", "id ASC"}, nil
	case "-number":
		return []string{"number DESC", "id DESC"}, nil
	}
	return nil, apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
}

package document_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anbar/internal/core/id"
	"anbar/internal/domain/documents"
	"anbar/internal/infrastructure/storage/postgres"
)

var errNoTx = errors.New("document items require a transaction")

type itemRow struct {
	DocumentID id.ID `db:"document_id"`
	documents.Item
}

// loadItems returns the items of every document in docIDs, keyed by document
// and ordered by line number.
func (r *DocumentRepo) loadItems(ctx context.Context, docIDs []id.ID) (map[id.ID][]documents.Item, error) {
	cols := append([]string{"document_id"}, itemCols...)
	sql, args, err := r.Builder().
		Select(cols...).
		From(itemsTable).
		Where(squirrel.Eq{"document_id": docIDs}).
		OrderBy("document_id", "line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var rows []itemRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	out := make(map[id.ID][]documents.Item, len(docIDs))
	for _, row := range rows {
		out[row.DocumentID] = append(out[row.DocumentID], row.Item)
	}
	return out, nil
}

// saveItems replaces the items of a document in one batch. It must run inside
// the transaction that writes the header.
func (r *DocumentRepo) saveItems(ctx context.Context, docID id.ID, items []documents.Item) error {
	if r.txManager.GetTx(ctx) == nil {
		return errNoTx
	}

	sql, args, err := r.Builder().
		Delete(itemsTable).
		Where(squirrel.Eq{"document_id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build items delete: %w", err)
	}
	queries := []postgres.BatchQuery{{SQL: sql, Args: args}}

	if len(items) > 0 {
		sql, args, err = r.insertItemsQuery(docID, items).ToSql()
		if err != nil {
			return fmt.Errorf("build items insert: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	if err := postgres.NewBatchExecutor(r.txManager).ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("save items: %w", err)
	}
	return nil
}

func (r *DocumentRepo) insertItemsQuery(docID id.ID, items []documents.Item) squirrel.InsertBuilder {
	q := r.Builder().
		Insert(itemsTable).
		Columns("document_id", "line_no", "product_id", "quantity", "unit_price", "total_price", "direction", "description")
	for _, it := range items {
		q = q.Values(docID, it.LineNo, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice, string(it.Direction), it.Description)
	}
	return q
}

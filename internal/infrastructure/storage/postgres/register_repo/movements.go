// Package register_repo provides the PostgreSQL implementation of the
// inventory movement register.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anbar/internal/core/entity"
	"anbar/internal/core/id"
	"anbar/internal/domain/registers/movements"
	"anbar/internal/infrastructure/storage/postgres"
)

const movementsTable = "reg_inventory_movements"

var movementCols = postgres.ExtractDBColumns[entity.InventoryMovement]()

// MovementRepo implements movements.Repository.
type MovementRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewMovementRepo creates a new movement register repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *MovementRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func rowOf(m entity.InventoryMovement) []any {
	return []any{
		m.LineID, m.DocumentID, m.DocumentType, m.DocumentNumber, m.DocumentVersion,
		m.LineNo, m.ProductID, string(m.MovementType),
		m.Quantity, m.UnitPrice, m.TotalPrice, m.Date, m.CreatedAt,
	}
}

// CreateMovements batch inserts movements.
func (r *MovementRepo) CreateMovements(ctx context.Context, list []entity.InventoryMovement) error {
	if len(list) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		rows := make([][]any, 0, len(list))
		for _, m := range list {
			rows = append(rows, rowOf(m))
		}
		inserter := postgres.NewBatchInserter(r.txManager)
		if _, err := inserter.CopyFromSlice(ctx, movementsTable, movementCols, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	sql, args, err := r.insertQuery(list).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

func (r *MovementRepo) insertQuery(list []entity.InventoryMovement) squirrel.InsertBuilder {
	q := r.builder.Insert(movementsTable).Columns(movementCols...)
	for _, m := range list {
		q = q.Values(rowOf(m)...)
	}
	return q
}

// DeleteByDocument removes all movements of a document.
func (r *MovementRepo) DeleteByDocument(ctx context.Context, documentID id.ID) (int64, error) {
	sql, args, err := r.builder.Delete(movementsTable).
		Where(squirrel.Eq{"document_id": documentID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete movements: %w", err)
	}
	return result.RowsAffected(), nil
}

// ListByDocument returns a document's movements by line number.
func (r *MovementRepo) ListByDocument(ctx context.Context, documentID id.ID) ([]entity.InventoryMovement, error) {
	q := r.builder.Select(movementCols...).
		From(movementsTable).
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("line_no")
	return r.selectMovements(ctx, q)
}

// ListByProduct returns a product's movements in date order.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID id.ID, filter movements.MovementFilter) ([]entity.InventoryMovement, error) {
	return r.selectMovements(ctx, r.historyQuery(productID, filter))
}

func (r *MovementRepo) historyQuery(productID id.ID, filter movements.MovementFilter) squirrel.SelectBuilder {
	q := r.builder.Select(movementCols...).
		From(movementsTable).
		Where(squirrel.Eq{"product_id": productID})

	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		q = q.Where(squirrel.Eq{"movement_type": types})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.ToDate})
	}

	q = q.OrderBy("date", "created_at", "line_no")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

func (r *MovementRepo) selectMovements(ctx context.Context, q squirrel.SelectBuilder) ([]entity.InventoryMovement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var list []entity.InventoryMovement
	if err := pgxscan.Select(ctx, r.querier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return list, nil
}

// Balances sums signed quantities per product.
func (r *MovementRepo) Balances(ctx context.Context, filter movements.BalanceFilter) ([]entity.StockBalance, error) {
	sql, args, err := r.balancesQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	if err := pgxscan.Select(ctx, r.querier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}
	return balances, nil
}

func (r *MovementRepo) balancesQuery(filter movements.BalanceFilter) squirrel.SelectBuilder {
	q := r.builder.Select(
		"product_id",
		"SUM(quantity) AS quantity",
		"MAX(date) AS last_movement_at",
	).From(movementsTable)

	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductIDs})
	}
	if filter.AsOf != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.AsOf})
	}

	q = q.GroupBy("product_id")
	if filter.ExcludeZero {
		q = q.Having("SUM(quantity) <> 0")
	}
	return q.OrderBy("product_id")
}

const turnoverSQL = `
	SELECT
		COALESCE(SUM(quantity) FILTER (WHERE date < $2), 0) AS opening,
		COALESCE(SUM(quantity) FILTER (WHERE date >= $2 AND quantity > 0), 0) AS incoming,
		COALESCE(-SUM(quantity) FILTER (WHERE date >= $2 AND quantity < 0), 0) AS outgoing
	FROM reg_inventory_movements
	WHERE product_id = $1 AND date <= $3
`

// Turnover aggregates a product's movements over [FromDate, ToDate].
func (r *MovementRepo) Turnover(ctx context.Context, filter movements.TurnoverFilter) (movements.Turnover, error) {
	result := movements.Turnover{ProductID: filter.ProductID}

	err := r.querier(ctx).
		QueryRow(ctx, turnoverSQL, filter.ProductID, filter.FromDate, filter.ToDate).
		Scan(&result.OpeningBalance, &result.Incoming, &result.Outgoing)
	if err != nil {
		return result, fmt.Errorf("calculate turnover: %w", err)
	}

	result.ClosingBalance = result.OpeningBalance.Add(result.Incoming).Sub(result.Outgoing)
	return result, nil
}

// Ensure interface compliance.
var _ movements.Repository = (*MovementRepo)(nil)

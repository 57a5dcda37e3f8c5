package register_repo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anbar/internal/core/entity"
	"anbar/internal/core/id"
	"anbar/internal/domain/registers/movements"
)

func TestBalancesQuery(t *testing.T) {
	repo := NewMovementRepo(nil)
	p := id.New()
	asOf := time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC)

	sql, args, err := repo.balancesQuery(movements.BalanceFilter{
		ProductIDs:  []id.ID{p},
		ExcludeZero: true,
		AsOf:        &asOf,
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT product_id, SUM(quantity) AS quantity, MAX(date) AS last_movement_at FROM reg_inventory_movements"+
			" WHERE product_id IN ($1) AND date <= $2 GROUP BY product_id HAVING SUM(quantity) <> 0 ORDER BY product_id",
		sql)
	assert.Equal(t, []any{p, asOf}, args)
}

func TestBalancesQuery_NoFilter(t *testing.T) {
	repo := NewMovementRepo(nil)

	sql, args, err := repo.balancesQuery(movements.BalanceFilter{}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "WHERE")
	assert.NotContains(t, sql, "HAVING")
	assert.Empty(t, args)
}

func TestHistoryQuery(t *testing.T) {
	repo := NewMovementRepo(nil)
	p := id.New()

	sql, args, err := repo.historyQuery(p, movements.MovementFilter{
		Types: []entity.MovementType{entity.MovementSale},
		Limit: 20,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE product_id = $1 AND movement_type IN ($2)")
	assert.Contains(t, sql, "ORDER BY date, created_at, line_no LIMIT 20")
	assert.Equal(t, []any{p.String(), "SALE"}, args)
}

func TestInsertQuery_ColumnsMatchRow(t *testing.T) {
	repo := NewMovementRepo(nil)
	m := entity.NewInventoryMovement(id.New(), "SALE_INVOICE", "SI-00001", 1, 1,
		id.New(), entity.MovementSale, decimal.NewFromInt(3), decimal.NewFromInt(50), time.Now().UTC())

	sql, args, err := repo.insertQuery([]entity.InventoryMovement{m}).ToSql()
	require.NoError(t, err)

	assert.Len(t, movementCols, 13)
	assert.Len(t, args, len(movementCols))
	assert.Contains(t, sql, "INSERT INTO reg_inventory_movements (line_id,document_id,document_type")
	assert.True(t, decimal.NewFromInt(-3).Equal(args[8].(decimal.Decimal)))
}

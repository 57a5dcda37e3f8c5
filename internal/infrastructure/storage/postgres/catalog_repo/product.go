package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"anbar/internal/core/apperror"
	"anbar/internal/domain/catalogs/product"
	"anbar/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			productTable,
			"product",
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// FindByBarcode retrieves a live product by barcode.
func (r *ProductRepo) FindByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"barcode": barcode}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.findOne(ctx, q, barcode)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", barcode)
		}
		return nil, err
	}
	return item, nil
}

// FindLowStock retrieves live products whose register balance is below their
// minimum stock.
func (r *ProductRepo) FindLowStock(ctx context.Context, limit int) ([]*product.Product, error) {
	cols := make([]string, 0, len(r.selectCols))
	for _, c := range r.selectCols {
		cols = append(cols, "p."+c)
	}

	q := r.Builder().
		Select(cols...).
		From(productTable + " p").
		LeftJoin("(SELECT product_id, SUM(quantity) AS quantity FROM reg_inventory_movements GROUP BY product_id) b ON b.product_id = p.id").
		Where(squirrel.Eq{"p.deletion_mark": false}).
		Where(squirrel.NotEq{"p.min_stock": nil}).
		Where("COALESCE(b.quantity, 0) < p.min_stock").
		OrderBy("p.name ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("find low stock: %w", err)
	}
	return items, nil
}

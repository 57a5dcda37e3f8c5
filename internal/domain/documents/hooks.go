package documents

import (
	"context"
	"fmt"

	"anbar/internal/core/entity"
	"anbar/internal/core/id"
	"anbar/internal/domain"
	"anbar/internal/domain/registers/movements"
	"anbar/pkg/logger"
)

// StockReader reports register balances.
type StockReader interface {
	Balances(ctx context.Context, filter movements.BalanceFilter) ([]entity.StockBalance, error)
}

// WarnNegativeStock returns an after-finalize hook that logs a warning for
// every product an outgoing line left below zero in the register.
func WarnNegativeStock(stock StockReader) domain.Hook[*Document] {
	return func(ctx context.Context, doc *Document) error {
		var issued []id.ID
		for _, it := range doc.Items {
			if it.MovementType(doc.Type).IsOutgoing() {
				issued = append(issued, it.ProductID)
			}
		}
		if len(issued) == 0 {
			return nil
		}

		balances, err := stock.Balances(ctx, movements.BalanceFilter{ProductIDs: id.Unique(issued)})
		if err != nil {
			return fmt.Errorf("load balances: %w", err)
		}
		for _, b := range balances {
			if b.Quantity.IsNegative() {
				logger.Warn(ctx, "stock below zero after finalize",
					"document_id", doc.ID,
					"number", doc.Number,
					"product_id", b.ProductID,
					"quantity", b.Quantity.String(),
				)
			}
		}
		return nil
	}
}

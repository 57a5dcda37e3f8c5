package documents

import (
	"fmt"

	"anbar/internal/core/entity"
)

// ProjectMovements derives exactly one inventory movement per line item. The
// quantity sign follows the movement type: SALE and ADJUSTMENT_OUT are
// negative, everything else positive. Movements carry the document date.
func ProjectMovements(d *Document) ([]entity.InventoryMovement, error) {
	out := make([]entity.InventoryMovement, 0, len(d.Items))
	for _, it := range d.Items {
		mt := it.MovementType(d.Type)
		if !mt.IsValid() {
			return nil, fmt.Errorf("document %s: no movement type for %s", d.ID, d.Type)
		}

		m := entity.NewInventoryMovement(
			d.ID, string(d.Type), d.Number, d.Version, it.LineNo,
			it.ProductID, mt, it.Quantity, it.UnitPrice, d.Date,
		)
		if err := m.CheckSign(); err != nil {
			return nil, fmt.Errorf("document %s line %d: %w", d.ID, it.LineNo, err)
		}
		out = append(out, m)
	}
	return out, nil
}

package numerator

import (
	"context"
	"time"
)

// Generator generates sequential document numbers.
// Implementations live in the infrastructure layer.
type Generator interface {
	// GetNextNumber generates the next document number.
	// Pattern: PREFIX-JYEAR-XXXXX (e.g., PI-1403-00001). The period instant is
	// mapped to its Jalaali year in Asia/Tehran.
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber sets the current sequence value (used by data imports).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}

// Package types provides common type aliases and utilities.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity is a stock quantity. Fractional quantities (kg, m) are allowed.
type Quantity = decimal.Decimal

// Epsilon is the magnitude below which running balances are treated as zero.
var Epsilon = decimal.New(1, -9)

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// SnapToZero returns zero when d is within Epsilon of zero.
func SnapToZero(d decimal.Decimal) decimal.Decimal {
	if d.Abs().LessThan(Epsilon) {
		return decimal.Zero
	}
	return d
}

// SafeDiv divides a by b, returning zero when b is not positive.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if !b.IsPositive() {
		return decimal.Zero
	}
	return a.Div(b)
}

// Scale is the number of fractional digits stored for quantities and unit
// prices. Line totals are stored at twice the scale so qty x price is exact.
const Scale = 4

// CheckScale fails when d carries significant digits beyond Scale places.
func CheckScale(d decimal.Decimal) error {
	if d.Exponent() < -Scale && !d.Equal(d.Truncate(Scale)) {
		return fmt.Errorf("%s has more than %d decimal places", d.String(), Scale)
	}
	return nil
}

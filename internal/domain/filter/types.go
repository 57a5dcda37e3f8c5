// Package filter describes ad-hoc list conditions passed as JSON in the
// "filter" query parameter, e.g. [{"field":"unit","operator":"eq","value":"kg"}].
package filter

import "fmt"

// ComparisonType is the comparison applied to a field.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	Less           ComparisonType = "lt"
	LessOrEqual    ComparisonType = "lte"
	Greater        ComparisonType = "gt"
	GreaterOrEqual ComparisonType = "gte"
	InList         ComparisonType = "in"
	NotInList      ComparisonType = "nin"
	Contains       ComparisonType = "contains"  // ILIKE %value%
	NotContains    ComparisonType = "ncontains" // NOT ILIKE %value%
	IsNull         ComparisonType = "null"
	IsNotNull      ComparisonType = "not_null"
)

// IsValid reports whether c is a known operator.
func (c ComparisonType) IsValid() bool {
	switch c {
	case Equal, NotEqual, Less, LessOrEqual, Greater, GreaterOrEqual,
		InList, NotInList, Contains, NotContains, IsNull, IsNotNull:
		return true
	}
	return false
}

// Item is one condition.
type Item struct {
	Field    string         `json:"field"` // column name (snake_case)
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}

// Validate checks the operator and that a value is present where one is needed.
func (i Item) Validate() error {
	if i.Field == "" {
		return fmt.Errorf("filter field is required")
	}
	if !i.Operator.IsValid() {
		return fmt.Errorf("unknown filter operator %q", i.Operator)
	}
	if i.Value == nil && i.Operator != IsNull && i.Operator != IsNotNull {
		return fmt.Errorf("filter on %s requires a value", i.Field)
	}
	return nil
}

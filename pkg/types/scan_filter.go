package types

import (
	"fmt"
	"strings"

	"gorm.io/gorm/clause"
)

type ScanFilterOperator string

const (
	ScanFilterOperatorEq        ScanFilterOperator = "eq"
	ScanFilterOperatorNotEq     ScanFilterOperator = "not_eq"
	ScanFilterOperatorLt        ScanFilterOperator = "lt"
	ScanFilterOperatorLte       ScanFilterOperator = "lte"
	ScanFilterOperatorGt        ScanFilterOperator = "gt"
	ScanFilterOperatorGte       ScanFilterOperator = "gte"
	ScanFilterOperatorRange     ScanFilterOperator = "range"
	ScanFilterOperatorIn        ScanFilterOperator = "in"
	ScanFilterOperatorAnyOf     ScanFilterOperator = "any_of"
)

// ScanFilter is one predicate of an admin scan request. The "any_of"
// operator ORs the nested Filters and ignores Field/Values.
type ScanFilter struct {
	Field    string             `json:"field"`
	Operator ScanFilterOperator `json:"operator"`
	Values   []any              `json:"values"`
	Filters  []*ScanFilter      `json:"filters"`
}

// Build constructs the GORM expression for the predicate.
func (f *ScanFilter) Build(builder clause.Builder) {
	if f.Operator == ScanFilterOperatorAnyOf {
		if len(f.Filters) == 0 {
			return
		}
		exprs := make([]clause.Expression, 0, len(f.Filters))
		for _, nested := range f.Filters {
			exprs = append(exprs, nested)
		}
		clause.Or(exprs...).Build(builder)
		return
	}

	if len(f.Values) == 0 {
		return
	}
	value := f.Values[0]

	switch f.Operator {
	case ScanFilterOperatorEq:
		// Metadata filters arrive as JSON path fields (-> / ->>).
		if strings.Contains(f.Field, "->") {
			clause.Expr{SQL: fmt.Sprintf("%s = ?", f.Field), Vars: []interface{}{value}}.Build(builder)
		} else {
			clause.Eq{Column: f.Field, Value: value}.Build(builder)
		}
	case ScanFilterOperatorNotEq:
		clause.NotConditions{Exprs: []clause.Expression{clause.Eq{Column: f.Field, Value: value}}}.Build(builder)
	case ScanFilterOperatorLt:
		clause.Lt{Column: f.Field, Value: value}.Build(builder)
	case ScanFilterOperatorLte:
		clause.Lte{Column: f.Field, Value: value}.Build(builder)
	case ScanFilterOperatorGt:
		clause.Gt{Column: f.Field, Value: value}.Build(builder)
	case ScanFilterOperatorGte:
		clause.Gte{Column: f.Field, Value: value}.Build(builder)
	case ScanFilterOperatorRange:
		if len(f.Values) < 2 {
			return
		}
		clause.And(
			clause.Gte{Column: f.Field, Value: f.Values[0]},
			clause.Lte{Column: f.Field, Value: f.Values[1]},
		).Build(builder)
	case ScanFilterOperatorIn:
		clause.IN{Column: f.Field, Values: f.Values}.Build(builder)
	default:
		return
	}
}

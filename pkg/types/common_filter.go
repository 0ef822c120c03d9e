package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

// ErrFieldNotAllowed rejects filters on columns outside the caller's whitelist.
var ErrFieldNotAllowed = errors.New("filter field not allowed")

type CommonFilterOperator string

const (
	CommonFilterOperatorEq       CommonFilterOperator = "eq"
	CommonFilterOperatorNotEq    CommonFilterOperator = "not_eq"
	CommonFilterOperatorLt       CommonFilterOperator = "lt"
	CommonFilterOperatorLte      CommonFilterOperator = "lte"
	CommonFilterOperatorGt       CommonFilterOperator = "gt"
	CommonFilterOperatorGte      CommonFilterOperator = "gte"
	CommonFilterOperatorRange    CommonFilterOperator = "range"
	CommonFilterOperatorIn       CommonFilterOperator = "in"
	CommonFilterOperatorContains CommonFilterOperator = "contains"
	CommonFilterOperatorIsNull   CommonFilterOperator = "is_null"
)

type CommonFilter struct {
	Field    string               `json:"field"`
	Operator CommonFilterOperator `json:"operator"`
	Values   []any                `json:"values"`
}

// Build constructs a GORM expression.
func (f *CommonFilter) Build(builder clause.Builder) {
	if f.Operator == CommonFilterOperatorIsNull {
		clause.Eq{Column: f.Field, Value: nil}.Build(builder)
		return
	}
	if len(f.Values) == 0 {
		builder.WriteString("1=1")
		return
	}

	value := f.Values[0]

	switch f.Operator {
	case CommonFilterOperatorEq:
		clause.Eq{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorNotEq:
		clause.Neq{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorLt:
		clause.Lt{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorLte:
		clause.Lte{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorGt:
		clause.Gt{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorGte:
		clause.Gte{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorRange:
		if len(f.Values) < 2 {
			builder.WriteString("1=1")
			return
		}
		clause.And(clause.Gte{Column: f.Field, Value: f.Values[0]}, clause.Lte{Column: f.Field, Value: f.Values[1]}).Build(builder)
	case CommonFilterOperatorIn:
		clause.IN{Column: f.Field, Values: f.Values}.Build(builder)
	case CommonFilterOperatorContains:
		pattern := "%" + strings.ToLower(fmt.Sprint(value)) + "%"
		clause.Expr{SQL: "LOWER(?) LIKE ?", Vars: []any{clause.Column{Name: f.Field}, pattern}}.Build(builder)
	default:
		builder.WriteString("1=1")
	}
}

// FiltersAnd combines filters into a single expression. An empty list matches everything.
type FiltersAnd []*CommonFilter

func (fs FiltersAnd) Build(builder clause.Builder) {
	if len(fs) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(fs))
	for _, f := range fs {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// CheckFields rejects filters on columns outside allowed. Filter fields end up as SQL identifiers.
func CheckFields(filters []*CommonFilter, allowed []string) error {
	for _, f := range filters {
		if f == nil {
			continue
		}
		if !lo.Contains(allowed, f.Field) {
			return fmt.Errorf("%w: %q", ErrFieldNotAllowed, f.Field)
		}
	}
	return nil
}

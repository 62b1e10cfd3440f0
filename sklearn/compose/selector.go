// Package compose routes each column of a Dataset to the preprocessing branch
// matching its declared dtype and stacks the branch outputs into one matrix.
package compose

import (
	"fmt"

	"github.com/YuminosukeSato/tabprep/dataset"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// Role is the preprocessing branch a column is routed to.
type Role uint8

const (
	RoleNumeric Role = iota
	RoleCategorical
)

func (r Role) String() string {
	switch r {
	case RoleNumeric:
		return "numeric"
	case RoleCategorical:
		return "categorical"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// Plan is the column partition computed from a schema. Numeric and
// Categorical are disjoint, cover every column, and keep dataset order.
type Plan struct {
	Numeric     []string
	Categorical []string
	Roles       map[string]Role
}

// Len returns the number of planned input columns.
func (p Plan) Len() int { return len(p.Numeric) + len(p.Categorical) }

// Selector picks column names out of a schema.
type Selector func(schema dataset.Schema) []string

// MakeColumnSelector returns a Selector keeping the columns whose dtype is
// one of dtypes, in schema order.
func MakeColumnSelector(dtypes ...dataset.DType) Selector {
	include := make(map[dataset.DType]bool, len(dtypes))
	for _, d := range dtypes {
		include[d] = true
	}
	return func(schema dataset.Schema) []string {
		var names []string
		for _, f := range schema {
			if include[f.DType] {
				names = append(names, f.Name)
			}
		}
		return names
	}
}

var (
	selectNumeric = MakeColumnSelector(
		dataset.Float64, dataset.Float32, dataset.Int64, dataset.Int32, dataset.Int, dataset.Bool)
	selectCategorical = MakeColumnSelector(dataset.Object, dataset.String, dataset.Category)
)

// ClassifyColumns assigns every column of schema a Role. A column whose dtype
// is neither numeric nor categorical is a SchemaError.
func ClassifyColumns(schema dataset.Schema) (Plan, error) {
	for _, f := range schema {
		if !f.DType.Known() {
			return Plan{}, errors.NewSchemaError("ClassifyColumns", f.Name,
				fmt.Sprintf("unsupported dtype %q", f.DType))
		}
	}

	plan := Plan{
		Numeric:     selectNumeric(schema),
		Categorical: selectCategorical(schema),
		Roles:       make(map[string]Role, len(schema)),
	}
	for _, n := range plan.Numeric {
		plan.Roles[n] = RoleNumeric
	}
	for _, n := range plan.Categorical {
		plan.Roles[n] = RoleCategorical
	}
	return plan, nil
}

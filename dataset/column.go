package dataset

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// Column is a named, typed sequence of cells.
type Column struct {
	Name   string
	DType  DType
	Values []Value
}

// NewColumn validates that values agree with dtype: numeric dtypes hold only
// numbers or missing cells, categorical dtypes only text or missing cells.
// Columns with an unrecognized dtype are accepted here and rejected by the
// column classifier, which is where roles are decided.
func NewColumn(name string, dtype DType, values []Value) (*Column, error) {
	if name == "" {
		return nil, errors.NewSchemaError("NewColumn", "", "column name must not be empty")
	}
	for i, v := range values {
		if v.IsNumber() && math.IsNaN(v.Num) {
			values[i] = Missing()
			continue
		}
		if v.IsMissing() {
			continue
		}
		switch {
		case dtype.IsNumeric() && !v.IsNumber():
			return nil, errors.NewSchemaError("NewColumn", name,
				fmt.Sprintf("row %d holds %s value %q but dtype is %s", i, v.Kind, v.String(), dtype))
		case dtype.IsCategorical() && !v.IsText():
			return nil, errors.NewSchemaError("NewColumn", name,
				fmt.Sprintf("row %d holds %s value %q but dtype is %s", i, v.Kind, v.String(), dtype))
		}
	}
	return &Column{Name: name, DType: dtype, Values: values}, nil
}

// MustColumn is NewColumn that panics on error, for literals in tests and examples.
func MustColumn(name string, dtype DType, values []Value) *Column {
	c, err := NewColumn(name, dtype, values)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Values) }

// CountMissing returns the number of missing cells.
func (c *Column) CountMissing() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// Take returns a new column holding the cells at indices, in that order.
func (c *Column) Take(indices []int) *Column {
	values := make([]Value, len(indices))
	for i, idx := range indices {
		values[i] = c.Values[idx]
	}
	return &Column{Name: c.Name, DType: c.DType, Values: values}
}

// Clone returns a deep copy.
func (c *Column) Clone() *Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return &Column{Name: c.Name, DType: c.DType, Values: values}
}

// Rename returns a copy of c under a new name.
func (c *Column) Rename(name string) *Column {
	out := c.Clone()
	out.Name = name
	return out
}

// NewFloatColumn builds a float64 column. NaN entries become missing cells.
func NewFloatColumn(name string, xs []float64) *Column {
	values := make([]Value, len(xs))
	for i, x := range xs {
		values[i] = Num(x)
	}
	return &Column{Name: name, DType: Float64, Values: values}
}

// NewStringColumn builds an object column; entries equal to na become missing cells.
func NewStringColumn(name string, xs []string, na string) *Column {
	return &Column{Name: name, DType: Object, Values: Texts(na, xs...)}
}

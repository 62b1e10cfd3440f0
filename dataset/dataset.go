// Package dataset holds the in-memory tabular model consumed by the
// preprocessing estimators: typed columns of cells with an explicit missing
// sentinel, and a Dataset that keeps columns aligned by row.
package dataset

import (
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// Field is one entry of a Schema.
type Field struct {
	Name  string
	DType DType
}

// Schema is the ordered list of column declarations of a Dataset.
type Schema []Field

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the dtype declared for name.
func (s Schema) Lookup(name string) (DType, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.DType, true
		}
	}
	return "", false
}

// Equal reports whether both schemas declare the same columns in the same order.
func (s Schema) Equal(o Schema) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Dataset is an ordered set of uniquely named columns of equal length.
// Methods never modify the receiver; derived datasets share no cell storage
// with it unless documented otherwise.
type Dataset struct {
	columns []*Column
	index   map[string]int
	nRows   int
}

// New builds a Dataset. Column names must be unique and non-empty and all
// columns must have the same length.
func New(columns ...*Column) (*Dataset, error) {
	ds := &Dataset{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c == nil || c.Name == "" {
			return nil, errors.NewSchemaError("dataset.New", "", "column name must not be empty")
		}
		if _, dup := ds.index[c.Name]; dup {
			return nil, errors.NewSchemaError("dataset.New", c.Name, "duplicate column name")
		}
		if i == 0 {
			ds.nRows = c.Len()
		} else if c.Len() != ds.nRows {
			return nil, errors.NewShapeMismatchError("dataset.New", "rows of column '"+c.Name+"'", ds.nRows, c.Len())
		}
		ds.index[c.Name] = len(ds.columns)
		ds.columns = append(ds.columns, c)
	}
	return ds, nil
}

// MustNew is New that panics on error.
func MustNew(columns ...*Column) *Dataset {
	ds, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return ds
}

// NRows returns the row count.
func (d *Dataset) NRows() int { return d.nRows }

// NCols returns the column count.
func (d *Dataset) NCols() int { return len(d.columns) }

// Dims returns rows and columns, mirroring mat.Matrix.
func (d *Dataset) Dims() (int, int) { return d.nRows, len(d.columns) }

// Columns returns the columns in order. The slice is a copy; the columns are not.
func (d *Dataset) Columns() []*Column {
	out := make([]*Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// Column returns the column called name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.columns[i], true
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Schema returns the column declarations in order.
func (d *Dataset) Schema() Schema {
	s := make(Schema, len(d.columns))
	for i, c := range d.columns {
		s[i] = Field{Name: c.Name, DType: c.DType}
	}
	return s
}

// Take returns a new Dataset holding rows at indices, in that order.
func (d *Dataset) Take(indices []int) *Dataset {
	out := &Dataset{
		columns: make([]*Column, len(d.columns)),
		index:   make(map[string]int, len(d.columns)),
		nRows:   len(indices),
	}
	for i, c := range d.columns {
		out.columns[i] = c.Take(indices)
		out.index[c.Name] = i
	}
	return out
}

// Drop returns a Dataset without the named columns. Unknown names are a SchemaError.
func (d *Dataset) Drop(names ...string) (*Dataset, error) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := d.index[n]; !ok {
			return nil, errors.NewSchemaError("Dataset.Drop", n, "column not found")
		}
		drop[n] = true
	}
	kept := make([]*Column, 0, len(d.columns))
	for _, c := range d.columns {
		if !drop[c.Name] {
			kept = append(kept, c)
		}
	}
	return d.rebuild(kept), nil
}

// Select returns a Dataset with only the named columns, in the given order.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, ok := d.Column(n)
		if !ok {
			return nil, errors.NewSchemaError("Dataset.Select", n, "column not found")
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// WithColumn returns a Dataset with c appended, or replacing the column of the same name.
func (d *Dataset) WithColumn(c *Column) (*Dataset, error) {
	if d.NCols() > 0 && c.Len() != d.nRows {
		return nil, errors.NewShapeMismatchError("Dataset.WithColumn", "rows of column '"+c.Name+"'", d.nRows, c.Len())
	}
	cols := d.Columns()
	if i, ok := d.index[c.Name]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return New(cols...)
}

// Pop splits off the named column, typically the label.
func (d *Dataset) Pop(name string) (*Dataset, *Column, error) {
	c, ok := d.Column(name)
	if !ok {
		return nil, nil, errors.NewSchemaError("Dataset.Pop", name, "column not found")
	}
	rest, err := d.Drop(name)
	if err != nil {
		return nil, nil, err
	}
	return rest, c, nil
}

func (d *Dataset) rebuild(cols []*Column) *Dataset {
	out := &Dataset{
		columns: cols,
		index:   make(map[string]int, len(cols)),
		nRows:   d.nRows,
	}
	for i, c := range cols {
		out.index[c.Name] = i
	}
	return out
}

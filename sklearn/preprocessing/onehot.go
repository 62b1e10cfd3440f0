// Package preprocessing provides the per-column categorical encoder and the
// optional numeric scalers used by the column transformer.
package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/dataset"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// FeatureNameSeparator joins a column name and a category in output labels.
const FeatureNameSeparator = "::"

// OneHotEncoder maps one categorical column to k indicator columns, one per
// category seen during Fit. Categories keep first-seen order. Values not seen
// during Fit, and missing cells, encode as an all-zero row.
type OneHotEncoder struct {
	model.BaseEstimator

	categories []string
	index      map[string]int
}

// NewOneHotEncoder creates an unfitted encoder.
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit learns the ordered set of distinct non-missing text values.
func (e *OneHotEncoder) Fit(values []dataset.Value) error {
	var categories []string
	index := make(map[string]int)
	for i, v := range values {
		if v.IsMissing() {
			continue
		}
		s, ok := v.TextValue()
		if !ok {
			return errors.NewSchemaError("OneHotEncoder.Fit", "",
				fmt.Sprintf("row %d holds numeric value %s; categorical values must be text", i, v))
		}
		if _, seen := index[s]; !seen {
			index[s] = len(categories)
			categories = append(categories, s)
		}
	}
	if len(categories) == 0 {
		return errors.NewEmptyColumnError("OneHotEncoder.Fit", "")
	}

	e.categories = categories
	e.index = index
	e.SetFitted()
	return nil
}

// Transform encodes values into an n×k indicator matrix.
func (e *OneHotEncoder) Transform(values []dataset.Value) (*mat.Dense, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if len(values) == 0 {
		return nil, errors.NewValueErrorWrap("OneHotEncoder.Transform", "no rows to encode", errors.ErrEmptyData)
	}
	out := mat.NewDense(len(values), len(e.categories), nil)
	if _, err := e.TransformInto(out, 0, values); err != nil {
		return nil, err
	}
	return out, nil
}

// TransformInto writes the indicator block for values into dst starting at
// column col. dst must already be zeroed in that block. It returns how many
// non-missing values were not seen during Fit.
func (e *OneHotEncoder) TransformInto(dst *mat.Dense, col int, values []dataset.Value) (unknown int, err error) {
	if !e.IsFitted() {
		return 0, errors.NewNotFittedError("OneHotEncoder", "TransformInto")
	}
	r, c := dst.Dims()
	if r != len(values) {
		return 0, errors.NewShapeMismatchError("OneHotEncoder.TransformInto", "rows", r, len(values))
	}
	if col < 0 || col+len(e.categories) > c {
		return 0, errors.NewShapeMismatchError("OneHotEncoder.TransformInto", "columns", col+len(e.categories), c)
	}

	for i, v := range values {
		if v.IsMissing() {
			continue
		}
		j, ok := e.Index(v)
		if !ok {
			unknown++
			continue
		}
		dst.Set(i, col+j, 1)
	}
	return unknown, nil
}

// FitTransform runs Fit then Transform.
func (e *OneHotEncoder) FitTransform(values []dataset.Value) (*mat.Dense, error) {
	if err := e.Fit(values); err != nil {
		return nil, err
	}
	return e.Transform(values)
}

// Index returns the indicator position of v.
func (e *OneHotEncoder) Index(v dataset.Value) (int, bool) {
	s, ok := v.TextValue()
	if !ok {
		return 0, false
	}
	j, ok := e.index[s]
	return j, ok
}

// Categories returns a copy of the learned categories in output order.
func (e *OneHotEncoder) Categories() ([]string, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Categories")
	}
	return append([]string(nil), e.categories...), nil
}

// Width returns the number of indicator columns, 0 if unfitted.
func (e *OneHotEncoder) Width() int { return len(e.categories) }

// FeatureNamesOut returns "<prefix>::<category>" for every indicator column.
func (e *OneHotEncoder) FeatureNamesOut(prefix string) []string {
	names := make([]string, len(e.categories))
	for i, c := range e.categories {
		names[i] = prefix + FeatureNameSeparator + c
	}
	return names
}

// InverseTransform decodes one indicator row. An all-zero row decodes to
// Missing, since unknown and missing inputs are indistinguishable after
// encoding.
func (e *OneHotEncoder) InverseTransform(row []float64) (dataset.Value, error) {
	if !e.IsFitted() {
		return dataset.Missing(), errors.NewNotFittedError("OneHotEncoder", "InverseTransform")
	}
	if len(row) != len(e.categories) {
		return dataset.Missing(), errors.NewShapeMismatchError("OneHotEncoder.InverseTransform", "columns", len(e.categories), len(row))
	}
	for j, x := range row {
		if x == 1 {
			return dataset.Text(e.categories[j]), nil
		}
	}
	return dataset.Missing(), nil
}

// Restore rebuilds a fitted encoder from saved categories.
func (e *OneHotEncoder) Restore(categories []string) error {
	if len(categories) == 0 {
		return errors.NewEmptyColumnError("OneHotEncoder.Restore", "")
	}
	index := make(map[string]int, len(categories))
	for i, c := range categories {
		if _, dup := index[c]; dup {
			return errors.NewValueError("OneHotEncoder.Restore", fmt.Sprintf("duplicate category %q", c))
		}
		index[c] = i
	}
	e.categories = append([]string(nil), categories...)
	e.index = index
	e.SetFitted()
	return nil
}

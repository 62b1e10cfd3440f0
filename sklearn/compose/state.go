package compose

import (
	"fmt"
	"slices"

	"github.com/YuminosukeSato/tabprep/dataset"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/sklearn/impute"
	"github.com/YuminosukeSato/tabprep/sklearn/preprocessing"
)

// ColumnTransformerState is the gob-encodable snapshot of a fitted
// ColumnTransformer. Slices indexed by column follow Numeric and Categorical.
type ColumnTransformerState struct {
	Scaler      ScalerKind
	Schema      []dataset.Field
	Numeric     []string
	Categorical []string

	NumericFill     []dataset.Value
	CategoricalFill []dataset.Value
	Categories      [][]string

	Standard *preprocessing.StandardScalerParams
	MinMax   *preprocessing.MinMaxScalerParams
}

// State returns a snapshot of the fitted parameters.
func (ct *ColumnTransformer) State() (*ColumnTransformerState, error) {
	if !ct.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "State")
	}
	st := &ColumnTransformerState{
		Scaler:      ct.scalerKind,
		Schema:      append([]dataset.Field(nil), ct.schema...),
		Numeric:     append([]string(nil), ct.plan.Numeric...),
		Categorical: append([]string(nil), ct.plan.Categorical...),
	}
	for _, imp := range ct.numImputers {
		fill, _ := imp.FillValue()
		st.NumericFill = append(st.NumericFill, fill)
	}
	for j, imp := range ct.catImputers {
		fill, _ := imp.FillValue()
		st.CategoricalFill = append(st.CategoricalFill, fill)
		cats, _ := ct.encoders[j].Categories()
		st.Categories = append(st.Categories, cats)
	}
	switch s := ct.scaler.(type) {
	case *preprocessing.StandardScaler:
		p := s.Params()
		st.Standard = &p
	case *preprocessing.MinMaxScaler:
		p := s.Params()
		st.MinMax = &p
	}
	return st, nil
}

// Restore replaces the receiver's parameters with st and marks it fitted.
// The plan is recomputed from the stored schema and must agree with it.
func (ct *ColumnTransformer) Restore(st *ColumnTransformerState) error {
	const op = "ColumnTransformer.Restore"
	if st == nil {
		return errors.NewValueError(op, "state is nil")
	}
	plan, err := ClassifyColumns(dataset.Schema(st.Schema))
	if err != nil {
		return err
	}
	if !slices.Equal(plan.Numeric, st.Numeric) || !slices.Equal(plan.Categorical, st.Categorical) {
		return errors.NewValueError(op, "stored column plan does not match stored schema")
	}
	if len(st.NumericFill) != len(st.Numeric) {
		return errors.NewShapeMismatchError(op, "numeric fill values", len(st.Numeric), len(st.NumericFill))
	}
	if len(st.CategoricalFill) != len(st.Categorical) || len(st.Categories) != len(st.Categorical) {
		return errors.NewShapeMismatchError(op, "categorical states", len(st.Categorical), len(st.CategoricalFill))
	}

	ct.reset()
	ct.scalerKind = st.Scaler
	numImputers := make([]*impute.SimpleImputer, len(st.Numeric))
	for j := range st.Numeric {
		numImputers[j] = impute.NewSimpleImputer(impute.StrategyMedian)
		numImputers[j].Restore(st.NumericFill[j])
	}
	catImputers := make([]*impute.SimpleImputer, len(st.Categorical))
	encoders := make([]*preprocessing.OneHotEncoder, len(st.Categorical))
	for j, name := range st.Categorical {
		catImputers[j] = impute.NewSimpleImputer(impute.StrategyMostFrequent)
		catImputers[j].Restore(st.CategoricalFill[j])
		encoders[j] = preprocessing.NewOneHotEncoder()
		if err := encoders[j].Restore(st.Categories[j]); err != nil {
			return columnError(err, name)
		}
	}

	switch {
	case st.Standard != nil:
		s := preprocessing.NewStandardScaler()
		s.Restore(*st.Standard)
		ct.scaler = s
	case st.MinMax != nil:
		m := preprocessing.NewMinMaxScalerDefault()
		m.Restore(*st.MinMax)
		ct.scaler = m
	case st.Scaler != "" && st.Scaler != ScalerNone && len(st.Numeric) > 0:
		return errors.NewValueError(op, fmt.Sprintf("%s scaler parameters are missing", st.Scaler))
	}

	ct.schema = dataset.Schema(st.Schema)
	ct.plan = plan
	ct.numImputers = numImputers
	ct.catImputers = catImputers
	ct.encoders = encoders
	ct.names = featureNames(plan, encoders)
	ct.SetFitted()
	return nil
}

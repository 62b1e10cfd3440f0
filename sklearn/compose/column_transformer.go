package compose

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/dataset"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
	"github.com/YuminosukeSato/tabprep/sklearn/impute"
	"github.com/YuminosukeSato/tabprep/sklearn/preprocessing"
)

// ScalerKind selects the optional scaler applied to the imputed numeric block.
type ScalerKind string

const (
	ScalerNone     ScalerKind = "none"
	ScalerStandard ScalerKind = "standard"
	ScalerMinMax   ScalerKind = "minmax"
)

// ParseScalerKind parses "none", "standard" or "minmax". An empty string is ScalerNone.
func ParseScalerKind(s string) (ScalerKind, error) {
	switch k := ScalerKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", ScalerNone:
		return ScalerNone, nil
	case ScalerStandard, ScalerMinMax:
		return k, nil
	default:
		return ScalerNone, errors.NewValidationError("numeric_scaler", "must be none, standard or minmax", s)
	}
}

// Option configures a ColumnTransformer.
type Option func(*ColumnTransformer)

// WithNumericScaler scales the numeric block after imputation.
func WithNumericScaler(kind ScalerKind) Option {
	return func(ct *ColumnTransformer) {
		ct.scalerKind = kind
	}
}

// WithLogger replaces the default component logger.
func WithLogger(logger log.Logger) Option {
	return func(ct *ColumnTransformer) {
		if logger != nil {
			ct.logger = logger
		}
	}
}

var _ model.DatasetTransformer = (*ColumnTransformer)(nil)

// ColumnTransformer imputes numeric columns with their median, imputes
// categorical columns with their most frequent value and one-hot encodes
// them, then stacks the result as
//
//	[numeric columns in plan order | categorical indicator blocks in plan order]
//
// Every parameter is learned by Fit; Transform applies them unchanged, so
// the output width and column order are the same for every dataset that
// matches the fitted schema.
type ColumnTransformer struct {
	model.BaseEstimator

	scalerKind ScalerKind
	logger     log.Logger

	schema      dataset.Schema
	plan        Plan
	numImputers []*impute.SimpleImputer
	catImputers []*impute.SimpleImputer
	encoders    []*preprocessing.OneHotEncoder
	scaler      model.Transformer
	names       []string
}

// NewColumnTransformer creates an unfitted ColumnTransformer.
//
// 使用例:
//
//	ct := compose.NewColumnTransformer(compose.WithNumericScaler(compose.ScalerStandard))
//	Xtrain, err := ct.FitTransform(train)
//	Xval, err := ct.Transform(val)
func NewColumnTransformer(opts ...Option) *ColumnTransformer {
	ct := &ColumnTransformer{
		scalerKind: ScalerNone,
		logger:     log.GetLoggerWithName("ColumnTransformer"),
	}
	for _, opt := range opts {
		opt(ct)
	}
	return ct
}

// Fit classifies the columns of train and learns every imputer, encoder and
// the optional scaler from it. On error the transformer is left unfitted.
func (ct *ColumnTransformer) Fit(train *dataset.Dataset) (err error) {
	const op = "ColumnTransformer.Fit"
	defer errors.Recover(&err, op)
	start := time.Now()

	ct.reset()
	if train == nil || train.NRows() == 0 || train.NCols() == 0 {
		return errors.NewValueErrorWrap(op, "training dataset has no rows or no columns", errors.ErrEmptyData)
	}

	plan, err := ClassifyColumns(train.Schema())
	if err != nil {
		return err
	}

	numImputers := make([]*impute.SimpleImputer, len(plan.Numeric))
	numeric := mat.NewDense(train.NRows(), max(len(plan.Numeric), 1), nil)
	for j, name := range plan.Numeric {
		col, _ := train.Column(name)
		imp := impute.NewSimpleImputer(impute.StrategyMedian)
		filled, err := imp.FitTransform(col.Values)
		if err != nil {
			return columnError(err, name)
		}
		if err := writeNumeric(numeric, j, name, filled); err != nil {
			return err
		}
		numImputers[j] = imp

		fill, _ := imp.FillValue()
		ct.logger.Debug("Fitted numeric column",
			log.ColumnKey, name,
			log.DataTypeKey, col.DType.String(),
			log.MissingCountKey, col.CountMissing(),
			"fill_value", fill.String(),
		)
	}

	var scaler model.Transformer
	if len(plan.Numeric) > 0 {
		scaler, err = newScaler(ct.scalerKind)
		if err != nil {
			return err
		}
		if scaler != nil {
			if err := scaler.Fit(numeric); err != nil {
				return errors.Wrapf(err, "fit %s scaler", ct.scalerKind)
			}
		}
	}

	catImputers := make([]*impute.SimpleImputer, len(plan.Categorical))
	encoders := make([]*preprocessing.OneHotEncoder, len(plan.Categorical))
	for j, name := range plan.Categorical {
		col, _ := train.Column(name)
		imp := impute.NewSimpleImputer(impute.StrategyMostFrequent)
		filled, err := imp.FitTransform(col.Values)
		if err != nil {
			return columnError(err, name)
		}
		enc := preprocessing.NewOneHotEncoder()
		if err := enc.Fit(filled); err != nil {
			return columnError(err, name)
		}
		catImputers[j] = imp
		encoders[j] = enc

		ct.logger.Debug("Fitted categorical column",
			log.ColumnKey, name,
			log.DataTypeKey, col.DType.String(),
			log.MissingCountKey, col.CountMissing(),
			log.CategoriesKey, enc.Width(),
		)
	}

	ct.schema = train.Schema()
	ct.plan = plan
	ct.numImputers = numImputers
	ct.catImputers = catImputers
	ct.encoders = encoders
	ct.scaler = scaler
	ct.names = featureNames(plan, encoders)
	ct.SetFitted()

	ct.logger.Info("Fitted column transformer",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, train.NRows(),
		log.FeaturesKey, train.NCols(),
		log.OutputFeaturesKey, len(ct.names),
		"numeric_columns", len(plan.Numeric),
		"categorical_columns", len(plan.Categorical),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Transform applies the fitted parameters to ds. ds must have exactly the
// fitted column set (order may differ) and every column must keep its role.
// Categories unseen during Fit encode as all-zero indicators and are
// reported through errors.Warn as an UnknownCategoryWarning.
func (ct *ColumnTransformer) Transform(ds *dataset.Dataset) (out *mat.Dense, err error) {
	const op = "ColumnTransformer.Transform"
	defer errors.Recover(&err, op)

	if !ct.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "Transform")
	}
	if ds == nil {
		return nil, errors.NewValueErrorWrap(op, "dataset is nil", errors.ErrEmptyData)
	}
	if err := ct.checkSchema(op, ds.Schema()); err != nil {
		return nil, err
	}
	n := ds.NRows()
	if n == 0 {
		return nil, errors.NewValueErrorWrap(op, "dataset has no rows", errors.ErrEmptyData)
	}

	out = mat.NewDense(n, len(ct.names), nil)
	for j, name := range ct.plan.Numeric {
		col, _ := ds.Column(name)
		filled, err := ct.numImputers[j].Transform(col.Values)
		if err != nil {
			return nil, columnError(err, name)
		}
		if err := writeNumeric(out, j, name, filled); err != nil {
			return nil, err
		}
	}
	if ct.scaler != nil {
		block := out.Slice(0, n, 0, len(ct.plan.Numeric)).(*mat.Dense)
		scaled, err := ct.scaler.Transform(block)
		if err != nil {
			return nil, err
		}
		block.Copy(scaled)
	}

	offset := len(ct.plan.Numeric)
	totalUnknown := 0
	for j, name := range ct.plan.Categorical {
		col, _ := ds.Column(name)
		filled, err := ct.catImputers[j].Transform(col.Values)
		if err != nil {
			return nil, columnError(err, name)
		}
		unknown, err := ct.encoders[j].TransformInto(out, offset, filled)
		if err != nil {
			return nil, columnError(err, name)
		}
		if unknown > 0 {
			totalUnknown += unknown
			ct.logger.Debug("Unknown categories encoded as zeros",
				log.ColumnKey, name,
				log.UnknownCountKey, unknown,
			)
			errors.Warn(errors.NewUnknownCategoryWarning(name, unknown))
		}
		offset += ct.encoders[j].Width()
	}

	ct.logger.Debug("Transformed dataset",
		log.OperationKey, log.OperationTransform,
		log.SamplesKey, n,
		log.OutputFeaturesKey, len(ct.names),
		log.UnknownCountKey, totalUnknown,
	)
	return out, nil
}

// FitTransform runs Fit on train and then Transform on the same dataset.
func (ct *ColumnTransformer) FitTransform(train *dataset.Dataset) (*mat.Dense, error) {
	if err := ct.Fit(train); err != nil {
		return nil, err
	}
	return ct.Transform(train)
}

// FeatureNamesOut returns one label per output column: numeric columns keep
// their name, indicator columns are "<column>::<category>".
func (ct *ColumnTransformer) FeatureNamesOut() ([]string, error) {
	if !ct.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "FeatureNamesOut")
	}
	return append([]string(nil), ct.names...), nil
}

// Plan returns the fitted column partition.
func (ct *ColumnTransformer) Plan() (Plan, error) {
	if !ct.IsFitted() {
		return Plan{}, errors.NewNotFittedError("ColumnTransformer", "Plan")
	}
	roles := make(map[string]Role, len(ct.plan.Roles))
	for k, v := range ct.plan.Roles {
		roles[k] = v
	}
	return Plan{
		Numeric:     append([]string(nil), ct.plan.Numeric...),
		Categorical: append([]string(nil), ct.plan.Categorical...),
		Roles:       roles,
	}, nil
}

// NOutputFeatures returns the output width, 0 if unfitted.
func (ct *ColumnTransformer) NOutputFeatures() int { return len(ct.names) }

// NumericScaler returns the configured scaler kind.
func (ct *ColumnTransformer) NumericScaler() ScalerKind { return ct.scalerKind }

func (ct *ColumnTransformer) checkSchema(op string, got dataset.Schema) error {
	var missing, extra []string
	seen := make(map[string]bool, len(got))
	for _, f := range got {
		seen[f.Name] = true
		if _, ok := ct.plan.Roles[f.Name]; !ok {
			extra = append(extra, f.Name)
		}
	}
	for _, f := range ct.schema {
		if !seen[f.Name] {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(missing)
		sort.Strings(extra)
		return errors.NewSchemaMismatchError(op, missing, extra)
	}

	for _, f := range got {
		role, err := roleOf(f)
		if err != nil {
			return err
		}
		if want := ct.plan.Roles[f.Name]; role != want {
			return errors.NewSchemaError(op, f.Name,
				fmt.Sprintf("fitted as %s but dtype %s is %s", want, f.DType, role))
		}
	}
	return nil
}

func (ct *ColumnTransformer) reset() {
	ct.Reset()
	ct.schema = nil
	ct.plan = Plan{}
	ct.numImputers = nil
	ct.catImputers = nil
	ct.encoders = nil
	ct.scaler = nil
	ct.names = nil
}

func roleOf(f dataset.Field) (Role, error) {
	switch {
	case f.DType.IsNumeric():
		return RoleNumeric, nil
	case f.DType.IsCategorical():
		return RoleCategorical, nil
	default:
		return 0, errors.NewSchemaError("ClassifyColumns", f.Name, fmt.Sprintf("unsupported dtype %q", f.DType))
	}
}

func newScaler(kind ScalerKind) (model.Transformer, error) {
	switch kind {
	case "", ScalerNone:
		return nil, nil
	case ScalerStandard:
		return preprocessing.NewStandardScaler(), nil
	case ScalerMinMax:
		return preprocessing.NewMinMaxScalerDefault(), nil
	default:
		return nil, errors.NewValidationError("numeric_scaler", "must be none, standard or minmax", string(kind))
	}
}

func writeNumeric(dst *mat.Dense, j int, name string, values []dataset.Value) error {
	for i, v := range values {
		f, ok := v.Float()
		if !ok {
			return errors.NewSchemaError("ColumnTransformer", name,
				fmt.Sprintf("row %d holds %s value %q in a numeric column", i, v.Kind, v.String()))
		}
		dst.Set(i, j, f)
	}
	return nil
}

func featureNames(plan Plan, encoders []*preprocessing.OneHotEncoder) []string {
	names := append([]string(nil), plan.Numeric...)
	for j, name := range plan.Categorical {
		names = append(names, encoders[j].FeatureNamesOut(name)...)
	}
	return names
}

// columnError attaches the column name to errors raised by per-column estimators.
func columnError(err error, column string) error {
	var se *errors.SchemaError
	if errors.As(err, &se) && se.Column == "" {
		se.Column = column
	}
	var ee *errors.EmptyColumnError
	if errors.As(err, &ee) && ee.Column == "" {
		ee.Column = column
	}
	return errors.Wrapf(err, "column %s", column)
}

// Package log defines standard attribute keys for preprocessing operations.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so log lines from different estimators can be filtered
// and aggregated the same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "SimpleImputer", "OneHotEncoder", "ColumnTransformer"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "fit_transform", "split", "save", "load"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the lifecycle phase.
	// Examples: "training", "validation", "preprocessing"
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of rows in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of input columns.
	FeaturesKey = "data.features"

	// OutputFeaturesKey indicates the number of output matrix columns.
	OutputFeaturesKey = "data.output_features"

	// ColumnKey names a single input column.
	ColumnKey = "data.column"

	// RoleKey is the role (numeric or categorical) assigned to a column.
	RoleKey = "data.role"

	// DataTypeKey specifies the declared dtype of a column.
	// Examples: "float64", "bool", "object"
	DataTypeKey = "data.type"

	// CategoriesKey records the indicator width learned for a categorical column.
	CategoriesKey = "data.categories"

	// UnknownCountKey records how many cells were unseen categories during transform.
	UnknownCountKey = "data.unknown_count"

	// MissingCountKey records how many cells were imputed.
	MissingCountKey = "data.missing_count"

	// TrainSamplesKey and ValSamplesKey record partition sizes after a split.
	TrainSamplesKey = "data.train_samples"
	ValSamplesKey   = "data.val_samples"
)

// Performance
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// DataSizeKey records a payload size in bytes (persisted state, artifacts).
	DataSizeKey = "data.size_bytes"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"
)

// Configuration
const (
	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// TestSizeKey records the validation ratio of a split.
	TestSizeKey = "config.test_size"

	// CompressionKey records the codec used for persisted state.
	CompressionKey = "config.compression"
)

// Standard attribute value constants.
const (
	OperationFit          = "fit"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationSplit        = "split"
	OperationSave         = "save"
	OperationLoad         = "load"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhasePreprocessing = "preprocessing"

	ErrorNotFitted      = "NOT_FITTED"
	ErrorSchemaMismatch = "SCHEMA_MISMATCH"
	ErrorEmptyColumn    = "EMPTY_COLUMN"
	ErrorInvalidRatio   = "INVALID_RATIO"
	ErrorShapeMismatch  = "SHAPE_MISMATCH"
)

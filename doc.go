// Package tabprep prepares tabular data for model training with a
// scikit-learn-like API.
//
// A run splits a labeled dataset into training and validation partitions,
// fits a preprocessing pipeline on the training partition only and applies
// the fitted pipeline to both. Numeric columns (including booleans) are
// median-imputed and optionally scaled; categorical columns are imputed
// with their most frequent value and one-hot encoded. Categories first seen
// at transform time become all-zero rows and raise a warning.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/tabprep/dataset"
//	    "github.com/YuminosukeSato/tabprep/sklearn/model_selection"
//	    "github.com/YuminosukeSato/tabprep/sklearn/pipeline"
//	)
//
//	func main() {
//	    X, y, err := loadSpaceship() // *dataset.Dataset, *dataset.Column
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    split, err := model_selection.TrainTestSplit(X, y, 0.2,
//	        model_selection.WithRandomState(42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    p := pipeline.NewDefault()
//	    XTrain, err := p.FitTransform(split.XTrain)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    XVal, err := p.Transform(split.XVal)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(XTrain.Dims())
//	    fmt.Println(XVal.Dims())
//	}
//
// # Packages
//
//   - dataset: Columnar datasets, dtypes and CSV I/O
//   - features: CEL-based derived columns
//   - sklearn/model_selection: Seeded train/validation split
//   - sklearn/impute: SimpleImputer (median, most_frequent)
//   - sklearn/preprocessing: OneHotEncoder, StandardScaler, MinMaxScaler
//   - sklearn/compose: Column classification and ColumnTransformer
//   - sklearn/pipeline: Fit-once preprocessing pipeline with persistence
//   - storage: File, Redis and in-memory stores for fitted state
//   - report: Train/validation mean comparison plots
//   - core/model: Estimator state, interfaces and the persistence envelope
//   - core/compress: zstd, s2 and lz4 codecs
//   - config: YAML/JSON run configuration
//   - pkg/errors, pkg/log: Error types, warnings and structured logging
//
// The tabprep command in cmd/tabprep runs the whole flow from a config file.
package tabprep

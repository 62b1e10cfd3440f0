// Package model_selection splits labeled datasets into training and
// validation partitions.
package model_selection

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/tabprep/dataset"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
)

// Split holds aligned feature and label partitions. Row i of XTrain
// corresponds to row i of YTrain, and likewise for the validation side.
// TrainIndices and ValIndices are the source row numbers in output order.
type Split struct {
	XTrain, XVal *dataset.Dataset
	YTrain, YVal *dataset.Column

	TrainIndices, ValIndices []int
}

type splitConfig struct {
	randomState int64
	shuffle     bool
}

// SplitOption configures TrainTestSplit.
type SplitOption func(*splitConfig)

// WithRandomState sets the permutation seed (default 0).
func WithRandomState(seed int64) SplitOption {
	return func(c *splitConfig) {
		c.randomState = seed
	}
}

// WithShuffle disables or enables shuffling (default true). Without
// shuffling the last rows form the validation partition.
func WithShuffle(shuffle bool) SplitOption {
	return func(c *splitConfig) {
		c.shuffle = shuffle
	}
}

// SplitIndices partitions 0..n-1 into training and validation indices with
// |val| = round(testSize*n). The same (n, testSize, seed) always yields the
// same partition.
func SplitIndices(n int, testSize float64, opts ...SplitOption) (train, val []int, err error) {
	cfg := splitConfig{shuffle: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if math.IsNaN(testSize) || testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.NewInvalidRatioError("test_size", testSize)
	}
	nVal := int(math.Round(testSize * float64(n)))
	if nVal == 0 || nVal == n {
		return nil, nil, errors.NewValueErrorWrap("TrainTestSplit",
			"test_size leaves the training or validation partition empty", errors.ErrEmptyData)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if !cfg.shuffle {
		nTrain := n - nVal
		return indices[:nTrain:nTrain], indices[nTrain:], nil
	}

	seed := uint64(cfg.randomState)
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	// 2つの区間は配列を共有するが容量は重ならない
	return indices[nVal:], indices[:nVal:nVal], nil
}

// TrainTestSplit splits X and its labels y into training and validation
// partitions.
//
// 使用例:
//
//	split, err := model_selection.TrainTestSplit(X, y, 0.2, model_selection.WithRandomState(42))
//	err = pipe.Fit(split.XTrain)
func TrainTestSplit(X *dataset.Dataset, y *dataset.Column, testSize float64, opts ...SplitOption) (*Split, error) {
	if X == nil || y == nil {
		return nil, errors.NewValueError("TrainTestSplit", "features and labels must not be nil")
	}
	if y.Len() != X.NRows() {
		return nil, errors.NewShapeMismatchError("TrainTestSplit", "label rows", X.NRows(), y.Len())
	}

	train, val, err := SplitIndices(X.NRows(), testSize, opts...)
	if err != nil {
		return nil, err
	}

	log.GetLoggerWithName("TrainTestSplit").Debug("Split dataset",
		log.OperationKey, log.OperationSplit,
		log.SamplesKey, X.NRows(),
		log.TrainSamplesKey, len(train),
		log.ValSamplesKey, len(val),
		log.TestSizeKey, testSize,
	)
	return &Split{
		XTrain:       X.Take(train),
		XVal:         X.Take(val),
		YTrain:       y.Take(train),
		YVal:         y.Take(val),
		TrainIndices: train,
		ValIndices:   val,
	}, nil
}

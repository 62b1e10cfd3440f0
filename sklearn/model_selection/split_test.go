package model_selection

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/tabprep/dataset"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

func numbered(n int) (*dataset.Dataset, *dataset.Column) {
	ids := make([]float64, n)
	labels := make([]dataset.Value, n)
	for i := range ids {
		ids[i] = float64(i)
		labels[i] = dataset.BoolValue(i%2 == 0)
	}
	X := dataset.MustNew(dataset.NewFloatColumn("id", ids))
	y := dataset.MustColumn("Transported", dataset.Bool, labels)
	return X, y
}

func TestSplitIndicesSizes(t *testing.T) {
	tests := []struct {
		n        int
		testSize float64
		wantVal  int
	}{
		{1000, 0.2, 200},
		{8693, 0.2, 1739},
		{10, 0.25, 3},
		{5, 0.5, 3},
	}
	for _, tt := range tests {
		train, val, err := SplitIndices(tt.n, tt.testSize, WithRandomState(42))
		require.NoError(t, err)
		assert.Len(t, val, tt.wantVal, "n=%d test_size=%v", tt.n, tt.testSize)
		assert.Len(t, train, tt.n-tt.wantVal)

		all := append(append([]int(nil), train...), val...)
		sort.Ints(all)
		for i, idx := range all {
			require.Equal(t, i, idx, "partition must cover every row exactly once")
		}
	}
}

func TestSplitIndicesDeterministic(t *testing.T) {
	train1, val1, err := SplitIndices(100, 0.3, WithRandomState(7))
	require.NoError(t, err)
	train2, val2, err := SplitIndices(100, 0.3, WithRandomState(7))
	require.NoError(t, err)
	assert.Equal(t, train1, train2)
	assert.Equal(t, val1, val2)

	_, val3, err := SplitIndices(100, 0.3, WithRandomState(8))
	require.NoError(t, err)
	assert.NotEqual(t, val1, val3)
}

func TestSplitIndicesNoShuffle(t *testing.T) {
	train, val, err := SplitIndices(5, 0.4, WithShuffle(false))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, train)
	assert.Equal(t, []int{3, 4}, val)
}

func TestSplitIndicesAppendDoesNotAlias(t *testing.T) {
	for _, shuffle := range []bool{true, false} {
		train, val, err := SplitIndices(10, 0.2, WithRandomState(42), WithShuffle(shuffle))
		require.NoError(t, err)
		wantTrain := append([]int(nil), train...)
		wantVal := append([]int(nil), val...)

		_ = append(val, -1)
		_ = append(train, -2)
		assert.Equal(t, wantTrain, train, "shuffle=%v", shuffle)
		assert.Equal(t, wantVal, val, "shuffle=%v", shuffle)
	}
}

func TestSplitIndicesErrors(t *testing.T) {
	for _, ratio := range []float64{0, 1, -0.1, 1.5} {
		_, _, err := SplitIndices(10, ratio)
		var ir *errors.InvalidRatioError
		assert.True(t, errors.As(err, &ir), "ratio %v", ratio)
	}

	_, _, err := SplitIndices(3, 0.1)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestTrainTestSplitAlignment(t *testing.T) {
	X, y := numbered(50)
	split, err := TrainTestSplit(X, y, 0.2, WithRandomState(42))
	require.NoError(t, err)

	assert.Equal(t, 40, split.XTrain.NRows())
	assert.Equal(t, 10, split.XVal.NRows())
	assert.Equal(t, 40, split.YTrain.Len())
	assert.Equal(t, 10, split.YVal.Len())

	check := func(ds *dataset.Dataset, labels *dataset.Column, indices []int) {
		ids, _ := ds.Column("id")
		for i, src := range indices {
			assert.True(t, ids.Values[i].Equal(dataset.Num(float64(src))))
			assert.True(t, labels.Values[i].Equal(dataset.BoolValue(src%2 == 0)))
		}
	}
	check(split.XTrain, split.YTrain, split.TrainIndices)
	check(split.XVal, split.YVal, split.ValIndices)

	again, err := TrainTestSplit(X, y, 0.2, WithRandomState(42))
	require.NoError(t, err)
	assert.Equal(t, split.ValIndices, again.ValIndices)
}

func TestTrainTestSplitErrors(t *testing.T) {
	X, y := numbered(10)
	short := y.Take([]int{0, 1, 2})

	_, err := TrainTestSplit(X, short, 0.2)
	var sm *errors.ShapeMismatchError
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, 10, sm.Expected)
	assert.Equal(t, 3, sm.Got)

	_, err = TrainTestSplit(X, y, 1.0)
	var ir *errors.InvalidRatioError
	assert.True(t, errors.As(err, &ir))
}

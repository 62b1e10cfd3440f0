package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabprep/dataset"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

func TestOneHotEncoder(t *testing.T) {
	enc := NewOneHotEncoder()
	require.NoError(t, enc.Fit(dataset.Texts("NA", "A", "B", "A", "NA")))

	cats, err := enc.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, cats)
	assert.Equal(t, 2, enc.Width())

	got, err := enc.Transform(dataset.Texts("NA", "A", "B", "C", "NA"))
	require.NoError(t, err)
	want := mat.NewDense(4, 2, []float64{
		1, 0,
		0, 1,
		0, 0,
		0, 0,
	})
	assert.True(t, mat.Equal(want, got), "got\n%v", mat.Formatted(got))
}

func TestOneHotEncoderFirstSeenOrder(t *testing.T) {
	enc := NewOneHotEncoder()
	require.NoError(t, enc.Fit(dataset.Texts("", "Mars", "Earth", "Mars", "Europa")))

	assert.Equal(t, []string{"HomePlanet::Mars", "HomePlanet::Earth", "HomePlanet::Europa"}, enc.FeatureNamesOut("HomePlanet"))
	j, ok := enc.Index(dataset.Text("Europa"))
	assert.True(t, ok)
	assert.Equal(t, 2, j)
	_, ok = enc.Index(dataset.Num(1))
	assert.False(t, ok)
}

func TestOneHotEncoderTransformInto(t *testing.T) {
	enc := NewOneHotEncoder()
	require.NoError(t, enc.Fit(dataset.Texts("", "x", "y")))

	dst := mat.NewDense(3, 4, nil)
	unknown, err := enc.TransformInto(dst, 1, dataset.Texts("", "y", "z", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, unknown, "missing cells are not unknown")
	assert.Equal(t, []float64{0, 0, 1, 0}, mat.Row(nil, 0, dst))
	assert.Equal(t, []float64{0, 0, 0, 0}, mat.Row(nil, 1, dst))

	_, err = enc.TransformInto(dst, 3, dataset.Texts("", "x", "x", "x"))
	var sm *errors.ShapeMismatchError
	assert.True(t, errors.As(err, &sm))
}

func TestOneHotEncoderInverseTransform(t *testing.T) {
	enc := NewOneHotEncoder()
	require.NoError(t, enc.Fit(dataset.Texts("", "P", "S")))

	v, err := enc.InverseTransform([]float64{0, 1})
	require.NoError(t, err)
	assert.True(t, v.Equal(dataset.Text("S")))

	v, err = enc.InverseTransform([]float64{0, 0})
	require.NoError(t, err)
	assert.True(t, v.IsMissing())

	_, err = enc.InverseTransform([]float64{1})
	assert.Error(t, err)
}

func TestOneHotEncoderErrors(t *testing.T) {
	t.Run("not fitted", func(t *testing.T) {
		_, err := NewOneHotEncoder().Transform(dataset.Texts("", "a"))
		var nf *errors.NotFittedError
		assert.True(t, errors.As(err, &nf))
	})
	t.Run("no categories", func(t *testing.T) {
		err := NewOneHotEncoder().Fit([]dataset.Value{dataset.Missing()})
		var ec *errors.EmptyColumnError
		assert.True(t, errors.As(err, &ec))
	})
	t.Run("numeric cell", func(t *testing.T) {
		err := NewOneHotEncoder().Fit([]dataset.Value{dataset.Text("a"), dataset.Num(1)})
		var se *errors.SchemaError
		assert.True(t, errors.As(err, &se))
	})
	t.Run("zero rows", func(t *testing.T) {
		enc := NewOneHotEncoder()
		require.NoError(t, enc.Fit(dataset.Texts("", "a")))
		_, err := enc.Transform(nil)
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})
}

func TestOneHotEncoderRestore(t *testing.T) {
	enc := NewOneHotEncoder()
	require.NoError(t, enc.Restore([]string{"b", "a"}))
	got, err := enc.Transform(dataset.Texts("", "a"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, got.RawRowView(0))

	assert.Error(t, NewOneHotEncoder().Restore([]string{"a", "a"}))
}

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})
	s := NewStandardScaler()
	out, err := s.FitTransform(X)
	require.NoError(t, err)

	assert.InDelta(t, 2.5, s.Mean[0], 1e-12)
	assert.InDelta(t, 1.118033988749895, s.Scale[0], 1e-12)
	assert.Equal(t, 1.0, s.Scale[1], "constant column keeps unit scale")
	assert.InDelta(t, -1.3416407864998738, out.At(0, 0), 1e-12)
	assert.Equal(t, 0.0, out.At(2, 1))

	_, err = s.Transform(mat.NewDense(1, 3, nil))
	var sm *errors.ShapeMismatchError
	assert.True(t, errors.As(err, &sm))

	restored := NewStandardScaler()
	restored.Restore(s.Params())
	again, err := restored.Transform(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(out, again))
}

func TestMinMaxScaler(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{10, 20, 30})
	m := NewMinMaxScalerDefault()
	out, err := m.FitTransform(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, mat.Col(nil, 0, out))

	beyond, err := m.Transform(mat.NewDense(1, 1, []float64{40}))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, beyond.At(0, 0), 1e-12)

	restored := NewMinMaxScalerDefault()
	restored.Restore(m.Params())
	again, err := restored.Transform(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(out, again))

	var ve *errors.ValidationError
	assert.True(t, errors.As(NewMinMaxScaler([2]float64{1, 0}).Fit(X), &ve))
}

func TestScalersNotFitted(t *testing.T) {
	X := mat.NewDense(1, 1, []float64{1})
	var nf *errors.NotFittedError
	_, err := NewStandardScaler().Transform(X)
	assert.True(t, errors.As(err, &nf))
	_, err = NewMinMaxScalerDefault().Transform(X)
	assert.True(t, errors.As(err, &nf))
}

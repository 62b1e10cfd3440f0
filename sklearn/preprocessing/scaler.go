package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// 定数列とみなす幅。これ未満のスケールは1に置き換える
const constantTolerance = 1e-8

// StandardScaler は数値列を平均0、標準偏差1に変換する
// 標準偏差は母集団標準偏差（scikit-learnと同じ ddof=0）
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各列の平均値
	Mean []float64

	// Scale は各列の標準偏差
	Scale []float64
}

// StandardScalerParams はStandardScalerの学習済みパラメータ
type StandardScalerParams struct {
	Mean  []float64
	Scale []float64
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler()
//	XScaled, err := scaler.FitTransform(X)
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit は各列の平均と標準偏差を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)
		if math.Abs(std) < constantTolerance {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}

	s.SetFitted()
	return nil
}

// Transform は学習済みの平均と標準偏差でデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	r, c := X.Dims()
	if c != len(s.Mean) {
		return nil, errors.NewShapeMismatchError("StandardScaler.Transform", "features", len(s.Mean), c)
	}

	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return result, nil
}

// FitTransform はFitとTransformを順に実行する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// Params は学習済みパラメータのコピーを返す
func (s *StandardScaler) Params() StandardScalerParams {
	return StandardScalerParams{
		Mean:  append([]float64(nil), s.Mean...),
		Scale: append([]float64(nil), s.Scale...),
	}
}

// Restore は保存されたパラメータから学習済み状態を復元する
func (s *StandardScaler) Restore(p StandardScalerParams) {
	s.Mean = append([]float64(nil), p.Mean...)
	s.Scale = append([]float64(nil), p.Scale...)
	s.SetFitted()
}

func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return "StandardScaler()"
	}
	return fmt.Sprintf("StandardScaler(n_features=%d)", len(s.Mean))
}

// MinMaxScaler は数値列を指定した範囲（デフォルト[0,1]）にスケーリングする
type MinMaxScaler struct {
	model.BaseEstimator

	// DataMin は学習データの各列の最小値
	DataMin []float64

	// Scale は各列の幅 (max - min)。定数列は1
	Scale []float64

	// FeatureRange はスケーリング後の範囲 [min, max]
	FeatureRange [2]float64
}

// MinMaxScalerParams はMinMaxScalerの学習済みパラメータ
type MinMaxScalerParams struct {
	DataMin      []float64
	Scale        []float64
	FeatureRange [2]float64
}

// NewMinMaxScaler は新しいMinMaxScalerを作成する
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{FeatureRange: featureRange}
}

// NewMinMaxScalerDefault は[0,1]範囲のMinMaxScalerを作成する
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0, 1})
}

// Fit は各列の最小値と幅を計算する
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if m.FeatureRange[0] >= m.FeatureRange[1] {
		return errors.NewValidationError("feature_range", "minimum must be smaller than maximum", m.FeatureRange)
	}

	m.DataMin = make([]float64, c)
	m.Scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		lo, hi := floats.Min(col), floats.Max(col)
		m.DataMin[j] = lo
		if math.Abs(hi-lo) < constantTolerance {
			m.Scale[j] = 1
		} else {
			m.Scale[j] = hi - lo
		}
	}

	m.SetFitted()
	return nil
}

// Transform は学習済みの最小値と幅でデータをスケーリングする
// 学習範囲外の値は範囲外のまま出力される（クリップしない）
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "Transform")
	}
	r, c := X.Dims()
	if c != len(m.DataMin) {
		return nil, errors.NewShapeMismatchError("MinMaxScaler.Transform", "features", len(m.DataMin), c)
	}

	width := m.FeatureRange[1] - m.FeatureRange[0]
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v-m.DataMin[j])/m.Scale[j]*width + m.FeatureRange[0]
	}, X)
	return result, nil
}

// FitTransform はFitとTransformを順に実行する
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// Params は学習済みパラメータのコピーを返す
func (m *MinMaxScaler) Params() MinMaxScalerParams {
	return MinMaxScalerParams{
		DataMin:      append([]float64(nil), m.DataMin...),
		Scale:        append([]float64(nil), m.Scale...),
		FeatureRange: m.FeatureRange,
	}
}

// Restore は保存されたパラメータから学習済み状態を復元する
func (m *MinMaxScaler) Restore(p MinMaxScalerParams) {
	m.DataMin = append([]float64(nil), p.DataMin...)
	m.Scale = append([]float64(nil), p.Scale...)
	m.FeatureRange = p.FeatureRange
	m.SetFitted()
}

func (m *MinMaxScaler) String() string {
	return fmt.Sprintf("MinMaxScaler(feature_range=[%g, %g])", m.FeatureRange[0], m.FeatureRange[1])
}

// Package impute provides column-wise imputation of missing cells.
package impute

import (
	"fmt"
	"math"
	"sort"

	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/dataset"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// Strategy は欠損値を埋める値の決め方
type Strategy string

const (
	// StrategyMedian は数値列の中央値で埋める
	StrategyMedian Strategy = "median"
	// StrategyMostFrequent は最頻値で埋める（同数の場合は先に出現した値）
	StrategyMostFrequent Strategy = "most_frequent"
)

var _ model.ColumnTransformer = (*SimpleImputer)(nil)

// SimpleImputer は単一列の欠損値を学習済みの値で置き換える
//
// 学習は訓練データの非欠損値のみを使い、Transform では欠損セルだけを
// 学習済みの値に置き換える。非欠損セルはそのまま残る。
type SimpleImputer struct {
	model.BaseEstimator

	strategy Strategy
	fill     dataset.Value
}

// NewSimpleImputer は新しいSimpleImputerを作成する
//
// パラメータ:
//   - strategy: StrategyMedian または StrategyMostFrequent
//
// 使用例:
//
//	imp := impute.NewSimpleImputer(impute.StrategyMedian)
//	err := imp.Fit(dataset.Floats(1, 3, 7))
//	filled, err := imp.Transform(values)
func NewSimpleImputer(strategy Strategy) *SimpleImputer {
	return &SimpleImputer{strategy: strategy}
}

// Fit は非欠損値から埋める値を学習する
// 再度Fitした場合は埋める値を置き換える
func (s *SimpleImputer) Fit(values []dataset.Value) error {
	var (
		fill dataset.Value
		err  error
	)
	switch s.strategy {
	case StrategyMedian:
		fill, err = median(values)
	case StrategyMostFrequent:
		fill, err = mostFrequent(values)
	default:
		return errors.NewValidationError("strategy", "must be median or most_frequent", string(s.strategy))
	}
	if err != nil {
		return err
	}

	s.fill = fill
	s.SetFitted()
	return nil
}

// Transform は欠損セルを学習済みの値で置き換えた新しいスライスを返す
func (s *SimpleImputer) Transform(values []dataset.Value) ([]dataset.Value, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("SimpleImputer", "Transform")
	}
	out := make([]dataset.Value, len(values))
	for i, v := range values {
		if absent(v) {
			out[i] = s.fill
			continue
		}
		out[i] = v
	}
	return out, nil
}

// FitTransform はFitとTransformを順に実行する
func (s *SimpleImputer) FitTransform(values []dataset.Value) ([]dataset.Value, error) {
	if err := s.Fit(values); err != nil {
		return nil, err
	}
	return s.Transform(values)
}

// FillValue は学習済みの埋める値を返す
func (s *SimpleImputer) FillValue() (dataset.Value, error) {
	if !s.IsFitted() {
		return dataset.Missing(), errors.NewNotFittedError("SimpleImputer", "FillValue")
	}
	return s.fill, nil
}

// Strategy は設定された戦略を返す
func (s *SimpleImputer) Strategy() Strategy {
	return s.strategy
}

// GetParams はハイパーパラメータを返す
func (s *SimpleImputer) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"strategy": string(s.strategy),
	}
}

func (s *SimpleImputer) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("SimpleImputer(strategy=%s)", s.strategy)
	}
	return fmt.Sprintf("SimpleImputer(strategy=%s, fill=%s)", s.strategy, s.fill)
}

// Restore は保存された埋める値から学習済み状態を復元する
func (s *SimpleImputer) Restore(fill dataset.Value) {
	s.fill = fill
	s.SetFitted()
}

// absent は欠損セルと NaN を同じ扱いにする
func absent(v dataset.Value) bool {
	return v.IsMissing() || (v.IsNumber() && math.IsNaN(v.Num))
}

func median(values []dataset.Value) (dataset.Value, error) {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if absent(v) {
			continue
		}
		f, ok := v.Float()
		if !ok {
			return dataset.Missing(), errors.NewSchemaError("SimpleImputer.Fit", "",
				fmt.Sprintf("median strategy requires numeric values, got text %q", v.String()))
		}
		nums = append(nums, f)
	}
	if len(nums) == 0 {
		return dataset.Missing(), errors.NewEmptyColumnError("SimpleImputer.Fit", "")
	}

	sort.Float64s(nums)
	mid := len(nums) / 2
	if len(nums)%2 == 1 {
		return dataset.Num(nums[mid]), nil
	}
	return dataset.Num((nums[mid-1] + nums[mid]) / 2), nil
}

func mostFrequent(values []dataset.Value) (dataset.Value, error) {
	var (
		order  []dataset.Value
		counts = make(map[dataset.Value]int)
	)
	for _, v := range values {
		if absent(v) {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(order) == 0 {
		return dataset.Missing(), errors.NewEmptyColumnError("SimpleImputer.Fit", "")
	}

	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best, nil
}

package model

import (
	"github.com/YuminosukeSato/tabprep/dataset"
	"gonum.org/v1/gonum/mat"
)

// Transformer は数値行列を入出力とする変換器のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform は学習済みパラメータでデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを順に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// ColumnTransformer は単一列の値を入出力とする変換器のインターフェース
// (SimpleImputer など)
type ColumnTransformer interface {
	Fit(values []dataset.Value) error
	Transform(values []dataset.Value) ([]dataset.Value, error)
	IsFitted() bool
}

// DatasetTransformer はデータセット全体を数値行列へ変換する変換器のインターフェース
type DatasetTransformer interface {
	// Fit は訓練データセットからパラメータを学習する
	Fit(ds *dataset.Dataset) error

	// Transform は学習済みパラメータでデータセットを数値行列に変換する
	Transform(ds *dataset.Dataset) (*mat.Dense, error)

	// FitTransform はFitとTransformを順に実行する
	FitTransform(ds *dataset.Dataset) (*mat.Dense, error)

	// FeatureNamesOut は出力行列の列ラベルを返す
	FeatureNamesOut() ([]string, error)
}

// Package model は回帰モデルの共通インターフェースと学習状態の管理を提供します。
package model

import "gonum.org/v1/gonum/mat"

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

// BaseEstimator は全ての推定器の基底となる構造体。
// 各モデルはこれを埋め込み、Fit成功時にSetFittedを呼ぶ。
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はモデルを学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset はモデルを未学習状態に戻す
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor は回帰モデルのインターフェース。
// ハイパーパラメータ探索と評価ステージはこの型だけに依存する。
type Regressor interface {
	Fitter
	Predictor
}

// FeatureImporter は特徴量重要度を提供するモデルのインターフェース。
// 返されるスライスは特徴量順で、合計が1になるよう正規化される。
type FeatureImporter interface {
	FeatureImportance() []float64
}

// LinearModel は線形モデルのインターフェース
type LinearModel interface {
	// Weights は学習された重み（係数）を返す
	Weights() []float64
	// Intercept は学習された切片を返す
	Intercept() float64
}

// Package linear は正則化付き線形回帰モデルを提供します。
package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/homeprice/core/model"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

// Ridge はL2正則化付き線形回帰モデル。
// 正規方程式 (XᵀX + αD)w = Xᵀy を閉形式で解く。
// Dは単位行列から切片項の対角成分を0にしたもので、切片は正則化されない。
type Ridge struct {
	model.BaseEstimator

	// Alpha はL2正則化の強さ (α ≥ 0)
	Alpha float64

	weights   *mat.VecDense
	intercept float64
	nFeatures int
}

// NewRidge は新しいRidgeモデルを作成する
func NewRidge(alpha float64) *Ridge {
	return &Ridge{Alpha: alpha}
}

// Fit はモデルを訓練データで学習させる。
// 係数行列は対称正定値となるためCholesky分解で解く。
func (r *Ridge) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	ry, cy := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("Ridge.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != rows {
		return errors.NewDimensionError("Ridge.Fit", rows, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Ridge.Fit", "y must be a column vector")
	}
	if r.Alpha < 0 {
		return errors.NewValueError("Ridge.Fit", "alpha must be non-negative")
	}

	r.nFeatures = cols

	// 切片項のために X に 1 の列を追加
	augmented := mat.NewDense(rows, cols+1, nil)
	for i := 0; i < rows; i++ {
		augmented.Set(i, 0, 1.0)
		for j := 0; j < cols; j++ {
			augmented.Set(i, j+1, X.At(i, j))
		}
	}

	var xt mat.Dense
	xt.CloneFrom(augmented.T())

	var gram mat.Dense
	gram.Mul(&xt, augmented)

	// 正則化項を加える（切片の対角成分は除く）
	for j := 1; j <= cols; j++ {
		gram.Set(j, j, gram.At(j, j)+r.Alpha)
	}

	sym := mat.NewSymDense(cols+1, nil)
	for i := 0; i <= cols; i++ {
		for j := i; j <= cols; j++ {
			sym.SetSym(i, j, gram.At(i, j))
		}
	}

	yVec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}
	var xty mat.VecDense
	xty.MulVec(&xt, yVec)

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return errors.NewModelError("Ridge.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	solution := mat.NewVecDense(cols+1, nil)
	if err := chol.SolveVecTo(solution, &xty); err != nil {
		return errors.NewModelError("Ridge.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	r.intercept = solution.AtVec(0)
	r.weights = mat.NewVecDense(cols, nil)
	for j := 0; j < cols; j++ {
		r.weights.SetVec(j, solution.AtVec(j+1))
	}

	r.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
func (r *Ridge) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("Ridge", "Predict")
	}

	rows, cols := X.Dims()
	if cols != r.nFeatures {
		return nil, errors.NewDimensionError("Ridge.Predict", r.nFeatures, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		pred := r.intercept
		for j := 0; j < cols; j++ {
			pred += X.At(i, j) * r.weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}

// Weights は学習された重み（係数）を返す
func (r *Ridge) Weights() []float64 {
	if r.weights == nil {
		return nil
	}
	out := make([]float64, r.weights.Len())
	for j := 0; j < r.weights.Len(); j++ {
		out[j] = r.weights.AtVec(j)
	}
	return out
}

// Intercept は学習された切片を返す
func (r *Ridge) Intercept() float64 {
	return r.intercept
}

// FeatureImportance は正規化された係数絶対値を特徴量順で返す。
// 入力特徴量が標準化されている前提で大小比較が意味を持つ。
func (r *Ridge) FeatureImportance() []float64 {
	return normalizedAbsWeights(r.Weights())
}

func normalizedAbsWeights(weights []float64) []float64 {
	if weights == nil {
		return nil
	}
	out := make([]float64, len(weights))
	var total float64
	for j, w := range weights {
		if w < 0 {
			w = -w
		}
		out[j] = w
		total += w
	}
	if total > 0 {
		for j := range out {
			out[j] /= total
		}
	}
	return out
}

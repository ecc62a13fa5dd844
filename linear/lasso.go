package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/homeprice/core/model"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

// Lasso はL1正則化付き線形回帰モデル。
// 目的関数 (1/2n)·Σ(y − b − Xw)² + α·Σ|w| を
// 循環座標降下法（cyclic coordinate descent）で最小化する。
// 切片は正則化されない。
type Lasso struct {
	model.BaseEstimator

	// Alpha はL1正則化の強さ (α ≥ 0)
	Alpha float64
	// MaxIter は座標降下の最大反復回数（デフォルト: 1000）
	MaxIter int
	// Tol は収束判定の閾値（デフォルト: 1e-4）
	Tol float64
	// Collector が設定されている場合、収束警告はここに集約される
	Collector *errors.Collector

	weights   []float64
	intercept float64
	nFeatures int
	nIter     int
	converged bool
}

// NewLasso は新しいLassoモデルを作成する
func NewLasso(alpha float64) *Lasso {
	return &Lasso{
		Alpha:   alpha,
		MaxIter: 1000,
		Tol:     1e-4,
	}
}

// softThreshold は軟閾値作用素 sign(z)·max(|z| − γ, 0) を計算する
func softThreshold(z, gamma float64) float64 {
	switch {
	case z > gamma:
		return z - gamma
	case z < -gamma:
		return z + gamma
	default:
		return 0
	}
}

// Fit はモデルを訓練データで学習させる。
// MaxIter 回の反復で収束しなかった場合、ConvergenceWarning を
// Collector（未設定なら警告ハンドラ）へ送り、学習結果はそのまま返す。
func (l *Lasso) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	ry, cy := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("Lasso.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != rows {
		return errors.NewDimensionError("Lasso.Fit", rows, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Lasso.Fit", "y must be a column vector")
	}
	if l.Alpha < 0 {
		return errors.NewValueError("Lasso.Fit", "alpha must be non-negative")
	}

	maxIter := l.MaxIter
	if maxIter <= 0 {
		maxIter = 1000
	}
	tol := l.Tol
	if tol <= 0 {
		tol = 1e-4
	}

	l.nFeatures = cols
	n := float64(rows)

	// 列ごとの二乗和 z_j = (1/n)·Σx_ij²
	z := make([]float64, cols)
	for j := 0; j < cols; j++ {
		var sum float64
		for i := 0; i < rows; i++ {
			v := X.At(i, j)
			sum += v * v
		}
		z[j] = sum / n
	}

	weights := make([]float64, cols)
	var intercept float64
	for i := 0; i < rows; i++ {
		intercept += y.At(i, 0)
	}
	intercept /= n

	// 残差 r_i = y_i − b − Σ_j x_ij·w_j （初期重みは0）
	residual := make([]float64, rows)
	for i := 0; i < rows; i++ {
		residual[i] = y.At(i, 0) - intercept
	}

	l.converged = false
	l.nIter = maxIter
	for iter := 0; iter < maxIter; iter++ {
		var maxDelta float64

		for j := 0; j < cols; j++ {
			if z[j] == 0 {
				continue // 分散ゼロの列は重み0のまま
			}
			old := weights[j]

			// ρ_j = (1/n)·Σx_ij·r_i + z_j·w_j
			var rho float64
			for i := 0; i < rows; i++ {
				rho += X.At(i, j) * residual[i]
			}
			rho = rho/n + z[j]*old

			updated := softThreshold(rho, l.Alpha) / z[j]
			if updated != old {
				delta := updated - old
				for i := 0; i < rows; i++ {
					residual[i] -= X.At(i, j) * delta
				}
				weights[j] = updated
				if d := math.Abs(delta); d > maxDelta {
					maxDelta = d
				}
			}
		}

		// 切片の更新: b ← b + mean(r)
		var meanResidual float64
		for i := 0; i < rows; i++ {
			meanResidual += residual[i]
		}
		meanResidual /= n
		if meanResidual != 0 {
			intercept += meanResidual
			for i := 0; i < rows; i++ {
				residual[i] -= meanResidual
			}
			if d := math.Abs(meanResidual); d > maxDelta {
				maxDelta = d
			}
		}

		if maxDelta < tol {
			l.converged = true
			l.nIter = iter + 1
			break
		}
	}

	l.weights = weights
	l.intercept = intercept

	if !l.converged {
		warning := errors.NewConvergenceWarning("Lasso", maxIter,
			"coordinate descent did not converge; consider increasing MaxIter or alpha")
		if l.Collector != nil {
			l.Collector.Collect(warning)
		} else {
			errors.Warn(warning)
		}
	}

	l.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
func (l *Lasso) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !l.IsFitted() {
		return nil, errors.NewNotFittedError("Lasso", "Predict")
	}

	rows, cols := X.Dims()
	if cols != l.nFeatures {
		return nil, errors.NewDimensionError("Lasso.Predict", l.nFeatures, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		pred := l.intercept
		for j := 0; j < cols; j++ {
			pred += X.At(i, j) * l.weights[j]
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}

// Weights は学習された重み（係数）を返す
func (l *Lasso) Weights() []float64 {
	if l.weights == nil {
		return nil
	}
	out := make([]float64, len(l.weights))
	copy(out, l.weights)
	return out
}

// Intercept は学習された切片を返す
func (l *Lasso) Intercept() float64 {
	return l.intercept
}

// Converged は直近のFitが収束したかどうかを返す
func (l *Lasso) Converged() bool {
	return l.converged
}

// NIter は直近のFitで実行された反復回数を返す
func (l *Lasso) NIter() int {
	return l.nIter
}

// FeatureImportance は正規化された係数絶対値を特徴量順で返す
func (l *Lasso) FeatureImportance() []float64 {
	return normalizedAbsWeights(l.Weights())
}

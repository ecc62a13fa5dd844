package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/homeprice/dataset"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

// FitScaling は参照パーティション（必ず訓練パーティション）から
// 各列の平均と標準偏差（母標準偏差）を計算しScalingModelを作成する。
// テスト行の情報がスケーリング統計に漏れないよう、全データでの
// fitは行わないこと。
//
// 標準偏差が0の列はZeroVarianceErrorとしてcollectorに報告され、
// 以降の変換でその列は規約として常に0を出力する。
func FitScaling(table *dataset.Table, collector *errors.Collector) (*ScalingModel, error) {
	n := table.NumRows()
	if n == 0 {
		return nil, errors.NewModelError("preprocessing.FitScaling", "empty data", errors.ErrEmptyData)
	}

	columns := table.Columns()
	m := &ScalingModel{
		columns: columns,
		mean:    make([]float64, len(columns)),
		scale:   make([]float64, len(columns)),
		zeroVar: make([]bool, len(columns)),
	}

	data := table.Matrix()
	for j := range columns {
		var sum float64
		for i := 0; i < n; i++ {
			sum += data.At(i, j)
		}
		m.mean[j] = sum / float64(n)

		var sumSq float64
		for i := 0; i < n; i++ {
			d := data.At(i, j) - m.mean[j]
			sumSq += d * d
		}
		m.scale[j] = math.Sqrt(sumSq / float64(n))

		if m.scale[j] == 0 {
			m.zeroVar[j] = true
			m.scale[j] = 1.0
			collector.Collect(errors.NewZeroVarianceError(columns[j], m.mean[j]))
		}
	}

	return m, nil
}

// ScalingModel は参照パーティションから計算された列毎の統計を保持する。
// fit後に変更されることはなく、任意のパーティションの変換に再利用できる。
type ScalingModel struct {
	columns []string
	mean    []float64
	scale   []float64
	zeroVar []bool
}

// Mean は指定列の平均を返す
func (m *ScalingModel) Mean(column string) (float64, bool) {
	for j, name := range m.columns {
		if name == column {
			return m.mean[j], true
		}
	}
	return 0, false
}

// Scale は指定列の標準偏差を返す
func (m *ScalingModel) Scale(column string) (float64, bool) {
	for j, name := range m.columns {
		if name == column {
			return m.scale[j], true
		}
	}
	return 0, false
}

// Transform は (x − mean) / std を任意のパーティションに適用する。
// 列名と順序はfit時のテーブルと一致していなければならない。
// 分散0と報告された列の出力は常に0。
func (m *ScalingModel) Transform(table *dataset.Table) (*dataset.Table, error) {
	columns := table.Columns()
	if len(columns) != len(m.columns) {
		return nil, errors.NewDimensionError("ScalingModel.Transform", len(m.columns), len(columns), 1)
	}
	for j, name := range columns {
		if name != m.columns[j] {
			return nil, errors.NewValueError("ScalingModel.Transform", "column order differs from the fitted table: "+name)
		}
	}

	n := table.NumRows()
	src := table.Matrix()
	out := mat.NewDense(n, len(columns), nil)
	for i := 0; i < n; i++ {
		for j := range columns {
			if m.zeroVar[j] {
				out.Set(i, j, 0)
				continue
			}
			out.Set(i, j, (src.At(i, j)-m.mean[j])/m.scale[j])
		}
	}

	return dataset.NewTable(columns, out)
}

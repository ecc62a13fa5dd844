package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/homeprice/dataset"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

// エンコード対象のカテゴリ列名
const (
	NeighborhoodColumn = "Neighborhood"
	PropertyTypeColumn = "PropertyType"
)

// OneHotEncoder はカテゴリ列のone-hotエンコードを行う。
// Fitは学習データから不変のEncodingModelを生成し、
// 変換自体はEncodingModel.Transformが担う。
type OneHotEncoder struct {
	// Columns はエンコード対象の列名
	// (デフォルト: Neighborhood, PropertyType)
	Columns []string
}

// NewOneHotEncoder はデフォルト設定のOneHotEncoderを作成する
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{
		Columns: []string{NeighborhoodColumn, PropertyTypeColumn},
	}
}

// Fit は各カテゴリ列の相異なる値を収集し辞書順にソートした上で、
// 先頭の値を参照レベルとして落としたEncodingModelを作成する。
func (e *OneHotEncoder) Fit(records []dataset.Record) (*EncodingModel, error) {
	if len(records) == 0 {
		return nil, errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	model := &EncodingModel{
		columns:    append([]string(nil), e.Columns...),
		reference:  make(map[string]string, len(e.Columns)),
		categories: make(map[string][]string, len(e.Columns)),
	}

	for _, column := range e.Columns {
		distinct := make(map[string]bool)
		for _, r := range records {
			v, err := categoricalValue(r, column)
			if err != nil {
				return nil, err
			}
			distinct[v] = true
		}

		values := make([]string, 0, len(distinct))
		for v := range distinct {
			values = append(values, v)
		}
		sort.Strings(values)

		// 先頭を参照レベルとして落とし、残りが指示変数列になる
		model.reference[column] = values[0]
		model.categories[column] = values[1:]

		for _, v := range values[1:] {
			model.indicatorNames = append(model.indicatorNames, column+"="+v)
		}
	}

	return model, nil
}

// EncodingModel はfit時に確定したカテゴリ集合と指示変数列の順序を保持する。
// fit後に変更されることはなく、任意のパーティションの変換に再利用できる。
type EncodingModel struct {
	columns        []string
	reference      map[string]string
	categories     map[string][]string
	indicatorNames []string
}

// ColumnNames は出力される指示変数列名を出力順で返す
func (m *EncodingModel) ColumnNames() []string {
	out := make([]string, len(m.indicatorNames))
	copy(out, m.indicatorNames)
	return out
}

// Reference は指定列の参照レベル（落とされた値）を返す
func (m *EncodingModel) Reference(column string) string {
	return m.reference[column]
}

// Categories は指定列の保持カテゴリをソート順で返す
func (m *EncodingModel) Categories(column string) []string {
	out := make([]string, len(m.categories[column]))
	copy(out, m.categories[column])
	return out
}

// Transform はレコード列を指示変数テーブルへ変換する。
// 列の順序はfit時に確定したものと常に一致する。
// fit時に存在しなかったカテゴリ値は全て0の指示変数となり、
// UnseenCategoryWarningがcollectorに登録される。
func (m *EncodingModel) Transform(records []dataset.Record, collector *errors.Collector) (*dataset.Table, error) {
	// 全列が単一カテゴリだった場合、参照レベルが落とされて指示変数列が
	// 残らない。gonumは0列の行列を許さないため空テーブルで表現する。
	var data *mat.Dense
	if len(m.indicatorNames) > 0 {
		data = mat.NewDense(len(records), len(m.indicatorNames), nil)
	}

	for i, r := range records {
		offset := 0
		for _, column := range m.columns {
			v, err := categoricalValue(r, column)
			if err != nil {
				return nil, err
			}

			retained := m.categories[column]
			hit := false
			for j, category := range retained {
				if v == category {
					data.Set(i, offset+j, 1)
					hit = true
					break
				}
			}
			if !hit && v != m.reference[column] {
				collector.Collect(errors.NewUnseenCategoryWarning(column, v, i))
			}
			offset += len(retained)
		}
	}

	if data == nil {
		return dataset.NewEmptyTable(len(records)), nil
	}
	return dataset.NewTable(m.indicatorNames, data)
}

func categoricalValue(r dataset.Record, column string) (string, error) {
	switch column {
	case NeighborhoodColumn:
		return r.Neighborhood, nil
	case PropertyTypeColumn:
		return r.PropertyType, nil
	default:
		return "", errors.NewValueError("preprocessing.categoricalValue", "unknown categorical column "+column)
	}
}

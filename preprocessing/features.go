package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/homeprice/dataset"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

// 導出後の数値特徴量の列名（出力順）
var BaseFeatureColumns = []string{
	"SquareMeters",
	"Bathrooms",
	"Bedrooms",
	"Floors",
	"AgeOfBuilding",
	"TransportAccessibility",
}

// TargetColumn は回帰の目的変数名
const TargetColumn = "LogPrice"

// FeatureBuilder はレコード毎の純粋な特徴量導出を行う。
// 行間の状態は一切持たない。
type FeatureBuilder struct {
	// ReferenceYear はAgeOfBuilding導出の基準年 (デフォルト: 2024)
	ReferenceYear int
}

// NewFeatureBuilder はデフォルト設定のFeatureBuilderを作成する
func NewFeatureBuilder() *FeatureBuilder {
	return &FeatureBuilder{ReferenceYear: 2024}
}

// Build は数値特徴量テーブルと目的変数ベクトル（LogPrice）を導出する。
//
// 導出則:
//   - AgeOfBuilding = ReferenceYear − BuildingAge
//   - LogPrice = ln(Price)。Price ≤ 0 の場合はDomainError（−Infは返さない）
//   - TransportAccessibility = 1 if Floors < 3 else 0（境界は厳密比較）
func (f *FeatureBuilder) Build(records []dataset.Record) (*dataset.Table, *mat.VecDense, error) {
	if len(records) == 0 {
		return nil, nil, errors.NewModelError("FeatureBuilder.Build", "empty data", errors.ErrEmptyData)
	}

	n := len(records)
	data := mat.NewDense(n, len(BaseFeatureColumns), nil)
	target := mat.NewVecDense(n, nil)

	for i, r := range records {
		if r.Price <= 0 {
			return nil, nil, errors.NewDomainError("FeatureBuilder.LogPrice", i, r.Price)
		}

		transport := 0.0
		if r.Floors < 3 {
			transport = 1.0
		}

		data.Set(i, 0, r.SquareMeters)
		data.Set(i, 1, float64(r.Bathrooms))
		data.Set(i, 2, float64(r.Bedrooms))
		data.Set(i, 3, float64(r.Floors))
		data.Set(i, 4, float64(f.ReferenceYear-r.BuildingAge))
		data.Set(i, 5, transport)

		target.SetVec(i, math.Log(r.Price))
	}

	table, err := dataset.NewTable(BaseFeatureColumns, data)
	if err != nil {
		return nil, nil, err
	}
	return table, target, nil
}

// Package preprocessing はレコードの前処理ステージ
// （外れ値除去、特徴量導出、カテゴリエンコード、標準化）を提供します。
package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/homeprice/dataset"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

// PriceOutlierCleaner はIQRルールによる価格外れ値の除去を行う。
// 分位点は線形補間で推定される。
type PriceOutlierCleaner struct {
	// LowerQuantile は下側分位点 (デフォルト: 0.25)
	LowerQuantile float64

	// UpperQuantile は上側分位点 (デフォルト: 0.75)
	UpperQuantile float64

	// Multiplier はIQRの倍率 (デフォルト: 1.5)
	Multiplier float64
}

// NewPriceOutlierCleaner はデフォルト設定のPriceOutlierCleanerを作成する
func NewPriceOutlierCleaner() *PriceOutlierCleaner {
	return &PriceOutlierCleaner{
		LowerQuantile: 0.25,
		UpperQuantile: 0.75,
		Multiplier:    1.5,
	}
}

// Bounds はフィルタ前の価格分布から保持区間 [Q1−k·IQR, Q3+k·IQR] を計算する。
// 分位点はgonumのstat.LinInterp（R-4方式、h = n·p の線形補間）による。
// numpy/pandasのデフォルト（R-7方式）とは補間位置が異なる点に注意。
// 行数が4未満の場合は分位点が定義できないためInsufficientDataErrorを返す。
func (c *PriceOutlierCleaner) Bounds(records []dataset.Record) (lower, upper float64, err error) {
	if len(records) < 4 {
		return 0, 0, errors.NewInsufficientDataError("PriceOutlierCleaner.Bounds", 4, len(records))
	}

	prices := make([]float64, len(records))
	for i, r := range records {
		prices[i] = r.Price
	}
	sort.Float64s(prices)

	q1 := stat.Quantile(c.LowerQuantile, stat.LinInterp, prices, nil)
	q3 := stat.Quantile(c.UpperQuantile, stat.LinInterp, prices, nil)
	iqr := q3 - q1

	return q1 - c.Multiplier*iqr, q3 + c.Multiplier*iqr, nil
}

// Clean は保持区間外の価格を持つレコードを除去し、入力順を保った
// 新しいスライスを返す。境界値と等しい価格は保持される（厳密比較）。
func (c *PriceOutlierCleaner) Clean(records []dataset.Record) ([]dataset.Record, error) {
	lower, upper, err := c.Bounds(records)
	if err != nil {
		return nil, err
	}

	kept := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		if r.Price < lower || r.Price > upper {
			continue
		}
		kept = append(kept, r)
	}
	return kept, nil
}

package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/homeprice/dataset"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

func recordsWithPrices(prices []float64) []dataset.Record {
	records := make([]dataset.Record, len(prices))
	for i, p := range prices {
		records[i] = dataset.Record{
			Price: p, SquareMeters: 50,
			Bathrooms: 1, Bedrooms: 2, Floors: 1, BuildingAge: 10,
			Neighborhood: "Centro", PropertyType: "Apartment",
		}
	}
	return records
}

func TestCleanRemovesSingleOutlier(t *testing.T) {
	// 最後の5000が意図的な外れ値
	prices := []float64{100, 105, 110, 115, 120, 125, 130, 135, 140, 5000}
	cleaner := NewPriceOutlierCleaner()

	kept, err := cleaner.Clean(recordsWithPrices(prices))
	require.NoError(t, err)

	require.Len(t, kept, 9, "exactly the 5000 row must be removed")
	for _, r := range kept {
		assert.NotEqual(t, 5000.0, r.Price)
	}
}

func TestCleanOutputIsSubsetWithinBounds(t *testing.T) {
	prices := []float64{90, 200, 210, 220, 230, 240, 250, 260, 900, 1500}
	records := recordsWithPrices(prices)
	cleaner := NewPriceOutlierCleaner()

	lower, upper, err := cleaner.Bounds(records)
	require.NoError(t, err)

	kept, err := cleaner.Clean(records)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(kept), len(records))
	for _, r := range kept {
		assert.False(t, r.Price < lower || r.Price > upper,
			"price %v escaped the pre-filter bounds [%v, %v]", r.Price, lower, upper)
	}

	// 保持行が入力の部分列であること（順序保存）
	i := 0
	for _, r := range kept {
		for i < len(records) && records[i].Price != r.Price {
			i++
		}
		require.Less(t, i, len(records), "kept row is not a subsequence of the input")
		i++
	}
}

func TestCleanBoundaryValuesAreKept(t *testing.T) {
	// 全て等しい価格ならIQR=0で、境界値と等しい行は全て保持される
	prices := []float64{100, 100, 100, 100, 100}
	cleaner := NewPriceOutlierCleaner()

	kept, err := cleaner.Clean(recordsWithPrices(prices))
	require.NoError(t, err)
	assert.Len(t, kept, 5)
}

func TestCleanInsufficientData(t *testing.T) {
	cleaner := NewPriceOutlierCleaner()

	_, err := cleaner.Clean(recordsWithPrices([]float64{100, 200, 300}))
	var insufficientErr *errors.InsufficientDataError
	require.True(t, errors.As(err, &insufficientErr), "want InsufficientDataError, got %v", err)
	assert.Equal(t, 4, insufficientErr.Required)
	assert.Equal(t, 3, insufficientErr.Got)
}

func TestCleanResultIndependentOfRowOrder(t *testing.T) {
	prices := []float64{100, 105, 110, 115, 120, 125, 130, 135, 140, 5000}
	reversed := make([]float64, len(prices))
	for i, p := range prices {
		reversed[len(prices)-1-i] = p
	}
	cleaner := NewPriceOutlierCleaner()

	keptA, err := cleaner.Clean(recordsWithPrices(prices))
	require.NoError(t, err)
	keptB, err := cleaner.Clean(recordsWithPrices(reversed))
	require.NoError(t, err)

	pricesOf := func(rs []dataset.Record) map[float64]int {
		out := map[float64]int{}
		for _, r := range rs {
			out[r.Price]++
		}
		return out
	}
	assert.Equal(t, pricesOf(keptA), pricesOf(keptB), "retained set must not depend on row order")
}

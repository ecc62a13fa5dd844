package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/homeprice/dataset"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

func categoricalRecords(neighborhoods []string) []dataset.Record {
	records := make([]dataset.Record, len(neighborhoods))
	for i, n := range neighborhoods {
		records[i] = dataset.Record{
			Price: 100, SquareMeters: 50, Floors: 1, BuildingAge: 10,
			Neighborhood: n, PropertyType: "Apartment",
		}
	}
	return records
}

func TestFitDropsReferenceLevel(t *testing.T) {
	records := categoricalRecords([]string{"C", "A", "B", "A"})

	model, err := NewOneHotEncoder().Fit(records)
	require.NoError(t, err)

	// 辞書順で先頭の"A"が参照レベルになる
	assert.Equal(t, "A", model.Reference(NeighborhoodColumn))
	assert.Equal(t, []string{"B", "C"}, model.Categories(NeighborhoodColumn))

	// PropertyTypeは単一カテゴリなので指示変数を生まない
	assert.Equal(t, []string{"Neighborhood=B", "Neighborhood=C"}, model.ColumnNames())
}

func TestTransformRoundTrip(t *testing.T) {
	records := categoricalRecords([]string{"A", "B", "C"})

	model, err := NewOneHotEncoder().Fit(records)
	require.NoError(t, err)

	collector := errors.NewCollector()
	table, err := model.Transform(records, collector)
	require.NoError(t, err)
	assert.Zero(t, collector.Len())

	// 参照レベルの行は全て0、それ以外はちょうど一つの1を持つ
	wantRows := [][]float64{
		{0, 0}, // A (reference)
		{1, 0}, // B
		{0, 1}, // C
	}
	for i, want := range wantRows {
		for j, col := range model.ColumnNames() {
			got, err := table.At(i, col)
			require.NoError(t, err)
			assert.Equal(t, want[j], got, "row %d column %s", i, col)
		}
	}
}

func TestTransformUnseenCategory(t *testing.T) {
	model, err := NewOneHotEncoder().Fit(categoricalRecords([]string{"A", "B", "C"}))
	require.NoError(t, err)

	collector := errors.NewCollector()
	table, err := model.Transform(categoricalRecords([]string{"D"}), collector)
	require.NoError(t, err)

	// 未知カテゴリは全て0の指示変数と警告になる
	for _, col := range []string{"Neighborhood=B", "Neighborhood=C"} {
		v, err := table.At(0, col)
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	}

	warnings := collector.Warnings()
	require.Len(t, warnings, 1)
	var unseen *errors.UnseenCategoryWarning
	require.True(t, errors.As(warnings[0], &unseen))
	assert.Equal(t, NeighborhoodColumn, unseen.Column)
	assert.Equal(t, "D", unseen.Value)
	assert.Equal(t, 0, unseen.Row)
}

func TestTransformColumnOrderIsStable(t *testing.T) {
	fitRecords := categoricalRecords([]string{"B", "C", "A"})
	model, err := NewOneHotEncoder().Fit(fitRecords)
	require.NoError(t, err)

	first, err := model.Transform(fitRecords, nil)
	require.NoError(t, err)

	// 異なるパーティション（順序も内容も異なる）でも列順は同一
	second, err := model.Transform(categoricalRecords([]string{"C", "C", "B", "A"}), nil)
	require.NoError(t, err)

	assert.Equal(t, first.Columns(), second.Columns())
	assert.Equal(t, model.ColumnNames(), second.Columns())
}

func TestFitEmptyInput(t *testing.T) {
	_, err := NewOneHotEncoder().Fit(nil)
	assert.Error(t, err)
}

func TestTransformSingleCategoryFit(t *testing.T) {
	// 全てのカテゴリ列が単一値の場合、参照レベルが落とされて
	// 指示変数列が一つも残らない。変換は空テーブルで続行される。
	records := categoricalRecords([]string{"A", "A"})

	model, err := NewOneHotEncoder().Fit(records)
	require.NoError(t, err)
	assert.Empty(t, model.ColumnNames())

	collector := errors.NewCollector()
	table, err := model.Transform(records, collector)
	require.NoError(t, err)
	assert.Equal(t, 2, table.NumRows())
	assert.Equal(t, 0, table.NumCols())
	assert.Zero(t, collector.Len())

	// 未知カテゴリは列がなくても警告になる
	unseen, err := model.Transform(categoricalRecords([]string{"B"}), collector)
	require.NoError(t, err)
	assert.Equal(t, 1, unseen.NumRows())
	assert.Equal(t, 1, collector.Len())
}

package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/homeprice/dataset"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

var testNeighborhoods = []string{"North", "South", "East"}
var testPropertyTypes = []string{"Apartment", "House"}

// syntheticRecords builds a deterministic housing sample where price
// grows with area and falls with age, plus category effects.
func syntheticRecords(n int) []dataset.Record {
	records := make([]dataset.Record, n)
	for i := 0; i < n; i++ {
		area := 40.0 + float64(i%60)*2.5
		age := i % 50
		floors := 1 + i%5
		neighborhood := testNeighborhoods[i%len(testNeighborhoods)]
		propertyType := testPropertyTypes[i%len(testPropertyTypes)]

		price := 3000.0*area - 800.0*float64(age) + 15000.0*float64(floors)
		if neighborhood == "North" {
			price += 25000
		}
		if propertyType == "House" {
			price += 40000
		}
		records[i] = dataset.Record{
			Price:        price,
			SquareMeters: area,
			Bathrooms:    1 + i%3,
			Bedrooms:     1 + i%4,
			Floors:       floors,
			BuildingAge:  age,
			Neighborhood: neighborhood,
			PropertyType: propertyType,
		}
	}
	return records
}

func TestRunEndToEnd(t *testing.T) {
	records := syntheticRecords(120)

	results, err := Run(records, DefaultConfig())
	require.NoError(t, err)

	assert.NoError(t, results.VIFErr)
	require.NotNil(t, results.VIF)

	require.NotNil(t, results.Ridge)
	require.NotNil(t, results.Lasso)
	require.NotNil(t, results.GBT)
	assert.Empty(t, results.ModelErrs)

	for _, family := range []string{FamilyRidge, FamilyLasso, FamilyGBT} {
		report, ok := results.Reports[family]
		require.True(t, ok, "missing report for %s", family)
		assert.False(t, math.IsNaN(report.RMSE))
		assert.Len(t, report.Residuals, len(results.Split.Test))
		assert.Len(t, report.Importances, len(results.FeatureNames))
	}

	// The linear families should explain most of a log-linear signal.
	assert.Greater(t, results.Reports[FamilyRidge].R2, 0.7)
}

func TestRunFeatureColumns(t *testing.T) {
	records := syntheticRecords(120)

	results, err := Run(records, DefaultConfig())
	require.NoError(t, err)

	names := map[string]bool{}
	for _, name := range results.FeatureNames {
		names[name] = true
	}
	for _, base := range []string{"SquareMeters", "Bathrooms", "Bedrooms", "Floors", "AgeOfBuilding", "TransportAccessibility"} {
		assert.True(t, names[base], "missing base column %s", base)
	}
	// Reference levels (lexicographically first) are dropped.
	assert.False(t, names["Neighborhood=East"], "reference level must be dropped")
	assert.False(t, names["PropertyType=Apartment"], "reference level must be dropped")
	assert.True(t, names["Neighborhood=North"])
	assert.True(t, names["Neighborhood=South"])
	assert.True(t, names["PropertyType=House"])
}

func TestRunDeterminism(t *testing.T) {
	records := syntheticRecords(100)
	cfg := DefaultConfig()
	cfg.GBT.SubsampleFraction = 0.8

	a, err := Run(records, cfg)
	require.NoError(t, err)
	b, err := Run(records, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Split.Test, b.Split.Test)
	assert.Equal(t, a.Ridge.BestAlpha, b.Ridge.BestAlpha)
	assert.Equal(t, a.Lasso.BestAlpha, b.Lasso.BestAlpha)
	for family, report := range a.Reports {
		assert.Equal(t, report.RMSE, b.Reports[family].RMSE, "family %s", family)
	}
}

func TestRunSplitSeedChangesPartition(t *testing.T) {
	records := syntheticRecords(100)

	cfgA := DefaultConfig()
	cfgA.SplitSeed = 1
	cfgB := DefaultConfig()
	cfgB.SplitSeed = 2

	a, err := Run(records, cfgA)
	require.NoError(t, err)
	b, err := Run(records, cfgB)
	require.NoError(t, err)

	assert.NotEqual(t, a.Split.Test, b.Split.Test)
}

func TestRunRejectsInvalidRecords(t *testing.T) {
	records := syntheticRecords(50)
	records[10].Price = -5

	_, err := Run(records, DefaultConfig())
	require.Error(t, err)
}

func TestRunInsufficientData(t *testing.T) {
	records := syntheticRecords(3)

	_, err := Run(records, DefaultConfig())
	require.Error(t, err)
	var insufficient *errors.InsufficientDataError
	assert.True(t, errors.As(err, &insufficient))
}

func TestRunSingleCategoryDataset(t *testing.T) {
	// Every listing shares one neighborhood and one property type: the
	// encoder drops both reference levels and contributes no indicator
	// columns. The run must proceed on the base features alone.
	records := syntheticRecords(120)
	for i := range records {
		records[i].Neighborhood = "North"
		records[i].PropertyType = "House"
	}

	results, err := Run(records, DefaultConfig())
	require.NoError(t, err)

	for _, name := range results.FeatureNames {
		assert.NotContains(t, name, "=", "no indicator columns expected, got %s", name)
	}
	assert.Len(t, results.FeatureNames, 6)

	require.NotNil(t, results.Ridge)
	require.NotNil(t, results.GBT)
	for _, family := range []string{FamilyRidge, FamilyLasso, FamilyGBT} {
		report, ok := results.Reports[family]
		require.True(t, ok, "missing report for %s", family)
		assert.Len(t, report.Importances, 6)
	}
}

func TestRunCollectsZeroVarianceWarning(t *testing.T) {
	records := syntheticRecords(80)
	// Pin every building to a single floor plan so the derived
	// transport indicator is constant.
	for i := range records {
		records[i].Floors = 1
	}

	results, err := Run(records, DefaultConfig())
	require.NoError(t, err)

	var zeroVar *errors.ZeroVarianceError
	found := false
	for _, warning := range results.Warnings {
		if errors.As(warning, &zeroVar) {
			found = true
			break
		}
	}
	assert.True(t, found, "constant column should produce a collected ZeroVarianceError")
}

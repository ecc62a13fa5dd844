package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/homeprice/dataset"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

func TestBuildDerivesFeatures(t *testing.T) {
	records := []dataset.Record{
		{Price: 100000, SquareMeters: 75, Bathrooms: 1, Bedrooms: 2, Floors: 2, BuildingAge: 30, Neighborhood: "Centro", PropertyType: "Apartment"},
		{Price: 200000, SquareMeters: 120, Bathrooms: 2, Bedrooms: 3, Floors: 3, BuildingAge: 4, Neighborhood: "Norte", PropertyType: "House"},
	}

	builder := NewFeatureBuilder()
	table, target, err := builder.Build(records)
	require.NoError(t, err)

	assert.Equal(t, BaseFeatureColumns, table.Columns())
	assert.Equal(t, 2, table.NumRows())

	age, err := table.Col("AgeOfBuilding")
	require.NoError(t, err)
	assert.Equal(t, []float64{1994, 2020}, age)

	transport, err := table.Col("TransportAccessibility")
	require.NoError(t, err)
	assert.Equal(t, 1.0, transport[0], "Floors=2 is below the boundary")
	assert.Equal(t, 0.0, transport[1], "Floors=3 is at the boundary and must map to 0")

	assert.InDelta(t, math.Log(100000), target.AtVec(0), 1e-12)
	assert.InDelta(t, math.Log(200000), target.AtVec(1), 1e-12)
}

func TestBuildRejectsNonPositivePrice(t *testing.T) {
	records := []dataset.Record{
		{Price: 100000, SquareMeters: 75, Floors: 1, BuildingAge: 5, Neighborhood: "A", PropertyType: "B"},
		{Price: 0, SquareMeters: 75, Floors: 1, BuildingAge: 5, Neighborhood: "A", PropertyType: "B"},
	}

	builder := NewFeatureBuilder()
	_, _, err := builder.Build(records)

	var domainErr *errors.DomainError
	require.True(t, errors.As(err, &domainErr), "Price=0 must raise DomainError, got %v", err)
	assert.Equal(t, 1, domainErr.Row)
	assert.Equal(t, 0.0, domainErr.Value)
}

func TestBuildReferenceYearIsConfigurable(t *testing.T) {
	builder := &FeatureBuilder{ReferenceYear: 2000}
	table, _, err := builder.Build([]dataset.Record{
		{Price: 1, SquareMeters: 1, Floors: 0, BuildingAge: 25, Neighborhood: "A", PropertyType: "B"},
	})
	require.NoError(t, err)

	age, err := table.At(0, "AgeOfBuilding")
	require.NoError(t, err)
	assert.Equal(t, 1975.0, age)
}

func TestBuildEmptyInput(t *testing.T) {
	builder := NewFeatureBuilder()
	_, _, err := builder.Build(nil)
	assert.Error(t, err)
}

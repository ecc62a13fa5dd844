// Package dataset defines the listing record schema and the named
// feature-matrix type handed between pipeline stages.
package dataset

import (
	"fmt"

	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

// Record is one real-estate listing. Records are value types and are
// never mutated after ingestion.
type Record struct {
	Price        float64
	SquareMeters float64
	Bathrooms    int
	Bedrooms     int
	Floors       int
	BuildingAge  int
	Neighborhood string
	PropertyType string
}

// Required input columns, in the order of the external schema contract.
var RequiredColumns = []string{
	"Price",
	"Square Meters",
	"Bathrooms",
	"Bedrooms",
	"Floors",
	"Building Age",
	"Neighborhood",
	"Property Type",
}

// CheckSchema verifies that an ingested relation carries every required
// column. It is the ingestion collaborator's entry contract and must be
// called before any stage runs. Missing columns produce a
// SchemaMismatchError listing all of them at once.
func CheckSchema(columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	var missing []string
	for _, required := range RequiredColumns {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return errors.NewSchemaMismatchError(missing)
	}
	return nil
}

// ValidateRecords checks the per-column type constraints of the input
// schema: positive price and area, non-negative counts, non-empty
// categorical values. The first violation aborts with a
// SchemaMismatchError naming the offending column.
func ValidateRecords(records []Record) error {
	for i, r := range records {
		switch {
		case r.Price <= 0:
			return errors.NewSchemaTypeError("Price", fmt.Sprintf("row %d: must be a positive real, got %g", i, r.Price))
		case r.SquareMeters <= 0:
			return errors.NewSchemaTypeError("Square Meters", fmt.Sprintf("row %d: must be a positive real, got %g", i, r.SquareMeters))
		case r.Bathrooms < 0:
			return errors.NewSchemaTypeError("Bathrooms", fmt.Sprintf("row %d: must be a non-negative integer, got %d", i, r.Bathrooms))
		case r.Bedrooms < 0:
			return errors.NewSchemaTypeError("Bedrooms", fmt.Sprintf("row %d: must be a non-negative integer, got %d", i, r.Bedrooms))
		case r.Floors < 0:
			return errors.NewSchemaTypeError("Floors", fmt.Sprintf("row %d: must be a non-negative integer, got %d", i, r.Floors))
		case r.BuildingAge < 0:
			return errors.NewSchemaTypeError("Building Age", fmt.Sprintf("row %d: must be a non-negative integer, got %d", i, r.BuildingAge))
		case r.Neighborhood == "":
			return errors.NewSchemaTypeError("Neighborhood", fmt.Sprintf("row %d: must be a non-empty categorical string", i))
		case r.PropertyType == "":
			return errors.NewSchemaTypeError("Property Type", fmt.Sprintf("row %d: must be a non-empty categorical string", i))
		}
	}
	return nil
}

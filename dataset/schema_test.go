package dataset

import (
	"testing"

	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

func TestCheckSchema(t *testing.T) {
	tests := []struct {
		name        string
		columns     []string
		wantErr     bool
		wantMissing int
	}{
		{
			name:    "complete schema",
			columns: RequiredColumns,
			wantErr: false,
		},
		{
			name: "extra columns are allowed",
			columns: append([]string{"Listing ID", "Agent"},
				RequiredColumns...),
			wantErr: false,
		},
		{
			name:        "missing price and floors",
			columns:     []string{"Square Meters", "Bathrooms", "Bedrooms", "Building Age", "Neighborhood", "Property Type"},
			wantErr:     true,
			wantMissing: 2,
		},
		{
			name:        "empty relation header",
			columns:     nil,
			wantErr:     true,
			wantMissing: len(RequiredColumns),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSchema(tt.columns)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckSchema() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var schemaErr *errors.SchemaMismatchError
				if !errors.As(err, &schemaErr) {
					t.Fatalf("error is %T, want *SchemaMismatchError", err)
				}
				if len(schemaErr.MissingColumns) != tt.wantMissing {
					t.Errorf("missing = %v, want %d columns", schemaErr.MissingColumns, tt.wantMissing)
				}
			}
		})
	}
}

func TestValidateRecords(t *testing.T) {
	valid := Record{
		Price: 250000, SquareMeters: 80,
		Bathrooms: 1, Bedrooms: 2, Floors: 1, BuildingAge: 12,
		Neighborhood: "Centro", PropertyType: "Apartment",
	}

	tests := []struct {
		name    string
		mutate  func(Record) Record
		wantCol string
	}{
		{"valid record", func(r Record) Record { return r }, ""},
		{"zero price", func(r Record) Record { r.Price = 0; return r }, "Price"},
		{"negative area", func(r Record) Record { r.SquareMeters = -1; return r }, "Square Meters"},
		{"negative bathrooms", func(r Record) Record { r.Bathrooms = -1; return r }, "Bathrooms"},
		{"negative building age", func(r Record) Record { r.BuildingAge = -3; return r }, "Building Age"},
		{"empty neighborhood", func(r Record) Record { r.Neighborhood = ""; return r }, "Neighborhood"},
		{"empty property type", func(r Record) Record { r.PropertyType = ""; return r }, "Property Type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecords([]Record{valid, tt.mutate(valid)})
			if tt.wantCol == "" {
				if err != nil {
					t.Fatalf("ValidateRecords() = %v, want nil", err)
				}
				return
			}
			var schemaErr *errors.SchemaMismatchError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("error is %T, want *SchemaMismatchError", err)
			}
			if schemaErr.Column != tt.wantCol {
				t.Errorf("offending column = %q, want %q", schemaErr.Column, tt.wantCol)
			}
		})
	}
}

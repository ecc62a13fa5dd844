// Package diagnostics computes informational model diagnostics.
// Diagnostics never alter the feature set; callers decide what to do
// with the numbers.
package diagnostics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/homeprice/dataset"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

// VIFEntry is the variance inflation factor of one feature.
type VIFEntry struct {
	Feature string
	Value   float64
}

// VIFTable maps each feature to its variance inflation factor, in the
// feature order of the analyzed matrix.
type VIFTable struct {
	Entries []VIFEntry
}

// Get returns the VIF of a named feature.
func (t *VIFTable) Get(feature string) (float64, bool) {
	for _, e := range t.Entries {
		if e.Feature == feature {
			return e.Value, true
		}
	}
	return 0, false
}

// ComputeVIF calculates the variance inflation factor of every feature in
// the (already scaled) numeric table. VIF_j equals the j-th diagonal entry
// of the inverse of the feature correlation matrix, which is 1/(1-R²_j)
// for a regression of feature j on all other features.
//
// Perfectly collinear features make the correlation matrix singular; the
// returned SingularMatrixError names the implicated features.
func ComputeVIF(table *dataset.Table) (*VIFTable, error) {
	columns := table.Columns()
	p := len(columns)
	if p == 0 {
		return nil, errors.NewModelError("diagnostics.ComputeVIF", "empty data", errors.ErrEmptyData)
	}
	if table.NumRows() < 2 {
		return nil, errors.NewInsufficientDataError("diagnostics.ComputeVIF", 2, table.NumRows())
	}

	corr := mat.NewSymDense(p, nil)
	stat.CorrelationMatrix(corr, table.Matrix(), nil)

	// A zero-variance column yields NaN correlations before inversion.
	if bad := nonFiniteColumns(corr, columns); len(bad) > 0 {
		return nil, errors.NewSingularMatrixError("diagnostics.ComputeVIF", bad)
	}

	var inv mat.Dense
	if err := inv.Inverse(corr); err != nil {
		return nil, errors.NewSingularMatrixError("diagnostics.ComputeVIF", implicatedFeatures(corr, columns))
	}

	result := &VIFTable{Entries: make([]VIFEntry, p)}
	for j := 0; j < p; j++ {
		v := inv.At(j, j)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.NewSingularMatrixError("diagnostics.ComputeVIF", implicatedFeatures(corr, columns))
		}
		result.Entries[j] = VIFEntry{Feature: columns[j], Value: v}
	}
	return result, nil
}

func nonFiniteColumns(corr *mat.SymDense, columns []string) []string {
	var bad []string
	for j := range columns {
		for k := range columns {
			if math.IsNaN(corr.At(j, k)) || math.IsInf(corr.At(j, k), 0) {
				bad = append(bad, columns[j])
				break
			}
		}
	}
	return bad
}

// implicatedFeatures names the features most likely responsible for a
// singular correlation matrix: any pair with |r| numerically equal to 1.
// If no such pair exists (a combination of three or more features), every
// feature is reported.
func implicatedFeatures(corr *mat.SymDense, columns []string) []string {
	const tol = 1e-10

	named := make(map[string]bool)
	var out []string
	for j := 0; j < len(columns); j++ {
		for k := j + 1; k < len(columns); k++ {
			if math.Abs(corr.At(j, k)) >= 1-tol {
				for _, name := range []string{columns[j], columns[k]} {
					if !named[name] {
						named[name] = true
						out = append(out, name)
					}
				}
			}
		}
	}
	if len(out) == 0 {
		return append([]string(nil), columns...)
	}
	return out
}

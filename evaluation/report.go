// Package evaluation assembles held-out performance reports for fitted
// regressors: error metrics, residuals, and a ranked feature importance
// table.
package evaluation

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/homeprice/core/model"
	"github.com/YuminosukeSato/homeprice/metrics"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

// Importance is one row of the ranked importance table.
type Importance struct {
	Feature string
	Score   float64
}

// Report summarizes a model's performance on a held-out partition.
type Report struct {
	// RMSE is the root mean squared error on the held-out rows.
	RMSE float64
	// R2 is the coefficient of determination, with the total sum of
	// squares taken around the held-out target mean.
	R2 float64
	// Importances is ranked descending by score; equal scores keep
	// their original feature order.
	Importances []Importance
	// Residuals is actual minus predicted, parallel to the input rows.
	Residuals []float64
}

// Evaluate predicts on the held-out partition and assembles the report.
// If the model reports feature importances their length must match
// featureNames; models without importances produce an empty table.
func Evaluate(m model.Regressor, XTest mat.Matrix, yTest *mat.VecDense, featureNames []string) (*Report, error) {
	rows, _ := XTest.Dims()
	if yTest.Len() != rows {
		return nil, errors.NewDimensionError("evaluation.Evaluate", rows, yTest.Len(), 0)
	}

	pred, err := m.Predict(XTest)
	if err != nil {
		return nil, errors.Wrap(err, "evaluation.Evaluate: prediction failed")
	}

	predVec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		predVec.SetVec(i, pred.At(i, 0))
	}

	rmse, err := metrics.RMSE(yTest, predVec)
	if err != nil {
		return nil, err
	}
	r2, err := metrics.R2Score(yTest, predVec)
	if err != nil {
		return nil, err
	}
	residuals, err := metrics.Residuals(yTest, predVec)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RMSE:      rmse,
		R2:        r2,
		Residuals: residuals,
	}

	if importer, ok := m.(model.FeatureImporter); ok {
		scores := importer.FeatureImportance()
		if scores != nil {
			if len(scores) != len(featureNames) {
				return nil, errors.NewDimensionError("evaluation.Evaluate", len(featureNames), len(scores), 1)
			}
			report.Importances = rankImportances(featureNames, scores)
		}
	}

	return report, nil
}

// rankImportances pairs names with scores and sorts descending. The
// stable sort keeps equal-scored features in input order.
func rankImportances(names []string, scores []float64) []Importance {
	ranked := make([]Importance, len(names))
	for j := range names {
		ranked[j] = Importance{Feature: names[j], Score: scores[j]}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	return ranked
}

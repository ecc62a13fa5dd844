package modelselection

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/homeprice/core/model"
	"github.com/YuminosukeSato/homeprice/core/parallel"
	"github.com/YuminosukeSato/homeprice/metrics"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
	"github.com/YuminosukeSato/homeprice/pkg/log"
)

// GridSearchCV performs k-fold cross-validated hyperparameter search for
// one regularized linear model family. The score of a candidate is the
// mean negative MSE over the held-out folds (higher is better).
type GridSearchCV struct {
	// Name identifies the model family in logs and results.
	Name string

	// Alphas is the ordered hyperparameter grid. On an exact score tie
	// the earlier entry wins.
	Alphas []float64

	// K is the number of folds (default 5).
	K int

	// NewModel builds a fresh unfitted model for a grid value.
	NewModel func(alpha float64) model.Regressor
}

// NewGridSearchCV creates a search over the given grid with defaults
// filled in.
func NewGridSearchCV(name string, alphas []float64, newModel func(alpha float64) model.Regressor) *GridSearchCV {
	return &GridSearchCV{
		Name:     name,
		Alphas:   alphas,
		K:        5,
		NewModel: newModel,
	}
}

// SearchResult is the outcome of a grid search: the winning
// hyperparameter, its cross-validated score, the per-candidate mean
// scores in grid order, and the winner refit on the whole training
// partition.
type SearchResult struct {
	Name       string
	BestAlpha  float64
	BestScore  float64
	MeanScores []float64
	Model      model.Regressor
}

// Search runs the cross-validated grid search over the training
// partition. Fold assignment is computed once up front; the per-candidate
// loop runs on worker goroutines writing to index-separated slots, so the
// result is identical to a sequential run.
func (g *GridSearchCV) Search(X mat.Matrix, y *mat.VecDense) (*SearchResult, error) {
	if len(g.Alphas) == 0 {
		return nil, errors.NewValueError("GridSearchCV.Search", "empty hyperparameter grid")
	}
	k := g.K
	if k == 0 {
		k = 5
	}

	n, _ := X.Dims()
	if y.Len() != n {
		return nil, errors.NewDimensionError("GridSearchCV.Search", n, y.Len(), 0)
	}

	folds, err := KFoldSplit(n, k)
	if err != nil {
		return nil, err
	}

	meanScores := make([]float64, len(g.Alphas))
	candidateErrs := make([]error, len(g.Alphas))

	parallel.ForWithThreshold(len(g.Alphas), 1, func(start, end int) {
		for c := start; c < end; c++ {
			meanScores[c], candidateErrs[c] = g.scoreCandidate(X, y, folds, g.Alphas[c])
		}
	})

	for _, err := range candidateErrs {
		if err != nil {
			return nil, err
		}
	}

	best := 0
	for c := 1; c < len(meanScores); c++ {
		// Strictly greater: ties keep the earlier grid entry.
		if meanScores[c] > meanScores[best] {
			best = c
		}
	}

	final := g.NewModel(g.Alphas[best])
	yCol := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		yCol.Set(i, 0, y.AtVec(i))
	}
	if err := final.Fit(X, yCol); err != nil {
		return nil, errors.Wrapf(err, "GridSearchCV.Search: refit of %s failed", g.Name)
	}

	logger := log.GetLoggerWithName("modelselection.gridsearch")
	logger.Info("grid search complete",
		"family", g.Name,
		log.AlphaKey, g.Alphas[best],
		log.ScoreKey, meanScores[best],
		log.FoldsKey, k,
	)

	return &SearchResult{
		Name:       g.Name,
		BestAlpha:  g.Alphas[best],
		BestScore:  meanScores[best],
		MeanScores: meanScores,
		Model:      final,
	}, nil
}

// scoreCandidate trains the candidate k times, holding out one fold per
// round, and returns the mean negative MSE over the held-out folds.
func (g *GridSearchCV) scoreCandidate(X mat.Matrix, y *mat.VecDense, folds []Fold, alpha float64) (float64, error) {
	var total float64
	for _, fold := range folds {
		trainX, trainY := takeRows(X, y, fold.Train)
		valX, valY := takeRows(X, y, fold.Validation)

		m := g.NewModel(alpha)
		if err := m.Fit(trainX, trainY); err != nil {
			return 0, errors.Wrapf(err, "GridSearchCV: fold fit failed for %s alpha=%g", g.Name, alpha)
		}

		pred, err := m.Predict(valX)
		if err != nil {
			return 0, errors.Wrapf(err, "GridSearchCV: fold prediction failed for %s alpha=%g", g.Name, alpha)
		}

		score, err := metrics.NegMSE(colVec(valY), colVec(pred))
		if err != nil {
			return 0, err
		}
		total += score
	}
	return total / float64(len(folds)), nil
}

func takeRows(X mat.Matrix, y *mat.VecDense, rows []int) (*mat.Dense, *mat.Dense) {
	_, c := X.Dims()
	outX := mat.NewDense(len(rows), c, nil)
	outY := mat.NewDense(len(rows), 1, nil)
	for i, src := range rows {
		for j := 0; j < c; j++ {
			outX.Set(i, j, X.At(src, j))
		}
		outY.Set(i, 0, y.AtVec(src))
	}
	return outX, outY
}

func colVec(m mat.Matrix) *mat.VecDense {
	r, _ := m.Dims()
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}

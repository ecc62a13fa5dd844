// Package pipeline orchestrates the batch regression run: outlier
// cleaning, feature derivation, train/test split, one-hot encoding,
// scaling, collinearity diagnostics, cross-validated model selection,
// and held-out evaluation.
//
// Stage statistics that must not leak across the split (encoder
// vocabulary, scaling mean/stddev) are fit on the training partition
// only and applied to both partitions through their immutable models.
package pipeline

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/homeprice/core/model"
	"github.com/YuminosukeSato/homeprice/dataset"
	"github.com/YuminosukeSato/homeprice/diagnostics"
	"github.com/YuminosukeSato/homeprice/ensemble"
	"github.com/YuminosukeSato/homeprice/evaluation"
	"github.com/YuminosukeSato/homeprice/linear"
	"github.com/YuminosukeSato/homeprice/modelselection"
	"github.com/YuminosukeSato/homeprice/pkg/errors"
	"github.com/YuminosukeSato/homeprice/pkg/log"
	"github.com/YuminosukeSato/homeprice/preprocessing"
)

// Model family keys used in Results.Reports and Results.ModelErrs.
const (
	FamilyRidge = "ridge"
	FamilyLasso = "lasso"
	FamilyGBT   = "gbt"
)

// GBTConfig carries the boosting hyperparameters.
type GBTConfig struct {
	NumTrees          int
	LearningRate      float64
	MaxDepth          int
	MinSamplesLeaf    int
	SubsampleFraction float64
}

// Config aggregates per-stage parameters. Zero values are filled in by
// DefaultConfig; Run validates the rest.
type Config struct {
	// Cleaner parameters; nil means the default IQR fence.
	Cleaner *preprocessing.PriceOutlierCleaner
	// ReferenceYear anchors the building-age derivation.
	ReferenceYear int
	// TestFraction is the held-out row fraction (default 0.2).
	TestFraction float64
	// SplitSeed drives the train/test shuffle.
	SplitSeed uint64
	// BoostSeed drives GBT row subsampling.
	BoostSeed uint64
	// K is the cross-validation fold count (default 5).
	K int
	// RidgeAlphas and LassoAlphas are the ordered hyperparameter grids.
	RidgeAlphas []float64
	LassoAlphas []float64
	// GBT holds the boosting hyperparameters.
	GBT GBTConfig
}

// DefaultConfig returns the standard run configuration.
func DefaultConfig() Config {
	return Config{
		Cleaner:       preprocessing.NewPriceOutlierCleaner(),
		ReferenceYear: 2024,
		TestFraction:  0.2,
		SplitSeed:     42,
		BoostSeed:     42,
		K:             5,
		RidgeAlphas:   []float64{0.01, 0.1, 1.0, 10.0, 100.0},
		LassoAlphas:   []float64{0.0001, 0.001, 0.01, 0.1},
		GBT: GBTConfig{
			NumTrees:          100,
			LearningRate:      0.1,
			MaxDepth:          3,
			MinSamplesLeaf:    5,
			SubsampleFraction: 1.0,
		},
	}
}

// Results is everything a run produces. A SingularMatrixError from the
// collinearity diagnostic lands in VIFErr and never stops model fitting;
// a model family that fails to train lands in ModelErrs while the other
// families proceed.
type Results struct {
	// FeatureNames is the final (scaled) feature column order shared by
	// every fitted model.
	FeatureNames []string
	// Split is the train/test assignment over the cleaned rows.
	Split *modelselection.SplitAssignment
	// VIF holds variance inflation factors for the scaled training
	// features; VIFErr is set instead when the correlation matrix is
	// singular.
	VIF    *diagnostics.VIFTable
	VIFErr error
	// Ridge and Lasso are the grid-search outcomes.
	Ridge *modelselection.SearchResult
	Lasso *modelselection.SearchResult
	// GBT is the fitted boosting model.
	GBT *ensemble.GBTRegressor
	// Reports maps family key to its held-out evaluation.
	Reports map[string]*evaluation.Report
	// ModelErrs maps family key to its training failure, if any.
	ModelErrs map[string]error
	// Warnings is every non-fatal warning collected during the run.
	Warnings []error
}

// Run executes the full pipeline over validated input records.
func Run(records []dataset.Record, cfg Config) (*Results, error) {
	logger := log.GetLoggerWithName("pipeline")
	started := time.Now()

	if err := dataset.ValidateRecords(records); err != nil {
		return nil, err
	}

	cleaner := cfg.Cleaner
	if cleaner == nil {
		cleaner = preprocessing.NewPriceOutlierCleaner()
	}
	testFraction := cfg.TestFraction
	if testFraction == 0 {
		testFraction = 0.2
	}
	k := cfg.K
	if k == 0 {
		k = 5
	}

	collector := errors.NewCollector()

	// Stage 1: IQR outlier fence on price.
	cleaned, err := cleaner.Clean(records)
	if err != nil {
		return nil, err
	}
	logger.Info("outlier cleaning complete",
		log.StageKey, "clean",
		log.RowsKey, len(cleaned),
		"removed", len(records)-len(cleaned),
	)

	// Stage 2: derived numeric features and the log-price target.
	builder := preprocessing.NewFeatureBuilder()
	if cfg.ReferenceYear != 0 {
		builder.ReferenceYear = cfg.ReferenceYear
	}
	baseTable, target, err := builder.Build(cleaned)
	if err != nil {
		return nil, err
	}

	// Stage 3: deterministic train/test split over the cleaned rows.
	split, err := modelselection.TrainTestSplit(len(cleaned), testFraction, cfg.SplitSeed)
	if err != nil {
		return nil, err
	}
	logger.Info("train/test split complete",
		log.StageKey, "split",
		log.SeedKey, cfg.SplitSeed,
		"train_rows", len(split.Train),
		"test_rows", len(split.Test),
	)

	trainRecords := takeRecords(cleaned, split.Train)
	testRecords := takeRecords(cleaned, split.Test)
	trainBase, err := baseTable.TakeRows(split.Train)
	if err != nil {
		return nil, err
	}
	testBase, err := baseTable.TakeRows(split.Test)
	if err != nil {
		return nil, err
	}
	trainTarget := takeVec(target, split.Train)
	testTarget := takeVec(target, split.Test)

	// Stage 4: one-hot encoding, vocabulary from the training partition.
	encoder := preprocessing.NewOneHotEncoder()
	encoding, err := encoder.Fit(trainRecords)
	if err != nil {
		return nil, err
	}
	trainIndicators, err := encoding.Transform(trainRecords, collector)
	if err != nil {
		return nil, err
	}
	testIndicators, err := encoding.Transform(testRecords, collector)
	if err != nil {
		return nil, err
	}
	trainTable, err := trainBase.Concat(trainIndicators)
	if err != nil {
		return nil, err
	}
	testTable, err := testBase.Concat(testIndicators)
	if err != nil {
		return nil, err
	}

	// Stage 5: standardization, statistics from the training partition.
	scaling, err := preprocessing.FitScaling(trainTable, collector)
	if err != nil {
		return nil, err
	}
	trainScaled, err := scaling.Transform(trainTable)
	if err != nil {
		return nil, err
	}
	testScaled, err := scaling.Transform(testTable)
	if err != nil {
		return nil, err
	}
	logger.Info("preprocessing complete",
		log.StageKey, "scale",
		log.FeaturesKey, trainScaled.NumCols(),
	)

	results := &Results{
		FeatureNames: trainScaled.Columns(),
		Split:        split,
		Reports:      make(map[string]*evaluation.Report),
		ModelErrs:    make(map[string]error),
	}

	// Stage 6: collinearity diagnostic. Informational only; a singular
	// correlation matrix is recorded, not fatal.
	results.VIF, results.VIFErr = diagnostics.ComputeVIF(trainScaled)
	if results.VIFErr != nil {
		logger.Warn("collinearity diagnostic failed",
			log.StageKey, "vif",
			"error", results.VIFErr.Error(),
		)
	}

	trainX := trainScaled.Matrix()
	testX := testScaled.Matrix()

	// Stage 7: model selection and fitting. Each family trains
	// independently so one failure does not starve the others.
	ridgeSearch := modelselection.NewGridSearchCV(FamilyRidge, cfg.RidgeAlphas, func(alpha float64) model.Regressor {
		return linear.NewRidge(alpha)
	})
	ridgeSearch.K = k
	if results.Ridge, err = ridgeSearch.Search(trainX, trainTarget); err != nil {
		results.ModelErrs[FamilyRidge] = err
	}

	lassoSearch := modelselection.NewGridSearchCV(FamilyLasso, cfg.LassoAlphas, func(alpha float64) model.Regressor {
		m := linear.NewLasso(alpha)
		m.Collector = collector
		return m
	})
	lassoSearch.K = k
	if results.Lasso, err = lassoSearch.Search(trainX, trainTarget); err != nil {
		results.ModelErrs[FamilyLasso] = err
	}

	gbt := newGBT(cfg.GBT, cfg.BoostSeed)
	if err = gbt.Fit(trainX, vecAsCol(trainTarget)); err != nil {
		results.ModelErrs[FamilyGBT] = err
	} else {
		results.GBT = gbt
	}

	// Stage 8: held-out evaluation per surviving family.
	evaluate := func(family string, m model.Regressor) {
		report, evalErr := evaluation.Evaluate(m, testX, testTarget, results.FeatureNames)
		if evalErr != nil {
			results.ModelErrs[family] = evalErr
			return
		}
		results.Reports[family] = report
	}
	if results.Ridge != nil {
		evaluate(FamilyRidge, results.Ridge.Model)
	}
	if results.Lasso != nil {
		evaluate(FamilyLasso, results.Lasso.Model)
	}
	if results.GBT != nil {
		evaluate(FamilyGBT, results.GBT)
	}

	results.Warnings = collector.Warnings()

	logger.Info("pipeline run complete",
		log.RowsKey, len(cleaned),
		log.DurationKey, time.Since(started).Milliseconds(),
		"models", len(results.Reports),
		"warnings", len(results.Warnings),
	)
	return results, nil
}

func newGBT(cfg GBTConfig, seed uint64) *ensemble.GBTRegressor {
	g := ensemble.NewGBTRegressor()
	if cfg.NumTrees > 0 {
		g.NumTrees = cfg.NumTrees
	}
	if cfg.LearningRate > 0 {
		g.LearningRate = cfg.LearningRate
	}
	if cfg.MaxDepth > 0 {
		g.MaxDepth = cfg.MaxDepth
	}
	if cfg.MinSamplesLeaf > 0 {
		g.MinSamplesLeaf = cfg.MinSamplesLeaf
	}
	if cfg.SubsampleFraction > 0 {
		g.SubsampleFraction = cfg.SubsampleFraction
	}
	g.Seed = seed
	return g
}

func takeRecords(records []dataset.Record, rows []int) []dataset.Record {
	out := make([]dataset.Record, len(rows))
	for i, src := range rows {
		out[i] = records[src]
	}
	return out
}

func takeVec(v *mat.VecDense, rows []int) *mat.VecDense {
	out := mat.NewVecDense(len(rows), nil)
	for i, src := range rows {
		out.SetVec(i, v.AtVec(src))
	}
	return out
}

func vecAsCol(v *mat.VecDense) *mat.Dense {
	out := mat.NewDense(v.Len(), 1, nil)
	for i := 0; i < v.Len(); i++ {
		out.Set(i, 0, v.AtVec(i))
	}
	return out
}

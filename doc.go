// Package homeprice implements a batch regression pipeline for housing
// price prediction: IQR outlier cleaning, derived features with a
// log-transformed target, leak-free one-hot encoding and scaling,
// collinearity diagnostics, cross-validated ridge/lasso selection,
// gradient-boosted trees, and held-out evaluation.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/homeprice/pipeline"
//	)
//
//	func main() {
//	    records := loadRecords() // []dataset.Record
//	    results, err := pipeline.Run(records, pipeline.DefaultConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    report := results.Reports[pipeline.FamilyRidge]
//	    fmt.Printf("RMSE=%.4f R²=%.4f\n", report.RMSE, report.R2)
//	}
//
// The individual stages live in their own packages (preprocessing,
// diagnostics, modelselection, linear, ensemble, evaluation) and can be
// composed directly when the standard orchestration does not fit.
//
// Every run is deterministic for fixed seeds: the train/test shuffle and
// GBT row subsampling use seeded PCG generators, cross-validation folds
// are contiguous in row order, and all score ties break toward the
// earlier candidate.
package homeprice

package modelselection

import (
	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

// Fold holds train and validation positions for one cross-validation
// round. Positions index into the partition the folds were built for,
// not into the original dataset.
type Fold struct {
	Train      []int
	Validation []int
}

// KFoldSplit partitions [0, n) into k disjoint, near-equal contiguous
// folds in row order. Fold sizes differ by at most one; the first
// n mod k folds are one element larger. No shuffling happens here — the
// row order entering the search is already the product of the seeded
// train/test split.
func KFoldSplit(n, k int) ([]Fold, error) {
	if k < 2 {
		return nil, errors.NewValueError("modelselection.KFoldSplit", "k must be at least 2")
	}
	if n < k {
		return nil, errors.NewInsufficientDataError("modelselection.KFoldSplit", k, n)
	}

	folds := make([]Fold, k)
	base := n / k
	remainder := n % k

	start := 0
	for i := 0; i < k; i++ {
		size := base
		if i < remainder {
			size++
		}
		end := start + size

		validation := make([]int, 0, size)
		for v := start; v < end; v++ {
			validation = append(validation, v)
		}
		train := make([]int, 0, n-size)
		for v := 0; v < n; v++ {
			if v < start || v >= end {
				train = append(train, v)
			}
		}

		folds[i] = Fold{Train: train, Validation: validation}
		start = end
	}
	return folds, nil
}

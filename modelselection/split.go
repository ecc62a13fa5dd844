// Package modelselection provides deterministic data partitioning and
// cross-validated hyperparameter search.
package modelselection

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

// SplitAssignment partitions row indices into disjoint train and test
// sets whose union is [0, n).
type SplitAssignment struct {
	Train []int
	Test  []int
}

// TrainTestSplit deterministically shuffles [0, n) with a PCG seeded by
// seed and assigns the first round(n*testFraction) shuffled indices to
// the test set. The same seed and n always produce the same assignment,
// regardless of execution environment.
func TrainTestSplit(n int, testFraction float64, seed uint64) (*SplitAssignment, error) {
	if n <= 0 {
		return nil, errors.NewModelError("modelselection.TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, errors.NewValueError("modelselection.TrainTestSplit", "test fraction must be in (0, 1)")
	}

	nTest := int(math.Round(float64(n) * testFraction))
	if nTest < 1 || n-nTest < 1 {
		return nil, errors.NewInsufficientDataError("modelselection.TrainTestSplit", 2, n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	return &SplitAssignment{
		Test:  indices[:nTest],
		Train: indices[nTest:],
	}, nil
}

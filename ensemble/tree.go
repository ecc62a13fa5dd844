package ensemble

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// splitInfo describes the best split found for a node.
type splitInfo struct {
	Feature   int
	Threshold float64
	Gain      float64
	Left      []int
	Right     []int
}

// treeNode is a node in a regression tree. Leaf nodes carry the output
// value; internal nodes route rows by feature threshold.
type treeNode struct {
	Feature   int
	Threshold float64
	Left      *treeNode
	Right     *treeNode
	Value     float64
	IsLeaf    bool
}

// regressionTree is a single gradient-fitted tree. Leaf values are the
// Newton step -G/(H+lambda) for the rows that reach the leaf.
type regressionTree struct {
	root        *treeNode
	maxDepth    int
	minLeaf     int
	lambda      float64
	featureGain []float64
}

func newRegressionTree(maxDepth, minLeaf int, lambda float64, numFeatures int) *regressionTree {
	return &regressionTree{
		maxDepth:    maxDepth,
		minLeaf:     minLeaf,
		lambda:      lambda,
		featureGain: make([]float64, numFeatures),
	}
}

// fit grows the tree on gradient/hessian statistics for the given rows.
func (t *regressionTree) fit(X mat.Matrix, grad, hess []float64, rows []int) {
	t.root = t.buildNode(X, grad, hess, rows, 0)
}

func (t *regressionTree) buildNode(X mat.Matrix, grad, hess []float64, rows []int, depth int) *treeNode {
	var sumGrad, sumHess float64
	for _, i := range rows {
		sumGrad += grad[i]
		sumHess += hess[i]
	}

	leaf := &treeNode{
		IsLeaf: true,
		Value:  -sumGrad / (sumHess + t.lambda),
	}

	if depth >= t.maxDepth || len(rows) < 2*t.minLeaf {
		return leaf
	}

	split := t.findBestSplit(X, grad, hess, rows, sumGrad, sumHess)
	if split == nil {
		return leaf
	}

	t.featureGain[split.Feature] += split.Gain

	return &treeNode{
		Feature:   split.Feature,
		Threshold: split.Threshold,
		Left:      t.buildNode(X, grad, hess, split.Left, depth+1),
		Right:     t.buildNode(X, grad, hess, split.Right, depth+1),
	}
}

// findBestSplit scans every feature with a gradient histogram-free exact
// search. Candidate thresholds are midpoints between consecutive distinct
// sorted values. Ties on gain keep the earlier (feature, threshold) pair
// so training is deterministic.
func (t *regressionTree) findBestSplit(X mat.Matrix, grad, hess []float64, rows []int, sumGrad, sumHess float64) *splitInfo {
	_, cols := X.Dims()
	parentScore := sumGrad * sumGrad / (sumHess + t.lambda)

	var best *splitInfo

	ordered := make([]int, len(rows))
	for feature := 0; feature < cols; feature++ {
		copy(ordered, rows)
		sortRowsByFeature(X, ordered, feature)

		var leftGrad, leftHess float64
		for pos := 0; pos < len(ordered)-1; pos++ {
			i := ordered[pos]
			leftGrad += grad[i]
			leftHess += hess[i]

			current := X.At(i, feature)
			next := X.At(ordered[pos+1], feature)
			if current == next {
				continue
			}

			leftCount := pos + 1
			rightCount := len(ordered) - leftCount
			if leftCount < t.minLeaf || rightCount < t.minLeaf {
				continue
			}

			rightGrad := sumGrad - leftGrad
			rightHess := sumHess - leftHess
			gain := 0.5 * (leftGrad*leftGrad/(leftHess+t.lambda) +
				rightGrad*rightGrad/(rightHess+t.lambda) -
				parentScore)
			if gain <= 0 {
				continue
			}

			if best == nil || gain > best.Gain {
				left := make([]int, leftCount)
				copy(left, ordered[:leftCount])
				right := make([]int, rightCount)
				copy(right, ordered[leftCount:])
				best = &splitInfo{
					Feature:   feature,
					Threshold: (current + next) / 2,
					Gain:      gain,
					Left:      left,
					Right:     right,
				}
			}
		}
	}
	return best
}

// predict returns the leaf value for a single row.
func (t *regressionTree) predict(X mat.Matrix, row int) float64 {
	node := t.root
	for !node.IsLeaf {
		if X.At(row, node.Feature) <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// sortRowsByFeature sorts row indices by a feature column. The stable sort
// keeps equal-valued rows in their incoming order, which pins down the
// split search when values repeat.
func sortRowsByFeature(X mat.Matrix, rows []int, feature int) {
	sort.SliceStable(rows, func(a, b int) bool {
		return X.At(rows[a], feature) < X.At(rows[b], feature)
	})
}

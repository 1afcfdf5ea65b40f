package models

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/mlpipes/titanic/core/model"
	"github.com/mlpipes/titanic/pkg/errors"
)

func init() {
	Register("boosted-ensemble", func(p Params) (Classifier, error) {
		return NewGradientBoosting(BoostingParams{
			NumIterations: p.Int("iterations", 100),
			LearningRate:  p.Float("learning_rate", 0.1),
			MaxDepth:      p.Int("max_depth", 3),
			MinLeaf:       p.Int("min_leaf", 5),
			Lambda:        p.Float("lambda", 1.0),
		}), nil
	})
}

// BoostingParams contains the boosted ensemble's hyperparameters.
type BoostingParams struct {
	NumIterations int     `json:"num_iterations"`
	LearningRate  float64 `json:"learning_rate"`
	MaxDepth      int     `json:"max_depth"`
	MinLeaf       int     `json:"min_data_in_leaf"`
	Lambda        float64 `json:"lambda_l2"`
}

// GradientBoosting is a gradient-boosted ensemble of shallow regression
// trees with logistic loss, for binary labels. Each iteration fits a tree
// to the current gradients and hessians; splits maximize the regularized
// gain and leaves carry the Newton step -G/(H+lambda).
type GradientBoosting struct {
	model.BaseEstimator

	params    BoostingParams
	trees     []*boostNode
	initScore float64
	nFeatures int
}

type boostNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *boostNode
	right     *boostNode
}

// NewGradientBoosting creates an unfitted ensemble, applying defaults to
// non-positive parameters.
func NewGradientBoosting(params BoostingParams) *GradientBoosting {
	if params.NumIterations <= 0 {
		params.NumIterations = 100
	}
	if params.LearningRate <= 0 {
		params.LearningRate = 0.1
	}
	if params.MaxDepth <= 0 {
		params.MaxDepth = 3
	}
	if params.MinLeaf <= 0 {
		params.MinLeaf = 5
	}
	if params.Lambda < 0 {
		params.Lambda = 0
	}
	return &GradientBoosting{params: params}
}

func (gb *GradientBoosting) Name() string { return "boosted-ensemble" }

// Fit trains the ensemble on binary labels.
func (gb *GradientBoosting) Fit(X *mat.Dense, y []int) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "boosted-ensemble: fit")
	}
	if len(y) != r {
		return errors.NewDimensionError("boosted-ensemble.Fit", r, len(y), 0)
	}
	for _, label := range y {
		if label != 0 && label != 1 {
			return errors.NewValueError("boosted-ensemble.Fit", "labels must be 0 or 1")
		}
	}

	// Initial score is the log-odds of the positive rate.
	pos := 0
	for _, label := range y {
		pos += label
	}
	p0 := clamp(float64(pos)/float64(r), 1e-6, 1-1e-6)
	gb.initScore = math.Log(p0 / (1 - p0))
	gb.nFeatures = c
	gb.trees = nil

	scores := make([]float64, r)
	for i := range scores {
		scores[i] = gb.initScore
	}

	gradients := make([]float64, r)
	hessians := make([]float64, r)
	indices := make([]int, r)
	for i := range indices {
		indices[i] = i
	}

	for iter := 0; iter < gb.params.NumIterations; iter++ {
		for i := 0; i < r; i++ {
			p := sigmoid(scores[i])
			gradients[i] = p - float64(y[i])
			hessians[i] = p * (1 - p)
		}

		tree := gb.buildNode(X, gradients, hessians, indices, 0)
		gb.trees = append(gb.trees, tree)

		for i := 0; i < r; i++ {
			scores[i] += gb.params.LearningRate * evalNode(tree, X, i)
		}
	}

	gb.SetFitted()
	return nil
}

// Predict returns the thresholded sigmoid of the accumulated scores.
func (gb *GradientBoosting) Predict(X *mat.Dense) ([]int, error) {
	if !gb.IsFitted() {
		return nil, errors.NewNotFittedError("boosted-ensemble", "Predict")
	}
	r, c := X.Dims()
	if c != gb.nFeatures {
		return nil, errors.NewDimensionError("boosted-ensemble.Predict", gb.nFeatures, c, 1)
	}

	out := make([]int, r)
	for i := 0; i < r; i++ {
		score := gb.initScore
		for _, tree := range gb.trees {
			score += gb.params.LearningRate * evalNode(tree, X, i)
		}
		if sigmoid(score) > 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

// buildNode grows a tree greedily on the given row subset.
func (gb *GradientBoosting) buildNode(X *mat.Dense, gradients, hessians []float64, rows []int, depth int) *boostNode {
	var sumG, sumH float64
	for _, i := range rows {
		sumG += gradients[i]
		sumH += hessians[i]
	}
	leaf := &boostNode{leaf: true, value: -sumG / (sumH + gb.params.Lambda)}

	if depth >= gb.params.MaxDepth || len(rows) < 2*gb.params.MinLeaf {
		return leaf
	}

	bestGain := 1e-12
	bestFeature, bestPos := -1, -1
	var bestThreshold float64
	parentGain := sumG * sumG / (sumH + gb.params.Lambda)

	_, c := X.Dims()
	sorted := make([]int, len(rows))
	var bestSorted []int
	for j := 0; j < c; j++ {
		copy(sorted, rows)
		sort.Slice(sorted, func(a, b int) bool {
			return X.At(sorted[a], j) < X.At(sorted[b], j)
		})

		var leftG, leftH float64
		for pos := 0; pos < len(sorted)-1; pos++ {
			i := sorted[pos]
			leftG += gradients[i]
			leftH += hessians[i]

			// Only split between distinct feature values.
			if X.At(sorted[pos], j) == X.At(sorted[pos+1], j) {
				continue
			}
			nLeft, nRight := pos+1, len(sorted)-pos-1
			if nLeft < gb.params.MinLeaf || nRight < gb.params.MinLeaf {
				continue
			}

			rightG := sumG - leftG
			rightH := sumH - leftH
			gain := leftG*leftG/(leftH+gb.params.Lambda) +
				rightG*rightG/(rightH+gb.params.Lambda) -
				parentGain
			if gain > bestGain {
				bestGain = gain
				bestFeature = j
				bestPos = pos
				bestThreshold = (X.At(sorted[pos], j) + X.At(sorted[pos+1], j)) / 2
				bestSorted = append(bestSorted[:0], sorted...)
			}
		}
	}

	if bestFeature < 0 {
		return leaf
	}

	leftRows := make([]int, bestPos+1)
	copy(leftRows, bestSorted[:bestPos+1])
	rightRows := make([]int, len(bestSorted)-bestPos-1)
	copy(rightRows, bestSorted[bestPos+1:])

	return &boostNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      gb.buildNode(X, gradients, hessians, leftRows, depth+1),
		right:     gb.buildNode(X, gradients, hessians, rightRows, depth+1),
	}
}

func evalNode(n *boostNode, X *mat.Dense, row int) float64 {
	for !n.leaf {
		if X.At(row, n.feature) <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

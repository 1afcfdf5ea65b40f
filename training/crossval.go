package training

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mlpipes/titanic/core/parallel"
	"github.com/mlpipes/titanic/metrics"
	"github.com/mlpipes/titanic/models"
	"github.com/mlpipes/titanic/pkg/errors"
)

// CVResult summarizes one model's repeated cross-validation.
type CVResult struct {
	// ModelID is the model-type identifier that was resampled.
	ModelID string

	// FoldAccuracies holds one hold-out accuracy per fold per repeat,
	// in fold order within each repeat.
	FoldAccuracies []float64

	// Mean is the average of FoldAccuracies.
	Mean float64

	// Std is the sample standard deviation of FoldAccuracies.
	Std float64
}

// StratifiedKFolds partitions the indices [0, len(y)) into nSplits folds
// whose class proportions match the whole label vector as closely as the
// counts allow. It returns the test-index set of each fold, sorted.
//
// Indices of each class are shuffled with the given seed and dealt
// round-robin across folds, so fold sizes differ by at most one per class.
func StratifiedKFolds(y []int, nSplits int, seed uint64) ([][]int, error) {
	if nSplits < 2 {
		return nil, errors.NewValueError("StratifiedKFolds", "nSplits must be at least 2")
	}
	if len(y) < nSplits {
		return nil, errors.NewInsufficientDataError("StratifiedKFolds", nSplits, len(y))
	}

	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	// Deterministic class order so the same seed always deals the same folds.
	labels := make([]int, 0, len(byClass))
	for label := range byClass {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	rng := rand.New(rand.NewPCG(seed, seed))
	folds := make([][]int, nSplits)
	for _, label := range labels {
		idx := byClass[label]
		rng.Shuffle(len(idx), func(i, j int) {
			idx[i], idx[j] = idx[j], idx[i]
		})
		for i, row := range idx {
			f := i % nSplits
			folds[f] = append(folds[f], row)
		}
	}
	for _, fold := range folds {
		sort.Ints(fold)
	}
	return folds, nil
}

// foldPair is one train/test split of a cross-validation repeat.
type foldPair struct {
	train []int
	test  []int
}

// CrossValidate estimates hold-out accuracy for one model family by repeated
// stratified k-fold resampling. A fresh, unfitted model is built for every
// fold; folds run concurrently on the pool.
func CrossValidate(pool *parallel.Pool, id string, p models.Params, X *mat.Dense, y []int, ctl Control) (CVResult, error) {
	res := CVResult{ModelID: id}
	if err := ctl.validate(); err != nil {
		return res, err
	}
	rows, _ := X.Dims()
	if rows != len(y) {
		return res, errors.NewDimensionError("CrossValidate", len(y), rows, 0)
	}

	pairs := make([]foldPair, 0, ctl.Folds*ctl.Repeats)
	for r := 0; r < ctl.Repeats; r++ {
		folds, err := StratifiedKFolds(y, ctl.Folds, ctl.Seed+uint64(r))
		if err != nil {
			return res, err
		}
		for f := range folds {
			pairs = append(pairs, foldPair{
				train: complement(folds, f, rows),
				test:  folds[f],
			})
		}
	}

	// Each goroutine writes its own slot, so no locking is needed.
	acc := make([]float64, len(pairs))
	err := pool.Each(len(pairs), func(i int) error {
		a, ferr := runFold(id, p, X, y, pairs[i])
		if ferr != nil {
			return ferr
		}
		acc[i] = a
		return nil
	})
	if err != nil {
		return res, err
	}

	res.FoldAccuracies = acc
	res.Mean = stat.Mean(acc, nil)
	res.Std = stat.StdDev(acc, nil)
	return res, nil
}

// runFold fits a fresh model on the fold's training rows and scores it on
// the held-out rows. Panics from the underlying fit are converted to errors.
func runFold(id string, p models.Params, X *mat.Dense, y []int, pair foldPair) (a float64, err error) {
	defer errors.Recover(&err, "training.runFold")

	cls, err := models.New(id, p)
	if err != nil {
		return 0, err
	}
	if err := cls.Fit(subMatrix(X, pair.train), subLabels(y, pair.train)); err != nil {
		return 0, err
	}
	pred, err := cls.Predict(subMatrix(X, pair.test))
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy(subLabels(y, pair.test), pred)
}

// complement returns every row index outside folds[skip], sorted.
func complement(folds [][]int, skip, rows int) []int {
	inTest := make([]bool, rows)
	for _, i := range folds[skip] {
		inTest[i] = true
	}
	train := make([]int, 0, rows-len(folds[skip]))
	for i := 0; i < rows; i++ {
		if !inTest[i] {
			train = append(train, i)
		}
	}
	return train
}

// subMatrix copies the given rows of X into a new matrix.
func subMatrix(X *mat.Dense, rows []int) *mat.Dense {
	_, cols := X.Dims()
	out := mat.NewDense(len(rows), cols, nil)
	for i, r := range rows {
		out.SetRow(i, X.RawRowView(r))
	}
	return out
}

// subLabels copies the given entries of y into a new slice.
func subLabels(y []int, rows []int) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = y[r]
	}
	return out
}

package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/mlpipes/titanic/core/model"
	"github.com/mlpipes/titanic/pkg/errors"
)

func init() {
	Register("majority", func(_ Params) (Classifier, error) {
		return &MajorityClassifier{}, nil
	})
}

// MajorityClassifier predicts the most frequent training label for every
// row. It anchors the comparison: anything scoring below it has learned
// nothing.
type MajorityClassifier struct {
	model.BaseEstimator

	label     int
	nFeatures int
}

func (m *MajorityClassifier) Name() string { return "majority" }

// Fit records the most frequent label. Ties go to the smaller label value.
func (m *MajorityClassifier) Fit(X *mat.Dense, y []int) error {
	r, c := X.Dims()
	if r == 0 {
		return errors.Wrap(errors.ErrEmptyData, "majority: fit")
	}
	if len(y) != r {
		return errors.NewDimensionError("majority.Fit", r, len(y), 0)
	}

	counts := make(map[int]int)
	for _, label := range y {
		counts[label]++
	}
	best, bestCount := 0, -1
	for label, count := range counts {
		if count > bestCount || (count == bestCount && label < best) {
			best, bestCount = label, count
		}
	}

	m.label = best
	m.nFeatures = c
	m.SetFitted()
	return nil
}

func (m *MajorityClassifier) Predict(X *mat.Dense) ([]int, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("majority", "Predict")
	}
	r, _ := X.Dims()
	out := make([]int, r)
	for i := range out {
		out[i] = m.label
	}
	return out, nil
}

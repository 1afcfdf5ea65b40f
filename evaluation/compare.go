// Package evaluation scores fitted models on the training and hold-out
// subsets and renders the comparison as a table and as charts.
package evaluation

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"

	"github.com/mlpipes/titanic/metrics"
	"github.com/mlpipes/titanic/models"
	"github.com/mlpipes/titanic/training"
)

// Result holds one model's scores across the three views of the data:
// resampling, the training subset it was fit on, and the untouched
// hold-out subset.
type Result struct {
	ModelID string

	// CVAccuracy and CVStd come from repeated cross-validation.
	CVAccuracy float64
	CVStd      float64

	// TrainAccuracy is the accuracy on the rows the model was fit on.
	TrainAccuracy float64

	// TestAccuracy is the accuracy on the hold-out rows.
	TestAccuracy float64

	// Gap is TrainAccuracy - TestAccuracy. A large positive gap points
	// at overfitting.
	Gap float64

	// Confusion is the hold-out confusion matrix.
	Confusion *metrics.ConfusionMatrix
}

// Compare scores every successfully trained model on both subsets.
// Failed models are skipped. Results are sorted by hold-out accuracy,
// best first, with the model identifier breaking ties.
func Compare(trained []training.TrainedModel, XTrain *mat.Dense, yTrain []int, XTest *mat.Dense, yTest []int) ([]Result, error) {
	results := make([]Result, 0, len(trained))
	for _, tm := range trained {
		if tm.Failed() {
			continue
		}
		r, err := score(tm, XTrain, yTrain, XTest, yTest)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].TestAccuracy != results[j].TestAccuracy {
			return results[i].TestAccuracy > results[j].TestAccuracy
		}
		return results[i].ModelID < results[j].ModelID
	})
	return results, nil
}

func score(tm training.TrainedModel, XTrain *mat.Dense, yTrain []int, XTest *mat.Dense, yTest []int) (Result, error) {
	r := Result{
		ModelID:    tm.Spec.ID,
		CVAccuracy: tm.CV.Mean,
		CVStd:      tm.CV.Std,
	}

	trainPred, err := tm.Model.Predict(XTrain)
	if err != nil {
		return r, err
	}
	r.TrainAccuracy, err = metrics.Accuracy(yTrain, trainPred)
	if err != nil {
		return r, err
	}

	testPred, err := tm.Model.Predict(XTest)
	if err != nil {
		return r, err
	}
	r.Confusion, err = metrics.NewConfusionMatrix(yTest, testPred)
	if err != nil {
		return r, err
	}
	r.TestAccuracy = r.Confusion.Accuracy()
	r.Gap = r.TrainAccuracy - r.TestAccuracy
	return r, nil
}

// Best returns the result with the highest hold-out accuracy. Compare
// sorts, so this is the first entry; ok is false when results is empty.
func Best(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	return results[0], true
}

// FindModel returns the trained model with the given identifier.
func FindModel(trained []training.TrainedModel, id string) (models.Classifier, bool) {
	for _, tm := range trained {
		if tm.Spec.ID == id && !tm.Failed() {
			return tm.Model, true
		}
	}
	return nil, false
}

// Table renders the comparison as an aligned text table.
func Table(results []Result) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tCV ACC\tCV SD\tTRAIN\tTEST\tGAP")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%+.4f\n",
			r.ModelID, r.CVAccuracy, r.CVStd, r.TrainAccuracy, r.TestAccuracy, r.Gap)
	}
	w.Flush()
	return b.String()
}

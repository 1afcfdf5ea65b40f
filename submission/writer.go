// Package submission predicts survival for the unlabeled passengers and
// writes the two-column competition file.
package submission

import (
	"encoding/csv"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/mlpipes/titanic/models"
	"github.com/mlpipes/titanic/pkg/errors"
)

// Header is the fixed submission header.
var Header = []string{"PassengerId", "Survived"}

// Write predicts a label for every row of X with the given fitted model and
// writes "PassengerId,Survived" rows to path, one per passenger, in input
// order.
//
// featureNames are the columns of X; fittedNames are the columns the model's
// preprocessing produced at training time. The two must match exactly, in
// order, otherwise the model would silently score shifted columns.
func Write(path string, model models.Classifier, X *mat.Dense, featureNames, fittedNames []string, passengerIDs []int) error {
	if err := checkSchema(featureNames, fittedNames); err != nil {
		return err
	}
	rows, _ := X.Dims()
	if rows != len(passengerIDs) {
		return errors.NewDimensionError("submission.Write", len(passengerIDs), rows, 0)
	}

	preds, err := model.Predict(X)
	if err != nil {
		return errors.Wrap(err, "titanic: submission predictions")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "titanic: create submission file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return errors.Wrap(err, "titanic: write submission header")
	}
	for i, id := range passengerIDs {
		record := []string{strconv.Itoa(id), strconv.Itoa(preds[i])}
		if err := w.Write(record); err != nil {
			return errors.Wrap(err, "titanic: write submission row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "titanic: flush submission file")
	}
	return f.Close()
}

func checkSchema(featureNames, fittedNames []string) error {
	if len(featureNames) != len(fittedNames) {
		return errors.NewSchemaMismatchError(fittedNames, featureNames)
	}
	for i := range featureNames {
		if featureNames[i] != fittedNames[i] {
			return errors.NewSchemaMismatchError(fittedNames, featureNames)
		}
	}
	return nil
}

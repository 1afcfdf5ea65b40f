// Package training runs repeated stratified k-fold cross-validation over the
// registered model families and produces fitted models ready for evaluation.
//
// Models are trained one after another; the folds of a single model's
// cross-validation run concurrently on the shared worker pool. A failure or
// panic inside one model's fit is captured on that model's result and never
// aborts the remaining models.
package training

import (
	"github.com/mlpipes/titanic/pkg/errors"
)

// Control holds the resampling parameters shared by every model in a run.
type Control struct {
	// Folds is the number of cross-validation folds per repeat.
	Folds int

	// Repeats is the number of times the k-fold split is redrawn.
	Repeats int

	// Seed drives fold assignment. Runs with the same seed, data and
	// control produce identical folds.
	Seed uint64
}

// DefaultControl returns the standard resampling scheme: 10-fold
// cross-validation repeated 3 times.
func DefaultControl() Control {
	return Control{Folds: 10, Repeats: 3, Seed: 42}
}

func (c Control) validate() error {
	if c.Folds < 2 {
		return errors.NewValueError("training", "Folds must be at least 2")
	}
	if c.Repeats < 1 {
		return errors.NewValueError("training", "Repeats must be at least 1")
	}
	return nil
}

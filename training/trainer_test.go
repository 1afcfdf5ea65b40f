package training

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/mlpipes/titanic/core/parallel"
	"github.com/mlpipes/titanic/models"
	"github.com/mlpipes/titanic/pkg/errors"
	"github.com/mlpipes/titanic/pkg/log"
)

// nopLogger discards everything; trainer tests only care about results.
type nopLogger struct{}

func (nopLogger) Debug(msg string, fields ...any) {}

func (nopLogger) Info(msg string, fields ...any) {}

func (nopLogger) Warn(msg string, fields ...any) {}

func (nopLogger) Error(msg string, fields ...any) {}

func (nopLogger) With(fields ...any) log.Logger { return nopLogger{} }

func (nopLogger) Enabled(ctx context.Context, l log.Level) bool { return false }

// brokenModel fails or panics on Fit, for failure-isolation tests.
type brokenModel struct {
	name   string
	panics bool
}

func (m *brokenModel) Fit(X *mat.Dense, y []int) error {
	if m.panics {
		panic("fit exploded")
	}
	return errors.New("fit refused")
}

func (m *brokenModel) Predict(X *mat.Dense) ([]int, error) {
	return nil, errors.NewNotFittedError(m.name, "Predict")
}

func (m *brokenModel) Name() string { return m.name }

func init() {
	models.Register("broken-fit", func(p models.Params) (models.Classifier, error) {
		return &brokenModel{name: "broken-fit"}, nil
	})
	models.Register("panicking-fit", func(p models.Params) (models.Classifier, error) {
		return &brokenModel{name: "panicking-fit", panics: true}, nil
	})
}

func TestTrainAllIsolatesFailures(t *testing.T) {
	pool := parallel.Acquire(2)
	defer pool.Release()

	X, y := labeledData(18, 12)
	trainer := NewTrainer(Control{Folds: 3, Repeats: 1, Seed: 5}, pool, nopLogger{})

	specs := []ModelSpec{
		{ID: "majority"},
		{ID: "broken-fit"},
		{ID: "panicking-fit"},
		{ID: "majority"},
	}
	results := trainer.TrainAll(X, y, specs)
	if len(results) != len(specs) {
		t.Fatalf("got %d results, want %d", len(results), len(specs))
	}

	for _, i := range []int{0, 3} {
		if results[i].Failed() {
			t.Fatalf("results[%d] (%s) failed: %v", i, results[i].Spec.ID, results[i].Err)
		}
		if results[i].Model == nil {
			t.Errorf("results[%d].Model = nil, want fitted model", i)
		}
		if math.Abs(results[i].CV.Mean-0.6) > 1e-12 {
			t.Errorf("results[%d].CV.Mean = %v, want 0.6", i, results[i].CV.Mean)
		}
	}

	for _, i := range []int{1, 2} {
		if !results[i].Failed() {
			t.Fatalf("results[%d] (%s) did not fail", i, results[i].Spec.ID)
		}
		var fitErr *errors.ModelFitError
		if !errors.As(results[i].Err, &fitErr) {
			t.Errorf("results[%d].Err = %v, want *ModelFitError", i, results[i].Err)
		} else if fitErr.ModelID != results[i].Spec.ID {
			t.Errorf("ModelID = %q, want %q", fitErr.ModelID, results[i].Spec.ID)
		}
		if results[i].Model != nil {
			t.Errorf("results[%d].Model != nil on failure", i)
		}
	}
}

func TestTrainAllFinalModelPredicts(t *testing.T) {
	pool := parallel.Acquire(2)
	defer pool.Release()

	X, y := labeledData(18, 12)
	trainer := NewTrainer(Control{Folds: 3, Repeats: 1, Seed: 5}, pool, nopLogger{})

	results := trainer.TrainAll(X, y, []ModelSpec{{ID: "majority"}})
	if results[0].Failed() {
		t.Fatalf("training failed: %v", results[0].Err)
	}

	pred, err := results[0].Model.Predict(mat.NewDense(3, 1, nil))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i, p := range pred {
		if p != 0 {
			t.Errorf("pred[%d] = %d, want majority class 0", i, p)
		}
	}
}

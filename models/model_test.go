package models

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/mlpipes/titanic/pkg/errors"
)

func TestRegistryKnownModels(t *testing.T) {
	for _, id := range []string{
		"nearest-neighbor-k1",
		"nearest-neighbor-k5",
		"decision-tree",
		"random-forest",
		"linear-svm",
		"naive-bayes",
		"boosted-ensemble",
		"majority",
	} {
		t.Run(id, func(t *testing.T) {
			cls, err := New(id, nil)
			if err != nil {
				t.Fatalf("New(%q) error = %v", id, err)
			}
			if cls.Name() != id {
				t.Errorf("Name() = %q, want %q", cls.Name(), id)
			}
		})
	}
}

func TestRegistryUnknownModel(t *testing.T) {
	_, err := New("perceptron", nil)
	if err == nil {
		t.Fatal("New() with unknown id should error")
	}
	if !errors.Is(err, errors.ErrUnknownModel) {
		t.Errorf("error should wrap ErrUnknownModel, got %v", err)
	}
}

func TestParamsAccessors(t *testing.T) {
	p := Params{"k": 3, "learning_rate": 0.05}

	if got := p.Int("k", 1); got != 3 {
		t.Errorf("Int(k) = %d, want 3", got)
	}
	if got := p.Int("absent", 7); got != 7 {
		t.Errorf("Int(absent) = %d, want default 7", got)
	}
	if got := p.Float("learning_rate", 0.1); got != 0.05 {
		t.Errorf("Float(learning_rate) = %v, want 0.05", got)
	}
}

func TestNearestNeighborPerfectRecall(t *testing.T) {
	// k=1 on well separated clusters: training points are their own
	// nearest neighbors, so training predictions match the labels.
	rows := []float64{
		0, 0,
		0.1, 0.1,
		0.2, 0,
		5, 5,
		5.1, 4.9,
		5.2, 5.1,
	}
	X := mat.NewDense(6, 2, rows)
	y := []int{0, 0, 0, 1, 1, 1}

	cls, err := New("nearest-neighbor-k1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := cls.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := cls.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := range y {
		if pred[i] != y[i] {
			t.Errorf("row %d predicted %d, want %d", i, pred[i], y[i])
		}
	}
}

func TestInstancesRoundTrip(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1.5, 2.5, 3.5, 4.5})
	y := []int{0, 1}

	inst, err := instancesFromData(X, y, false)
	if err != nil {
		t.Fatal(err)
	}

	// Size reports the attribute count (including the class attribute)
	// first, then the row count.
	cols, rows := inst.Size()
	if cols != 3 || rows != 2 {
		t.Errorf("Size() = %d attrs × %d rows, want 3×2", cols, rows)
	}
}

package preprocessing

import (
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/mlpipes/titanic/dataset"
)

func featureTable(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.NewTable(
		dataset.Column{Name: "Age", Kind: dataset.Numeric,
			Floats:  []float64{22, 0, 26, 35},
			Missing: []bool{false, true, false, false}},
		dataset.Column{Name: "Sex", Kind: dataset.Categorical,
			Strings: []string{"male", "female", "female", "male"}},
		dataset.Column{Name: "Embarked", Kind: dataset.Categorical,
			Strings: []string{"S", "C", "", "Q"},
			Missing: []bool{false, false, true, false}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestOneHotEncoderFeatureNames(t *testing.T) {
	tests := []struct {
		name       string
		dropBinary bool
		want       []string
	}{
		{
			name:       "binary indicator dropped deliberately",
			dropBinary: true,
			want:       []string{"Age", "Sex.female", "Embarked.C", "Embarked.Q", "Embarked.S"},
		},
		{
			name:       "all indicators kept",
			dropBinary: false,
			want:       []string{"Age", "Sex.female", "Sex.male", "Embarked.C", "Embarked.Q", "Embarked.S"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewOneHotEncoder(tt.dropBinary)
			if err := enc.Fit(featureTable(t)); err != nil {
				t.Fatalf("Fit() error = %v", err)
			}
			if got := enc.FeatureNames(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FeatureNames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOneHotEncoderTransform(t *testing.T) {
	enc := NewOneHotEncoder(false)
	table := featureTable(t)
	X, missing, err := enc.FitTransform(table)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	r, c := X.Dims()
	if r != 4 || c != 6 {
		t.Fatalf("Dims() = %d×%d, want 4×6", r, c)
	}

	// Row 0: Age=22, male, S.
	want0 := []float64{22, 0, 1, 0, 0, 1}
	for j, w := range want0 {
		if X.At(0, j) != w {
			t.Errorf("X[0][%d] = %v, want %v", j, X.At(0, j), w)
		}
	}

	// Missing Age is masked, not a value.
	if !missing[1][0] {
		t.Error("missing numeric cell should be masked")
	}
	if missing[0][0] || missing[0][2] {
		t.Error("observed cells should not be masked")
	}

	// Missing Embarked produces all-zero indicators, not an error.
	for j := 3; j < 6; j++ {
		if X.At(2, j) != 0 {
			t.Errorf("missing category should yield zero indicator, got %v at col %d", X.At(2, j), j)
		}
	}

	// Indicators of one feature are mutually exclusive for observed rows.
	for _, i := range []int{0, 1, 3} {
		sum := X.At(i, 3) + X.At(i, 4) + X.At(i, 5)
		if sum != 1 {
			t.Errorf("row %d Embarked indicators sum to %v, want 1", i, sum)
		}
	}
}

func TestOneHotEncoderDeterministic(t *testing.T) {
	enc := NewOneHotEncoder(true)
	table := featureTable(t)
	if err := enc.Fit(table); err != nil {
		t.Fatal(err)
	}

	X1, _, err := enc.Transform(table)
	if err != nil {
		t.Fatal(err)
	}
	X2, _, err := enc.Transform(table)
	if err != nil {
		t.Fatal(err)
	}

	if !mat.Equal(X1, X2) {
		t.Error("Transform applied twice with the same learned mapping diverged")
	}
}

func TestOneHotEncoderUnseenCategory(t *testing.T) {
	enc := NewOneHotEncoder(true)
	if err := enc.Fit(featureTable(t)); err != nil {
		t.Fatal(err)
	}

	// "X" was never observed during Fit: it must map to all-zero
	// indicators rather than fail.
	later, err := dataset.NewTable(
		dataset.Column{Name: "Age", Kind: dataset.Numeric, Floats: []float64{40}},
		dataset.Column{Name: "Sex", Kind: dataset.Categorical, Strings: []string{"female"}},
		dataset.Column{Name: "Embarked", Kind: dataset.Categorical, Strings: []string{"X"}},
	)
	if err != nil {
		t.Fatal(err)
	}

	X, _, err := enc.Transform(later)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	for j := 2; j < 5; j++ {
		if X.At(0, j) != 0 {
			t.Errorf("unseen category should yield zero indicators, got %v", X.At(0, j))
		}
	}
}

func TestOneHotEncoderNotFitted(t *testing.T) {
	enc := NewOneHotEncoder(true)
	if _, _, err := enc.Transform(featureTable(t)); err == nil {
		t.Error("Transform() before Fit() should error")
	}
}

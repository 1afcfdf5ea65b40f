package dataset

import (
	"math"
	"testing"
)

func labeledTable(t *testing.T, labels []float64) *Table {
	t.Helper()
	ids := make([]float64, len(labels))
	for i := range ids {
		ids[i] = float64(i + 1)
	}
	table, err := NewTable(
		Column{Name: "PassengerId", Kind: Numeric, Floats: ids},
		Column{Name: "Survived", Kind: Numeric, Floats: labels},
	)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestStratifiedSplitInvariants(t *testing.T) {
	// 60 zeros, 40 ones.
	labels := make([]float64, 100)
	for i := 60; i < 100; i++ {
		labels[i] = 1
	}
	table := labeledTable(t, labels)

	train, eval, err := StratifiedSplit(table, "Survived", 0.8, 42)
	if err != nil {
		t.Fatalf("StratifiedSplit() error = %v", err)
	}

	if train.NumRows()+eval.NumRows() != table.NumRows() {
		t.Errorf("subset sizes %d+%d do not sum to %d",
			train.NumRows(), eval.NumRows(), table.NumRows())
	}

	// Disjointness via PassengerId.
	seen := make(map[int]bool)
	for _, sub := range []*Table{train, eval} {
		ids, err := sub.IntColumn("PassengerId")
		if err != nil {
			t.Fatal(err)
		}
		for _, id := range ids {
			if seen[id] {
				t.Fatalf("row %d appears in both subsets", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != 100 {
		t.Errorf("union covers %d rows, want 100", len(seen))
	}

	// Stratification: each subset preserves the 60/40 proportion to within
	// one row of rounding.
	for _, tc := range []struct {
		name string
		sub  *Table
	}{
		{"train", train},
		{"eval", eval},
	} {
		y, err := tc.sub.IntColumn("Survived")
		if err != nil {
			t.Fatal(err)
		}
		ones := 0
		for _, v := range y {
			ones += v
		}
		wantOnes := 0.4 * float64(len(y))
		if math.Abs(float64(ones)-wantOnes) > 1.0 {
			t.Errorf("%s subset has %d ones, want %.1f ± 1", tc.name, ones, wantOnes)
		}
	}
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	labels := []float64{0, 1, 0, 1, 0, 1, 0, 0, 1, 0}
	table := labeledTable(t, labels)

	a1, b1, err := StratifiedSplit(table, "Survived", 0.7, 7)
	if err != nil {
		t.Fatal(err)
	}
	a2, b2, err := StratifiedSplit(table, "Survived", 0.7, 7)
	if err != nil {
		t.Fatal(err)
	}

	idsA1, _ := a1.IntColumn("PassengerId")
	idsA2, _ := a2.IntColumn("PassengerId")
	if len(idsA1) != len(idsA2) {
		t.Fatalf("train sizes differ: %d vs %d", len(idsA1), len(idsA2))
	}
	for i := range idsA1 {
		if idsA1[i] != idsA2[i] {
			t.Fatalf("same seed produced different partitions at %d", i)
		}
	}
	if b1.NumRows() != b2.NumRows() {
		t.Errorf("eval sizes differ: %d vs %d", b1.NumRows(), b2.NumRows())
	}
}

func TestStratifiedSplitBadFraction(t *testing.T) {
	table := labeledTable(t, []float64{0, 1})
	for _, frac := range []float64{0, 1, -0.5, 1.5} {
		if _, _, err := StratifiedSplit(table, "Survived", frac, 1); err == nil {
			t.Errorf("fraction %v should be rejected", frac)
		}
	}
}

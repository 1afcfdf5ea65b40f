package dataset

import (
	"math/rand/v2"
	"sort"
	"strconv"

	"github.com/mlpipes/titanic/pkg/errors"
)

// StratifiedSplit partitions the table into train and evaluation subsets.
// Rows are sampled proportionally within each label class so that both
// subsets preserve the overall class proportions to within one row of
// rounding. The partition is deterministic for a given seed; the two subsets
// are disjoint and their union is the input row set.
func StratifiedSplit(t *Table, labelCol string, trainFrac float64, seed uint64) (train, eval *Table, err error) {
	if trainFrac <= 0 || trainFrac >= 1 {
		return nil, nil, errors.NewValueError("StratifiedSplit", "train fraction must be in (0,1)")
	}
	label, ok := t.Column(labelCol)
	if !ok {
		return nil, nil, errors.NewValueError("StratifiedSplit", "no such label column "+labelCol)
	}
	if t.NumRows() == 0 {
		return nil, nil, errors.WithStack(errors.ErrEmptyData)
	}

	// Group row indices by label value.
	groups := make(map[string][]int)
	for i := 0; i < t.NumRows(); i++ {
		groups[labelKey(label, i)] = append(groups[labelKey(label, i)], i)
	}

	// Iterate classes in a fixed order so the seed fully determines the split.
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rng := rand.New(rand.NewPCG(seed, seed))
	var trainRows, evalRows []int
	for _, k := range keys {
		rows := groups[k]
		rng.Shuffle(len(rows), func(i, j int) {
			rows[i], rows[j] = rows[j], rows[i]
		})
		nTrain := int(float64(len(rows))*trainFrac + 0.5)
		if nTrain > len(rows) {
			nTrain = len(rows)
		}
		trainRows = append(trainRows, rows[:nTrain]...)
		evalRows = append(evalRows, rows[nTrain:]...)
	}

	sort.Ints(trainRows)
	sort.Ints(evalRows)
	return t.Subset(trainRows), t.Subset(evalRows), nil
}

func labelKey(c *Column, row int) string {
	if c.Kind == Categorical {
		return c.Strings[row]
	}
	return strconv.FormatFloat(c.Floats[row], 'g', -1, 64)
}

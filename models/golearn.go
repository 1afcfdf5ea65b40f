package models

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/ensemble"
	"github.com/sjwhitworth/golearn/filters"
	"github.com/sjwhitworth/golearn/knn"
	"github.com/sjwhitworth/golearn/linear_models"
	"github.com/sjwhitworth/golearn/naive"
	"github.com/sjwhitworth/golearn/trees"
	"gonum.org/v1/gonum/mat"

	"github.com/mlpipes/titanic/core/model"
	"github.com/mlpipes/titanic/pkg/errors"
)

// The external model library supplies the classic families: nearest
// neighbors, decision trees, random forests, linear SVM and naive Bayes.
// This file adapts them to the Classifier interface: matrices are packed
// into golearn instance grids, discretization filters are fitted on the
// training grid and reused at prediction time, and predicted class strings
// are mapped back to integer labels.

func init() {
	Register("nearest-neighbor-k1", func(p Params) (Classifier, error) {
		k := p.Int("k", 1)
		return newGolearnModel("nearest-neighbor-k1", noFilter, func(_ int) (golearnClassifier, error) {
			return knn.NewKnnClassifier("euclidean", "linear", k), nil
		}), nil
	})
	Register("nearest-neighbor-k5", func(p Params) (Classifier, error) {
		k := p.Int("k", 5)
		return newGolearnModel("nearest-neighbor-k5", noFilter, func(_ int) (golearnClassifier, error) {
			return knn.NewKnnClassifier("euclidean", "linear", k), nil
		}), nil
	})
	Register("decision-tree", func(p Params) (Classifier, error) {
		prune := p.Float("prune", 0.6)
		return newGolearnModel("decision-tree", chiMergeFilter, func(_ int) (golearnClassifier, error) {
			return trees.NewID3DecisionTree(prune), nil
		}), nil
	})
	Register("random-forest", func(p Params) (Classifier, error) {
		size := p.Int("trees", 100)
		return newGolearnModel("random-forest", chiMergeFilter, func(nFeatures int) (golearnClassifier, error) {
			perTree := p.Int("features", int(math.Sqrt(float64(nFeatures))))
			if perTree < 1 {
				perTree = 1
			}
			if perTree > nFeatures {
				perTree = nFeatures
			}
			return ensemble.NewRandomForest(size, perTree), nil
		}), nil
	})
	Register("linear-svm", func(p Params) (Classifier, error) {
		c := p.Float("C", 1.0)
		eps := p.Float("eps", 1e-4)
		m := newGolearnModel("linear-svm", noFilter, func(_ int) (golearnClassifier, error) {
			svc, err := linear_models.NewLinearSVC("l1", "l2", true, c, eps)
			if err != nil {
				return nil, errors.Wrap(err, "linear-svm: construct")
			}
			return svc, nil
		})
		// The linear_models family panics on a categorical class attribute.
		m.floatClass = true
		return m, nil
	})
	Register("naive-bayes", func(_ Params) (Classifier, error) {
		return newGolearnModel("naive-bayes", binaryFilter, func(_ int) (golearnClassifier, error) {
			return &bernoulliNB{inner: naive.NewBernoulliNBClassifier()}, nil
		}), nil
	})
}

// golearnClassifier is the slice of the library's classifier surface the
// adapter needs.
type golearnClassifier interface {
	Fit(base.FixedDataGrid) error
	Predict(base.FixedDataGrid) (base.FixedDataGrid, error)
}

// bernoulliNB adapts the naive Bayes classifier, whose Fit does not report
// errors, to golearnClassifier.
type bernoulliNB struct {
	inner *naive.BernoulliNBClassifier
}

func (b *bernoulliNB) Fit(d base.FixedDataGrid) error {
	b.inner.Fit(d)
	return nil
}

func (b *bernoulliNB) Predict(d base.FixedDataGrid) (base.FixedDataGrid, error) {
	return b.inner.Predict(d)
}

type filterKind int

const (
	noFilter filterKind = iota
	// chiMergeFilter discretizes continuous float attributes; the tree
	// learners require few-valued inputs. Two-valued indicator columns are
	// left unfiltered: ChiMerge merges them into a single interval, which
	// erases the feature.
	chiMergeFilter
	// binaryFilter converts attributes to 0/1; required by Bernoulli NB.
	binaryFilter
)

type golearnModel struct {
	model.BaseEstimator

	name string
	kind filterKind
	// floatClass builds grids with a float label attribute instead of a
	// categorical one, as the linear_models family requires.
	floatClass bool
	build      func(nFeatures int) (golearnClassifier, error)

	cls       golearnClassifier
	filter    base.Filter
	contAttrs map[string]bool
	nFeatures int
}

func newGolearnModel(name string, kind filterKind, build func(int) (golearnClassifier, error)) *golearnModel {
	return &golearnModel{name: name, kind: kind, build: build}
}

func (m *golearnModel) Name() string { return m.name }

func (m *golearnModel) Fit(X *mat.Dense, y []int) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, m.name+": fit")
	}
	if len(y) != r {
		return errors.NewDimensionError(m.name+".Fit", r, len(y), 0)
	}

	grid, err := instancesFromData(X, y, m.floatClass)
	if err != nil {
		return err
	}

	cls, err := m.build(c)
	if err != nil {
		return err
	}

	if m.kind == chiMergeFilter {
		m.contAttrs = continuousAttributes(X)
	}
	data, filter, err := m.applyFilter(grid, true)
	if err != nil {
		return err
	}

	if err := cls.Fit(data); err != nil {
		return errors.Wrapf(err, "%s: fit", m.name)
	}

	m.cls = cls
	m.filter = filter
	m.nFeatures = c
	m.SetFitted()
	return nil
}

func (m *golearnModel) Predict(X *mat.Dense) ([]int, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError(m.name, "Predict")
	}
	r, c := X.Dims()
	if c != m.nFeatures {
		return nil, errors.NewDimensionError(m.name+".Predict", m.nFeatures, c, 1)
	}

	grid, err := instancesFromData(X, nil, m.floatClass)
	if err != nil {
		return nil, err
	}
	data, _, err := m.applyFilter(grid, false)
	if err != nil {
		return nil, err
	}

	pred, err := m.cls.Predict(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: predict", m.name)
	}

	out := make([]int, r)
	for i := 0; i < r; i++ {
		// Float class attributes render like "1.00", so a float parse
		// covers both class attribute kinds.
		s := base.GetClass(pred, i)
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: non-numeric predicted class %q", m.name, s)
		}
		out[i] = int(math.Round(v))
	}
	return out, nil
}

// applyFilter wraps the grid with the model's discretization filter. During
// Fit the filter is trained on the training grid; during Predict the filter
// learned at fit time is reused so both grids share one mapping.
func (m *golearnModel) applyFilter(grid *base.DenseInstances, fitting bool) (base.FixedDataGrid, base.Filter, error) {
	switch m.kind {
	case noFilter:
		return grid, nil, nil
	case chiMergeFilter:
		if fitting {
			f := filters.NewChiMergeFilter(grid, 0.999)
			added := 0
			for _, a := range base.NonClassFloatAttributes(grid) {
				if m.contAttrs[a.GetName()] {
					f.AddAttribute(a)
					added++
				}
			}
			if added == 0 {
				return grid, nil, nil
			}
			f.Train()
			return base.NewLazilyFilteredInstances(grid, f), f, nil
		}
		if m.filter == nil {
			return grid, nil, nil
		}
		return base.NewLazilyFilteredInstances(grid, m.filter), m.filter, nil
	case binaryFilter:
		if fitting {
			f := filters.NewBinaryConvertFilter()
			for _, a := range base.NonClassAttributes(grid) {
				f.AddAttribute(a)
			}
			f.Train()
			return base.NewLazilyFilteredInstances(grid, f), f, nil
		}
		return base.NewLazilyFilteredInstances(grid, m.filter), m.filter, nil
	}
	return nil, nil, errors.Newf("%s: unknown filter kind %d", m.name, m.kind)
}

// continuousAttributes reports which feature columns take more than two
// distinct values, keyed by positional attribute name. Two-valued columns
// are one-hot indicators (possibly centered/scaled) and must not be
// discretized.
func continuousAttributes(X *mat.Dense) map[string]bool {
	r, c := X.Dims()
	cont := make(map[string]bool, c)
	for j := 0; j < c; j++ {
		seen := make(map[float64]struct{}, 3)
		for i := 0; i < r; i++ {
			seen[X.At(i, j)] = struct{}{}
			if len(seen) > 2 {
				cont[fmt.Sprintf("f%d", j)] = true
				break
			}
		}
	}
	return cont
}

// instancesFromData packs a feature matrix and optional labels into a dense
// golearn grid. Attribute names are positional so grids built from the
// training and prediction matrices resolve to the same attributes. The
// categorical class attribute's category order is primed to "0","1" so
// label system values agree across grids; a float class attribute is used
// for families that reject categorical classes.
func instancesFromData(X *mat.Dense, y []int, floatClass bool) (*base.DenseInstances, error) {
	r, c := X.Dims()

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, 0, c+1)
	for j := 0; j < c; j++ {
		attr := base.NewFloatAttribute(fmt.Sprintf("f%d", j))
		specs = append(specs, inst.AddAttribute(attr))
	}

	var classAttr base.Attribute
	if floatClass {
		classAttr = base.NewFloatAttribute("label")
	} else {
		cat := base.NewCategoricalAttribute()
		cat.SetName("label")
		cat.GetSysValFromString("0")
		cat.GetSysValFromString("1")
		classAttr = cat
	}
	classSpec := inst.AddAttribute(classAttr)
	if err := inst.AddClassAttribute(classAttr); err != nil {
		return nil, errors.Wrap(err, "models: add class attribute")
	}
	if err := inst.Extend(r); err != nil {
		return nil, errors.Wrap(err, "models: allocate instances")
	}

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			inst.Set(specs[j], i, base.PackFloatToBytes(X.At(i, j)))
		}
		label := "0"
		if y != nil {
			label = strconv.Itoa(y[i])
		}
		inst.Set(classSpec, i, classAttr.GetSysValFromString(label))
	}
	return inst, nil
}

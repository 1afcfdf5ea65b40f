package evaluation

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/mlpipes/titanic/pkg/errors"
)

// AccuracyChart writes a bar chart of hold-out accuracies, one bar per
// model, to the given PNG path.
func AccuracyChart(results []Result, path string) error {
	if len(results) == 0 {
		return errors.New("evaluation: no results to chart")
	}

	p := plot.New()
	p.Title.Text = "Hold-out accuracy by model"
	p.Y.Label.Text = "Accuracy"
	p.Y.Min = 0
	p.Y.Max = 1

	values := make(plotter.Values, len(results))
	names := make([]string, len(results))
	for i, r := range results {
		values[i] = r.TestAccuracy
		names[i] = r.ModelID
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return errors.Wrap(err, "evaluation: bar chart")
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(names...)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrap(err, "evaluation: save chart")
	}
	return nil
}

// FeatureScatter writes a scatter of two feature columns colored by class
// label to the given PNG path. Column indices refer to X.
func FeatureScatter(X *mat.Dense, y []int, xCol, yCol int, xName, yName, path string) error {
	rows, cols := X.Dims()
	if rows != len(y) {
		return errors.NewDimensionError("FeatureScatter", len(y), rows, 0)
	}
	if xCol < 0 || xCol >= cols || yCol < 0 || yCol >= cols {
		return errors.NewValueError("FeatureScatter", "column index out of range")
	}

	byClass := make(map[int]plotter.XYs)
	for i := 0; i < rows; i++ {
		byClass[y[i]] = append(byClass[y[i]], plotter.XY{
			X: X.At(i, xCol),
			Y: X.At(i, yCol),
		})
	}

	labels := make([]int, 0, len(byClass))
	for label := range byClass {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	p := plot.New()
	p.Title.Text = xName + " vs " + yName
	p.X.Label.Text = xName
	p.Y.Label.Text = yName
	p.Legend.Top = true

	for i, label := range labels {
		s, err := plotter.NewScatter(byClass[label])
		if err != nil {
			return errors.Wrap(err, "evaluation: scatter")
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(s)
		p.Legend.Add(className(label), s)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrap(err, "evaluation: save chart")
	}
	return nil
}

func className(label int) string {
	switch label {
	case 0:
		return "did not survive"
	case 1:
		return "survived"
	default:
		return "class " + strconv.Itoa(label)
	}
}

// Package report compares the transformed training and validation matrices
// column by column and renders the comparison with gonum/plot.
package report

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// MeanComparison holds per-column means of two matrices sharing the same
// output labels. For indicator columns the mean is the category frequency.
type MeanComparison struct {
	Names []string
	Train []float64
	Val   []float64
}

// CompareMeans computes column means of train and val.
func CompareMeans(names []string, train, val mat.Matrix) (*MeanComparison, error) {
	_, ct := train.Dims()
	_, cv := val.Dims()
	if ct != cv {
		return nil, errors.NewShapeMismatchError("report.CompareMeans", "columns", ct, cv)
	}
	if len(names) != ct {
		return nil, errors.NewShapeMismatchError("report.CompareMeans", "names", ct, len(names))
	}
	return &MeanComparison{
		Names: append([]string(nil), names...),
		Train: columnMeans(train),
		Val:   columnMeans(val),
	}, nil
}

func columnMeans(m mat.Matrix) []float64 {
	r, c := m.Dims()
	col := make([]float64, r)
	means := make([]float64, c)
	for j := range means {
		mat.Col(col, j, m)
		means[j] = stat.Mean(col, nil)
	}
	return means
}

// MaxShift returns the column whose mean differs most between the partitions.
func (m *MeanComparison) MaxShift() (name string, delta float64) {
	for j, n := range m.Names {
		if d := math.Abs(m.Train[j] - m.Val[j]); d > delta || name == "" {
			name, delta = n, d
		}
	}
	return name, delta
}

// Plot writes a grouped bar chart to path. The image format follows the
// file extension (svg, png, pdf, ...).
func (m *MeanComparison) Plot(path string) error {
	p := plot.New()
	p.Title.Text = "Column means: train vs validation"
	p.Y.Label.Text = "mean"

	width := vg.Points(8)
	train, err := plotter.NewBarChart(plotter.Values(m.Train), width)
	if err != nil {
		return errors.Wrap(err, "train bars")
	}
	train.Color = plotutil.Color(0)
	train.Offset = -width / 2

	val, err := plotter.NewBarChart(plotter.Values(m.Val), width)
	if err != nil {
		return errors.Wrap(err, "validation bars")
	}
	val.Color = plotutil.Color(1)
	val.Offset = width / 2

	p.Add(train, val)
	p.Legend.Add("train", train)
	p.Legend.Add("validation", val)
	p.Legend.Top = true
	p.NominalX(m.Names...)
	p.X.Tick.Label.Rotation = math.Pi / 2.5
	p.X.Tick.Label.XAlign = -1.0

	w := vg.Length(math.Max(6, float64(len(m.Names))*0.35)) * vg.Inch
	if err := p.Save(w, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot to %s", path)
	}
	return nil
}

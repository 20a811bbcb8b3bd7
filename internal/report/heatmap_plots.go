package report

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/interp_viewer_go/internal/analysis"
	"github.com/user/interp_viewer_go/internal/parser"
)

// ErrTooFewCells is returned when a dataset cannot fill a heatmap grid.
var ErrTooFewCells = errors.New("too few cells for heatmap")

// errorGrid is a plotter.GridXYZ with one row per group and one column per
// sample index. Missing samples are NaN.
type errorGrid struct {
	rows [][]float64
	cols int
	xs   []float64 // shared x values, nil when columns are sample indices
}

func (g *errorGrid) Dims() (c, r int) {
	return g.cols, len(g.rows)
}

func (g *errorGrid) Z(c, r int) float64 {
	if c < len(g.rows[r]) {
		return g.rows[r][c]
	}
	return math.NaN()
}

func (g *errorGrid) X(c int) float64 {
	if g.xs == nil {
		return float64(c)
	}
	if c >= 0 && c < len(g.xs) {
		return g.xs[c]
	}
	step := g.xs[1] - g.xs[0]
	if c < 0 {
		return g.xs[0] + float64(c)*step
	}
	last := len(g.xs) - 1
	return g.xs[last] + float64(c-last)*(g.xs[last]-g.xs[last-1])
}

func (g *errorGrid) Y(r int) float64 {
	return float64(r)
}

// sharedX returns the x values common to every group of ds, or nil when the
// groups do not share one increasing x sequence.
func sharedX(ds *parser.SeriesDataset) []float64 {
	var xs []float64
	for _, key := range ds.Keys {
		g := ds.Groups[key]
		if g.Len() == 0 {
			continue
		}
		if xs == nil {
			xs = g.X
			continue
		}
		if !floats.Equal(xs, g.X) {
			return nil
		}
	}
	if len(xs) < 2 || !sort.Float64sAreSorted(xs) || xs[0] == xs[len(xs)-1] {
		return nil
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] == xs[i-1] {
			return nil
		}
	}
	return xs
}

func newErrorGrid(ds *parser.SeriesDataset) *errorGrid {
	g := &errorGrid{rows: make([][]float64, 0, ds.Len())}
	for _, key := range ds.Keys {
		row := analysis.AbsErrors(ds.Groups[key])
		if len(row) > g.cols {
			g.cols = len(row)
		}
		g.rows = append(g.rows, row)
	}
	g.xs = sharedX(ds)
	return g
}

// CreateErrorHeatmap draws |approx - reference| with one row per group key and
// one column per sample.
func CreateErrorHeatmap(ds *parser.SeriesDataset, plotTitle string, w, h vg.Length) ([]byte, error) {
	if ds == nil {
		return nil, errors.New("no series dataset for heatmap")
	}
	if ds.Len() == 0 {
		return nil, errors.Wrap(ErrTooFewCells, "no groups")
	}

	grid := newErrorGrid(ds)
	if grid.cols < 2 || len(grid.rows) < 2 {
		return nil, errors.Wrapf(ErrTooFewCells, "%d groups x %d samples", len(grid.rows), grid.cols)
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, row := range grid.rows {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if math.IsInf(minVal, 1) {
		return nil, errors.Wrap(ErrTooFewCells, "no finite error values")
	}
	if minVal == maxVal {
		maxVal = minVal + 1
	}

	p := plot.New()
	p.Title.Text = plotTitle
	if grid.xs != nil {
		p.X.Label.Text = "x"
	} else {
		p.X.Label.Text = "Sample index"
	}
	p.Y.Label.Text = "Sample count"

	yTicks := make([]plot.Tick, len(ds.Keys))
	for i, key := range ds.Keys {
		yTicks[i] = plot.Tick{Value: float64(i), Label: fmt.Sprintf("n = %d", key)}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)

	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	hm.Min = minVal
	hm.Max = maxVal
	hm.NaN = color.Gray{Y: 200}
	p.Add(hm)

	return pngBytes(p, w, h)
}

package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/user/interp_viewer_go/internal/parser"
)

// xys pairs x and y into plot points. Extra values on either side are ignored.
func xys(x, y []float64) plotter.XYs {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	pts := make(plotter.XYs, n)
	for i := range pts {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// segments splits x, y into runs of finite points. A pair with a NaN or
// infinite coordinate ends the current run and leaves a gap.
func segments(x, y []float64) []plotter.XYs {
	var (
		out []plotter.XYs
		cur plotter.XYs
	)
	for _, pt := range xys(x, y) {
		if isFinite(pt.X) && isFinite(pt.Y) {
			cur = append(cur, pt)
			continue
		}
		if len(cur) > 0 {
			out = append(out, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// addSegmentedLine adds one line per finite run of x, y to p. It returns a
// line for the legend, which is never nil, and the finite points drawn.
func addSegmentedLine(p *plot.Plot, x, y []float64, style draw.LineStyle) (*plotter.Line, plotter.XYs, error) {
	var (
		legend *plotter.Line
		finite plotter.XYs
	)
	for _, seg := range segments(x, y) {
		line, err := plotter.NewLine(seg)
		if err != nil {
			return nil, nil, err
		}
		line.LineStyle = style
		p.Add(line)
		if legend == nil {
			legend = line
		}
		finite = append(finite, seg...)
	}
	if legend == nil {
		legend = &plotter.Line{LineStyle: style}
	}
	return legend, finite, nil
}

func overlayTitle(ds *parser.SeriesDataset, labels OverlayLabels) string {
	if ds == nil || ds.Source == "" {
		return labels.Title
	}
	return fmt.Sprintf("%s (%s)", labels.Title, filepath.Base(ds.Source))
}

// pngBytes renders p onto a w x h canvas.
func pngBytes(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	writer, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create plot writer")
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, errors.Wrap(err, "failed to write plot to buffer")
	}
	return buf.Bytes(), nil
}

// CreateOverlayPlot draws, for each group of ds, the exact curve as a dashed
// black line and the interpolated curve in the group's colour. A dataset
// without groups gives a titled, empty chart. Non-finite samples leave gaps.
func CreateOverlayPlot(ds *parser.SeriesDataset, labels OverlayLabels, w, h vg.Length) ([]byte, error) {
	if ds == nil {
		return nil, errors.New("no series dataset to plot")
	}

	p := plot.New()
	p.Title.Text = overlayTitle(ds, labels)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "f(x)"
	p.Add(plotter.NewGrid())

	for i, key := range ds.Keys {
		g, ok := ds.Group(key)
		if !ok || g.Len() == 0 {
			continue
		}

		refStyle := plotter.DefaultLineStyle
		refStyle.Color = color.Black
		refStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		ref, _, err := addSegmentedLine(p, g.X, g.Reference, refStyle)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create reference line for %s=%d", labels.KeyName, key)
		}

		approxStyle := plotter.DefaultLineStyle
		approxStyle.Color = plotutil.Color(i)
		approxStyle.Width = vg.Points(1.5)
		approx, _, err := addSegmentedLine(p, g.X, g.Approx, approxStyle)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create approximation line for %s=%d", labels.KeyName, key)
		}

		p.Legend.Add(fmt.Sprintf("%s (%s=%d)", labels.Reference, labels.KeyName, key), ref)
		p.Legend.Add(fmt.Sprintf("%s (%s=%d)", labels.Approx, labels.KeyName, key), approx)
	}

	p.Legend.Top = true
	p.Legend.XOffs = -vg.Points(10)

	return pngBytes(p, w, h)
}

// equalAspectRange widens the shorter side of the data box so that one data
// unit spans the same length on both axes of a canvas with height/width
// equal to ratio.
func equalAspectRange(xmin, xmax, ymin, ymax, ratio float64) (float64, float64, float64, float64) {
	dx, dy := xmax-xmin, ymax-ymin
	if dx <= 0 {
		dx = 1
		xmin, xmax = xmin-0.5, xmax+0.5
	}
	if dy <= 0 {
		dy = 1
		ymin, ymax = ymin-0.5, ymax+0.5
	}
	if dy/dx < ratio {
		cy, half := (ymin+ymax)/2, dx*ratio/2
		return xmin, xmax, cy - half, cy + half
	}
	cx, half := (xmin+xmax)/2, dy/ratio/2
	return cx - half, cx + half, ymin, ymax
}

// CreateCurvesPlot draws one line per labelled point list with equal axis
// scaling, so curve shapes are not distorted. Non-finite points leave gaps.
func CreateCurvesPlot(curves *parser.LabeledPointLists, labels CurveLabels, w, h vg.Length) ([]byte, error) {
	if curves == nil || curves.Len() == 0 {
		return nil, errors.New("no point lists to plot")
	}

	p := plot.New()
	p.Title.Text = labels.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)

	for i, m := range curves.Labels {
		pl := curves.Lists[m]
		if pl == nil || pl.Len() == 0 {
			continue
		}
		style := plotter.DefaultLineStyle
		style.Color = plotutil.Color(i)
		style.Width = vg.Points(1.5)
		line, finite, err := addSegmentedLine(p, pl.X, pl.Y, style)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create line for %s = %d", labels.KeyName, m)
		}
		p.Legend.Add(fmt.Sprintf("%s = %d", labels.KeyName, m), line)
		if len(finite) == 0 {
			continue
		}

		x0, x1, y0, y1 := plotter.XYRange(finite)
		xmin, xmax = math.Min(xmin, x0), math.Max(xmax, x1)
		ymin, ymax = math.Min(ymin, y0), math.Max(ymax, y1)
	}

	if !math.IsInf(xmin, 1) {
		const pad = 0.05
		xmin, xmax, ymin, ymax = equalAspectRange(xmin, xmax, ymin, ymax, float64(h)/float64(w))
		px, py := (xmax-xmin)*pad, (ymax-ymin)*pad
		p.X.Min, p.X.Max = xmin-px, xmax+px
		p.Y.Min, p.Y.Max = ymin-py, ymax+py
	}

	p.Legend.Top = true

	return pngBytes(p, w, h)
}

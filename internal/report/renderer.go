package report

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot/vg"

	"github.com/user/interp_viewer_go/internal/parser"
)

// Renderer draws parsed datasets. Implementations read their arguments and
// must not keep them after returning.
type Renderer interface {
	RenderOverlay(ds *parser.SeriesDataset, labels OverlayLabels) error
	RenderCurves(curves *parser.LabeledPointLists, labels CurveLabels) error
}

// OverlayLabels names the parts of an interpolation overlay chart.
type OverlayLabels struct {
	Title     string
	Reference string // legend prefix of the exact curves
	Approx    string // legend prefix of the interpolated curves
	KeyName   string
}

// DefaultOverlayLabels returns the labels used for Newton and Chebyshev output.
func DefaultOverlayLabels() OverlayLabels {
	return OverlayLabels{
		Title:     "Newton Interpolation and Runge Phenomenon",
		Reference: "Exact function",
		Approx:    "Newton interpolation",
		KeyName:   "n",
	}
}

// CurveLabels names the parts of a curve chart.
type CurveLabels struct {
	Title   string
	KeyName string
}

// DefaultCurveLabels returns the labels used for the heart curve output.
func DefaultCurveLabels() CurveLabels {
	return CurveLabels{
		Title:   "Heart Shape Approximated with Cubic Bézier Curves",
		KeyName: "m",
	}
}

// Chart is a rendered PNG image.
type Chart struct {
	Name  string
	Title string
	PNG   []byte
}

// PlotRenderer renders charts with gonum/plot and hands each PNG to Emit.
type PlotRenderer struct {
	Width        vg.Length
	Height       vg.Length
	ErrorHeatmap bool // also emit an absolute error heatmap per overlay
	Emit         func(Chart) error
}

// NewPlotRenderer returns a renderer with the default canvas size.
func NewPlotRenderer(emit func(Chart) error) *PlotRenderer {
	return &PlotRenderer{
		Width:  vg.Points(720),
		Height: vg.Points(480),
		Emit:   emit,
	}
}

// chartStem turns a source path into a chart name component.
func chartStem(source string) string {
	if source == "" {
		return "series"
	}
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (r *PlotRenderer) emit(c Chart) error {
	if r.Emit == nil {
		return errors.New("plot renderer has no output")
	}
	return errors.Wrapf(r.Emit(c), "failed to emit chart %s", c.Name)
}

// RenderOverlay draws the reference and approximation curves of every group
// in ds on one chart.
func (r *PlotRenderer) RenderOverlay(ds *parser.SeriesDataset, labels OverlayLabels) error {
	title := overlayTitle(ds, labels)
	img, err := CreateOverlayPlot(ds, labels, r.Width, r.Height)
	if err != nil {
		return err
	}
	stem := chartStem(ds.Source)
	if err := r.emit(Chart{Name: "overlay_" + stem, Title: title, PNG: img}); err != nil {
		return err
	}

	if !r.ErrorHeatmap {
		return nil
	}
	hmTitle := "Absolute Interpolation Error"
	if ds.Source != "" {
		hmTitle += " (" + filepath.Base(ds.Source) + ")"
	}
	hm, err := CreateErrorHeatmap(ds, hmTitle, r.Width, r.Height)
	if errors.Is(err, ErrTooFewCells) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.emit(Chart{Name: "heatmap_" + stem, Title: hmTitle, PNG: hm})
}

// RenderCurves draws every point list in curves on one equal-aspect chart.
func (r *PlotRenderer) RenderCurves(curves *parser.LabeledPointLists, labels CurveLabels) error {
	img, err := CreateCurvesPlot(curves, labels, r.Width, r.Height)
	if err != nil {
		return err
	}
	return r.emit(Chart{Name: "curves", Title: labels.Title, PNG: img})
}

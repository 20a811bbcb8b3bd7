package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"gonum.org/v1/plot/vg"

	"github.com/user/interp_viewer_go/internal/analysis"
	"github.com/user/interp_viewer_go/internal/parser"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func runge(x float64) float64 {
	return 1 / (1 + 25*x*x)
}

// testSeries builds a dataset with groups n = 5, 10 sampled on a shared grid.
func testSeries() *parser.SeriesDataset {
	ds := parser.NewSeriesDataset()
	ds.Source = filepath.Join("data", "Chebyshev_output.txt")
	for _, n := range []int{5, 10} {
		g := &parser.SeriesGroup{}
		for i := 0; i <= 20; i++ {
			x := -1 + float64(i)*0.1
			g.X = append(g.X, x)
			g.Reference = append(g.Reference, runge(x))
			g.Approx = append(g.Approx, runge(x)+0.01*float64(n)*x)
		}
		ds.Keys = append(ds.Keys, n)
		ds.Groups[n] = g
	}
	return ds
}

func testCurves() *parser.LabeledPointLists {
	lists := parser.NewLabeledPointLists()
	for _, m := range []int{10, 40} {
		pl := &parser.PointList{}
		for i := 0; i < m; i++ {
			theta := 2 * math.Pi * float64(i) / float64(m)
			x := math.Cos(theta)
			pl.X = append(pl.X, x)
			pl.Y = append(pl.Y, (2.0/3.0)*(math.Sqrt(math.Abs(x))+math.Sin(theta)))
		}
		lists.Add(m, pl)
	}
	return lists
}

func TestEqualAspectRange(t *testing.T) {
	tests := []struct {
		name                   string
		xmin, xmax, ymin, ymax float64
		ratio                  float64
	}{
		{"wide data", 0, 10, 0, 1, 0.5},
		{"tall data", 0, 1, -5, 5, 0.5},
		{"square canvas", -1, 1, 0, 4, 1},
		{"flat data", 0, 2, 3, 3, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x0, x1, y0, y1 := equalAspectRange(tt.xmin, tt.xmax, tt.ymin, tt.ymax, tt.ratio)
			if got := (y1 - y0) / (x1 - x0); math.Abs(got-tt.ratio) > 1e-9 {
				t.Errorf("ratio = %v, want %v", got, tt.ratio)
			}
			if x0 > tt.xmin || x1 < tt.xmax || y0 > tt.ymin || y1 < tt.ymax {
				t.Errorf("range [%v,%v]x[%v,%v] does not cover data", x0, x1, y0, y1)
			}
		})
	}
}

func TestCreateOverlayPlot(t *testing.T) {
	img, err := CreateOverlayPlot(testSeries(), DefaultOverlayLabels(), vg.Points(400), vg.Points(300))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Error("output is not a PNG")
	}

	empty, err := CreateOverlayPlot(parser.NewSeriesDataset(), DefaultOverlayLabels(), vg.Points(400), vg.Points(300))
	if err != nil {
		t.Fatalf("empty dataset should give an empty chart, got %v", err)
	}
	if !bytes.HasPrefix(empty, pngMagic) {
		t.Error("empty chart is not a PNG")
	}

	if _, err := CreateOverlayPlot(nil, DefaultOverlayLabels(), vg.Points(400), vg.Points(300)); err == nil {
		t.Error("expected error for nil dataset")
	}
}

func TestSegments(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	tests := []struct {
		name string
		x, y []float64
		want []int // run lengths
	}{
		{"all finite", []float64{0, 1, 2}, []float64{0, 1, 4}, []int{3}},
		{"gap in y", []float64{0, 1, 2, 3}, []float64{0, nan, 4, 9}, []int{1, 2}},
		{"gap in x", []float64{inf, 1, 2}, []float64{0, 1, 4}, []int{2}},
		{"trailing gap", []float64{0, 1, 2}, []float64{0, 1, -inf}, []int{2}},
		{"no finite point", []float64{nan}, []float64{1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := segments(tt.x, tt.y)
			if len(segs) != len(tt.want) {
				t.Fatalf("expected %d runs, got %d", len(tt.want), len(segs))
			}
			for i, n := range tt.want {
				if len(segs[i]) != n {
					t.Errorf("run %d: %d points, want %d", i, len(segs[i]), n)
				}
			}
		})
	}
}

func TestCreatePlots_NonFiniteValues(t *testing.T) {
	ds, err := parser.ParseSeries(bytes.NewBufferString(
		"n = 3:\nx: 0 Exact: 1 Interp: nan\nx: 1 Exact: 2 Interp: 2.1\nx: 2 Exact: inf Interp: 3\n"))
	if err != nil {
		t.Fatal(err)
	}
	img, err := CreateOverlayPlot(ds, DefaultOverlayLabels(), vg.Points(400), vg.Points(300))
	if err != nil {
		t.Fatalf("overlay with NaN samples: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Error("overlay is not a PNG")
	}

	lists := parser.NewLabeledPointLists()
	lists.Add(10, &parser.PointList{X: []float64{math.Inf(1), 0, 1}, Y: []float64{1, 0, 1}})
	lists.Add(40, &parser.PointList{X: []float64{math.NaN()}, Y: []float64{0}})
	img, err = CreateCurvesPlot(lists, DefaultCurveLabels(), vg.Points(400), vg.Points(300))
	if err != nil {
		t.Fatalf("curves with infinite points: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Error("curves chart is not a PNG")
	}
}

func TestCreateCurvesPlot(t *testing.T) {
	img, err := CreateCurvesPlot(testCurves(), DefaultCurveLabels(), vg.Points(400), vg.Points(300))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestCreateErrorHeatmap(t *testing.T) {
	ds := testSeries()
	if xs := sharedX(ds); len(xs) != 21 {
		t.Errorf("expected shared x of 21 samples, got %d", len(xs))
	}

	img, err := CreateErrorHeatmap(ds, "Absolute Interpolation Error", vg.Points(400), vg.Points(300))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Error("output is not a PNG")
	}

	// Uneven groups fall back to sample indices and pad with NaN.
	ds.Groups[10].X = ds.Groups[10].X[:5]
	ds.Groups[10].Reference = ds.Groups[10].Reference[:5]
	ds.Groups[10].Approx = ds.Groups[10].Approx[:5]
	grid := newErrorGrid(ds)
	if grid.xs != nil {
		t.Error("expected index columns for uneven groups")
	}
	if c, r := grid.Dims(); c != 21 || r != 2 {
		t.Errorf("dims = %d x %d", c, r)
	}
	if !math.IsNaN(grid.Z(10, 1)) {
		t.Error("expected NaN padding")
	}
	if _, err := CreateErrorHeatmap(ds, "uneven", vg.Points(400), vg.Points(300)); err != nil {
		t.Errorf("unexpected error for uneven groups: %v", err)
	}

	single := parser.NewSeriesDataset()
	single.Keys = []int{3}
	single.Groups[3] = &parser.SeriesGroup{X: []float64{0, 1}, Reference: []float64{0, 1}, Approx: []float64{0, 2}}
	if _, err := CreateErrorHeatmap(single, "single", vg.Points(400), vg.Points(300)); !errors.Is(err, ErrTooFewCells) {
		t.Errorf("expected ErrTooFewCells, got %v", err)
	}
	if _, err := CreateErrorHeatmap(parser.NewSeriesDataset(), "empty", vg.Points(400), vg.Points(300)); !errors.Is(err, ErrTooFewCells) {
		t.Errorf("expected ErrTooFewCells for empty dataset, got %v", err)
	}
}

func TestPlotRenderer(t *testing.T) {
	var charts []Chart
	r := NewPlotRenderer(func(c Chart) error {
		charts = append(charts, c)
		return nil
	})
	r.ErrorHeatmap = true

	if err := r.RenderOverlay(testSeries(), DefaultOverlayLabels()); err != nil {
		t.Fatalf("RenderOverlay: %v", err)
	}
	if err := r.RenderCurves(testCurves(), DefaultCurveLabels()); err != nil {
		t.Fatalf("RenderCurves: %v", err)
	}

	wantNames := []string{"overlay_Chebyshev_output", "heatmap_Chebyshev_output", "curves"}
	if len(charts) != len(wantNames) {
		t.Fatalf("expected %d charts, got %d", len(wantNames), len(charts))
	}
	for i, name := range wantNames {
		if charts[i].Name != name {
			t.Errorf("chart %d: name %q, want %q", i, charts[i].Name, name)
		}
		if !bytes.HasPrefix(charts[i].PNG, pngMagic) {
			t.Errorf("chart %s is not a PNG", charts[i].Name)
		}
	}
	if charts[0].Title != "Newton Interpolation and Runge Phenomenon (Chebyshev_output.txt)" {
		t.Errorf("unexpected title %q", charts[0].Title)
	}
}

func TestPlotRenderer_EmptyDataset(t *testing.T) {
	var charts []Chart
	r := NewPlotRenderer(func(c Chart) error {
		charts = append(charts, c)
		return nil
	})
	r.ErrorHeatmap = true

	ds, err := parser.ParseSeries(bytes.NewBufferString("just a comment\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.RenderOverlay(ds, DefaultOverlayLabels()); err != nil {
		t.Fatalf("RenderOverlay of a headerless file: %v", err)
	}
	if len(charts) != 1 || charts[0].Name != "overlay_series" {
		t.Errorf("expected only the overlay chart, got %d charts", len(charts))
	}
}

func TestPlotRenderer_EmitError(t *testing.T) {
	sinkErr := errors.New("display closed")
	r := NewPlotRenderer(func(Chart) error { return sinkErr })
	if err := r.RenderCurves(testCurves(), DefaultCurveLabels()); !errors.Is(err, sinkErr) {
		t.Errorf("expected emit error, got %v", err)
	}

	r.Emit = nil
	if err := r.RenderCurves(testCurves(), DefaultCurveLabels()); err == nil {
		t.Error("expected error without an output")
	}
}

func TestBuildPDFReport(t *testing.T) {
	ds := testSeries()
	rep, err := analysis.AnalyzeSeries(ds)
	if err != nil {
		t.Fatal(err)
	}
	stats, err := analysis.AnalyzeCurves(testCurves())
	if err != nil {
		t.Fatal(err)
	}
	img, err := CreateCurvesPlot(testCurves(), DefaultCurveLabels(), vg.Points(360), vg.Points(240))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "report.pdf")
	err = BuildPDFReport(path, []*analysis.SeriesReport{rep}, stats, []Chart{{Name: "curves", Title: "Curves", PNG: img}})
	if err != nil {
		t.Fatalf("BuildPDFReport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}

	empty := filepath.Join(t.TempDir(), "empty.pdf")
	if err := BuildPDFReport(empty, nil, nil, nil); err != nil {
		t.Errorf("empty report: %v", err)
	}
}

package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/user/interp_viewer_go/internal/parser"
)

// AbsErrors returns |approx - reference| for every sample of g.
func AbsErrors(g *parser.SeriesGroup) []float64 {
	n := len(g.Approx)
	if len(g.Reference) < n {
		n = len(g.Reference)
	}
	out := make([]float64, n)
	floats.SubTo(out, g.Approx[:n], g.Reference[:n])
	for i, v := range out {
		out[i] = math.Abs(v)
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finiteErrors returns the x values and absolute errors of the samples of g
// whose x and error are both finite.
func finiteErrors(g *parser.SeriesGroup) (xs, absErr []float64) {
	for i, e := range AbsErrors(g) {
		if isFinite(e) && isFinite(g.X[i]) {
			xs = append(xs, g.X[i])
			absErr = append(absErr, e)
		}
	}
	return xs, absErr
}

func nanGroupStats(key, samples int) GroupErrorStats {
	return GroupErrorStats{
		Key:          key,
		Samples:      samples,
		MaxAbsError:  math.NaN(),
		MaxErrorAtX:  math.NaN(),
		MeanAbsError: math.NaN(),
		RMSError:     math.NaN(),
	}
}

// AnalyzeSeries computes per-group error statistics for a parsed series
// file and ranks the groups by their largest absolute error.
func AnalyzeSeries(ds *parser.SeriesDataset) (*SeriesReport, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.New("series dataset is nil or empty, cannot analyze")
	}

	report := NewSeriesReport(ds.Source)

	for _, key := range ds.Keys {
		g, ok := ds.Group(key)
		if !ok {
			report.AnalysisErrors = append(report.AnalysisErrors, fmt.Sprintf("Group n = %d listed but not stored.", key))
			continue
		}

		res := nanGroupStats(key, g.Len())
		switch {
		case g.Len() == 0:
			report.AnalysisErrors = append(report.AnalysisErrors, fmt.Sprintf("Group n = %d has no samples.", key))
		case len(g.Reference) != g.Len() || len(g.Approx) != g.Len():
			report.AnalysisErrors = append(report.AnalysisErrors, fmt.Sprintf("Group n = %d has misaligned sequences (x=%d, reference=%d, approx=%d).",
				key, len(g.X), len(g.Reference), len(g.Approx)))
		default:
			xs, absErr := finiteErrors(g)
			if dropped := g.Len() - len(absErr); dropped > 0 {
				report.AnalysisErrors = append(report.AnalysisErrors, fmt.Sprintf("Group n = %d: %d non-finite sample(s) ignored.", key, dropped))
			}
			if len(absErr) == 0 {
				break
			}
			idx := floats.MaxIdx(absErr)
			res.MaxAbsError = absErr[idx]
			res.MaxErrorAtX = xs[idx]
			res.MeanAbsError = stat.Mean(absErr, nil)
			res.RMSError = floats.Norm(absErr, 2) / math.Sqrt(float64(len(absErr)))
		}
		report.Groups = append(report.Groups, res)

		if !math.IsNaN(res.MaxAbsError) {
			report.RankedByMaxError = append(report.RankedByMaxError, res)
		}
	}

	sort.SliceStable(report.RankedByMaxError, func(i, j int) bool {
		return report.RankedByMaxError[i].MaxAbsError > report.RankedByMaxError[j].MaxAbsError // Descending
	})

	return report, nil
}

// AnalyzeCurves computes shape statistics for each labelled point list, in
// label order.
func AnalyzeCurves(lists *parser.LabeledPointLists) ([]CurveStats, error) {
	if lists == nil || lists.Len() == 0 {
		return nil, errors.New("no point lists to analyze")
	}

	out := make([]CurveStats, 0, lists.Len())
	for _, m := range lists.Labels {
		pl := lists.Lists[m]
		cs := CurveStats{Label: m, Points: pl.Len()}

		var xs, ys []float64
		if len(pl.Y) == pl.Len() {
			for i := range pl.X {
				if isFinite(pl.X[i]) && isFinite(pl.Y[i]) {
					xs = append(xs, pl.X[i])
					ys = append(ys, pl.Y[i])
				}
			}
		}
		if len(xs) == 0 {
			cs.ArcLength = math.NaN()
			cs.MinX, cs.MaxX = math.NaN(), math.NaN()
			cs.MinY, cs.MaxY = math.NaN(), math.NaN()
			cs.ClosureGap = math.NaN()
			out = append(out, cs)
			continue
		}

		cs.MinX, cs.MaxX = floats.Min(xs), floats.Max(xs)
		cs.MinY, cs.MaxY = floats.Min(ys), floats.Max(ys)
		// Gaps left by non-finite points do not add to the length.
		for i := 1; i < pl.Len(); i++ {
			if isFinite(pl.X[i]) && isFinite(pl.Y[i]) && isFinite(pl.X[i-1]) && isFinite(pl.Y[i-1]) {
				cs.ArcLength += math.Hypot(pl.X[i]-pl.X[i-1], pl.Y[i]-pl.Y[i-1])
			}
		}
		last := len(xs) - 1
		cs.ClosureGap = math.Hypot(xs[last]-xs[0], ys[last]-ys[0])
		out = append(out, cs)
	}
	return out, nil
}

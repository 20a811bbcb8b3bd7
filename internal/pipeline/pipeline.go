// Package pipeline reads experiment output files and hands the parsed data
// to a report.Renderer.
package pipeline

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/user/interp_viewer_go/internal/parser"
	"github.com/user/interp_viewer_go/internal/report"
)

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// RunInterpolation parses each series file in order and renders one overlay
// chart per file. The first read, parse or render failure stops the run; the
// datasets rendered before it are returned along with the error.
func RunInterpolation(cfg Config, r report.Renderer, logger *slog.Logger) ([]*parser.SeriesDataset, error) {
	if err := cfg.validateSeries(); err != nil {
		return nil, err
	}
	logger = loggerOrDefault(logger)

	opts := []parser.Option{parser.WithLogger(logger)}
	if cfg.StrictKeys {
		opts = append(opts, parser.WithStrictKeys())
	}

	datasets := make([]*parser.SeriesDataset, 0, len(cfg.SeriesFiles))
	for _, path := range cfg.SeriesPaths() {
		ds, err := parser.ParseSeriesFile(path, opts...)
		if err != nil {
			return datasets, err
		}
		logger.Info("parsed series file",
			slog.String("file", path),
			slog.Int("groups", ds.Len()),
			slog.Int("skipped", len(ds.ParseErrors)))

		if err := r.RenderOverlay(ds, cfg.Overlay); err != nil {
			return datasets, errors.Wrapf(err, "failed to render %s", path)
		}
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

// RunCurves parses the point file of every resolution value and renders all
// of them on one chart.
func RunCurves(cfg Config, r report.Renderer, logger *slog.Logger) (*parser.LabeledPointLists, error) {
	if err := cfg.validateCurves(); err != nil {
		return nil, err
	}
	logger = loggerOrDefault(logger)

	lists := parser.NewLabeledPointLists()
	for _, m := range cfg.ResolutionValues {
		path := cfg.PointFile(m)
		pl, err := parser.ParsePointsFile(path)
		if err != nil {
			return nil, err
		}
		logger.Info("parsed point file", slog.String("file", path), slog.Int("points", pl.Len()))
		lists.Add(m, pl)
	}

	if err := r.RenderCurves(lists, cfg.Curves); err != nil {
		return nil, errors.Wrap(err, "failed to render curves")
	}
	return lists, nil
}

package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/user/interp_viewer_go/internal/report"
)

// ErrInvalidConfig is returned when a Config cannot drive a pipeline.
var ErrInvalidConfig = errors.New("invalid pipeline config")

// Config lists the inputs of both pipelines.
type Config struct {
	SeriesFiles       []string // one file per interpolation method
	ResolutionValues  []int    // m values, one point file each
	PointFileTemplate string   // must contain exactly one %d verb
	DataDir           string   // base for relative paths, empty for the working directory
	StrictKeys        bool     // fail on repeated series group keys

	Overlay report.OverlayLabels
	Curves  report.CurveLabels
}

// DefaultConfig returns the file names written by the interpolation and
// Bézier generators.
func DefaultConfig() Config {
	return Config{
		SeriesFiles:       []string{"Newton_output.txt", "Chebyshev_output.txt"},
		ResolutionValues:  []int{10, 40, 160},
		PointFileTemplate: "heart_%d.txt",
		Overlay:           report.DefaultOverlayLabels(),
		Curves:            report.DefaultCurveLabels(),
	}
}

func (c Config) resolve(path string) string {
	if c.DataDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

// SeriesPaths returns the series files resolved against DataDir.
func (c Config) SeriesPaths() []string {
	paths := make([]string, len(c.SeriesFiles))
	for i, f := range c.SeriesFiles {
		paths[i] = c.resolve(f)
	}
	return paths
}

// PointFile returns the point file for resolution m resolved against DataDir.
func (c Config) PointFile(m int) string {
	return c.resolve(fmt.Sprintf(c.PointFileTemplate, m))
}

func (c Config) validateSeries() error {
	if len(c.SeriesFiles) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no series files")
	}
	for i, f := range c.SeriesFiles {
		if strings.TrimSpace(f) == "" {
			return errors.Wrapf(ErrInvalidConfig, "series file %d is empty", i)
		}
	}
	return nil
}

func (c Config) validateCurves() error {
	if len(c.ResolutionValues) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no resolution values")
	}
	verbs := strings.Count(strings.ReplaceAll(c.PointFileTemplate, "%%", ""), "%")
	if verbs != 1 || strings.Count(c.PointFileTemplate, "%d") != 1 {
		return errors.Wrapf(ErrInvalidConfig, "point file template %q needs exactly one %%d", c.PointFileTemplate)
	}
	seen := make(map[int]bool, len(c.ResolutionValues))
	for _, m := range c.ResolutionValues {
		if seen[m] {
			return errors.Wrapf(ErrInvalidConfig, "resolution value %d repeated", m)
		}
		seen[m] = true
	}
	return nil
}

// Validate checks every configured pipeline. A config must configure at
// least one of them.
func (c Config) Validate() error {
	if len(c.SeriesFiles) == 0 && len(c.ResolutionValues) == 0 {
		return errors.Wrap(ErrInvalidConfig, "nothing to plot")
	}
	if len(c.SeriesFiles) > 0 {
		if err := c.validateSeries(); err != nil {
			return err
		}
	}
	if len(c.ResolutionValues) > 0 {
		if err := c.validateCurves(); err != nil {
			return err
		}
	}
	return nil
}

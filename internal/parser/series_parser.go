package parser

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

// parseHeaderKey extracts the group key from a header such as "n = 5:".
func parseHeaderKey(line string) (int, error) {
	parts := strings.Split(line, "=")
	val := strings.Trim(strings.TrimSpace(parts[1]), ":")
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, errors.Wrapf(ErrBadHeader, "%q", line)
	}
	return n, nil
}

// parseSeriesRow reads x, reference and approx from fields 1, 3 and 5.
func parseSeriesRow(fields []string) (x, ref, approx float64, err error) {
	if x, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return 0, 0, 0, err
	}
	if ref, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return 0, 0, 0, err
	}
	if approx, err = strconv.ParseFloat(fields[5], 64); err != nil {
		return 0, 0, 0, err
	}
	return x, ref, approx, nil
}

func newSeriesGroup() *SeriesGroup {
	return &SeriesGroup{
		X:         make([]float64, 0),
		Reference: make([]float64, 0),
		Approx:    make([]float64, 0),
	}
}

// ParseSeries reads interpolation output from r and groups its rows by the
// preceding "n = <int>" header.
//
// Rows that have the data shape but fail numeric conversion are skipped and
// reported in ParseErrors. Rows that appear before the first header are
// dropped. A header without an integer value or a read failure aborts the
// parse and no dataset is returned.
func ParseSeries(r io.Reader, opts ...Option) (*SeriesDataset, error) {
	cfg := makeConfig(opts...)
	ds := NewSeriesDataset()

	var (
		haveKey  bool
		key      int
		current  *SeriesGroup
		orphaned int
	)

	commit := func() error {
		if !haveKey {
			return nil
		}
		if _, dup := ds.Groups[key]; dup {
			if cfg.strictKeys {
				return errors.Wrapf(ErrDuplicateGroup, "n = %d", key)
			}
			ds.ParseErrors = append(ds.ParseErrors, fmt.Sprintf("Warning: group n = %d repeated, earlier group replaced.", key))
			cfg.logger.Warn("duplicate group key", slog.Int("n", key))
		}
		ds.put(key, current)
		return nil
	}

	sc := newLineScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		if strings.HasPrefix(line, HeaderPrefix) {
			if err := commit(); err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			n, err := parseHeaderKey(line)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			haveKey, key, current = true, n, newSeriesGroup()
			continue
		}

		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < MinSeriesFields {
			continue
		}

		x, ref, approx, err := parseSeriesRow(fields)
		if err != nil {
			ds.ParseErrors = append(ds.ParseErrors, fmt.Sprintf("Skipping invalid line %d: %s", lineNo, line))
			cfg.logger.Warn("skipping invalid line",
				slog.Int("line", lineNo),
				slog.String("text", line),
				slog.Any("error", err))
			continue
		}
		if !haveKey {
			orphaned++
			continue
		}
		current.X = append(current.X, x)
		current.Reference = append(current.Reference, ref)
		current.Approx = append(current.Approx, approx)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read series data")
	}

	// The last group has no following header to commit it.
	if err := commit(); err != nil {
		return nil, errors.Wrap(err, "end of input")
	}

	if orphaned > 0 {
		cfg.logger.Debug("rows before first header ignored", slog.Int("rows", orphaned))
	}
	return ds, nil
}

// ParseSeriesFile opens path and parses it with ParseSeries. The returned
// dataset records path as its Source.
func ParseSeriesFile(path string, opts ...Option) (*SeriesDataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open series file")
	}
	defer file.Close()

	ds, err := ParseSeries(file, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	ds.Source = path
	return ds, nil
}

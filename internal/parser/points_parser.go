package parser

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParsePoints reads two whitespace-separated floats per line from r.
// Blank lines are skipped. Any other malformed line aborts the read.
func ParsePoints(r io.Reader) (*PointList, error) {
	pl := &PointList{X: make([]float64, 0), Y: make([]float64, 0)}

	sc := newLineScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, errors.Wrapf(ErrMalformedRow, "line %d: expected 2 values, found %d", lineNo, len(fields))
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedRow, "line %d: %v", lineNo, err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedRow, "line %d: %v", lineNo, err)
		}
		pl.X = append(pl.X, x)
		pl.Y = append(pl.Y, y)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read point data")
	}
	return pl, nil
}

// ParsePointsFile opens path and parses it with ParsePoints.
func ParsePointsFile(path string) (*PointList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open point file")
	}
	defer file.Close()

	pl, err := ParsePoints(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return pl, nil
}

package parser

import "github.com/pkg/errors"

// HeaderPrefix marks a group header line in series files, e.g. "n = 5:".
const HeaderPrefix = "n = "

// MinSeriesFields is the minimum number of whitespace-separated fields a
// series data row must have. Values are read from fields 1, 3 and 5.
const MinSeriesFields = 6

var (
	// ErrMalformedRow is returned when a point-list row is not two floats.
	ErrMalformedRow = errors.New("malformed row")
	// ErrBadHeader is returned when a group header does not carry an integer.
	ErrBadHeader = errors.New("bad group header")
	// ErrDuplicateGroup is returned in strict mode when a group key repeats.
	ErrDuplicateGroup = errors.New("duplicate group key")
)

// SeriesGroup holds the samples of one interpolation experiment.
// X, Reference and Approx always have the same length; index i across the
// three slices describes one sample point.
type SeriesGroup struct {
	X         []float64
	Reference []float64 // exact function values
	Approx    []float64 // interpolated values
}

// Len returns the number of samples in the group.
func (g *SeriesGroup) Len() int {
	return len(g.X)
}

// SeriesDataset is the parsed content of one series file, keyed by the
// sample count n of each group.
type SeriesDataset struct {
	Source      string // file path, empty when parsed from a bare stream
	Keys        []int  // group keys in the order they first appeared
	Groups      map[int]*SeriesGroup
	ParseErrors []string // skipped lines and other non-fatal findings
}

// NewSeriesDataset returns an empty dataset.
func NewSeriesDataset() *SeriesDataset {
	return &SeriesDataset{
		Keys:        make([]int, 0),
		Groups:      make(map[int]*SeriesGroup),
		ParseErrors: make([]string, 0),
	}
}

// Len returns the number of groups.
func (d *SeriesDataset) Len() int {
	return len(d.Keys)
}

// Group returns the group stored under key n.
func (d *SeriesDataset) Group(n int) (*SeriesGroup, bool) {
	g, ok := d.Groups[n]
	return g, ok
}

// put stores g under n. A key that already exists keeps its position.
func (d *SeriesDataset) put(n int, g *SeriesGroup) {
	if _, ok := d.Groups[n]; !ok {
		d.Keys = append(d.Keys, n)
	}
	d.Groups[n] = g
}

// PointList is an ordered sequence of 2D points stored as parallel slices.
type PointList struct {
	X []float64
	Y []float64
}

// Len returns the number of points.
func (p *PointList) Len() int {
	return len(p.X)
}

// LabeledPointLists maps a resolution label m to the point list sampled at
// that resolution. Labels keeps insertion order.
type LabeledPointLists struct {
	Labels []int
	Lists  map[int]*PointList
}

// NewLabeledPointLists returns an empty collection.
func NewLabeledPointLists() *LabeledPointLists {
	return &LabeledPointLists{
		Labels: make([]int, 0),
		Lists:  make(map[int]*PointList),
	}
}

// Add stores pl under label m. Re-adding a label replaces its list in place.
func (l *LabeledPointLists) Add(m int, pl *PointList) {
	if _, ok := l.Lists[m]; !ok {
		l.Labels = append(l.Labels, m)
	}
	l.Lists[m] = pl
}

// Len returns the number of labelled lists.
func (l *LabeledPointLists) Len() int {
	return len(l.Labels)
}

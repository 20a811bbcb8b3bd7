package analysis

// GroupErrorStats holds the error of one interpolation group against its
// reference values.
type GroupErrorStats struct {
	Key          int // sample count n
	Samples      int
	MaxAbsError  float64
	MaxErrorAtX  float64 // x where MaxAbsError occurs
	MeanAbsError float64
	RMSError     float64
}

// SeriesReport holds the error statistics of one series file.
type SeriesReport struct {
	Source           string
	Groups           []GroupErrorStats // file order
	RankedByMaxError []GroupErrorStats // descending, groups without samples left out
	AnalysisErrors   []string
}

// NewSeriesReport returns an empty report for the series file at source.
func NewSeriesReport(source string) *SeriesReport {
	return &SeriesReport{
		Source:           source,
		Groups:           make([]GroupErrorStats, 0),
		RankedByMaxError: make([]GroupErrorStats, 0),
		AnalysisErrors:   make([]string, 0),
	}
}

// CurveStats describes one sampled curve.
type CurveStats struct {
	Label      int // resolution m
	Points     int
	ArcLength  float64
	MinX, MaxX float64
	MinY, MaxY float64
	ClosureGap float64 // distance between first and last point
}

package report

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/user/interp_viewer_go/internal/analysis"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// pdfStyler tracks the flow position and named text styles of a report.
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	tr          func(string) string // UTF-8 to the core font code page
	styles      map[string]func()
	lineHeight  float64
	currentY    float64
	pageBottom  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		tr:          pdf.UnicodeTranslatorFromDescriptor(""),
		styles:      make(map[string]func()),
		lineHeight:  6,
		pageBottom:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 13)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellRed"] = func() { // largest error of a file
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetTextColor(200, 0, 0)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageBottom {
		s.newPage()
	}
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	s.checkAddPage(s.lineHeight)
	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, s.tr(text), "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

// writeTable draws a bordered table. highlight marks cells to draw in the
// tableCellRed style.
func (s *pdfStyler) writeTable(headers []string, colWidthsRel []float64, rows [][]string, highlight func(row, col int) bool) {
	widths := make([]float64, len(colWidthsRel))
	for i, rel := range colWidthsRel {
		widths[i] = rel * pdfContentWidth
	}

	drawHeader := func() {
		s.applyStyle("tableHeader")
		x := pdfMargin
		for i, header := range headers {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, s.tr(header), "1", 0, "C", true, 0, "")
			x += widths[i]
		}
		s.currentY += s.lineHeight
	}

	s.checkAddPage(2 * s.lineHeight)
	drawHeader()
	for r, row := range rows {
		if s.currentY+s.lineHeight > s.pageBottom {
			s.newPage()
			drawHeader()
		}
		x := pdfMargin
		for c, cell := range row {
			if highlight != nil && highlight(r, c) {
				s.applyStyle("tableCellRed")
			} else {
				s.applyStyle("tableCell")
			}
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[c], s.lineHeight, s.tr(cell), "1", 0, "C", false, 0, "")
			x += widths[c]
		}
		s.currentY += s.lineHeight
	}
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width, height float64, caption string) {
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	s.pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(imageBytes))

	if width > pdfContentWidth {
		height *= pdfContentWidth / width
		width = pdfContentWidth
	}
	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.ImageOptions(imageName, x, s.currentY, width, height, false, opts, 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.5g", v)
}

// BuildPDFReport writes the error tables, curve statistics and every chart
// to a landscape PDF at path.
func BuildPDFReport(path string, seriesReports []*analysis.SeriesReport,
	curveStats []analysis.CurveStats, charts []Chart) error {

	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	styler.writeParagraph("Interpolation and Bézier Curve Report", "h1", "C")
	styler.addSpacer(5)

	if len(seriesReports) == 0 && len(curveStats) == 0 && len(charts) == 0 {
		styler.writeParagraph("No results to display.", "normal", "L")
		return errors.Wrap(pdf.OutputFileAndClose(path), "failed to write PDF")
	}

	for _, rep := range seriesReports {
		if rep == nil {
			continue
		}
		name := "Series"
		if rep.Source != "" {
			name = filepath.Base(rep.Source)
		}
		styler.writeParagraph(fmt.Sprintf("Interpolation Error: %s", name), "h2", "L")

		worst := -1
		if len(rep.RankedByMaxError) > 0 {
			worst = rep.RankedByMaxError[0].Key
		}
		rows := make([][]string, 0, len(rep.Groups))
		for _, g := range rep.Groups {
			rows = append(rows, []string{
				strconv.Itoa(g.Key),
				strconv.Itoa(g.Samples),
				formatStat(g.MaxAbsError),
				formatStat(g.MaxErrorAtX),
				formatStat(g.MeanAbsError),
				formatStat(g.RMSError),
			})
		}
		styler.writeTable(
			[]string{"n", "Samples", "Max |Error|", "At x", "Mean |Error|", "RMS Error"},
			[]float64{0.1, 0.14, 0.19, 0.19, 0.19, 0.19},
			rows,
			func(r, c int) bool { return c == 2 && rep.Groups[r].Key == worst },
		)
		for _, note := range rep.AnalysisErrors {
			styler.writeParagraph(note, "normal", "L")
		}
		styler.addSpacer(5)
	}

	if len(curveStats) > 0 {
		styler.writeParagraph("Bézier Curve Statistics", "h2", "L")
		rows := make([][]string, 0, len(curveStats))
		for _, cs := range curveStats {
			rows = append(rows, []string{
				strconv.Itoa(cs.Label),
				strconv.Itoa(cs.Points),
				formatStat(cs.ArcLength),
				fmt.Sprintf("[%s, %s]", formatStat(cs.MinX), formatStat(cs.MaxX)),
				fmt.Sprintf("[%s, %s]", formatStat(cs.MinY), formatStat(cs.MaxY)),
				formatStat(cs.ClosureGap),
			})
		}
		styler.writeTable(
			[]string{"m", "Points", "Arc Length", "x Range", "y Range", "Closure Gap"},
			[]float64{0.1, 0.12, 0.18, 0.22, 0.22, 0.16},
			rows, nil,
		)
	}

	imgWidth := pdfContentWidth * 0.85
	for _, c := range charts {
		if len(c.PNG) == 0 {
			continue
		}
		styler.newPage()
		styler.writeParagraph(c.Title, "h2", "L")
		styler.addImage(c.PNG, c.Name, imgWidth, imgWidth*(2.0/3.0), c.Name)
	}

	return errors.Wrap(pdf.OutputFileAndClose(path), "failed to write PDF")
}

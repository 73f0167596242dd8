// Package export renders the KPI report to PDF.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"gonum.org/v1/plot/vg"

	"github.com/thuan-cell/thuan-cell/internal/report"
)

var (
	// ErrReportMissing means there was nothing to render.
	ErrReportMissing = errors.New("report content not found")
	// ErrRendererUnavailable means the PDF backend could not be prepared.
	ErrRendererUnavailable = errors.New("pdf renderer unavailable")
	// ErrRenderFailed wraps any other failure while producing the document.
	ErrRenderFailed = errors.New("pdf generation failed")
)

// Options controls page geometry and chart resolution. The page is always A4
// portrait.
type Options struct {
	MarginMM float64
	ChartDPI int
}

type PDFExporter struct {
	opts  Options
	faces []fontFace
}

func NewPDFExporter(opts Options) *PDFExporter {
	if opts.ChartDPI <= 0 {
		opts.ChartDPI = 150
	}
	if opts.MarginMM < 0 {
		opts.MarginMM = 0
	}
	return &PDFExporter{opts: opts, faces: defaultFaces()}
}

// Render writes rep as a single A4 document to w.
func (e *PDFExporter) Render(ctx context.Context, rep *report.Report, w io.Writer) (err error) {
	if rep == nil || len(rep.Rows) == 0 {
		return ErrReportMissing
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRenderFailed, r)
		}
	}()

	pdf := fpdf.New("P", "mm", "A4", "")
	if err := registerFonts(pdf, e.faces); err != nil {
		return err
	}
	pdf.SetTitle(rep.Title, true)
	pdf.SetCreator("KPI Lò hơi", true)
	pdf.SetMargins(e.opts.MarginMM, e.opts.MarginMM, e.opts.MarginMM)
	pdf.SetAutoPageBreak(false, e.opts.MarginMM)
	pdf.AddPage()

	l := &layout{pdf: pdf, margin: e.opts.MarginMM}
	l.pageW, l.pageH = pdf.GetPageSize()
	l.contentW = l.pageW - 2*l.margin

	l.header(rep)
	l.employee(rep)

	if err := ctx.Err(); err != nil {
		return err
	}
	charts, err := e.renderCharts(rep)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.summary(rep, charts)
	l.table(rep)
	l.signatures(rep)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return nil
}

type chartImages struct {
	pie []byte
	bar []byte
}

func (e *PDFExporter) renderCharts(rep *report.Report) (chartImages, error) {
	cr := chartRenderer{width: 62 * vg.Millimeter, height: 40 * vg.Millimeter, dpi: e.opts.ChartDPI}
	pie, err := cr.pieChart(rep.Categories)
	if err != nil {
		return chartImages{}, err
	}
	bar, err := cr.barChart(rep.Categories)
	if err != nil {
		return chartImages{}, err
	}
	return chartImages{pie: pie, bar: bar}, nil
}

// layout keeps the cursor bookkeeping for one document.
type layout struct {
	pdf      *fpdf.Fpdf
	margin   float64
	pageW    float64
	pageH    float64
	contentW float64
}

const (
	lineH     = 3.6
	tableFont = 7.5
	noteFont  = 6.5
)

var tableCols = []struct {
	title string
	width float64
	align string
}{
	{"TT", 8, "C"},
	{"Nội dung / Tiêu chí đánh giá", 0, "L"},
	{"Max", 10, "C"},
	{"Đạt", 12, "C"},
	{"Xếp loại", 16, "C"},
	{"Ghi chú", 52, "L"},
}

func (l *layout) colWidths() []float64 {
	widths := make([]float64, len(tableCols))
	fixed := 0.0
	for i, c := range tableCols {
		widths[i] = c.width
		fixed += c.width
	}
	widths[1] = l.contentW - fixed
	return widths
}

func (l *layout) header(rep *report.Report) {
	pdf := l.pdf
	top := pdf.GetY()
	logoW := l.contentW / 4
	const logoH = 16.0

	if rep.Logo != nil && len(rep.Logo.Data) > 0 {
		opt := fpdf.ImageOptions{ImageType: "PNG"}
		info := pdf.RegisterImageOptionsReader("logo", opt, bytes.NewReader(rep.Logo.Data))
		if info != nil && info.Width() > 0 && info.Height() > 0 {
			w, h := fitBox(info.Width(), info.Height(), logoW-4, logoH)
			pdf.ImageOptions("logo", l.margin+(logoW-w)/2, top+(logoH-h)/2, w, h, false, opt, 0, "")
		}
	}

	x := l.margin + logoW + 4
	w := l.contentW - logoW - 4
	pdf.SetDrawColor(226, 232, 240)
	pdf.Line(x-2, top, x-2, top+logoH)

	pdf.SetXY(x, top+1)
	pdf.SetFont(fontFamily, "B", 15)
	pdf.SetTextColor(30, 58, 138)
	pdf.CellFormat(w, 7, upper(rep.Title), "", 2, "L", false, 0, "")

	pdf.SetFont(fontFamily, "B", 7.5)
	pdf.SetTextColor(71, 85, 105)
	pdf.SetFillColor(241, 245, 249)
	pdf.CellFormat(pdf.GetStringWidth(upper(rep.Audience))+4, 5, upper(rep.Audience), "", 0, "L", true, 0, "")

	pdf.SetFont(fontFamily, "", 7)
	meta := fmt.Sprintf("Kỳ đánh giá: %s    Ngày lập: %s", rep.PeriodLabel, rep.DateLabel)
	pdf.SetTextColor(15, 23, 42)
	pdf.SetXY(x, top+logoH-5)
	pdf.CellFormat(w, 5, meta, "", 0, "R", false, 0, "")

	y := top + logoH + 2
	pdf.SetDrawColor(15, 23, 42)
	pdf.SetLineWidth(0.6)
	pdf.Line(l.margin, y, l.margin+l.contentW, y)
	pdf.SetLineWidth(0.2)
	pdf.SetXY(l.margin, y+3)
}

func (l *layout) employee(rep *report.Report) {
	pdf := l.pdf
	top := pdf.GetY()
	colW := l.contentW / float64(len(rep.Employee))
	const boxH = 11.0

	pdf.SetFillColor(248, 250, 252)
	pdf.SetDrawColor(226, 232, 240)
	pdf.Rect(l.margin, top, l.contentW, boxH, "FD")
	for i, f := range rep.Employee {
		x := l.margin + float64(i)*colW
		pdf.SetXY(x+2, top+1.5)
		pdf.SetFont(fontFamily, "", 6)
		pdf.SetTextColor(100, 116, 139)
		pdf.CellFormat(colW-4, 3.5, upper(f.Label), "", 2, "L", false, 0, "")
		pdf.SetX(x + 2)
		pdf.SetFont(fontFamily, "B", 8)
		pdf.SetTextColor(30, 41, 59)
		pdf.CellFormat(colW-4, 4.5, f.Value, "", 0, "L", false, 0, "")
	}
	pdf.SetXY(l.margin, top+boxH+3)
}

func (l *layout) summary(rep *report.Report, charts chartImages) {
	pdf := l.pdf
	top := pdf.GetY()
	const boxH = 40.0
	gap := 2.0
	boxW := (l.contentW - 2*gap) / 3

	pdf.SetDrawColor(226, 232, 240)
	pdf.Rect(l.margin, top, boxW, boxH, "D")

	pdf.SetXY(l.margin, top+4)
	pdf.SetFont(fontFamily, "B", 7)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(boxW, 4, "TỔNG ĐIỂM", "", 2, "C", false, 0, "")
	pdf.SetFont(fontFamily, "B", 30)
	pdf.SetTextColor(30, 58, 138)
	pdf.CellFormat(boxW, 13, rep.TotalScore, "", 2, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 7)
	pdf.SetTextColor(148, 163, 184)
	pdf.CellFormat(boxW, 4, fmt.Sprintf("/ %s điểm tối đa  (%d%%)", rep.MaxTotalScore, rep.Percent), "", 2, "C", false, 0, "")

	r, g, b := rankingColor(rep.RankingTone)
	pdf.SetFont(fontFamily, "B", 7.5)
	badge := "XẾP LOẠI: " + rep.Ranking
	bw := pdf.GetStringWidth(badge) + 8
	pdf.SetFillColor(r, g, b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(l.margin+(boxW-bw)/2, top+boxH-11)
	pdf.CellFormat(bw, 6, badge, "", 0, "C", true, 0, "")

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	for i, img := range [][]byte{charts.pie, charts.bar} {
		name := fmt.Sprintf("chart-%d", i)
		x := l.margin + float64(i+1)*(boxW+gap)
		pdf.Rect(x, top, boxW, boxH, "D")
		pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(img))
		pdf.ImageOptions(name, x+0.5, top+0.5, boxW-1, boxH-1, false, opt, 0, "")
	}
	pdf.SetXY(l.margin, top+boxH+4)
}

func (l *layout) tableHeader(widths []float64) {
	pdf := l.pdf
	pdf.SetFont(fontFamily, "B", tableFont)
	pdf.SetFillColor(241, 245, 249)
	pdf.SetTextColor(30, 41, 59)
	pdf.SetDrawColor(203, 213, 225)
	for i, c := range tableCols {
		pdf.CellFormat(widths[i], 6, upper(c.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func (l *layout) table(rep *report.Report) {
	pdf := l.pdf
	widths := l.colWidths()

	pdf.SetFont(fontFamily, "B", 7.5)
	pdf.SetFillColor(30, 58, 138)
	pdf.SetTextColor(255, 255, 255)
	title := "BẢNG ĐIỂM CHI TIẾT"
	pdf.CellFormat(pdf.GetStringWidth(title)+6, 5, title, "", 1, "L", true, 0, "")
	l.tableHeader(widths)

	bottom := l.pageH - l.margin
	for _, row := range rep.Rows {
		h := l.rowHeight(row, widths)
		if pdf.GetY()+h > bottom {
			pdf.AddPage()
			l.tableHeader(widths)
		}
		if row.Category {
			l.categoryRow(row, widths)
		} else {
			l.itemRow(row, widths, h)
		}
	}
	pdf.Ln(4)
}

func (l *layout) rowHeight(row report.Row, widths []float64) float64 {
	if row.Category {
		return 5
	}
	pdf := l.pdf
	pdf.SetFont(fontFamily, "B", tableFont)
	lines := len(pdf.SplitText(row.Name, widths[1]-2))
	pdf.SetFont(fontFamily, "I", noteFont)
	lines += len(pdf.SplitText(row.Target, widths[1]-2))

	pdf.SetFont(fontFamily, "", tableFont)
	if n := len(pdf.SplitText(row.Notes, widths[5]-2)); n > lines {
		lines = n
	}
	if lines < 2 {
		lines = 2
	}
	return float64(lines)*lineH + 1
}

func (l *layout) categoryRow(row report.Row, widths []float64) {
	pdf := l.pdf
	pdf.SetFont(fontFamily, "B", tableFont)
	pdf.SetFillColor(239, 246, 255)
	pdf.SetTextColor(30, 58, 138)
	rest := 0.0
	for _, w := range widths[1:] {
		rest += w
	}
	pdf.CellFormat(widths[0], 5, row.Code, "1", 0, "C", true, 0, "")
	pdf.CellFormat(rest, 5, row.Name, "1", 1, "L", true, 0, "")
}

func (l *layout) itemRow(row report.Row, widths []float64, h float64) {
	pdf := l.pdf
	x0, y0 := l.margin, pdf.GetY()

	pdf.SetDrawColor(203, 213, 225)
	x := x0
	for _, w := range widths {
		pdf.Rect(x, y0, w, h, "D")
		x += w
	}

	cell := func(col int, text string, style string, size float64, r, g, b int) {
		offset := x0
		for _, w := range widths[:col] {
			offset += w
		}
		pdf.SetFont(fontFamily, style, size)
		pdf.SetTextColor(r, g, b)
		pdf.SetXY(offset+1, y0+0.5)
		pdf.MultiCell(widths[col]-2, lineH, text, "", tableCols[col].align, false)
	}

	cell(0, row.Code, "", tableFont, 100, 116, 139)

	nameX := x0 + widths[0]
	pdf.SetFont(fontFamily, "B", tableFont)
	pdf.SetTextColor(30, 41, 59)
	pdf.SetXY(nameX+1, y0+0.5)
	pdf.MultiCell(widths[1]-2, lineH, row.Name, "", "L", false)
	pdf.SetFont(fontFamily, "I", noteFont)
	pdf.SetTextColor(100, 116, 139)
	pdf.SetX(nameX + 1)
	pdf.MultiCell(widths[1]-2, lineH, row.Target, "", "L", false)

	cell(2, row.Max, "", tableFont, 100, 116, 139)
	cell(3, row.Actual, "B", tableFont, 30, 41, 59)
	r, g, b := levelColor(row.Tone)
	cell(4, row.Level, "B", tableFont, r, g, b)
	cell(5, row.Notes, "", tableFont, 71, 85, 105)

	pdf.SetXY(x0, y0+h)
}

func (l *layout) signatures(rep *report.Report) {
	pdf := l.pdf
	const blockH = 24.0
	if pdf.GetY()+blockH > l.pageH-l.margin {
		pdf.AddPage()
	}
	top := pdf.GetY()
	colW := l.contentW / float64(len(rep.Signatures))

	for i, s := range rep.Signatures {
		x := l.margin + float64(i)*colW
		pdf.SetXY(x, top)
		pdf.SetFont(fontFamily, "B", 7.5)
		pdf.SetTextColor(30, 41, 59)
		pdf.CellFormat(colW, 4, upper(s.Role), "", 0, "C", false, 0, "")

		lineY := top + blockH - 6
		pdf.SetDrawColor(203, 213, 225)
		pdf.Line(x+colW/2-18, lineY, x+colW/2+18, lineY)
		pdf.SetXY(x, lineY+1)
		if s.Name != "" {
			pdf.SetFont(fontFamily, "B", 7.5)
			pdf.SetTextColor(15, 23, 42)
			pdf.CellFormat(colW, 4, s.Name, "", 0, "C", false, 0, "")
		} else {
			pdf.SetFont(fontFamily, "I", 6.5)
			pdf.SetTextColor(148, 163, 184)
			pdf.CellFormat(colW, 4, s.Hint, "", 0, "C", false, 0, "")
		}
	}
	pdf.SetXY(l.margin, top+blockH)
}

func fitBox(w, h, maxW, maxH float64) (float64, float64) {
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}

func rankingColor(tone string) (int, int, int) {
	switch tone {
	case "excellent":
		return 22, 163, 74
	case "pass":
		return 37, 99, 235
	case "fail":
		return 220, 38, 38
	}
	return 100, 116, 139
}

func levelColor(tone string) (int, int, int) {
	switch tone {
	case "good":
		return 21, 128, 61
	case "average":
		return 161, 98, 7
	case "weak":
		return 185, 28, 28
	}
	return 203, 213, 225
}

package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thuan-cell/thuan-cell/internal/models"
	"github.com/thuan-cell/thuan-cell/internal/report"
	"github.com/thuan-cell/thuan-cell/internal/scoring"
)

var exportNow = time.Date(2026, time.May, 31, 9, 0, 0, 0, time.UTC)

func buildReport(t *testing.T, rate bool) *report.Report {
	t.Helper()
	r := models.DefaultRubric()
	s := models.NewSession("exp", exportNow)
	require.NoError(t, s.SetEmployeeField("name", "Nguyễn Văn Thuận"))
	require.NoError(t, s.SetEmployeeField("id", "NV-042"))
	if rate {
		require.NoError(t, s.Rate(r, "1.1", models.LevelGood))
		require.NoError(t, s.Rate(r, "2.1", models.LevelWeak))
		require.NoError(t, s.SetNote(r, "2.1", "Thiếu biên bản kiểm tra van an toàn tuần 3"))
	}
	return report.Build(r, s, scoring.Aggregate(r, s.Ratings), exportNow)
}

func pngLogo(t *testing.T) *models.Logo {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 40))
	for x := 0; x < 120; x++ {
		for y := 0; y < 40; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &models.Logo{MIME: "image/png", Data: buf.Bytes()}
}

func TestRenderProducesPDF(t *testing.T) {
	exp := NewPDFExporter(Options{MarginMM: 5, ChartDPI: 72})

	tests := []struct {
		name string
		rep  func(t *testing.T) *report.Report
	}{
		{"empty evaluation", func(t *testing.T) *report.Report { return buildReport(t, false) }},
		{"rated with notes", func(t *testing.T) *report.Report { return buildReport(t, true) }},
		{"with logo", func(t *testing.T) *report.Report {
			rep := buildReport(t, true)
			rep.Logo = pngLogo(t)
			return rep
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, exp.Render(context.Background(), tt.rep(t), &out))
			assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
			assert.Greater(t, out.Len(), 1024)
		})
	}
}

func TestRenderMissingReport(t *testing.T) {
	exp := NewPDFExporter(Options{})
	var out bytes.Buffer

	err := exp.Render(context.Background(), nil, &out)
	assert.ErrorIs(t, err, ErrReportMissing)

	err = exp.Render(context.Background(), &report.Report{}, &out)
	assert.ErrorIs(t, err, ErrReportMissing)
	assert.Zero(t, out.Len())
}

func TestRenderCancelled(t *testing.T) {
	exp := NewPDFExporter(Options{MarginMM: 5, ChartDPI: 72})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := exp.Render(ctx, buildReport(t, true), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}

func TestRegisterFontsUnavailable(t *testing.T) {
	pdf := fpdf.New("P", "mm", "A4", "")
	assert.ErrorIs(t, registerFonts(pdf, nil), ErrRendererUnavailable)

	err := registerFonts(pdf, []fontFace{{style: "B"}})
	assert.ErrorIs(t, err, ErrRendererUnavailable)
}

func TestRenderWithoutFonts(t *testing.T) {
	exp := NewPDFExporter(Options{})
	exp.faces = nil

	var out bytes.Buffer
	err := exp.Render(context.Background(), buildReport(t, false), &out)
	assert.ErrorIs(t, err, ErrRendererUnavailable)
}

func TestTableBreaksPages(t *testing.T) {
	rep := buildReport(t, false)
	long := strings.Repeat("Ghi nhận sự cố áp suất và biện pháp khắc phục. ", 12)
	for i := range rep.Rows {
		if !rep.Rows[i].Category {
			rep.Rows[i].Notes = long
		}
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	require.NoError(t, registerFonts(pdf, defaultFaces()))
	pdf.SetMargins(5, 5, 5)
	pdf.SetAutoPageBreak(false, 5)
	pdf.AddPage()

	l := &layout{pdf: pdf, margin: 5}
	l.pageW, l.pageH = pdf.GetPageSize()
	l.contentW = l.pageW - 10
	l.table(rep)

	require.NoError(t, pdf.Error())
	assert.Greater(t, pdf.PageCount(), 1)
}

func TestFitBox(t *testing.T) {
	w, h := fitBox(200, 100, 40, 16)
	assert.InDelta(t, 32, w, 1e-9)
	assert.InDelta(t, 16, h, 1e-9)

	w, h = fitBox(100, 10, 40, 16)
	assert.InDelta(t, 40, w, 1e-9)
	assert.InDelta(t, 4, h, 1e-9)
}

func TestChartsRender(t *testing.T) {
	cr := chartRenderer{width: 200, height: 120, dpi: 72}
	rep := buildReport(t, true)

	for name, fn := range map[string]func([]scoring.CategoryScore) ([]byte, error){
		"bar": cr.barChart,
		"pie": cr.pieChart,
	} {
		b, err := fn(rep.Categories)
		require.NoError(t, err, name)
		_, format, err := image.Decode(bytes.NewReader(b))
		require.NoError(t, err, name)
		assert.Equal(t, "png", format, name)
	}

	b, err := cr.pieChart(buildReport(t, false).Categories)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}

func TestPieColorsDistinctPerCategory(t *testing.T) {
	n := len(models.DefaultRubric().Categories)
	require.GreaterOrEqual(t, len(sliceColors), n)

	seen := make(map[color.Color]bool, n)
	for _, c := range sliceColors[:n] {
		assert.False(t, seen[c], "colour %v reused", c)
		seen[c] = true
	}
}

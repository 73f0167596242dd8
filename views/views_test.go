package views

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thuan-cell/thuan-cell/internal/models"
	"github.com/thuan-cell/thuan-cell/internal/report"
	"github.com/thuan-cell/thuan-cell/internal/scoring"
)

var viewNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func renderString(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

func TestLayoutWrapsChildren(t *testing.T) {
	child := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p id=\"child\">xin chào</p>")
		return err
	})

	out := renderString(t, templ.WithChildren(context.Background(), child), Layout("KPI", "light", "tok<en", "n0nce"))
	assert.Contains(t, out, `<p id="child">xin chào</p>`)
	assert.Contains(t, out, `data-theme="light"`)
	assert.Contains(t, out, `nonce="n0nce"`)
	assert.NotContains(t, out, "tok<en")
}

func TestItemCardStates(t *testing.T) {
	r := models.DefaultRubric()
	item, ok := r.Item("1.1")
	require.True(t, ok)

	out := renderString(t, context.Background(), ItemCard(NewItemView(item, models.Entry{})))
	assert.Contains(t, out, `id="item-1.1"`)
	assert.Contains(t, out, "Chưa có đánh giá nào")
	assert.NotContains(t, out, " selected")

	eval := models.Evaluation{}.Rate(item, models.LevelAverage)
	v := NewItemView(item, eval[item.ID])
	require.Len(t, v.Options, 3)
	assert.True(t, v.Options[1].Selected)
	assert.Equal(t, item.Score(models.LevelAverage), v.Score)

	out = renderString(t, context.Background(), ItemCard(v))
	assert.Contains(t, out, "tone-average")
	assert.Contains(t, out, item.Criteria[models.LevelAverage].Description)
}

func TestResultsPanelOOB(t *testing.T) {
	r := models.DefaultRubric()
	res := scoring.Aggregate(r, models.Evaluation{})
	v := NewResultsView(r, models.Evaluation{}, res, ChartOptions{Bar: `{"a":1}`, Pie: `{}`})

	out := renderString(t, context.Background(), ResultsPanel(v))
	assert.NotContains(t, out, "hx-swap-oob")
	assert.Contains(t, out, "0/13")
	assert.Contains(t, out, "XUẤT SẮC")

	v.OOB = true
	assert.Contains(t, renderString(t, context.Background(), ResultsPanel(v)), `hx-swap-oob="true"`)
}

func TestReportView(t *testing.T) {
	r := models.DefaultRubric()
	s := models.NewSession("v", viewNow)
	s.SetLogo(&models.Logo{MIME: "image/png", Data: []byte{0x89, 0x50}})
	rep := report.Build(r, s, scoring.Aggregate(r, s.Ratings), viewNow)

	out := renderString(t, context.Background(), Report(ReportView{Report: rep, Print: true, Nonce: "abc"}))
	assert.Contains(t, out, "Tháng 03/2026")
	assert.Contains(t, out, "15/03/2026")
	assert.Contains(t, out, `src="data:image/png;base64,`)
	assert.Contains(t, out, `<script nonce="abc">`)
	assert.Contains(t, out, "GIÁM ĐỐC PHÊ DUYỆT")
}

func TestAlert(t *testing.T) {
	out := renderString(t, context.Background(), Alert("<b>lỗi</b>", "error"))
	assert.Contains(t, out, "alert-error")
	assert.Contains(t, out, "&lt;b&gt;lỗi&lt;/b&gt;")
}

func TestFormatPoints(t *testing.T) {
	assert.Equal(t, "10", formatPoints(10))
	assert.Equal(t, "2.50", formatPoints(2.5))
}

// Package report assembles the printable KPI report. The HTML preview and the
// PDF export both render from the same Report value.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/thuan-cell/thuan-cell/internal/models"
	"github.com/thuan-cell/thuan-cell/internal/scoring"
)

const (
	Title       = "Báo Cáo Hiệu Quả Công Việc (KPI)"
	Audience    = "Dành cho cấp Quản lý / Vận hành Lò hơi"
	placeholder = "................................"
	unratedMark = "-"
)

// Field is one labelled value of the employee block.
type Field struct {
	Label string
	Value string
}

// Row is a line of the detailed score table. Category rows only carry Code and
// Name.
type Row struct {
	Category bool
	Code     string
	Name     string
	Target   string
	Max      string
	Actual   string
	Level    string
	Tone     string
	Notes    string
}

// Signature is one sign-off block at the bottom of the report.
type Signature struct {
	Role string
	Name string
	Hint string
}

type Report struct {
	Title       string
	Audience    string
	PeriodLabel string
	DateLabel   string
	LogoDataURL string
	Logo        *models.Logo

	Employee []Field

	TotalScore    string
	MaxTotalScore string
	Percent       int
	Ranking       string
	RankingTone   string

	Categories []scoring.CategoryScore
	Rows       []Row
	Signatures []Signature

	Filename string
}

// Build lays out the report for sess. now is only used when the session has no
// report date.
func Build(rubric *models.Rubric, sess *models.Session, res scoring.Result, now time.Time) *Report {
	r := &Report{
		Title:         Title,
		Audience:      Audience,
		PeriodLabel:   sess.PeriodLabel(),
		DateLabel:     sess.ReportDateLabel(now),
		LogoDataURL:   sess.Logo.DataURL(),
		Logo:          sess.Logo,
		TotalScore:    fmt.Sprintf("%.2f", res.TotalScore),
		MaxTotalScore: formatPoints(res.MaxTotalScore),
		Percent:       res.Percent,
		Ranking:       res.Ranking.Upper(),
		RankingTone:   res.Ranking.Tone(),
		Categories:    res.Categories,
		Filename:      Filename(sess.Period, sess.Employee.ID),
	}

	emp := sess.Employee
	r.Employee = []Field{
		{Label: "Họ và tên", Value: orPlaceholder(strings.ToUpper(emp.Name))},
		{Label: "Mã nhân viên", Value: orPlaceholder(emp.ID)},
		{Label: "Chức vụ", Value: orPlaceholder(emp.Position)},
		{Label: "Bộ phận", Value: orPlaceholder(emp.Department)},
	}

	for _, cat := range rubric.Categories {
		r.Rows = append(r.Rows, Row{Category: true, Code: cat.Ordinal(), Name: cat.Name})
		for _, it := range cat.Items {
			r.Rows = append(r.Rows, itemRow(it, sess.Ratings[it.ID]))
		}
	}

	signee := emp.Name
	if signee == "" {
		signee = "....................."
	}
	r.Signatures = []Signature{
		{Role: "Người được đánh giá", Name: strings.ToUpper(signee)},
		{Role: "Người đánh giá", Hint: "Ký & ghi rõ họ tên"},
		{Role: "Giám đốc phê duyệt", Hint: "Ký & ghi rõ họ tên"},
	}
	return r
}

func itemRow(it models.Item, entry models.Entry) Row {
	row := Row{
		Code:   it.Code,
		Name:   it.Name,
		Max:    formatPoints(it.MaxPoints),
		Actual: fmt.Sprintf("%.2f", entry.ActualScore),
		Notes:  entry.Notes,
		Level:  unratedMark,
		Tone:   entry.Level.Tone(),
	}
	if entry.Rated() {
		row.Target = it.Criteria[entry.Level].Description
		row.Level = entry.Level.ReportLabel()
	} else {
		row.Target = "Mục tiêu: " + it.Target()
		row.Actual = "0.00"
	}
	return row
}

// Filename is the download name of the exported PDF.
func Filename(period, employeeID string) string {
	id := strings.TrimSpace(employeeID)
	if id == "" {
		id = "NV"
	}
	return fmt.Sprintf("KPI_BaoCao_%s_%s.pdf", period, sanitize(id))
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}

func formatPoints(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// Package views renders the HTML pages and HTMX fragments. Every view is a
// templ.Component so handlers compose them the same way regardless of how the
// markup is produced.
package views

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"fixed2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"points": formatPoints,
	"upper":  strings.ToUpper,
	// Logo data URLs are produced server side from a re-encoded PNG.
	"dataURL": func(s string) template.URL { return template.URL(s) },
	"inc":     func(i int) int { return i + 1 },
}

var pages = template.Must(template.New("views").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return pages.ExecuteTemplate(w, name, data)
	})
}

type layoutView struct {
	Title string
	Theme string
	CSRF  string
	Nonce string
	Body  template.HTML
}

// Layout wraps its children (templ.WithChildren) in the full HTML document.
func Layout(title, theme, csrfToken, nonce string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var body bytes.Buffer
		if err := templ.GetChildren(ctx).Render(ctx, &body); err != nil {
			return err
		}
		return pages.ExecuteTemplate(w, "layout", layoutView{
			Title: title,
			Theme: theme,
			CSRF:  csrfToken,
			Nonce: nonce,
			Body:  template.HTML(body.String()),
		})
	})
}

// EvaluationPage is the editor: employee card, rubric form and results panel,
// or the report preview when preview mode is on.
func EvaluationPage(v PageView) templ.Component {
	return render("page", v)
}

// ItemCard is the rating card of one rubric item.
func ItemCard(v ItemView) templ.Component {
	return render("item_card", v)
}

// ResultsPanel is the live summary. With OOB set it is swapped out of band next
// to another fragment.
func ResultsPanel(v ResultsView) templ.Component {
	return render("results", v)
}

// EmployeeCard shows the header fields and the logo.
func EmployeeCard(v EmployeeView) templ.Component {
	return render("employee", v)
}

// Report is the printable report page.
func Report(v ReportView) templ.Component {
	return render("report_page", v)
}

// Alert is a dismissible message box.
func Alert(message, tone string) templ.Component {
	return render("alert", struct{ Message, Tone string }{message, tone})
}

func formatPoints(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

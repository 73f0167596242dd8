package handlers

import (
	"encoding/json"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/thuan-cell/thuan-cell/internal/scoring"
	"github.com/thuan-cell/thuan-cell/views"
)

var pieColors = []string{"#3b82f6", "#22c55e", "#eab308", "#f97316", "#a855f7"}

// chartOptions serializes both summary charts for the browser.
func chartOptions(cats []scoring.CategoryScore) views.ChartOptions {
	bar := generateBarChart(cats)
	bar.Validate()
	pie := generatePieChart(cats)
	pie.Validate()
	barJSON, _ := json.Marshal(bar.JSON())
	pieJSON, _ := json.Marshal(pie.JSON())
	return views.ChartOptions{Bar: string(barJSON), Pie: string(pieJSON)}
}

// generateBarChart compares achieved points with the ceiling of each category.
func generateBarChart(cats []scoring.CategoryScore) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Điểm theo nhóm"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)

	names := make([]string, 0, len(cats))
	maxItems := make([]opts.BarData, 0, len(cats))
	scoreItems := make([]opts.BarData, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.ShortName)
		maxItems = append(maxItems, opts.BarData{Value: c.Max})
		scoreItems = append(scoreItems, opts.BarData{Value: c.Score})
	}

	bar.SetXAxis(names).
		AddSeries("Tối đa", maxItems, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#cbd5e1"})).
		AddSeries("Đạt được", scoreItems, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#1e3a8a"}))
	return bar
}

// generatePieChart shows how the achieved points split across categories.
// With nothing rated the series is empty and echarts draws no slices.
func generatePieChart(cats []scoring.CategoryScore) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Tỷ trọng điểm"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	)

	items := make([]opts.PieData, 0, len(cats))
	for i, c := range cats {
		if c.Score <= 0 {
			continue
		}
		items = append(items, opts.PieData{
			Name:      c.ShortName,
			Value:     c.Score,
			ItemStyle: &opts.ItemStyle{Color: pieColors[i%len(pieColors)]},
		})
	}

	pie.AddSeries("Điểm", items).SetSeriesOptions(
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
	)
	return pie
}

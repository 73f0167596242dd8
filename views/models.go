package views

import (
	"github.com/thuan-cell/thuan-cell/internal/models"
	"github.com/thuan-cell/thuan-cell/internal/report"
	"github.com/thuan-cell/thuan-cell/internal/scoring"
)

// LevelOption is one rating button of an item card.
type LevelOption struct {
	Level       string
	Label       string
	Description string
	Points      float64
	Tone        string
	Selected    bool
}

type ItemView struct {
	ID          string
	Code        string
	Name        string
	Unit        string
	MaxPoints   float64
	Checklist   []string
	Options     []LevelOption
	Rated       bool
	Tone        string
	Score       float64
	Description string
	Notes       string
}

func NewItemView(it models.Item, entry models.Entry) ItemView {
	v := ItemView{
		ID:        it.ID,
		Code:      it.Code,
		Name:      it.Name,
		Unit:      it.Unit,
		MaxPoints: it.MaxPoints,
		Checklist: it.Checklist,
		Rated:     entry.Rated(),
		Tone:      entry.Level.Tone(),
		Score:     entry.ActualScore,
		Notes:     entry.Notes,
	}
	if v.Rated {
		v.Description = it.Criteria[entry.Level].Description
	}
	for _, level := range models.Levels() {
		c := it.Criteria[level]
		v.Options = append(v.Options, LevelOption{
			Level:       string(level),
			Label:       c.Label,
			Description: c.Description,
			Points:      it.Score(level),
			Tone:        level.Tone(),
			Selected:    entry.Level == level,
		})
	}
	return v
}

type CategoryView struct {
	ID        string
	Ordinal   string
	ShortName string
	MaxPoints float64
	Items     []ItemView
}

// NewCategoryViews lays out the rubric form for the current ratings.
func NewCategoryViews(r *models.Rubric, eval models.Evaluation) []CategoryView {
	cats := make([]CategoryView, 0, len(r.Categories))
	for _, c := range r.Categories {
		cv := CategoryView{ID: c.ID, Ordinal: c.Ordinal(), ShortName: c.ShortName(), MaxPoints: c.MaxPoints()}
		for _, it := range c.Items {
			cv.Items = append(cv.Items, NewItemView(it, eval[it.ID]))
		}
		cats = append(cats, cv)
	}
	return cats
}

// ChartOptions carries serialized echarts options.
type ChartOptions struct {
	Bar string
	Pie string
}

type ResultsView struct {
	Result    scoring.Result
	Ranking   string
	Tone      string
	Rated     int
	ItemCount int
	Bands     []scoring.Band
	Charts    ChartOptions
	OOB       bool
}

func NewResultsView(r *models.Rubric, eval models.Evaluation, res scoring.Result, charts ChartOptions) ResultsView {
	return ResultsView{
		Result:    res,
		Ranking:   res.Ranking.Upper(),
		Tone:      res.Ranking.Tone(),
		Rated:     eval.RatedCount(),
		ItemCount: r.ItemCount(),
		Bands:     scoring.RankingBands(),
		Charts:    charts,
	}
}

type EmployeeView struct {
	Employee    models.EmployeeInfo
	Period      string
	PeriodLabel string
	LogoDataURL string
	CSRF        string
}

func NewEmployeeView(s *models.Session, csrf string) EmployeeView {
	return EmployeeView{
		Employee:    s.Employee,
		Period:      s.Period,
		PeriodLabel: s.PeriodLabel(),
		LogoDataURL: s.Logo.DataURL(),
		CSRF:        csrf,
	}
}

type PageView struct {
	Preview    bool
	Employee   EmployeeView
	Categories []CategoryView
	Results    ResultsView
	Report     *report.Report
	Theme      string
	CSRF       string
}

type ReportView struct {
	Report *report.Report
	Print  bool
	Nonce  string
}

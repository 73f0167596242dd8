// Package scoring folds an evaluation against the rubric into category and
// overall scores.
package scoring

import (
	"math"

	"github.com/thuan-cell/thuan-cell/internal/models"
)

// CategoryScore is the result for one rubric category.
type CategoryScore struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ShortName  string  `json:"shortName"`
	Score      float64 `json:"score"`
	Max        float64 `json:"max"`
	Percentage int     `json:"percentage"`
}

// Result is everything the summary, charts and report display.
type Result struct {
	Categories    []CategoryScore `json:"categories"`
	TotalScore    float64         `json:"totalScore"`
	MaxTotalScore float64         `json:"maxTotalScore"`
	Percent       int             `json:"percent"`
	Ranking       Ranking         `json:"ranking"`
}

// Aggregate computes the scores for eval. Item scores are already rounded when
// they are rated; here rounding happens once per category and once for the total.
func Aggregate(rubric *models.Rubric, eval models.Evaluation) Result {
	res := Result{Categories: make([]CategoryScore, 0, len(rubric.Categories))}

	var total, maxTotal float64
	for _, cat := range rubric.Categories {
		var sum, ceiling float64
		for _, item := range cat.Items {
			if entry, ok := eval[item.ID]; ok {
				sum += entry.ActualScore
			}
			ceiling += item.MaxPoints
		}
		score := models.Round2(sum)
		res.Categories = append(res.Categories, CategoryScore{
			ID:         cat.ID,
			Name:       cat.Name,
			ShortName:  cat.ShortName(),
			Score:      score,
			Max:        ceiling,
			Percentage: percentOf(score, ceiling),
		})
		total += score
		maxTotal += ceiling
	}

	res.TotalScore = models.Round2(total)
	res.MaxTotalScore = maxTotal
	res.Percent = percentOf(res.TotalScore, maxTotal)
	res.Ranking = RankFor(res.Percent)
	return res
}

func percentOf(score, max float64) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(score / max * 100))
}

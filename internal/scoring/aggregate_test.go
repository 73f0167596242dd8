package scoring

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thuan-cell/thuan-cell/internal/models"
)

func item(id string, maxPoints, good, average, weak float64) models.Item {
	return models.Item{
		ID:        id,
		Code:      id,
		Name:      "item " + id,
		MaxPoints: maxPoints,
		Criteria: map[models.RatingLevel]models.Criterion{
			models.LevelGood:    {ScorePercent: good},
			models.LevelAverage: {ScorePercent: average},
			models.LevelWeak:    {ScorePercent: weak},
		},
	}
}

func twoCategoryRubric(t *testing.T) *models.Rubric {
	t.Helper()
	r, err := models.NewRubric([]models.Category{
		{ID: "cat_A", Name: "A. ALPHA", Items: []models.Item{
			item("A.1", 10, 1, 0.8, 0),
			item("A.2", 5, 1, 0.8, 0),
		}},
		{ID: "cat_B", Name: "B. BETA", Items: []models.Item{
			item("B.1", 5, 1, 0.8, 0),
		}},
	})
	require.NoError(t, err)
	return r
}

func rate(t *testing.T, r *models.Rubric, e models.Evaluation, id string, level models.RatingLevel) models.Evaluation {
	t.Helper()
	it, ok := r.Item(id)
	require.True(t, ok, id)
	return e.Rate(it, level)
}

func TestAggregateEndToEnd(t *testing.T) {
	r := twoCategoryRubric(t)
	e := models.Evaluation{}
	e = rate(t, r, e, "A.1", models.LevelGood)
	e = rate(t, r, e, "A.2", models.LevelAverage)
	e = rate(t, r, e, "B.1", models.LevelWeak)

	got := Aggregate(r, e)

	want := Result{
		Categories: []CategoryScore{
			{ID: "cat_A", Name: "A. ALPHA", ShortName: "Alpha", Score: 14, Max: 15, Percentage: 93},
			{ID: "cat_B", Name: "B. BETA", ShortName: "Beta", Score: 0, Max: 5, Percentage: 0},
		},
		TotalScore:    14,
		MaxTotalScore: 20,
		Percent:       70,
		Ranking:       Pass,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateCategoryRounding(t *testing.T) {
	r, err := models.NewRubric([]models.Category{
		{ID: "cat_1", Name: "1. X", Items: []models.Item{
			item("1.1", 10, 1, 0.8, 0),
			item("1.2", 8, 1, 0.8, 0),
			item("1.3", 8, 1, 0.8, 0),
		}},
	})
	require.NoError(t, err)

	e := models.Evaluation{}
	e = rate(t, r, e, "1.1", models.LevelGood)
	e = rate(t, r, e, "1.2", models.LevelAverage)
	e = rate(t, r, e, "1.3", models.LevelWeak)
	assert.Equal(t, 6.4, e["1.2"].ActualScore)

	got := Aggregate(r, e)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, 16.4, got.Categories[0].Score)
	assert.Equal(t, 26.0, got.Categories[0].Max)
	assert.Equal(t, 63, got.Categories[0].Percentage)
	assert.Equal(t, Fail, got.Ranking)
}

func TestAggregateEmptyState(t *testing.T) {
	r := models.DefaultRubric()

	got := Aggregate(r, models.Evaluation{})

	for _, c := range got.Categories {
		assert.Zero(t, c.Score, c.ID)
		assert.Zero(t, c.Percentage, c.ID)
	}
	assert.Zero(t, got.TotalScore)
	assert.Equal(t, 100.0, got.MaxTotalScore)
	assert.Zero(t, got.Percent)
	assert.Equal(t, Unrated, got.Ranking)
}

func TestAggregateDegenerateRubric(t *testing.T) {
	r := &models.Rubric{Categories: []models.Category{{ID: "cat_empty", Name: "0. EMPTY"}}}

	got := Aggregate(r, models.Evaluation{"ghost": {Level: models.LevelGood, ActualScore: 3}})

	require.Len(t, got.Categories, 1)
	assert.Zero(t, got.Categories[0].Percentage)
	assert.Zero(t, got.Percent)
	assert.Equal(t, Unrated, got.Ranking)

	none := Aggregate(&models.Rubric{}, nil)
	assert.Empty(t, none.Categories)
	assert.Equal(t, Unrated, none.Ranking)
}

func TestNoteOnlyEntryContributesNothing(t *testing.T) {
	r := twoCategoryRubric(t)
	e := models.Evaluation{}.SetNote("A.1", "chưa kiểm tra")

	got := Aggregate(r, e)
	assert.Zero(t, got.TotalScore)
	assert.Equal(t, Unrated, got.Ranking)

	e = rate(t, r, e, "A.1", models.LevelGood)
	assert.Equal(t, "chưa kiểm tra", e["A.1"].Notes)
	assert.Equal(t, 10.0, Aggregate(r, e).TotalScore)
}

func TestAggregateIsDeterministic(t *testing.T) {
	r := models.DefaultRubric()
	e := models.Evaluation{}
	for _, c := range r.Categories {
		for i, it := range c.Items {
			e = e.Rate(it, models.Levels()[i%3])
		}
	}

	first := Aggregate(r, e)
	second := Aggregate(r, e)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Aggregate is not deterministic:\n%s", diff)
	}
}

func TestDefaultRubricFullMarks(t *testing.T) {
	r := models.DefaultRubric()
	e := models.Evaluation{}
	for _, c := range r.Categories {
		for _, it := range c.Items {
			e = e.Rate(it, models.LevelGood)
		}
	}

	got := Aggregate(r, e)
	assert.Equal(t, 100.0, got.TotalScore)
	assert.Equal(t, 100, got.Percent)
	assert.Equal(t, Excellent, got.Ranking)
}
